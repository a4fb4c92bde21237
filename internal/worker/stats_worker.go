package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/materiku/materiku-backend/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// StatsWorker consumes persist_downloads_queue and adds download hits to
// PostgreSQL. Download counts are advisory, so hits are buffered in Redis
// on the request path and flushed here instead of hammering the materials
// table with one UPDATE per download.
type StatsWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewStatsWorker creates a new StatsWorker.
func NewStatsWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *StatsWorker {
	return &StatsWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "stats_worker").Logger(),
	}
}

type downloadPayload struct {
	MaterialID string `json:"material_id"`
	Count      int64  `json:"count"`
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *StatsWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			// Drain remaining items before exit.
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *StatsWorker) processNext(ctx context.Context) {
	// BLPop blocks until an item is available or timeout (1 second).
	result, err := w.rdb.BLPop(ctx, time.Second, config.WorkerKey.PersistDownloadsQueue).Result()
	if err != nil {
		if err != redis.Nil && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}

	if len(result) < 2 {
		return
	}

	var payload downloadPayload
	if err := json.Unmarshal([]byte(result[1]), &payload); err != nil {
		w.log.Error().Err(err).Msg("Unmarshal error")
		return
	}

	if err := w.persistDownload(ctx, &payload); err != nil {
		w.log.Error().Err(err).
			Str("material_id", payload.MaterialID).
			Msg("Persist error, retrying in 5s")
		// Push back to queue for retry.
		w.rdb.RPush(ctx, config.WorkerKey.PersistDownloadsQueue, result[1])
		time.Sleep(5 * time.Second)
	}
}

func (w *StatsWorker) persistDownload(ctx context.Context, p *downloadPayload) error {
	materialID, err := uuid.Parse(p.MaterialID)
	if err != nil {
		return err
	}

	count := p.Count
	if count <= 0 {
		count = 1
	}

	_, err = w.pool.Exec(ctx,
		"UPDATE materials SET downloads = downloads + $1 WHERE id = $2",
		count, materialID,
	)
	return err
}

// drain processes all remaining items in the queue before shutdown.
func (w *StatsWorker) drain(ctx context.Context) {
	drained := 0
	for {
		result, err := w.rdb.LPop(ctx, config.WorkerKey.PersistDownloadsQueue).Result()
		if err != nil {
			break
		}

		var payload downloadPayload
		if err := json.Unmarshal([]byte(result), &payload); err != nil {
			w.log.Error().Err(err).Msg("Drain unmarshal error")
			continue
		}

		if err := w.persistDownload(ctx, &payload); err != nil {
			w.log.Error().Err(err).Msg("Drain persist error")
			w.rdb.RPush(ctx, config.WorkerKey.PersistDownloadsQueue, result)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}
