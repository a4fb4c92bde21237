package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/materiku/materiku-backend/internal/config"
	"github.com/materiku/materiku-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// MaterialCache fronts Redis for the material read path and moderation
// side channels: approved-listing cache, download-count queue, and the
// per-course moderation event feed. Cache failures are logged and absorbed;
// PostgreSQL stays the source of truth.
type MaterialCache struct {
	rdb *redis.Client
	ttl time.Duration
	log zerolog.Logger
}

// NewMaterialCache creates a MaterialCache.
func NewMaterialCache(rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *MaterialCache {
	return &MaterialCache{
		rdb: rdb,
		ttl: ttl,
		log: log.With().Str("component", "material_cache").Logger(),
	}
}

// GetCourseListing returns the cached approved listing for a course, if any.
func (c *MaterialCache) GetCourseListing(ctx context.Context, courseID string) ([]model.Material, bool) {
	raw, err := c.rdb.Get(ctx, config.CacheKey.CourseMaterialsKey(courseID)).Result()
	if err != nil {
		if err != redis.Nil {
			c.log.Error().Err(err).Str("course_id", courseID).Msg("Listing cache read failed")
		}
		return nil, false
	}

	var materials []model.Material
	if err := json.Unmarshal([]byte(raw), &materials); err != nil {
		c.log.Error().Err(err).Str("course_id", courseID).Msg("Listing cache corrupt, dropping")
		c.InvalidateCourseListing(ctx, courseID)
		return nil, false
	}
	return materials, true
}

// SetCourseListing caches a course's approved listing with the configured TTL.
func (c *MaterialCache) SetCourseListing(ctx context.Context, courseID string, materials []model.Material) {
	payload, err := json.Marshal(materials)
	if err != nil {
		c.log.Error().Err(err).Str("course_id", courseID).Msg("Listing marshal failed")
		return
	}
	if err := c.rdb.Set(ctx, config.CacheKey.CourseMaterialsKey(courseID), payload, c.ttl).Err(); err != nil {
		c.log.Error().Err(err).Str("course_id", courseID).Msg("Listing cache write failed")
	}
}

// InvalidateCourseListing drops a course's cached listing. Called after every
// moderation transition and material mutation.
func (c *MaterialCache) InvalidateCourseListing(ctx context.Context, courseID string) {
	if err := c.rdb.Del(ctx, config.CacheKey.CourseMaterialsKey(courseID)).Err(); err != nil {
		c.log.Error().Err(err).Str("course_id", courseID).Msg("Listing invalidation failed")
	}
}

// PublishModerationEvent pushes a moderation event onto the course's PubSub
// channel for connected WebSocket subscribers.
func (c *MaterialCache) PublishModerationEvent(ctx context.Context, event model.ModerationEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		c.log.Error().Err(err).Msg("Moderation event marshal failed")
		return
	}
	channel := config.CacheKey.CourseModerationChannel(event.CourseID.String())
	if err := c.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		c.log.Error().Err(err).Str("channel", channel).Msg("Moderation event publish failed")
	}
}

// QueueDownload buffers a download hit for the stats worker to persist.
func (c *MaterialCache) QueueDownload(ctx context.Context, materialID string) {
	payload, err := json.Marshal(map[string]interface{}{
		"material_id": materialID,
		"count":       1,
	})
	if err != nil {
		return
	}
	if err := c.rdb.RPush(ctx, config.WorkerKey.PersistDownloadsQueue, payload).Err(); err != nil {
		c.log.Error().Err(err).Str("material_id", materialID).Msg("Download queue push failed")
	}
}
