package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/materiku/materiku-backend/internal/model"
)

// RatingRepository handles rating data access.
type RatingRepository struct {
	pool *pgxpool.Pool
}

// NewRatingRepository creates a new RatingRepository.
func NewRatingRepository(pool *pgxpool.Pool) *RatingRepository {
	return &RatingRepository{pool: pool}
}

// Upsert inserts or replaces the user's rating for a material.
func (r *RatingRepository) Upsert(ctx context.Context, rating *model.Rating) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO ratings (material_id, owner_id, stars)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (material_id, owner_id)
		 DO UPDATE SET stars = EXCLUDED.stars
		 RETURNING id, created_at`,
		rating.MaterialID, rating.OwnerID, rating.Stars,
	).Scan(&rating.ID, &rating.CreatedAt)
}

// GetByID retrieves a single rating.
func (r *RatingRepository) GetByID(ctx context.Context, id int) (*model.Rating, error) {
	rating := &model.Rating{ID: id}
	err := r.pool.QueryRow(ctx,
		"SELECT material_id, owner_id, stars, created_at FROM ratings WHERE id = $1", id,
	).Scan(&rating.MaterialID, &rating.OwnerID, &rating.Stars, &rating.CreatedAt)
	if err != nil {
		return nil, err
	}
	return rating, nil
}

// Summary aggregates the ratings of a material.
func (r *RatingRepository) Summary(ctx context.Context, materialID uuid.UUID) (*model.RatingSummary, error) {
	summary := &model.RatingSummary{MaterialID: materialID}
	err := r.pool.QueryRow(ctx,
		"SELECT COALESCE(AVG(stars), 0), COUNT(*) FROM ratings WHERE material_id = $1",
		materialID,
	).Scan(&summary.Average, &summary.Count)
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// Delete removes a rating.
func (r *RatingRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM ratings WHERE id = $1", id)
	return err
}
