package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/materiku/materiku-backend/internal/model"
)

// ReviewRepository handles review data access.
type ReviewRepository struct {
	pool *pgxpool.Pool
}

// NewReviewRepository creates a new ReviewRepository.
func NewReviewRepository(pool *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Create inserts a new review.
func (r *ReviewRepository) Create(ctx context.Context, review *model.Review) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO reviews (material_id, owner_id, body)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		review.MaterialID, review.OwnerID, review.Body,
	).Scan(&review.ID, &review.CreatedAt)
}

// GetByID retrieves a single review.
func (r *ReviewRepository) GetByID(ctx context.Context, id int) (*model.Review, error) {
	review := &model.Review{ID: id}
	err := r.pool.QueryRow(ctx,
		"SELECT material_id, owner_id, body, created_at FROM reviews WHERE id = $1", id,
	).Scan(&review.MaterialID, &review.OwnerID, &review.Body, &review.CreatedAt)
	if err != nil {
		return nil, err
	}
	return review, nil
}

// ListByMaterial retrieves a material's reviews, newest first, with the
// reviewer name joined in for display.
func (r *ReviewRepository) ListByMaterial(ctx context.Context, materialID uuid.UUID) ([]model.Review, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT rv.id, rv.material_id, rv.owner_id, u.name, rv.body, rv.created_at
		 FROM reviews rv
		 JOIN users u ON u.id = rv.owner_id
		 WHERE rv.material_id = $1
		 ORDER BY rv.created_at DESC`, materialID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []model.Review
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(&rv.ID, &rv.MaterialID, &rv.OwnerID, &rv.OwnerName, &rv.Body, &rv.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}

// Delete removes a review.
func (r *ReviewRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM reviews WHERE id = $1", id)
	return err
}
