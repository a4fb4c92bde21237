package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/materiku/materiku-backend/internal/model"
)

// TagRepository handles tag data access and material-tag links.
type TagRepository struct {
	pool *pgxpool.Pool
}

// NewTagRepository creates a new TagRepository.
func NewTagRepository(pool *pgxpool.Pool) *TagRepository {
	return &TagRepository{pool: pool}
}

// Create inserts a new tag.
func (r *TagRepository) Create(ctx context.Context, tag *model.Tag) error {
	return r.pool.QueryRow(ctx,
		"INSERT INTO tags (owner_id, name) VALUES ($1, $2) RETURNING id, created_at",
		tag.OwnerID, tag.Name,
	).Scan(&tag.ID, &tag.CreatedAt)
}

// GetByID retrieves a single tag.
func (r *TagRepository) GetByID(ctx context.Context, id int) (*model.Tag, error) {
	tag := &model.Tag{ID: id}
	err := r.pool.QueryRow(ctx,
		"SELECT owner_id, name, created_at FROM tags WHERE id = $1", id,
	).Scan(&tag.OwnerID, &tag.Name, &tag.CreatedAt)
	if err != nil {
		return nil, err
	}
	return tag, nil
}

// List retrieves all tags ordered by name.
func (r *TagRepository) List(ctx context.Context) ([]model.Tag, error) {
	rows, err := r.pool.Query(ctx, "SELECT id, owner_id, name, created_at FROM tags ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []model.Tag
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Name, &t.CreatedAt); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// ListByMaterial retrieves the tags attached to a material.
func (r *TagRepository) ListByMaterial(ctx context.Context, materialID uuid.UUID) ([]model.Tag, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT t.id, t.owner_id, t.name, t.created_at
		 FROM tags t
		 JOIN material_tags mt ON mt.tag_id = t.id
		 WHERE mt.material_id = $1
		 ORDER BY t.name`, materialID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []model.Tag
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Name, &t.CreatedAt); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// Attach links a tag to a material. Re-attaching is a no-op.
func (r *TagRepository) Attach(ctx context.Context, materialID uuid.UUID, tagID int) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO material_tags (material_id, tag_id)
		 VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`, materialID, tagID)
	return err
}

// Detach unlinks a tag from a material.
func (r *TagRepository) Detach(ctx context.Context, materialID uuid.UUID, tagID int) error {
	_, err := r.pool.Exec(ctx,
		"DELETE FROM material_tags WHERE material_id = $1 AND tag_id = $2", materialID, tagID)
	return err
}

// Delete removes a tag and its material links.
func (r *TagRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM tags WHERE id = $1", id)
	return err
}
