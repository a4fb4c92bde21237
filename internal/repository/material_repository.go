package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/materiku/materiku-backend/internal/model"
)

// MaterialRepository handles material data access, including the moderation
// status transition.
type MaterialRepository struct {
	pool *pgxpool.Pool
}

// NewMaterialRepository creates a new MaterialRepository.
func NewMaterialRepository(pool *pgxpool.Pool) *MaterialRepository {
	return &MaterialRepository{pool: pool}
}

const materialColumns = `m.id, m.course_id, m.owner_id, c.owner_id AS course_owner_id,
	m.title, m.description, m.file_path, m.file_size, m.mime_type,
	m.status, m.downloads, m.created_at, m.updated_at`

func scanMaterial(row interface{ Scan(dest ...any) error }) (*model.Material, error) {
	var m model.Material
	err := row.Scan(
		&m.ID, &m.CourseID, &m.OwnerID, &m.CourseOwnerID,
		&m.Title, &m.Description, &m.FilePath, &m.FileSize, &m.MimeType,
		&m.Status, &m.Downloads, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts a new material with the given status.
func (r *MaterialRepository) Create(ctx context.Context, m *model.Material) error {
	m.ID = uuid.New()
	return r.pool.QueryRow(ctx,
		`INSERT INTO materials (id, course_id, owner_id, title, description, file_path, file_size, mime_type, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at, updated_at`,
		m.ID, m.CourseID, m.OwnerID, m.Title, m.Description, m.FilePath, m.FileSize, m.MimeType, m.Status,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
}

// GetByID retrieves a material with its course owner joined in.
func (r *MaterialRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Material, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+materialColumns+`
		 FROM materials m
		 JOIN courses c ON c.id = m.course_id
		 WHERE m.id = $1`, id)
	return scanMaterial(row)
}

// ListByCourseAndStatus retrieves a course's materials in a given status,
// oldest first for moderation queues, newest first otherwise.
func (r *MaterialRepository) ListByCourseAndStatus(ctx context.Context, courseID uuid.UUID, status model.MaterialStatus) ([]model.Material, error) {
	order := "m.created_at DESC"
	if status == model.MaterialStatusPending {
		order = "m.created_at ASC"
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+materialColumns+`
		 FROM materials m
		 JOIN courses c ON c.id = m.course_id
		 WHERE m.course_id = $1 AND m.status = $2
		 ORDER BY `+order, courseID, status,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var materials []model.Material
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, err
		}
		materials = append(materials, *m)
	}
	return materials, rows.Err()
}

// ListByOwner retrieves all materials a user has uploaded, any status.
func (r *MaterialRepository) ListByOwner(ctx context.Context, ownerID int) ([]model.Material, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+materialColumns+`
		 FROM materials m
		 JOIN courses c ON c.id = m.course_id
		 WHERE m.owner_id = $1
		 ORDER BY m.created_at DESC`, ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var materials []model.Material
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, err
		}
		materials = append(materials, *m)
	}
	return materials, rows.Err()
}

// UpdateMetadata replaces a material's title and description.
func (r *MaterialRepository) UpdateMetadata(ctx context.Context, id uuid.UUID, title, description string) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE materials SET title = $1, description = $2, updated_at = NOW() WHERE id = $3",
		title, description, id)
	return err
}

// UpdateStatusIfPending transitions a material out of PENDING with
// compare-and-set semantics: the WHERE clause re-checks the precondition so
// two concurrent moderators cannot both win. Returns false when the material
// was no longer PENDING (or does not exist).
func (r *MaterialRepository) UpdateStatusIfPending(ctx context.Context, id uuid.UUID, status model.MaterialStatus) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		"UPDATE materials SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3",
		status, id, model.MaterialStatusPending)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Delete removes a material. Ratings, reviews, and tag links cascade.
func (r *MaterialRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM materials WHERE id = $1", id)
	return err
}
