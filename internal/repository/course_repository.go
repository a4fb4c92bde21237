package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/materiku/materiku-backend/internal/model"
)

// CourseRepository handles course data access.
type CourseRepository struct {
	pool *pgxpool.Pool
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

// Create inserts a new course.
func (r *CourseRepository) Create(ctx context.Context, course *model.Course) error {
	course.ID = uuid.New()
	return r.pool.QueryRow(ctx,
		`INSERT INTO courses (id, owner_id, title, description)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at, updated_at`,
		course.ID, course.OwnerID, course.Title, course.Description,
	).Scan(&course.CreatedAt, &course.UpdatedAt)
}

// GetByID retrieves a course by its UUID.
func (r *CourseRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	course := &model.Course{ID: id}
	err := r.pool.QueryRow(ctx,
		`SELECT owner_id, title, description, created_at, updated_at
		 FROM courses WHERE id = $1`, id,
	).Scan(&course.OwnerID, &course.Title, &course.Description, &course.CreatedAt, &course.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return course, nil
}

// ListPaginated retrieves courses ordered by creation time, newest first.
func (r *CourseRepository) ListPaginated(ctx context.Context, limit, offset int) ([]model.Course, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM courses").Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, owner_id, title, description, created_at, updated_at
		 FROM courses
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var courses []model.Course
	for rows.Next() {
		var c model.Course
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Title, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		courses = append(courses, c)
	}
	return courses, total, rows.Err()
}

// Update replaces a course's title and description.
func (r *CourseRepository) Update(ctx context.Context, course *model.Course) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE courses SET title = $1, description = $2, updated_at = NOW() WHERE id = $3`,
		course.Title, course.Description, course.ID)
	return err
}

// Delete removes a course. Materials in the course cascade at the DB level.
func (r *CourseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM courses WHERE id = $1", id)
	return err
}
