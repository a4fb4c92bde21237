package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/materiku/materiku-backend/internal/authz"
	"github.com/materiku/materiku-backend/internal/model"
	"github.com/materiku/materiku-backend/internal/repository"
	"github.com/materiku/materiku-backend/internal/response"
	"github.com/rs/zerolog"
)

// CourseService handles course business logic.
type CourseService struct {
	courseRepo *repository.CourseRepository
	perms      *authz.PermissionService
	log        zerolog.Logger
}

// NewCourseService creates a new CourseService.
func NewCourseService(courseRepo *repository.CourseRepository, perms *authz.PermissionService, log zerolog.Logger) *CourseService {
	return &CourseService{
		courseRepo: courseRepo,
		perms:      perms,
		log:        log.With().Str("component", "course_service").Logger(),
	}
}

// Create inserts a new course owned by the actor.
func (s *CourseService) Create(ctx context.Context, actor *model.User, title, description string) (*model.Course, error) {
	if err := s.perms.Authorize(actor, authz.ActionCreateCourse, 0); err != nil {
		return nil, err
	}

	course := &model.Course{
		OwnerID:     actor.ID,
		Title:       title,
		Description: description,
	}
	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}

	s.log.Info().
		Str("course_id", course.ID.String()).
		Int("owner_id", actor.ID).
		Msg("Course created")
	return course, nil
}

// Get retrieves a course. Courses are world-readable.
func (s *CourseService) Get(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCourseNotFound
	}
	return course, err
}

// List retrieves courses with pagination.
func (s *CourseService) List(ctx context.Context, page, perPage int) ([]model.Course, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	limit := perPage
	offset := (page - 1) * perPage

	courses, total, err := s.courseRepo.ListPaginated(ctx, limit, offset)
	if err != nil {
		return nil, nil, err
	}
	if courses == nil {
		courses = []model.Course{}
	}

	totalPages := (total + perPage - 1) / perPage
	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
	}
	return courses, pagination, nil
}

// Update edits a course's title and description. Own-or-any.
func (s *CourseService) Update(ctx context.Context, actor *model.User, id uuid.UUID, title, description string) (*model.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("get course: %w", err)
	}

	if err := s.perms.Authorize(actor, authz.ActionUpdateCourse, course.OwnerID); err != nil {
		return nil, err
	}

	course.Title = title
	course.Description = description
	if err := s.courseRepo.Update(ctx, course); err != nil {
		return nil, fmt.Errorf("update course: %w", err)
	}
	return course, nil
}

// Delete removes a course and, via DB cascade, its materials. Own-or-any.
func (s *CourseService) Delete(ctx context.Context, actor *model.User, id uuid.UUID) error {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCourseNotFound
		}
		return fmt.Errorf("get course: %w", err)
	}

	if err := s.perms.Authorize(actor, authz.ActionDeleteCourse, course.OwnerID); err != nil {
		return err
	}

	if err := s.courseRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}

	s.log.Info().
		Str("course_id", id.String()).
		Int("deleted_by", actor.ID).
		Msg("Course deleted")
	return nil
}
