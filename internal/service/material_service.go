package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/materiku/materiku-backend/internal/authz"
	"github.com/materiku/materiku-backend/internal/model"
	"github.com/rs/zerolog"
)

// Domain errors surfaced by the material workflow. ErrAlreadyDecided is
// distinct from an authorization failure so callers can render "already
// decided" rather than "not allowed".
var (
	ErrMaterialNotFound   = errors.New("material not found")
	ErrCourseNotFound     = errors.New("course not found")
	ErrAlreadyDecided     = errors.New("material has already been approved or rejected")
	ErrMaterialNotVisible = errors.New("material is not approved")
)

// materialStore is the persistence surface the moderation workflow needs.
// *repository.MaterialRepository satisfies it.
type materialStore interface {
	Create(ctx context.Context, m *model.Material) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Material, error)
	ListByCourseAndStatus(ctx context.Context, courseID uuid.UUID, status model.MaterialStatus) ([]model.Material, error)
	ListByOwner(ctx context.Context, ownerID int) ([]model.Material, error)
	UpdateMetadata(ctx context.Context, id uuid.UUID, title, description string) error
	UpdateStatusIfPending(ctx context.Context, id uuid.UUID, status model.MaterialStatus) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// courseStore resolves the container a material is submitted into.
// *repository.CourseRepository satisfies it.
type courseStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error)
}

// materialCache is the Redis side channel; *MaterialCache satisfies it.
type materialCache interface {
	GetCourseListing(ctx context.Context, courseID string) ([]model.Material, bool)
	SetCourseListing(ctx context.Context, courseID string, materials []model.Material)
	InvalidateCourseListing(ctx context.Context, courseID string)
	PublishModerationEvent(ctx context.Context, event model.ModerationEvent)
	QueueDownload(ctx context.Context, materialID string)
}

// MaterialService owns the material lifecycle: submission into a course,
// the moderation transitions, and the approved read path.
type MaterialService struct {
	materials materialStore
	courses   courseStore
	cache     materialCache
	perms     *authz.PermissionService
	log       zerolog.Logger
}

// NewMaterialService creates a new MaterialService.
func NewMaterialService(
	materials materialStore,
	courses courseStore,
	cache materialCache,
	perms *authz.PermissionService,
	log zerolog.Logger,
) *MaterialService {
	return &MaterialService{
		materials: materials,
		courses:   courses,
		cache:     cache,
		perms:     perms,
		log:       log.With().Str("component", "material_service").Logger(),
	}
}

// SubmitMaterialInput carries a new submission's metadata. The file itself is
// stored by the media service before Submit is called.
type SubmitMaterialInput struct {
	CourseID    uuid.UUID
	Title       string
	Description string
	FilePath    string
	FileSize    int64
	MimeType    string
}

// Submit creates a material in its course. Every submission starts PENDING;
// when the uploader owns the course the submission is approved immediately;
// owners decide the fate of submitted material, so routing their own uploads
// through their own queue would be a pointless self-approval step.
func (s *MaterialService) Submit(ctx context.Context, actor *model.User, in SubmitMaterialInput) (*model.Material, error) {
	if err := s.perms.Authorize(actor, authz.ActionUploadMaterial, 0); err != nil {
		return nil, err
	}

	course, err := s.courses.GetByID(ctx, in.CourseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("get course: %w", err)
	}

	material := &model.Material{
		CourseID:      course.ID,
		OwnerID:       actor.ID,
		CourseOwnerID: course.OwnerID,
		Title:         in.Title,
		Description:   in.Description,
		FilePath:      in.FilePath,
		FileSize:      in.FileSize,
		MimeType:      in.MimeType,
		Status:        model.MaterialStatusPending,
	}
	if actor.ID == course.OwnerID {
		material.Status = model.MaterialStatusApproved
	}

	if err := s.materials.Create(ctx, material); err != nil {
		return nil, fmt.Errorf("create material: %w", err)
	}

	if material.Status == model.MaterialStatusApproved {
		s.cache.InvalidateCourseListing(ctx, course.ID.String())
	}
	s.cache.PublishModerationEvent(ctx, model.ModerationEvent{
		MaterialID: material.ID,
		CourseID:   course.ID,
		Title:      material.Title,
		OwnerID:    material.OwnerID,
		Status:     material.Status,
		OccurredAt: time.Now().UTC(),
	})

	s.log.Info().
		Str("material_id", material.ID.String()).
		Str("course_id", course.ID.String()).
		Int("owner_id", material.OwnerID).
		Str("status", string(material.Status)).
		Msg("Material submitted")

	return material, nil
}

// Approve transitions a PENDING material to APPROVED. Authorized for the
// course owner holding materials:moderate, or any holder of
// materials:moderate_any.
func (s *MaterialService) Approve(ctx context.Context, actor *model.User, materialID uuid.UUID) (*model.Material, error) {
	return s.decide(ctx, actor, materialID, model.MaterialStatusApproved)
}

// Reject transitions a PENDING material to REJECTED. Same authorization as
// Approve. There is no resubmission after rejection.
func (s *MaterialService) Reject(ctx context.Context, actor *model.User, materialID uuid.UUID) (*model.Material, error) {
	return s.decide(ctx, actor, materialID, model.MaterialStatusRejected)
}

func (s *MaterialService) decide(ctx context.Context, actor *model.User, materialID uuid.UUID, verdict model.MaterialStatus) (*model.Material, error) {
	material, err := s.materials.GetByID(ctx, materialID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMaterialNotFound
		}
		return nil, fmt.Errorf("get material: %w", err)
	}

	// Moderation is scoped to the course owner, not the uploader.
	if err := s.perms.Authorize(actor, authz.ActionModerateMaterial, material.CourseOwnerID); err != nil {
		return nil, err
	}

	if material.Status != model.MaterialStatusPending {
		return nil, ErrAlreadyDecided
	}

	// The store re-checks PENDING inside the UPDATE, so a concurrent moderator
	// losing this race gets ErrAlreadyDecided instead of a silent double write.
	ok, err := s.materials.UpdateStatusIfPending(ctx, materialID, verdict)
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	if !ok {
		return nil, ErrAlreadyDecided
	}
	material.Status = verdict

	s.cache.InvalidateCourseListing(ctx, material.CourseID.String())
	s.cache.PublishModerationEvent(ctx, model.ModerationEvent{
		MaterialID: material.ID,
		CourseID:   material.CourseID,
		Title:      material.Title,
		OwnerID:    material.OwnerID,
		Status:     verdict,
		DecidedBy:  actor.ID,
		OccurredAt: time.Now().UTC(),
	})

	s.log.Info().
		Str("material_id", materialID.String()).
		Int("decided_by", actor.ID).
		Str("status", string(verdict)).
		Msg("Material moderated")

	return material, nil
}

// ListApproved returns a course's approved materials, served from Redis when
// the listing is warm.
func (s *MaterialService) ListApproved(ctx context.Context, courseID uuid.UUID) ([]model.Material, error) {
	if cached, ok := s.cache.GetCourseListing(ctx, courseID.String()); ok {
		return cached, nil
	}

	materials, err := s.materials.ListByCourseAndStatus(ctx, courseID, model.MaterialStatusApproved)
	if err != nil {
		return nil, fmt.Errorf("list approved: %w", err)
	}
	if materials == nil {
		materials = []model.Material{}
	}

	s.cache.SetCourseListing(ctx, courseID.String(), materials)
	return materials, nil
}

// ListPending returns a course's moderation queue. Only reachable by actors
// who could moderate the course.
func (s *MaterialService) ListPending(ctx context.Context, actor *model.User, courseID uuid.UUID) ([]model.Material, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("get course: %w", err)
	}

	if err := s.perms.Authorize(actor, authz.ActionModerateMaterial, course.OwnerID); err != nil {
		return nil, err
	}

	materials, err := s.materials.ListByCourseAndStatus(ctx, courseID, model.MaterialStatusPending)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	if materials == nil {
		materials = []model.Material{}
	}
	return materials, nil
}

// ListOwn returns everything the actor has uploaded, any status.
func (s *MaterialService) ListOwn(ctx context.Context, actor *model.User) ([]model.Material, error) {
	if err := s.perms.Authorize(actor, authz.ActionUploadMaterial, 0); err != nil {
		return nil, err
	}
	materials, err := s.materials.ListByOwner(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if materials == nil {
		materials = []model.Material{}
	}
	return materials, nil
}

// Get returns a material. Approved materials are world-readable; undecided
// and rejected ones are visible only to their uploader and to actors who
// could moderate the course.
func (s *MaterialService) Get(ctx context.Context, actor *model.User, materialID uuid.UUID) (*model.Material, error) {
	material, err := s.materials.GetByID(ctx, materialID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMaterialNotFound
		}
		return nil, fmt.Errorf("get material: %w", err)
	}

	if material.Status == model.MaterialStatusApproved {
		return material, nil
	}
	if actor != nil && actor.ID == material.OwnerID {
		return material, nil
	}
	if err := s.perms.Authorize(actor, authz.ActionModerateMaterial, material.CourseOwnerID); err != nil {
		return nil, ErrMaterialNotVisible
	}
	return material, nil
}

// UpdateMetadata edits a material's title and description. Own-or-any against
// the uploader.
func (s *MaterialService) UpdateMetadata(ctx context.Context, actor *model.User, materialID uuid.UUID, title, description string) (*model.Material, error) {
	material, err := s.materials.GetByID(ctx, materialID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMaterialNotFound
		}
		return nil, fmt.Errorf("get material: %w", err)
	}

	if err := s.perms.Authorize(actor, authz.ActionUpdateMaterial, material.OwnerID); err != nil {
		return nil, err
	}

	if err := s.materials.UpdateMetadata(ctx, materialID, title, description); err != nil {
		return nil, fmt.Errorf("update metadata: %w", err)
	}
	material.Title = title
	material.Description = description

	if material.Status == model.MaterialStatusApproved {
		s.cache.InvalidateCourseListing(ctx, material.CourseID.String())
	}
	return material, nil
}

// Delete removes a material. Own-or-any against the uploader.
func (s *MaterialService) Delete(ctx context.Context, actor *model.User, materialID uuid.UUID) error {
	material, err := s.materials.GetByID(ctx, materialID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrMaterialNotFound
		}
		return fmt.Errorf("get material: %w", err)
	}

	if err := s.perms.Authorize(actor, authz.ActionDeleteMaterial, material.OwnerID); err != nil {
		return err
	}

	if err := s.materials.Delete(ctx, materialID); err != nil {
		return fmt.Errorf("delete material: %w", err)
	}

	if material.Status == model.MaterialStatusApproved {
		s.cache.InvalidateCourseListing(ctx, material.CourseID.String())
	}

	s.log.Info().
		Str("material_id", materialID.String()).
		Int("deleted_by", actor.ID).
		Msg("Material deleted")
	return nil
}

// RegisterDownload records a download of an approved material. The hit is
// buffered in Redis and drained to PostgreSQL by the stats worker.
func (s *MaterialService) RegisterDownload(ctx context.Context, actor *model.User, materialID uuid.UUID) (*model.Material, error) {
	material, err := s.Get(ctx, actor, materialID)
	if err != nil {
		return nil, err
	}
	if material.Status != model.MaterialStatusApproved {
		return nil, ErrMaterialNotVisible
	}
	s.cache.QueueDownload(ctx, materialID.String())
	return material, nil
}
