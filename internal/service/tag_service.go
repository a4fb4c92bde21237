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
	"github.com/rs/zerolog"
)

// ErrTagNotFound is returned when a tag id resolves to nothing.
var ErrTagNotFound = errors.New("tag not found")

// TagService handles the shared tag vocabulary and material-tag links.
type TagService struct {
	tagRepo   *repository.TagRepository
	materials materialStore
	perms     *authz.PermissionService
	log       zerolog.Logger
}

// NewTagService creates a new TagService.
func NewTagService(tagRepo *repository.TagRepository, materials materialStore, perms *authz.PermissionService, log zerolog.Logger) *TagService {
	return &TagService{
		tagRepo:   tagRepo,
		materials: materials,
		perms:     perms,
		log:       log.With().Str("component", "tag_service").Logger(),
	}
}

// Create adds a tag to the shared vocabulary.
func (s *TagService) Create(ctx context.Context, actor *model.User, name string) (*model.Tag, error) {
	if err := s.perms.Authorize(actor, authz.ActionCreateTag, 0); err != nil {
		return nil, err
	}

	tag := &model.Tag{OwnerID: actor.ID, Name: name}
	if err := s.tagRepo.Create(ctx, tag); err != nil {
		return nil, fmt.Errorf("create tag: %w", err)
	}
	return tag, nil
}

// List retrieves the full tag vocabulary. World-readable.
func (s *TagService) List(ctx context.Context) ([]model.Tag, error) {
	tags, err := s.tagRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []model.Tag{}
	}
	return tags, nil
}

// ListByMaterial retrieves the tags attached to a material. World-readable.
func (s *TagService) ListByMaterial(ctx context.Context, materialID uuid.UUID) ([]model.Tag, error) {
	tags, err := s.tagRepo.ListByMaterial(ctx, materialID)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []model.Tag{}
	}
	return tags, nil
}

// Attach links a tag to a material. Tagging modifies the material, so it is
// authorized like a material update (own-or-any against the uploader).
func (s *TagService) Attach(ctx context.Context, actor *model.User, materialID uuid.UUID, tagID int) error {
	material, err := s.materials.GetByID(ctx, materialID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrMaterialNotFound
		}
		return fmt.Errorf("get material: %w", err)
	}

	if err := s.perms.Authorize(actor, authz.ActionUpdateMaterial, material.OwnerID); err != nil {
		return err
	}

	if _, err := s.tagRepo.GetByID(ctx, tagID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTagNotFound
		}
		return fmt.Errorf("get tag: %w", err)
	}

	return s.tagRepo.Attach(ctx, materialID, tagID)
}

// Detach unlinks a tag from a material. Same authorization as Attach.
func (s *TagService) Detach(ctx context.Context, actor *model.User, materialID uuid.UUID, tagID int) error {
	material, err := s.materials.GetByID(ctx, materialID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrMaterialNotFound
		}
		return fmt.Errorf("get material: %w", err)
	}

	if err := s.perms.Authorize(actor, authz.ActionUpdateMaterial, material.OwnerID); err != nil {
		return err
	}

	return s.tagRepo.Detach(ctx, materialID, tagID)
}

// Delete removes a tag from the vocabulary entirely. Only holders of the
// any-variant may do this; creating a tag gives no right to remove it.
func (s *TagService) Delete(ctx context.Context, actor *model.User, id int) error {
	tag, err := s.tagRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTagNotFound
		}
		return fmt.Errorf("get tag: %w", err)
	}

	if err := s.perms.Authorize(actor, authz.ActionDeleteTag, tag.OwnerID); err != nil {
		return err
	}

	return s.tagRepo.Delete(ctx, id)
}
