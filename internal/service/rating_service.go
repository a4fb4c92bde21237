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

// Rating domain errors.
var (
	ErrRatingNotFound = errors.New("rating not found")
	ErrInvalidStars   = errors.New("stars must be between 1 and 5")
)

// RatingService handles material ratings.
type RatingService struct {
	ratingRepo *repository.RatingRepository
	materials  materialStore
	perms      *authz.PermissionService
	log        zerolog.Logger
}

// NewRatingService creates a new RatingService.
func NewRatingService(ratingRepo *repository.RatingRepository, materials materialStore, perms *authz.PermissionService, log zerolog.Logger) *RatingService {
	return &RatingService{
		ratingRepo: ratingRepo,
		materials:  materials,
		perms:      perms,
		log:        log.With().Str("component", "rating_service").Logger(),
	}
}

// Rate records the actor's star rating for an approved material. A repeated
// rating by the same actor overwrites the previous one.
func (s *RatingService) Rate(ctx context.Context, actor *model.User, materialID uuid.UUID, stars int) (*model.Rating, error) {
	if err := s.perms.Authorize(actor, authz.ActionCreateRating, 0); err != nil {
		return nil, err
	}
	if stars < 1 || stars > 5 {
		return nil, ErrInvalidStars
	}

	material, err := s.materials.GetByID(ctx, materialID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMaterialNotFound
		}
		return nil, fmt.Errorf("get material: %w", err)
	}
	if material.Status != model.MaterialStatusApproved {
		return nil, ErrMaterialNotVisible
	}

	rating := &model.Rating{
		MaterialID: materialID,
		OwnerID:    actor.ID,
		Stars:      stars,
	}
	if err := s.ratingRepo.Upsert(ctx, rating); err != nil {
		return nil, fmt.Errorf("upsert rating: %w", err)
	}
	return rating, nil
}

// Summary aggregates a material's ratings. World-readable.
func (s *RatingService) Summary(ctx context.Context, materialID uuid.UUID) (*model.RatingSummary, error) {
	return s.ratingRepo.Summary(ctx, materialID)
}

// Delete removes a rating. Own-or-any against the rating's author.
func (s *RatingService) Delete(ctx context.Context, actor *model.User, id int) error {
	rating, err := s.ratingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrRatingNotFound
		}
		return fmt.Errorf("get rating: %w", err)
	}

	if err := s.perms.Authorize(actor, authz.ActionDeleteRating, rating.OwnerID); err != nil {
		return err
	}

	return s.ratingRepo.Delete(ctx, id)
}
