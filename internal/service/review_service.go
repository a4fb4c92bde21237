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

// ErrReviewNotFound is returned when a review id resolves to nothing.
var ErrReviewNotFound = errors.New("review not found")

// ReviewService handles material reviews.
type ReviewService struct {
	reviewRepo *repository.ReviewRepository
	materials  materialStore
	perms      *authz.PermissionService
	log        zerolog.Logger
}

// NewReviewService creates a new ReviewService.
func NewReviewService(reviewRepo *repository.ReviewRepository, materials materialStore, perms *authz.PermissionService, log zerolog.Logger) *ReviewService {
	return &ReviewService{
		reviewRepo: reviewRepo,
		materials:  materials,
		perms:      perms,
		log:        log.With().Str("component", "review_service").Logger(),
	}
}

// Create adds a review on an approved material.
func (s *ReviewService) Create(ctx context.Context, actor *model.User, materialID uuid.UUID, body string) (*model.Review, error) {
	if err := s.perms.Authorize(actor, authz.ActionCreateReview, 0); err != nil {
		return nil, err
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

	review := &model.Review{
		MaterialID: materialID,
		OwnerID:    actor.ID,
		Body:       body,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}
	return review, nil
}

// ListByMaterial retrieves a material's reviews. World-readable.
func (s *ReviewService) ListByMaterial(ctx context.Context, materialID uuid.UUID) ([]model.Review, error) {
	reviews, err := s.reviewRepo.ListByMaterial(ctx, materialID)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []model.Review{}
	}
	return reviews, nil
}

// Delete removes a review. Own-or-any against the review's author.
func (s *ReviewService) Delete(ctx context.Context, actor *model.User, id int) error {
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("get review: %w", err)
	}

	if err := s.perms.Authorize(actor, authz.ActionDeleteReview, review.OwnerID); err != nil {
		return err
	}

	return s.reviewRepo.Delete(ctx, id)
}
