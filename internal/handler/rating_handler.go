package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/materiku/materiku-backend/internal/middleware"
	"github.com/materiku/materiku-backend/internal/model"
	"github.com/materiku/materiku-backend/internal/response"
	"github.com/materiku/materiku-backend/internal/service"
	"github.com/materiku/materiku-backend/internal/validator"
)

type RatingHandler struct {
	ratingService *service.RatingService
}

func NewRatingHandler(ratingService *service.RatingService) *RatingHandler {
	return &RatingHandler{ratingService: ratingService}
}

// Rate godoc
// PUT /api/v1/materials/:material_id/rating
// Idempotent per user; re-rating overwrites the previous score.
func (h *RatingHandler) Rate(c *gin.Context) {
	materialID, err := uuid.Parse(c.Param("material_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.CreateRatingRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	rating, err := h.ratingService.Rate(c.Request.Context(), middleware.GetActor(c), materialID, req.Stars)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"rating": rating})
}

// Summary godoc
// GET /api/v1/materials/:material_id/rating
func (h *RatingHandler) Summary(c *gin.Context) {
	materialID, err := uuid.Parse(c.Param("material_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	summary, err := h.ratingService.Summary(c.Request.Context(), materialID)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"summary": summary})
}

// Delete godoc
// DELETE /api/v1/ratings/:id
func (h *RatingHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.ratingService.Delete(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "rating deleted"})
}
