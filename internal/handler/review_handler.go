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

type ReviewHandler struct {
	reviewService *service.ReviewService
}

func NewReviewHandler(reviewService *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// Create godoc
// POST /api/v1/materials/:material_id/reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	materialID, err := uuid.Parse(c.Param("material_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.CreateReviewRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	review, err := h.reviewService.Create(c.Request.Context(), middleware.GetActor(c), materialID, req.Body)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"review": review})
}

// List godoc
// GET /api/v1/materials/:material_id/reviews
func (h *ReviewHandler) List(c *gin.Context) {
	materialID, err := uuid.Parse(c.Param("material_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	reviews, err := h.reviewService.ListByMaterial(c.Request.Context(), materialID)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"reviews": reviews})
}

// Delete godoc
// DELETE /api/v1/reviews/:id
func (h *ReviewHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.reviewService.Delete(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "review deleted"})
}
