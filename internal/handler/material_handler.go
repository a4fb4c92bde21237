package handler

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/materiku/materiku-backend/internal/config"
	"github.com/materiku/materiku-backend/internal/middleware"
	"github.com/materiku/materiku-backend/internal/model"
	"github.com/materiku/materiku-backend/internal/response"
	"github.com/materiku/materiku-backend/internal/service"
	"github.com/materiku/materiku-backend/internal/validator"
	"github.com/rs/zerolog"
)

type MaterialHandler struct {
	materialService *service.MaterialService
	mediaService    *service.MediaService
	cfg             *config.Config
	log             zerolog.Logger
}

func NewMaterialHandler(materialService *service.MaterialService, mediaService *service.MediaService, cfg *config.Config, log zerolog.Logger) *MaterialHandler {
	return &MaterialHandler{
		materialService: materialService,
		mediaService:    mediaService,
		cfg:             cfg,
		log:             log.With().Str("component", "material_handler").Logger(),
	}
}

// Upload godoc
// POST /api/v1/courses/:course_id/materials (multipart/form-data)
// Fields: file, title, description.
func (h *MaterialHandler) Upload(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	title := strings.TrimSpace(c.PostForm("title"))
	if len(title) < 3 || len(title) > 200 {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"title": "title must be between 3 and 200 characters"})
		return
	}
	description := c.PostForm("description")

	header, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}

	file, err := header.Open()
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	path, err := h.mediaService.SaveUpload(file, header)
	if err != nil {
		failFromError(c, err)
		return
	}

	material, err := h.materialService.Submit(c.Request.Context(), middleware.GetActor(c), service.SubmitMaterialInput{
		CourseID:    courseID,
		Title:       title,
		Description: description,
		FilePath:    path,
		FileSize:    header.Size,
		MimeType:    header.Header.Get("Content-Type"),
	})
	if err != nil {
		// The submission failed after the file hit disk; drop the orphan.
		if rmErr := h.mediaService.Remove(path); rmErr != nil {
			h.log.Warn().Err(rmErr).Str("path", path).Msg("Failed to remove orphaned upload")
		}
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"material": material})
}

// ListApproved godoc
// GET /api/v1/courses/:course_id/materials
func (h *MaterialHandler) ListApproved(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	materials, err := h.materialService.ListApproved(c.Request.Context(), courseID)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"materials": materials})
}

// ListPending godoc
// GET /api/v1/courses/:course_id/materials/pending
func (h *MaterialHandler) ListPending(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	materials, err := h.materialService.ListPending(c.Request.Context(), middleware.GetActor(c), courseID)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"materials": materials})
}

// ListOwn godoc
// GET /api/v1/me/materials
func (h *MaterialHandler) ListOwn(c *gin.Context) {
	materials, err := h.materialService.ListOwn(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"materials": materials})
}

// Get godoc
// GET /api/v1/materials/:material_id
func (h *MaterialHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("material_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	material, err := h.materialService.Get(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"material": material})
}

// Update godoc
// PUT /api/v1/materials/:material_id
func (h *MaterialHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("material_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateMaterialRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	material, err := h.materialService.UpdateMetadata(c.Request.Context(), middleware.GetActor(c), id, req.Title, req.Description)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"material": material})
}

// Delete godoc
// DELETE /api/v1/materials/:material_id
func (h *MaterialHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("material_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.materialService.Delete(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "material deleted"})
}

// Approve godoc
// POST /api/v1/materials/:material_id/approve
func (h *MaterialHandler) Approve(c *gin.Context) {
	h.decide(c, h.materialService.Approve)
}

// Reject godoc
// POST /api/v1/materials/:material_id/reject
func (h *MaterialHandler) Reject(c *gin.Context) {
	h.decide(c, h.materialService.Reject)
}

type decideFn func(ctx context.Context, actor *model.User, materialID uuid.UUID) (*model.Material, error)

func (h *MaterialHandler) decide(c *gin.Context, fn decideFn) {
	id, err := uuid.Parse(c.Param("material_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	material, err := fn(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"material": material})
}

// Download godoc
// GET /api/v1/materials/:material_id/download
// Streams the file and queues the download for the stats worker.
func (h *MaterialHandler) Download(c *gin.Context) {
	id, err := uuid.Parse(c.Param("material_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	material, err := h.materialService.RegisterDownload(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		failFromError(c, err)
		return
	}

	filename := material.Title + filepath.Ext(material.FilePath)
	c.FileAttachment(filepath.Join(h.cfg.UploadDir, filepath.Base(material.FilePath)), filename)
}
