package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/materiku/materiku-backend/internal/authz"
	"github.com/materiku/materiku-backend/internal/response"
	"github.com/materiku/materiku-backend/internal/service"
)

// failFromError maps service-layer errors onto the response envelope. Every
// handler funnels its non-validation errors through here so a given sentinel
// always renders the same status and code.
func failFromError(c *gin.Context, err error) {
	switch {
	case authz.IsForbidden(err):
		response.Fail(c, http.StatusForbidden, response.ErrPermissionDenied)

	case errors.Is(err, service.ErrMaterialNotFound),
		errors.Is(err, service.ErrCourseNotFound),
		errors.Is(err, service.ErrTagNotFound),
		errors.Is(err, service.ErrRatingNotFound),
		errors.Is(err, service.ErrReviewNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrRoleNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)

	// Pending and rejected materials read as absent to outsiders.
	case errors.Is(err, service.ErrMaterialNotVisible):
		response.Fail(c, http.StatusNotFound, response.ErrMaterialNotVisible)

	case errors.Is(err, service.ErrAlreadyDecided):
		response.Fail(c, http.StatusConflict, response.ErrMaterialDecided)

	case errors.Is(err, service.ErrInvalidStars):
		response.Fail(c, http.StatusBadRequest, response.ErrValidation)

	case errors.Is(err, service.ErrEmailTaken):
		response.Fail(c, http.StatusConflict, response.ErrConflict)

	case errors.Is(err, service.ErrInvalidCredentials):
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)

	case errors.Is(err, service.ErrRoleProtected):
		response.Fail(c, http.StatusForbidden, response.ErrActionForbidden)

	case errors.Is(err, service.ErrUnknownCapability):
		response.Fail(c, http.StatusBadRequest, response.ErrUnknownCapability)

	case errors.Is(err, service.ErrRoleNameRequired):
		response.Fail(c, http.StatusBadRequest, response.ErrValidation)

	case errors.Is(err, service.ErrUnsupportedFileType):
		response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)

	case errors.Is(err, service.ErrFileTooLarge):
		response.Fail(c, http.StatusBadRequest, response.ErrFileTooLarge)

	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
