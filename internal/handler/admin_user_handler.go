package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/materiku/materiku-backend/internal/middleware"
	"github.com/materiku/materiku-backend/internal/model"
	"github.com/materiku/materiku-backend/internal/response"
	"github.com/materiku/materiku-backend/internal/service"
	"github.com/materiku/materiku-backend/internal/validator"
)

// AdminUserHandler manages user accounts and role membership. Routes are
// gated by users:read / users:manage_roles in the router.
type AdminUserHandler struct {
	userService *service.UserService
}

func NewAdminUserHandler(userService *service.UserService) *AdminUserHandler {
	return &AdminUserHandler{userService: userService}
}

// List godoc
// GET /api/v1/admin/users?page=1&per_page=10
func (h *AdminUserHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	users, pagination, err := h.userService.List(c.Request.Context(), page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"users": users}, pagination)
}

// Get godoc
// GET /api/v1/admin/users/:id
func (h *AdminUserHandler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	user, err := h.userService.Get(c.Request.Context(), id)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// GrantRole godoc
// POST /api/v1/admin/users/:id/roles
func (h *AdminUserHandler) GrantRole(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.GrantRoleRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.userService.GrantRole(c.Request.Context(), middleware.GetActor(c), id, req.RoleID); err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "role granted"})
}

// RevokeRole godoc
// DELETE /api/v1/admin/users/:id/roles/:role_id
func (h *AdminUserHandler) RevokeRole(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	roleID, err := strconv.Atoi(c.Param("role_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.userService.RevokeRole(c.Request.Context(), middleware.GetActor(c), id, roleID); err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "role revoked"})
}
