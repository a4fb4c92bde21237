package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/materiku/materiku-backend/internal/model"
	"github.com/materiku/materiku-backend/internal/response"
	"github.com/materiku/materiku-backend/internal/service"
	"github.com/materiku/materiku-backend/internal/validator"
)

// AdminRoleHandler manages the role catalog. Routes are gated by the
// roles:read / roles:write capabilities in the router.
type AdminRoleHandler struct {
	roleService *service.RoleService
}

func NewAdminRoleHandler(roleService *service.RoleService) *AdminRoleHandler {
	return &AdminRoleHandler{roleService: roleService}
}

// List godoc
// GET /api/v1/admin/roles
func (h *AdminRoleHandler) List(c *gin.Context) {
	roles, err := h.roleService.ListRoles(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if roles == nil {
		roles = []model.RoleWithCapabilities{}
	}
	response.Success(c, http.StatusOK, gin.H{"roles": roles})
}

// Get godoc
// GET /api/v1/admin/roles/:id
func (h *AdminRoleHandler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	role, err := h.roleService.GetRoleByID(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"role": role})
}

// Create godoc
// POST /api/v1/admin/roles
func (h *AdminRoleHandler) Create(c *gin.Context) {
	var req model.CreateRoleRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	role, err := h.roleService.CreateRole(c.Request.Context(), req.Name, req.Capabilities)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"role": role})
}

// Update godoc
// PUT /api/v1/admin/roles/:id
func (h *AdminRoleHandler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateRoleRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	role, err := h.roleService.UpdateRole(c.Request.Context(), id, req.Name, req.Capabilities)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"role": role})
}

// Delete godoc
// DELETE /api/v1/admin/roles/:id
func (h *AdminRoleHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.roleService.DeleteRole(c.Request.Context(), id); err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "role deleted"})
}

// ListCapabilities godoc
// GET /api/v1/admin/capabilities
// Returns the closed catalog so the role editor can offer a picker.
func (h *AdminRoleHandler) ListCapabilities(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"capabilities": h.roleService.GetAllCapabilities()})
}
