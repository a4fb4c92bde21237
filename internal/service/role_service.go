package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/materiku/materiku-backend/internal/model"
	"github.com/materiku/materiku-backend/internal/repository"
)

// Role administration errors.
var (
	ErrRoleProtected     = errors.New("cannot modify a seeded archetype role")
	ErrUnknownCapability = errors.New("unknown capability code")
	ErrRoleNameRequired  = errors.New("role name cannot be empty")
)

// RoleService handles role administration. Route middleware gates these
// operations behind roles:read / roles:write.
type RoleService struct {
	roleRepo *repository.RoleRepository
}

// NewRoleService creates a new RoleService.
func NewRoleService(roleRepo *repository.RoleRepository) *RoleService {
	return &RoleService{roleRepo: roleRepo}
}

// ListRoles retrieves all roles with their capabilities.
func (s *RoleService) ListRoles(ctx context.Context) ([]model.RoleWithCapabilities, error) {
	return s.roleRepo.ListRolesWithCapabilities(ctx)
}

// GetRoleByID retrieves a specific role and its capabilities.
func (s *RoleService) GetRoleByID(ctx context.Context, id int) (*model.RoleWithCapabilities, error) {
	return s.roleRepo.GetRoleByID(ctx, id)
}

// parseCapabilities validates raw codes against the closed catalog. A single
// unknown code rejects the whole request; misconfigured roles must never be
// created with silently-dropped entries.
func parseCapabilities(codes []string) ([]model.Capability, error) {
	caps := make([]model.Capability, 0, len(codes))
	for _, code := range codes {
		c, err := model.ParseCapability(code)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCapability, code)
		}
		caps = append(caps, c)
	}
	return caps, nil
}

// CreateRole creates a new role and assigns its capabilities.
func (s *RoleService) CreateRole(ctx context.Context, name string, codes []string) (*model.RoleWithCapabilities, error) {
	if name == "" {
		return nil, ErrRoleNameRequired
	}

	caps, err := parseCapabilities(codes)
	if err != nil {
		return nil, err
	}

	id, err := s.roleRepo.CreateRole(ctx, name)
	if err != nil {
		return nil, err
	}

	if len(caps) > 0 {
		if err := s.roleRepo.AssignCapabilitiesToRole(ctx, id, caps); err != nil {
			// Best-effort cleanup so a failed assignment does not leave an
			// empty role behind.
			_ = s.roleRepo.DeleteRole(ctx, id)
			return nil, err
		}
	}

	return s.GetRoleByID(ctx, id)
}

// UpdateRole updates a role's name and replaces its capability set. The
// administrator archetype is immutable; teacher/student archetypes may have
// capabilities edited but keep their names.
func (s *RoleService) UpdateRole(ctx context.Context, id int, name string, codes []string) (*model.RoleWithCapabilities, error) {
	if name == "" {
		return nil, ErrRoleNameRequired
	}

	existing, err := s.roleRepo.GetRoleByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Name == model.RoleAdministrator {
		return nil, ErrRoleProtected
	}
	isArchetype := existing.Name == model.RoleTeacher || existing.Name == model.RoleStudent
	if isArchetype && name != existing.Name {
		return nil, ErrRoleProtected
	}

	caps, err := parseCapabilities(codes)
	if err != nil {
		return nil, err
	}

	if err := s.roleRepo.UpdateRole(ctx, id, name); err != nil {
		return nil, err
	}

	if err := s.roleRepo.DeleteAllCapabilitiesFromRole(ctx, id); err != nil {
		return nil, err
	}
	if len(caps) > 0 {
		if err := s.roleRepo.AssignCapabilitiesToRole(ctx, id, caps); err != nil {
			return nil, err
		}
	}

	return s.GetRoleByID(ctx, id)
}

// DeleteRole deletes a role. Archetype roles cannot be deleted.
func (s *RoleService) DeleteRole(ctx context.Context, id int) error {
	existing, err := s.roleRepo.GetRoleByID(ctx, id)
	if err != nil {
		return err
	}
	switch existing.Name {
	case model.RoleAdministrator, model.RoleTeacher, model.RoleStudent:
		return ErrRoleProtected
	}
	// Users still holding this role block deletion via FK constraints.
	return s.roleRepo.DeleteRole(ctx, id)
}

// GetAllCapabilities retrieves the closed catalog of capability codes.
func (s *RoleService) GetAllCapabilities() []string {
	codes := make([]string, len(model.AllCapabilities))
	for i, c := range model.AllCapabilities {
		codes[i] = string(c)
	}
	return codes
}
