package model

import "time"

// Well-known archetype role names, created once by the seed step.
const (
	RoleAdministrator = "administrator"
	RoleTeacher       = "teacher"
	RoleStudent       = "student"
)

// Role represents a named bundle of capabilities.
type Role struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// RoleWithCapabilities extends Role to include its capability set.
type RoleWithCapabilities struct {
	*Role
	Capabilities []Capability `json:"capabilities"`
}

// Grants reports whether the role includes the given capability.
func (r *RoleWithCapabilities) Grants(c Capability) bool {
	for _, rc := range r.Capabilities {
		if rc == c {
			return true
		}
	}
	return false
}

// CreateRoleRequest is the payload for creating a role.
type CreateRoleRequest struct {
	Name         string   `json:"name" binding:"required,min=2,max=50"`
	Capabilities []string `json:"capabilities"`
}

// UpdateRoleRequest is the payload for updating a role.
type UpdateRoleRequest struct {
	Name         string   `json:"name" binding:"required,min=2,max=50"`
	Capabilities []string `json:"capabilities"`
}

// ArchetypeCapabilities returns the initial capability set for the three
// seeded archetype roles. Unknown role names return nil.
func ArchetypeCapabilities(roleName string) []Capability {
	switch roleName {
	case RoleAdministrator:
		// Administrators hold the full catalog, including every "any" override.
		caps := make([]Capability, len(AllCapabilities))
		copy(caps, AllCapabilities)
		return caps
	case RoleTeacher:
		return []Capability{
			CapabilityCoursesCreate,
			CapabilityCoursesUpdateOwn,
			CapabilityCoursesDeleteOwn,
			CapabilityMaterialsUpload,
			CapabilityMaterialsUpdateOwn,
			CapabilityMaterialsDeleteOwn,
			CapabilityMaterialsModerate,
			CapabilityRatingsCreate,
			CapabilityRatingsDeleteOwn,
			CapabilityReviewsCreate,
			CapabilityReviewsDeleteOwn,
			CapabilityTagsCreate,
			CapabilityAccountChangePassword,
		}
	case RoleStudent:
		return []Capability{
			CapabilityMaterialsUpload,
			CapabilityMaterialsUpdateOwn,
			CapabilityMaterialsDeleteOwn,
			CapabilityRatingsCreate,
			CapabilityRatingsDeleteOwn,
			CapabilityReviewsCreate,
			CapabilityReviewsDeleteOwn,
			CapabilityAccountChangePassword,
		}
	}
	return nil
}
