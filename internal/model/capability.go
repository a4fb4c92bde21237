package model

import "fmt"

// Capability represents a string code for a specific system action.
type Capability string

const (
	// CapabilityMaterialsRead allows browsing and downloading approved materials.
	// This capability is universal: every actor holds it, with or without roles.
	CapabilityMaterialsRead Capability = "materials:read"

	// CapabilityMaterialsUpload allows submitting materials into a course.
	CapabilityMaterialsUpload Capability = "materials:upload"

	// CapabilityMaterialsUpdateOwn allows updating materials the actor uploaded.
	CapabilityMaterialsUpdateOwn Capability = "materials:update_own"

	// CapabilityMaterialsUpdateAny allows updating any material regardless of uploader.
	CapabilityMaterialsUpdateAny Capability = "materials:update_any"

	// CapabilityMaterialsDeleteOwn allows deleting materials the actor uploaded.
	CapabilityMaterialsDeleteOwn Capability = "materials:delete_own"

	// CapabilityMaterialsDeleteAny allows deleting any material regardless of uploader.
	CapabilityMaterialsDeleteAny Capability = "materials:delete_any"

	// CapabilityMaterialsModerate allows approving or rejecting materials submitted
	// into a course the actor owns.
	CapabilityMaterialsModerate Capability = "materials:moderate"

	// CapabilityMaterialsModerateAny allows approving or rejecting materials in any
	// course, regardless of course ownership.
	CapabilityMaterialsModerateAny Capability = "materials:moderate_any"

	// CapabilityCoursesCreate allows creating courses.
	CapabilityCoursesCreate Capability = "courses:create"

	// CapabilityCoursesUpdateOwn allows updating courses the actor owns.
	CapabilityCoursesUpdateOwn Capability = "courses:update_own"

	// CapabilityCoursesUpdateAny allows updating any course.
	CapabilityCoursesUpdateAny Capability = "courses:update_any"

	// CapabilityCoursesDeleteOwn allows deleting courses the actor owns.
	CapabilityCoursesDeleteOwn Capability = "courses:delete_own"

	// CapabilityCoursesDeleteAny allows deleting any course.
	CapabilityCoursesDeleteAny Capability = "courses:delete_any"

	// CapabilityRatingsCreate allows rating materials.
	CapabilityRatingsCreate Capability = "ratings:create"

	// CapabilityRatingsDeleteOwn allows deleting the actor's own ratings.
	CapabilityRatingsDeleteOwn Capability = "ratings:delete_own"

	// CapabilityRatingsDeleteAny allows deleting any rating.
	CapabilityRatingsDeleteAny Capability = "ratings:delete_any"

	// CapabilityReviewsCreate allows writing reviews on materials.
	CapabilityReviewsCreate Capability = "reviews:create"

	// CapabilityReviewsDeleteOwn allows deleting the actor's own reviews.
	CapabilityReviewsDeleteOwn Capability = "reviews:delete_own"

	// CapabilityReviewsDeleteAny allows deleting any review.
	CapabilityReviewsDeleteAny Capability = "reviews:delete_any"

	// CapabilityTagsCreate allows creating tags and tagging own materials.
	CapabilityTagsCreate Capability = "tags:create"

	// CapabilityTagsDeleteAny allows deleting tags. There is no "own" variant:
	// tags are shared vocabulary, only moderator-level actors remove them.
	CapabilityTagsDeleteAny Capability = "tags:delete_any"

	// CapabilityRolesRead allows viewing roles and capability assignments.
	CapabilityRolesRead Capability = "roles:read"

	// CapabilityRolesWrite allows creating, updating, and deleting roles.
	CapabilityRolesWrite Capability = "roles:write"

	// CapabilityUsersRead allows viewing user lists and details.
	CapabilityUsersRead Capability = "users:read"

	// CapabilityUsersManageRoles allows granting and revoking roles on users.
	CapabilityUsersManageRoles Capability = "users:manage_roles"

	// CapabilityAccountChangePassword allows changing a password. Only ever valid
	// for the actor's own account; no administrative override exists.
	CapabilityAccountChangePassword Capability = "account:change_password"
)

// AllCapabilities is a slice of all available capabilities.
var AllCapabilities = []Capability{
	CapabilityMaterialsRead,
	CapabilityMaterialsUpload,
	CapabilityMaterialsUpdateOwn,
	CapabilityMaterialsUpdateAny,
	CapabilityMaterialsDeleteOwn,
	CapabilityMaterialsDeleteAny,
	CapabilityMaterialsModerate,
	CapabilityMaterialsModerateAny,
	CapabilityCoursesCreate,
	CapabilityCoursesUpdateOwn,
	CapabilityCoursesUpdateAny,
	CapabilityCoursesDeleteOwn,
	CapabilityCoursesDeleteAny,
	CapabilityRatingsCreate,
	CapabilityRatingsDeleteOwn,
	CapabilityRatingsDeleteAny,
	CapabilityReviewsCreate,
	CapabilityReviewsDeleteOwn,
	CapabilityReviewsDeleteAny,
	CapabilityTagsCreate,
	CapabilityTagsDeleteAny,
	CapabilityRolesRead,
	CapabilityRolesWrite,
	CapabilityUsersRead,
	CapabilityUsersManageRoles,
	CapabilityAccountChangePassword,
}

var capabilityIndex = func() map[Capability]struct{} {
	idx := make(map[Capability]struct{}, len(AllCapabilities))
	for _, c := range AllCapabilities {
		idx[c] = struct{}{}
	}
	return idx
}()

// KnownCapability reports whether c belongs to the closed catalog.
func KnownCapability(c Capability) bool {
	_, ok := capabilityIndex[c]
	return ok
}

// ParseCapability converts a raw code into a Capability. Codes that do not
// match the closed catalog are rejected; callers must never treat an unknown
// code as a grantable capability.
func ParseCapability(code string) (Capability, error) {
	c := Capability(code)
	if !KnownCapability(c) {
		return "", fmt.Errorf("unknown capability code %q", code)
	}
	return c, nil
}
