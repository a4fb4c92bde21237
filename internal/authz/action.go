package authz

import "github.com/materiku/materiku-backend/internal/model"

// Shape declares how an action relates capability checks to resource
// ownership. Every action in the system fits exactly one of three shapes;
// collapsing them into a single generic rule would silently turn strict-owner
// actions into overridable ones, so the shape is declared per action.
type Shape int

const (
	// ShapeCapabilityOnly actions have no ownership concept. Holding the
	// capability is sufficient (e.g. creating a course).
	ShapeCapabilityOnly Shape = iota

	// ShapeOwnOrAny actions are granted when the actor holds the "own" variant
	// and owns the resource, or holds the "any" variant regardless of owner.
	ShapeOwnOrAny

	// ShapeStrictOwner actions require both the capability and an identity
	// match with the resource owner. No "any" override exists, not even for
	// administrators (e.g. changing a password).
	ShapeStrictOwner
)

// Action describes a single authorizable operation: its shape and the
// capabilities it consults. Capability is used by ShapeCapabilityOnly and
// ShapeStrictOwner; OwnCapability/AnyCapability by ShapeOwnOrAny.
type Action struct {
	Name          string
	Shape         Shape
	Capability    model.Capability
	OwnCapability model.Capability
	AnyCapability model.Capability
}

// The closed set of actions. Handlers and services authorize against these
// descriptors only; no ad-hoc capability/ownership compositions at call sites.
var (
	ActionCreateCourse = Action{
		Name:       "course.create",
		Shape:      ShapeCapabilityOnly,
		Capability: model.CapabilityCoursesCreate,
	}
	ActionUpdateCourse = Action{
		Name:          "course.update",
		Shape:         ShapeOwnOrAny,
		OwnCapability: model.CapabilityCoursesUpdateOwn,
		AnyCapability: model.CapabilityCoursesUpdateAny,
	}
	ActionDeleteCourse = Action{
		Name:          "course.delete",
		Shape:         ShapeOwnOrAny,
		OwnCapability: model.CapabilityCoursesDeleteOwn,
		AnyCapability: model.CapabilityCoursesDeleteAny,
	}

	ActionUploadMaterial = Action{
		Name:       "material.upload",
		Shape:      ShapeCapabilityOnly,
		Capability: model.CapabilityMaterialsUpload,
	}
	ActionReadMaterials = Action{
		Name:       "material.read",
		Shape:      ShapeCapabilityOnly,
		Capability: model.CapabilityMaterialsRead,
	}
	ActionUpdateMaterial = Action{
		Name:          "material.update",
		Shape:         ShapeOwnOrAny,
		OwnCapability: model.CapabilityMaterialsUpdateOwn,
		AnyCapability: model.CapabilityMaterialsUpdateAny,
	}
	ActionDeleteMaterial = Action{
		Name:          "material.delete",
		Shape:         ShapeOwnOrAny,
		OwnCapability: model.CapabilityMaterialsDeleteOwn,
		AnyCapability: model.CapabilityMaterialsDeleteAny,
	}

	// Moderation is owner-scoped against the COURSE owner, not the uploader.
	// Administrators holding materials:moderate_any may decide for any course.
	ActionModerateMaterial = Action{
		Name:          "material.moderate",
		Shape:         ShapeOwnOrAny,
		OwnCapability: model.CapabilityMaterialsModerate,
		AnyCapability: model.CapabilityMaterialsModerateAny,
	}

	ActionCreateRating = Action{
		Name:       "rating.create",
		Shape:      ShapeCapabilityOnly,
		Capability: model.CapabilityRatingsCreate,
	}
	ActionDeleteRating = Action{
		Name:          "rating.delete",
		Shape:         ShapeOwnOrAny,
		OwnCapability: model.CapabilityRatingsDeleteOwn,
		AnyCapability: model.CapabilityRatingsDeleteAny,
	}

	ActionCreateReview = Action{
		Name:       "review.create",
		Shape:      ShapeCapabilityOnly,
		Capability: model.CapabilityReviewsCreate,
	}
	ActionDeleteReview = Action{
		Name:          "review.delete",
		Shape:         ShapeOwnOrAny,
		OwnCapability: model.CapabilityReviewsDeleteOwn,
		AnyCapability: model.CapabilityReviewsDeleteAny,
	}

	ActionCreateTag = Action{
		Name:       "tag.create",
		Shape:      ShapeCapabilityOnly,
		Capability: model.CapabilityTagsCreate,
	}
	// Tagging a material modifies the material, so it reuses the material
	// update shape at call sites. Deleting a tag has no "own" variant.
	ActionDeleteTag = Action{
		Name:          "tag.delete",
		Shape:         ShapeOwnOrAny,
		OwnCapability: "",
		AnyCapability: model.CapabilityTagsDeleteAny,
	}

	ActionReadRoles = Action{
		Name:       "role.read",
		Shape:      ShapeCapabilityOnly,
		Capability: model.CapabilityRolesRead,
	}
	ActionWriteRoles = Action{
		Name:       "role.write",
		Shape:      ShapeCapabilityOnly,
		Capability: model.CapabilityRolesWrite,
	}
	ActionReadUsers = Action{
		Name:       "user.read",
		Shape:      ShapeCapabilityOnly,
		Capability: model.CapabilityUsersRead,
	}
	ActionManageUserRoles = Action{
		Name:       "user.manage_roles",
		Shape:      ShapeCapabilityOnly,
		Capability: model.CapabilityUsersManageRoles,
	}

	// Strict owner: only the account holder, never an administrator.
	ActionChangePassword = Action{
		Name:       "account.change_password",
		Shape:      ShapeStrictOwner,
		Capability: model.CapabilityAccountChangePassword,
	}
)
