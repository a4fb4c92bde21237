package authz

import (
	"testing"

	"github.com/materiku/materiku-backend/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService() *PermissionService {
	return NewPermissionService(NopObserver{}, zerolog.Nop())
}

func userWithCapabilities(id int, roleName string, caps ...model.Capability) *model.User {
	return &model.User{
		ID: id,
		Roles: []model.RoleWithCapabilities{
			{
				Role:         &model.Role{ID: 1, Name: roleName},
				Capabilities: caps,
			},
		},
	}
}

func TestHasCapabilityZeroRoles(t *testing.T) {
	svc := newService()
	user := &model.User{ID: 7}

	assert.True(t, svc.HasCapability(user, model.CapabilityMaterialsRead))

	for _, c := range model.AllCapabilities {
		if c == model.CapabilityMaterialsRead {
			continue
		}
		assert.False(t, svc.HasCapability(user, c), "capability %s", c)
	}
}

func TestHasCapabilityAnonymous(t *testing.T) {
	svc := newService()

	// Anonymous browsing is intended: the universal read capability holds
	// even without an actor. Everything else is denied.
	assert.True(t, svc.HasCapability(nil, model.CapabilityMaterialsRead))
	assert.False(t, svc.HasCapability(nil, model.CapabilityMaterialsUpload))
	assert.False(t, svc.HasCapability(nil, model.CapabilityMaterialsDeleteAny))
}

func TestHasCapabilityUnknownCodeDenied(t *testing.T) {
	svc := newService()
	user := userWithCapabilities(1, "teacher", model.CapabilityMaterialsUpload)

	assert.False(t, svc.HasCapability(user, model.Capability("materials:frobnicate")))
}

func TestHasCapabilityUnionAcrossRoles(t *testing.T) {
	svc := newService()
	user := &model.User{
		ID: 3,
		Roles: []model.RoleWithCapabilities{
			{
				Role:         &model.Role{ID: 1, Name: "teacher"},
				Capabilities: []model.Capability{model.CapabilityCoursesCreate},
			},
			{
				Role:         &model.Role{ID: 2, Name: "librarian"},
				Capabilities: []model.Capability{model.CapabilityTagsCreate},
			},
		},
	}

	assert.True(t, svc.HasCapability(user, model.CapabilityCoursesCreate))
	assert.True(t, svc.HasCapability(user, model.CapabilityTagsCreate))
	assert.False(t, svc.HasCapability(user, model.CapabilityRolesWrite))
}

func TestHasCapabilityIsIdempotent(t *testing.T) {
	svc := newService()
	user := userWithCapabilities(5, "teacher", model.CapabilityCoursesCreate)

	first := svc.HasCapability(user, model.CapabilityCoursesCreate)
	second := svc.HasCapability(user, model.CapabilityCoursesCreate)
	assert.Equal(t, first, second)
	assert.True(t, first)
}

func TestAuthorizeCapabilityOnly(t *testing.T) {
	svc := newService()
	teacher := userWithCapabilities(10, "teacher", model.CapabilityCoursesCreate)
	student := userWithCapabilities(11, "student", model.CapabilityMaterialsUpload)

	require.NoError(t, svc.Authorize(teacher, ActionCreateCourse, 0))

	err := svc.Authorize(student, ActionCreateCourse, 0)
	require.Error(t, err)
	assert.True(t, IsForbidden(err))

	var fe *ForbiddenError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 11, fe.ActorID)
	assert.Equal(t, model.CapabilityCoursesCreate, fe.Capability)
}

func TestAuthorizeOwnScopedRequiresBothConditions(t *testing.T) {
	svc := newService()

	// Content-owner archetype: CREATE + UPDATE_OWN + universal read.
	owner := userWithCapabilities(20, "teacher",
		model.CapabilityCoursesCreate,
		model.CapabilityMaterialsUpdateOwn,
	)

	// Holds the capability and owns the resource.
	require.NoError(t, svc.Authorize(owner, ActionUpdateMaterial, 20))

	// Holds the capability but does not own the resource.
	err := svc.Authorize(owner, ActionUpdateMaterial, 99)
	assert.True(t, IsForbidden(err))

	// Owns the resource but lacks the capability.
	bare := &model.User{ID: 20}
	err = svc.Authorize(bare, ActionUpdateMaterial, 20)
	assert.True(t, IsForbidden(err))
}

func TestAuthorizeAnyOverrideIgnoresOwnership(t *testing.T) {
	svc := newService()
	admin := userWithCapabilities(1, "administrator", model.CapabilityMaterialsDeleteAny)

	// Resource owned by someone else entirely.
	require.NoError(t, svc.Authorize(admin, ActionDeleteMaterial, 42))
	require.NoError(t, svc.Authorize(admin, ActionDeleteMaterial, 1))
	require.NoError(t, svc.Authorize(admin, ActionDeleteMaterial, 0))
}

func TestAuthorizeAnonymousDenied(t *testing.T) {
	svc := newService()

	assert.True(t, IsForbidden(svc.Authorize(nil, ActionUploadMaterial, 0)))
	assert.True(t, IsForbidden(svc.Authorize(nil, ActionUpdateMaterial, 0)))
	assert.True(t, IsForbidden(svc.Authorize(nil, ActionChangePassword, 0)))

	// The universal capability still authorizes anonymous reads.
	require.NoError(t, svc.Authorize(nil, ActionReadMaterials, 0))
}

func TestAuthorizeModerationScopedToCourseOwner(t *testing.T) {
	svc := newService()
	courseOwner := userWithCapabilities(30, "teacher", model.CapabilityMaterialsModerate)
	otherTeacher := userWithCapabilities(31, "teacher", model.CapabilityMaterialsModerate)
	admin := userWithCapabilities(2, "administrator", model.CapabilityMaterialsModerateAny)

	// ownerID here is the course owner, not the uploader.
	require.NoError(t, svc.Authorize(courseOwner, ActionModerateMaterial, 30))
	assert.True(t, IsForbidden(svc.Authorize(otherTeacher, ActionModerateMaterial, 30)))
	require.NoError(t, svc.Authorize(admin, ActionModerateMaterial, 30))
}

func TestAuthorizeStrictOwnerRejectsAdminOverride(t *testing.T) {
	svc := newService()

	// An administrator holding the full catalog still cannot change someone
	// else's password: strict-owner actions accept only the identity match.
	admin := userWithCapabilities(1, "administrator", model.AllCapabilities...)
	require.NoError(t, svc.Authorize(admin, ActionChangePassword, 1))
	assert.True(t, IsForbidden(svc.Authorize(admin, ActionChangePassword, 50)))
}

func TestAuthorizeDeleteTagHasNoOwnEscape(t *testing.T) {
	svc := newService()

	// Owning a tag does not allow deleting it; only the any-variant does.
	creator := userWithCapabilities(40, "teacher", model.CapabilityTagsCreate)
	assert.True(t, IsForbidden(svc.Authorize(creator, ActionDeleteTag, 40)))

	admin := userWithCapabilities(1, "administrator", model.CapabilityTagsDeleteAny)
	require.NoError(t, svc.Authorize(admin, ActionDeleteTag, 40))
}

func TestAuthorizeReportsDecisionsToObserver(t *testing.T) {
	var seen []Decision
	obs := observerFunc(func(d Decision) { seen = append(seen, d) })
	svc := NewPermissionService(obs, zerolog.Nop())

	user := userWithCapabilities(9, "teacher", model.CapabilityCoursesCreate)
	require.NoError(t, svc.Authorize(user, ActionCreateCourse, 0))
	_ = svc.Authorize(user, ActionDeleteMaterial, 77)

	require.Len(t, seen, 2)
	assert.True(t, seen[0].Allowed)
	assert.Equal(t, "course.create", seen[0].Action)
	assert.False(t, seen[1].Allowed)
	assert.Equal(t, 9, seen[1].ActorID)
	assert.Equal(t, 77, seen[1].OwnerID)
}

type observerFunc func(Decision)

func (f observerFunc) Observe(d Decision) { f(d) }
