package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCapability(t *testing.T) {
	c, err := ParseCapability("materials:moderate")
	require.NoError(t, err)
	assert.Equal(t, CapabilityMaterialsModerate, c)

	_, err = ParseCapability("materials:moderate_everything")
	require.Error(t, err)

	// Lookup is exact, never case-insensitive.
	_, err = ParseCapability("Materials:Read")
	require.Error(t, err)
}

func TestArchetypeCapabilities(t *testing.T) {
	admin := ArchetypeCapabilities(RoleAdministrator)
	assert.Len(t, admin, len(AllCapabilities))

	teacher := ArchetypeCapabilities(RoleTeacher)
	assert.Contains(t, teacher, CapabilityCoursesCreate)
	assert.Contains(t, teacher, CapabilityMaterialsModerate)
	assert.NotContains(t, teacher, CapabilityMaterialsDeleteAny)

	student := ArchetypeCapabilities(RoleStudent)
	assert.Contains(t, student, CapabilityMaterialsUpload)
	assert.NotContains(t, student, CapabilityCoursesCreate)
	assert.NotContains(t, student, CapabilityMaterialsModerate)

	assert.Nil(t, ArchetypeCapabilities("principal"))
}

func TestEffectiveCapabilitiesUnion(t *testing.T) {
	user := &User{
		ID: 1,
		Roles: []RoleWithCapabilities{
			{
				Role:         &Role{ID: 1, Name: RoleTeacher},
				Capabilities: []Capability{CapabilityCoursesCreate, CapabilityTagsCreate},
			},
			{
				Role:         &Role{ID: 2, Name: "curator"},
				Capabilities: []Capability{CapabilityTagsCreate, CapabilityTagsDeleteAny},
			},
		},
	}

	caps := user.EffectiveCapabilities()
	assert.Contains(t, caps, CapabilityMaterialsRead)
	assert.Contains(t, caps, CapabilityCoursesCreate)
	assert.Contains(t, caps, CapabilityTagsDeleteAny)

	// Duplicates across roles collapse.
	count := 0
	for _, c := range caps {
		if c == CapabilityTagsCreate {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestEffectiveCapabilitiesZeroRoles(t *testing.T) {
	user := &User{ID: 2}
	assert.Equal(t, []Capability{CapabilityMaterialsRead}, user.EffectiveCapabilities())

	var nilUser *User
	assert.Equal(t, []Capability{CapabilityMaterialsRead}, nilUser.EffectiveCapabilities())
}
