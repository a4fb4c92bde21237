package service

import (
	"testing"

	"github.com/materiku/materiku-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCapabilitiesAcceptsKnownCodes(t *testing.T) {
	caps, err := parseCapabilities([]string{"materials:upload", "courses:create"})
	require.NoError(t, err)
	assert.Equal(t, []model.Capability{
		model.CapabilityMaterialsUpload,
		model.CapabilityCoursesCreate,
	}, caps)
}

func TestParseCapabilitiesRejectsUnknownCode(t *testing.T) {
	_, err := parseCapabilities([]string{"materials:upload", "materials:launch_rockets"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownCapability)
	assert.Contains(t, err.Error(), "materials:launch_rockets")
}

func TestParseCapabilitiesEmptyInput(t *testing.T) {
	caps, err := parseCapabilities(nil)
	require.NoError(t, err)
	assert.Empty(t, caps)
}
