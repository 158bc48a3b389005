package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLifecycle(t *testing.T) {
	// registry state is process-wide, so the whole sequence runs in one
	// test to keep ordering deterministic
	assert.False(t, IsEnabled())
	assert.Nil(t, GetRegistry())

	InitRegistry()
	require.True(t, IsEnabled())
	reg := GetRegistry()
	require.NotNil(t, reg)

	// repeated init keeps the same registry
	InitRegistry()
	assert.Same(t, reg, GetRegistry())

	// the standard collectors are registered
	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
