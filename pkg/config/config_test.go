package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	in := &Config{
		CatalogDir:       "/var/lib/llmd/catalog",
		StrictTimestamps: true,
		VerifyChecksums:  true,
		ExtraRoles:       []string{"narrator"},
	}
	require.NoError(t, SaveConfig(in, path))
	assert.True(t, ConfigExists(path))

	out, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestLoadConfigMissing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestRoleFunc(t *testing.T) {
	cfg := DefaultConfig()
	assert.Nil(t, cfg.RoleFunc(), "no extra roles, closed set only")

	cfg.ExtraRoles = []string{"narrator"}
	accept := cfg.RoleFunc()
	require.NotNil(t, accept)
	assert.True(t, accept("narrator"))
	assert.False(t, accept("stagehand"))
}
