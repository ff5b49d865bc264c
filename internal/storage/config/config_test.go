package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "release", cfg.DefaultBranch)
	assert.Equal(t, "rest", cfg.RegistryBackend)
	assert.Equal(t, "game", cfg.GameBinary)
	assert.Empty(t, cfg.PlayerName)
	assert.Empty(t, cfg.InstancesDir)
}

func TestLoadExisting(t *testing.T) {
	dir := t.TempDir()
	content := `player_name: Steve
default_branch: pre-release
registry_backend: graphql
version_cache_ttl: 5m
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "Steve", cfg.PlayerName)
	assert.Equal(t, "pre-release", cfg.DefaultBranch)
	assert.Equal(t, "graphql", cfg.RegistryBackend)
	assert.Equal(t, "5m", cfg.VersionCacheTTL)
	// Unset fields keep their defaults.
	assert.Equal(t, "game", cfg.GameBinary)
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("{not yaml"), 0644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "config")

	cfg := &Config{
		PlayerName:      "Steve",
		DefaultBranch:   "release",
		InstancesDir:    "/data/instances",
		PatchServerURL:  "https://patch.example.com",
		RegistryBackend: "rest",
		GameBinary:      "game",
	}
	require.NoError(t, cfg.Save(dir))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
