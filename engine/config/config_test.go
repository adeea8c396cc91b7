package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"), "demo")
	require.NoError(t, err)

	assert.Equal(t, "demo", cfg.Window.Title)
	assert.Equal(t, uint32(800), cfg.Window.Width)
	assert.Equal(t, uint32(600), cfg.Window.Height)
	assert.Equal(t, uint32(2), cfg.Renderer.FramesInFlight)
	assert.Equal(t, "assets", cfg.Assets.Dir)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
log_level = "debug"

[window]
width = 1280
height = 720

[renderer]
frames_in_flight = 3
validation = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path, "demo")
	require.NoError(t, err)

	assert.Equal(t, uint32(1280), cfg.Window.Width)
	assert.Equal(t, uint32(720), cfg.Window.Height)
	assert.Equal(t, uint32(3), cfg.Renderer.FramesInFlight)
	assert.True(t, cfg.Renderer.Validation)
	assert.Equal(t, "debug", cfg.LogLevel)
	// Untouched keys keep their defaults.
	assert.Equal(t, "demo", cfg.Window.Title)
}

func TestLoadRejectsBadFramesInFlight(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[renderer]
frames_in_flight = 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := Load(path, "demo")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default("demo")
	assert.NoError(t, cfg.Validate())

	cfg.Renderer.FramesInFlight = 1
	assert.Error(t, cfg.Validate())

	cfg = Default("demo")
	cfg.Window.Width = 0
	assert.Error(t, cfg.Validate())
}
