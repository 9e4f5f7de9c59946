package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("DIGITPAD_API_URL", "")
	t.Setenv("DIGITPAD_ORIGIN", "")
	t.Setenv("DIGITPAD_AUTH_SECRET", "")
	t.Setenv("DIGITPAD_EPOCHS", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFileAndEnv(t *testing.T) {
	t.Setenv("DIGITPAD_ORIGIN", "")
	t.Setenv("DIGITPAD_AUTH_SECRET", "")
	t.Setenv("DIGITPAD_EPOCHS", "")

	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(`
api_url: http://file.example
brush_size: 12
epochs: 3
window:
  width: 300
`), 0600))

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "http://file.example", cfg.APIURL)
	assert.Equal(t, 12.0, cfg.BrushSize)
	assert.Equal(t, 3, cfg.Epochs)
	assert.Equal(t, 300, cfg.Window.Width)
	assert.Equal(t, DefaultHeight, cfg.Window.Height)
	assert.Equal(t, DefaultOrigin, cfg.Origin)

	t.Setenv("DIGITPAD_API_URL", "http://env.example")
	t.Setenv("DIGITPAD_EPOCHS", "7")
	cfg, err = Load(p)
	require.NoError(t, err)
	assert.Equal(t, "http://env.example", cfg.APIURL)
	assert.Equal(t, 7, cfg.Epochs)
}

func TestLoadBadYAML(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte("epochs: [1, 2"), 0600))

	_, err := Load(p)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("DIGITPAD_API_URL", "")
	t.Setenv("DIGITPAD_ORIGIN", "")
	t.Setenv("DIGITPAD_AUTH_SECRET", "")
	t.Setenv("DIGITPAD_EPOCHS", "")

	p := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.AuthSecret = "s3cret"
	require.NoError(t, Save(cfg, p))

	loaded, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestConfigPathFromEnv(t *testing.T) {
	t.Setenv("DIGITPAD_CONFIG", "/tmp/pad.yaml")
	p, err := ConfigPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/pad.yaml", p)
}

func TestLoadServer(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", " postgres://x ")
	t.Setenv("DIGITPAD_AUTH_SECRET", "k")

	cfg := LoadServer()
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, "postgres://x", cfg.DatabaseURL)
	assert.Equal(t, "k", cfg.AuthSecret)
}
