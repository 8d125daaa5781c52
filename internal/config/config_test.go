package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PROMOPULSE_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Security.RateLimit.Enabled)
	assert.Equal(t, int64(33554432), cfg.Upload.MaxBytes)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("PROMOPULSE_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("PROMOPULSE_SERVER_PORT", "9999")
	t.Setenv("PROMOPULSE_LOGGING_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFileOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "promopulse.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 4242\nlogging:\n  level: warn\n"), 0o644))
	t.Setenv("PROMOPULSE_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 4242, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("PROMOPULSE_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("PROMOPULSE_LOGGING_LEVEL", "loud")

	_, err := Load()
	assert.Error(t, err)
}
