package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFromFile("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "data", cfg.Paths.DataDir)
	assert.Equal(t, "artifacts", cfg.Paths.ArtifactsDir)
	assert.Equal(t, 90, cfg.Pipeline.HorizonDays)
	assert.Equal(t, 50, cfg.Pipeline.MinSupervised)
	assert.True(t, cfg.Security.RateLimit.Enabled)
}

func TestLoadFromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
paths:
  data_dir: /srv/raw
pipeline:
  horizon_days: 60
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/srv/raw", cfg.Paths.DataDir)
	assert.Equal(t, 60, cfg.Pipeline.HorizonDays)
	// Untouched values keep their defaults.
	assert.Equal(t, 50, cfg.Pipeline.MinSupervised)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o644))

	t.Setenv("TARIFFSCOPE_SERVER_PORT", "7070")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad port", map[string]string{"TARIFFSCOPE_SERVER_PORT": "0"}},
		{"bad level", map[string]string{"TARIFFSCOPE_LOGGING_LEVEL": "loud"}},
		{"bad horizon", map[string]string{"TARIFFSCOPE_PIPELINE_HORIZON_DAYS": "-5"}},
		{"bad min supervised", map[string]string{"TARIFFSCOPE_PIPELINE_MIN_SUPERVISED": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadFromFile("")
			assert.Error(t, err)
		})
	}
}

func TestSourcePath(t *testing.T) {
	cfg, err := LoadFromFile("")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("data", "forex_data.csv"), cfg.SourcePath(cfg.Paths.ForexFile))
	assert.Equal(t, "/abs/override.csv", cfg.SourcePath("/abs/override.csv"))
}

func TestAddress(t *testing.T) {
	cfg, err := LoadFromFile("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Address())
}
