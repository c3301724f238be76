package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DefaultsWithoutFile(t *testing.T) {
	cfg, err := LoadConfig("")

	require.NoError(t, err)
	assert.Equal(t, "pulse", cfg.Service.Name)
	assert.Equal(t, 8080, cfg.Service.Port)
	assert.Equal(t, 1.5, cfg.Trends.SignificanceThreshold)
	assert.Equal(t, "sqlite", cfg.History.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Fetchers.ScholarCacheTTL)
	assert.Equal(t, 1024, cfg.Generator.MaxTokens)
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
service:
  port: 9000
trends:
  significance_threshold: 2.0
  extra_stopwords: [culture, media]
history:
  driver: memory
usage:
  limits:
    news: 100
    anthropic: 50
`), 0o644))

	cfg, err := LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Service.Port)
	assert.Equal(t, 2.0, cfg.Trends.SignificanceThreshold)
	assert.Equal(t, []string{"culture", "media"}, cfg.Trends.ExtraStopwords)
	assert.Equal(t, "memory", cfg.History.Driver)
	assert.Equal(t, 100, cfg.Usage.Limits["news"])
	// Unset sections still get defaults.
	assert.Equal(t, "pulse", cfg.Service.Name)
	assert.Equal(t, 5, cfg.Classification.ReferenceSize)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("service:\n  port: 9000\n"), 0o644))
	t.Setenv("PULSE_PORT", "9100")
	t.Setenv("PULSE_HISTORY_DRIVER", "memory")

	cfg, err := LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Service.Port)
	assert.Equal(t, "memory", cfg.History.Driver)
}

func TestLoadConfig_RejectsBadDriver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("history:\n  driver: redis\n"), 0o644))

	_, err := LoadConfig(path)

	assert.ErrorContains(t, err, "unknown history driver")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))

	assert.Error(t, err)
}
