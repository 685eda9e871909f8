package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	t.Setenv("ADAPT_CONFIG", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"srs": {"algorithm": "fsrs", "desired_retention": 0.85},
		"difficulty": {"target_success_rate": 0.8}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "fsrs", cfg.SRS.Algorithm)
	assert.Equal(t, 0.85, cfg.SRS.DesiredRetention)
	assert.Equal(t, 0.8, cfg.Difficulty.TargetSuccessRate)
	// Untouched sections keep their defaults.
	assert.Equal(t, DefaultConfig().Queue, cfg.Queue)
	assert.Equal(t, DefaultConfig().Mastery, cfg.Mastery)
}

func TestLoad_EnvVarResolvesPath(t *testing.T) {
	path := writeConfig(t, `{"queue": {"overdue_saturation_days": 7}}`)
	t.Setenv("ADAPT_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7.0, cfg.Queue.OverdueSaturationDays)
}

func TestLoad_SchemaRejectsMalformedFile(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not JSON", `{"srs":`},
		{"wrong type", `{"srs": {"algorithm": 3}}`},
		{"negative window size", `{"difficulty": {"window_size": -5}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestValidate_CrossFieldConstraints(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults are valid", func(c *Config) {}, true},
		{"weights must sum to 1", func(c *Config) { c.Queue.OverdueWeight = 0.9 }, false},
		{"target rate below floor", func(c *Config) { c.Difficulty.TargetSuccessRate = 0.3 }, false},
		{"unknown algorithm", func(c *Config) { c.SRS.Algorithm = "leitner" }, false},
		{"lapse multiplier at 1 grows on failure", func(c *Config) { c.SRS.LapseMultiplier = 1.0 }, false},
		{"zero min interval", func(c *Config) { c.SRS.MinIntervalDays = 0 }, false},
		{"no learning steps", func(c *Config) { c.SRS.LearningStepsMinutes = nil }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
