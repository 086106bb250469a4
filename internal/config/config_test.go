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
	dir := t.TempDir()
	t.Setenv("POLYSUMM_STATE_DIR", dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", cfg.APIURL)
	assert.Equal(t, 2*time.Minute, cfg.RequestTimeout)
	assert.Equal(t, 3, cfg.RetryAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.RetryInitial)
	assert.Equal(t, 5*time.Second, cfg.RetryMax)
	assert.Equal(t, 5, cfg.TopK)
	assert.Equal(t, "file", cfg.Store)
	assert.Equal(t, filepath.Join(dir, "polysumm.log"), cfg.LogFile)
	assert.True(t, cfg.AutoSuggest)
	assert.True(t, cfg.Typing)
	assert.False(t, cfg.Debug)
	assert.NoError(t, cfg.Validate())
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("POLYSUMM_TOP_K=9\nPOLYSUMM_RETRY_ATTEMPTS=1\n"), 0o644))
	t.Setenv("POLYSUMM_STATE_DIR", dir)
	t.Setenv("POLYSUMM_TOP_K", "")
	os.Unsetenv("POLYSUMM_TOP_K")
	t.Setenv("POLYSUMM_RETRY_ATTEMPTS", "")
	os.Unsetenv("POLYSUMM_RETRY_ATTEMPTS")

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.TopK)
	assert.Equal(t, 1, cfg.RetryAttempts)
}

func TestLoadMissingEnvFile(t *testing.T) {
	t.Setenv("POLYSUMM_STATE_DIR", t.TempDir())
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("POLYSUMM_STATE_DIR", t.TempDir())
	t.Setenv("POLYSUMM_REQUEST_TIMEOUT", "soon")
	_, err := Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Config{
		APIURL:         "http://localhost:8000",
		RequestTimeout: time.Second,
		RetryAttempts:  3,
		RetryInitial:   time.Millisecond,
		RetryMax:       time.Second,
		TopK:           5,
		Store:          "file",
	}
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero attempts", func(c *Config) { c.RetryAttempts = 0 }, "RetryAttempts"},
		{"zero top k", func(c *Config) { c.TopK = 0 }, "TopK"},
		{"no timeout", func(c *Config) { c.RequestTimeout = 0 }, "RequestTimeout"},
		{"unknown store", func(c *Config) { c.Store = "sqlite" }, "Store"},
		{"redis without url", func(c *Config) { c.Store = "redis" }, "RedisURL"},
		{"max below initial", func(c *Config) { c.RetryInitial = 2 * time.Second }, "RetryMax"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}
