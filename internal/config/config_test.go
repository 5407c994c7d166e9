package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("HOMEPLAY_API_BASE_URL", "https://school.example.com/api")
	t.Setenv("HOMEPLAY_API_TOKEN", "tok")
	t.Setenv("HOMEPLAY_API_TIMEOUT", "3s")
	t.Setenv("HOMEPLAY_SESSION_ADVANCE_DELAY", "250ms")
	t.Setenv("HOMEPLAY_LOG_LEVEL", "debug")
	t.Setenv("HOMEPLAY_SERVER_ADDR", ":9999")
	t.Setenv("HOMEPLAY_SERVER_CORS_ORIGINS", "http://a.test,http://b.test")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://school.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, "tok", cfg.API.Token)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, 250*time.Millisecond, cfg.Session.AdvanceDelay)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
}

func TestLoad_FileUnderEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "homeplay.yaml")
	content := `
api:
  base_url: https://from-file.test
  timeout: 20s
session:
  advance_delay: 0s
log:
  level: warn
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("HOMEPLAY_LOG_LEVEL", "error")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://from-file.test", cfg.API.BaseURL)
	assert.Equal(t, 20*time.Second, cfg.API.Timeout)
	assert.Equal(t, time.Duration(0), cfg.Session.AdvanceDelay)
	assert.Equal(t, "error", cfg.Log.Level, "env must override file")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"negative delay", func(c *Config) { c.Session.AdvanceDelay = -time.Second }, true},
		{"negative timeout", func(c *Config) { c.API.Timeout = -time.Second }, true},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, true},
		{"upper level", func(c *Config) { c.Log.Level = "WARN" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateClient_RequiresBaseURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.API.BaseURL = " "
	assert.ErrorContains(t, cfg.ValidateClient(), "HOMEPLAY_API_BASE_URL")
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)

	p, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "homeplay", "homeplay.db"), p)
	assert.DirExists(t, filepath.Dir(p))
}

func TestDBPath_Configured(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.DBPath = filepath.Join(t.TempDir(), "nested", "dev.db")

	p, err := cfg.DBPath()
	require.NoError(t, err)
	assert.Equal(t, cfg.Server.DBPath, p)
	assert.DirExists(t, filepath.Dir(p))
}
