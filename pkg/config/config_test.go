package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openclimdata/subgrib/pkg/auth"
	"github.com/openclimdata/subgrib/pkg/errors"
	"github.com/openclimdata/subgrib/pkg/fsutil"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Settings.LogLevel)
	assert.Equal(t, 60*time.Second, cfg.Settings.HTTPTimeout)
	assert.Equal(t, 4, cfg.Settings.MaxConcurrent)
	assert.Equal(t, 3, cfg.Settings.Retries)
	assert.Equal(t, DefaultBaseURL, cfg.Settings.BaseURL)
	assert.NotEmpty(t, cfg.Settings.CacheDir)
	require.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	configContent := `settings:
  base_url: https://archive.example.com/data/
  log_level: debug
  retries: 5
auth:
  bearer:
    token: sekrit`

	require.NoError(t, os.WriteFile(configPath, []byte(configContent), fsutil.FileModeDefault))

	cfg, err := Load(configPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "https://archive.example.com/data/", cfg.Settings.BaseURL)
	assert.Equal(t, "debug", cfg.Settings.LogLevel)
	assert.Equal(t, 5, cfg.Settings.Retries)
	// Unset fields picked up the defaults.
	assert.Equal(t, DefaultHTTPTimeout, cfg.Settings.HTTPTimeout)
	assert.Equal(t, DefaultMaxConcurrent, cfg.Settings.MaxConcurrent)

	a := cfg.Authenticator()
	require.NotNil(t, a)
	assert.Equal(t, auth.BearerAuthType, a.Type())
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, cfg.Settings.BaseURL)
}

func TestLoadFromReader_ParseError(t *testing.T) {
	_, err := LoadFromReader(strings.NewReader("settings: ["))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrConfigParse)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"relative base url", func(c *Config) { c.Settings.BaseURL = "archive/data" }, "base_url"},
		{"negative timeout", func(c *Config) { c.Settings.HTTPTimeout = -time.Second }, "http_timeout"},
		{"negative retries", func(c *Config) { c.Settings.Retries = -1 }, "retries"},
		{"zero concurrency", func(c *Config) { c.Settings.MaxConcurrent = 0 }, "max_concurrent"},
		{"bad log level", func(c *Config) { c.Settings.LogLevel = "verbose" }, "log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrConfigValidation)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSaveAndReload(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Settings.LogLevel = "debug"
	cfg.Settings.BaseURL = "https://mirror.example.com/"
	cfg.Auth = &AuthConfig{BasicAuth: &BasicAuth{Username: "u", Password: "p"}}

	configPath := filepath.Join(t.TempDir(), "sub", "config.yaml")
	require.NoError(t, cfg.Save(configPath))

	loaded, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "debug", loaded.Settings.LogLevel)
	assert.Equal(t, "https://mirror.example.com/", loaded.Settings.BaseURL)
	require.NotNil(t, loaded.Auth)
	require.NotNil(t, loaded.Auth.BasicAuth)
	assert.Equal(t, "u", loaded.Auth.BasicAuth.Username)
}

func TestBaseURL_EnvOverride(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Settings.BaseURL = "https://configured.example.com/"

	assert.Equal(t, "https://configured.example.com/", cfg.BaseURL())

	t.Setenv(EnvBaseURL, "https://override.example.com/")
	assert.Equal(t, "https://override.example.com/", cfg.BaseURL())
}

func TestAuthenticator_Precedence(t *testing.T) {
	cfg := DefaultConfig()
	assert.Nil(t, cfg.Authenticator())

	cfg.Auth = &AuthConfig{
		BasicAuth:  &BasicAuth{Username: "u", Password: "p"},
		BearerAuth: &BearerAuth{Token: "tok"},
	}
	a := cfg.Authenticator()
	require.NotNil(t, a)
	assert.Equal(t, auth.BasicAuthType, a.Type())
}

func TestGetIndexDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Settings.CacheDir = "/var/cache/subgrib"
	assert.Equal(t, filepath.Join("/var/cache/subgrib", "indexes"), cfg.GetIndexDir())
}
