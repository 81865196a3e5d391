// Package config handles loading, validating and persisting the application
// configuration. It supports YAML configuration files and provides sensible
// defaults while allowing customization through the config file and
// environment variables.
package config

import (
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/openclimdata/subgrib/pkg/errors"
	"github.com/openclimdata/subgrib/pkg/fsutil"
)

// EnvBaseURL overrides the configured archive base URL when set.
const EnvBaseURL = "SUBGRIB_BASE_URL"

// Config represents the application configuration.
type Config struct {
	Settings Settings `yaml:"settings"`

	// Auth optionally authenticates requests to the archive.
	Auth *AuthConfig `yaml:"auth,omitempty"`
}

// Settings represents general application settings.
type Settings struct {
	// BaseURL is the root of the remote archive.
	BaseURL string `yaml:"base_url,omitempty"`

	// CacheDir holds downloaded index files; empty uses the user cache.
	CacheDir string `yaml:"cache_dir,omitempty"`

	// Network settings
	HTTPTimeout   time.Duration `yaml:"http_timeout"`
	Retries       int           `yaml:"retries"`
	RetrySleep    time.Duration `yaml:"retry_sleep"`
	MaxConcurrent int           `yaml:"max_concurrent_fetches"`

	// Converter settings; empty uses the tools from the system path.
	GribSet      string `yaml:"grib_set,omitempty"`
	GribToNetCDF string `yaml:"grib_to_netcdf,omitempty"`

	LogLevel string `yaml:"log_level"` // error, warn, info, debug
}

// Default configuration values.
const (
	// DefaultBaseURL points at the public archive mirror.
	DefaultBaseURL = "https://data.openclimdata.org/archive/"

	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 60 * time.Second

	// DefaultMaxConcurrent is the default number of parallel index fetches.
	DefaultMaxConcurrent = 4

	// YAMLIndent is the number of spaces used for YAML indentation.
	YAMLIndent = 2
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	cacheDir, err := fsutil.GetCacheDir()
	if err != nil {
		cacheDir = filepath.Join(os.TempDir(), fsutil.AppName)
	}
	return &Config{
		Settings: Settings{
			BaseURL:       DefaultBaseURL,
			CacheDir:      cacheDir,
			HTTPTimeout:   DefaultHTTPTimeout,
			Retries:       3,
			RetrySleep:    2 * time.Second,
			MaxConcurrent: DefaultMaxConcurrent,
			LogLevel:      "info",
		},
	}
}

// Load reads a configuration file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.Wrap(errors.ErrInvalidPath, "empty config path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidPath, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "failed to open config file %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadFromReader(file)
}

// LoadFromReader loads configuration from an io.Reader.
func LoadFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}

	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Save writes the configuration to path, replacing it atomically.
func (c *Config) Save(path string) error {
	if path == "" {
		return errors.Wrap(errors.ErrInvalidPath, "empty config path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidPath, err.Error())
	}
	if err := fsutil.EnsureDir(filepath.Dir(absPath)); err != nil {
		return err
	}

	tempPath := absPath + ".tmp"
	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fsutil.FileModeDefault)
	if err != nil {
		return errors.Wrap(err, "failed to create config file")
	}

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(YAMLIndent)
	if err := encoder.Encode(c); err != nil {
		_ = file.Close()
		_ = os.Remove(tempPath)
		return errors.Wrap(err, "failed to encode config")
	}
	_ = encoder.Close()
	if err := file.Close(); err != nil {
		_ = os.Remove(tempPath)
		return errors.Wrap(err, "failed to write config")
	}

	if err := os.Rename(tempPath, absPath); err != nil {
		_ = os.Remove(tempPath)
		return errors.Wrap(err, "failed to replace config file")
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.Wrap(errors.ErrConfigValidation, "nil config")
	}
	s := c.Settings
	if s.BaseURL != "" {
		u, err := url.Parse(s.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return errors.Wrapf(errors.ErrConfigValidation, "base_url %q is not an absolute URL", s.BaseURL)
		}
	}
	if s.HTTPTimeout < 0 {
		return errors.Wrap(errors.ErrConfigValidation, "http_timeout must not be negative")
	}
	if s.Retries < 0 {
		return errors.Wrap(errors.ErrConfigValidation, "retries must not be negative")
	}
	if s.RetrySleep < 0 {
		return errors.Wrap(errors.ErrConfigValidation, "retry_sleep must not be negative")
	}
	if s.MaxConcurrent < 1 {
		return errors.Wrap(errors.ErrConfigValidation, "max_concurrent_fetches must be at least 1")
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(s.LogLevel)] {
		return errors.Wrapf(errors.ErrConfigValidation, "unknown log level %q", s.LogLevel)
	}
	return nil
}

// BaseURL returns the archive root, honoring the environment override.
func (c *Config) BaseURL() string {
	if env := os.Getenv(EnvBaseURL); env != "" {
		return env
	}
	if c.Settings.BaseURL != "" {
		return c.Settings.BaseURL
	}
	return DefaultBaseURL
}

// GetIndexDir returns the path of the index cache directory.
func (c *Config) GetIndexDir() string {
	return filepath.Join(c.Settings.CacheDir, "indexes")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get user config directory")
	}
	return filepath.Join(configDir, fsutil.AppName, "config.yaml"), nil
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Settings.BaseURL == "" {
		c.Settings.BaseURL = defaults.Settings.BaseURL
	}
	if c.Settings.CacheDir == "" {
		c.Settings.CacheDir = defaults.Settings.CacheDir
	}
	if c.Settings.HTTPTimeout == 0 {
		c.Settings.HTTPTimeout = defaults.Settings.HTTPTimeout
	}
	if c.Settings.Retries == 0 {
		c.Settings.Retries = defaults.Settings.Retries
	}
	if c.Settings.RetrySleep == 0 {
		c.Settings.RetrySleep = defaults.Settings.RetrySleep
	}
	if c.Settings.MaxConcurrent == 0 {
		c.Settings.MaxConcurrent = defaults.Settings.MaxConcurrent
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}
}
