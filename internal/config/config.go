// ABOUTME: Configuration loading and parsing for hearthd
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete hearthd configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Auth       AuthConfig       `yaml:"auth"`
	Storage    StorageConfig    `yaml:"storage"`
	Browser    BrowserConfig    `yaml:"browser"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig holds token signing configuration.
// TokenTTL defaults to 24h when token_ttl is not set.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	TokenTTLRaw string `yaml:"token_ttl"`
}

// StorageConfig holds the managed storage location reported by monitoring.
// Path defaults to ./storage when not set.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// BrowserConfig holds the filesystem sandbox allow-list.
// An empty list is an explicit opt-out of path restrictions.
type BrowserConfig struct {
	AllowedRoots []string `yaml:"allowed_roots"`
}

// MonitoringConfig holds monitoring stream configuration.
// StreamInterval defaults to 2s when stream_interval is not set.
type MonitoringConfig struct {
	StreamInterval time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	StreamIntervalRaw string `yaml:"stream_interval"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultTokenTTL is applied when auth.token_ttl is not configured.
const DefaultTokenTTL = 24 * time.Hour

// DefaultStreamInterval is applied when monitoring.stream_interval is not configured.
const DefaultStreamInterval = 2 * time.Second

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Parse duration fields
	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	applyDefaults(&cfg)

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyDefaults fills in defaults for optional settings.
func applyDefaults(cfg *Config) {
	if cfg.Auth.TokenTTL <= 0 {
		cfg.Auth.TokenTTL = DefaultTokenTTL
	}
	if cfg.Monitoring.StreamInterval <= 0 {
		cfg.Monitoring.StreamInterval = DefaultStreamInterval
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "./storage"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}

	// Sandbox roots must be absolute; relative roots would make the
	// allow-list depend on the process working directory.
	for _, root := range c.Browser.AllowedRoots {
		if !filepath.IsAbs(root) {
			return fmt.Errorf("browser.allowed_roots entry %q is not an absolute path", root)
		}
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Auth.TokenTTLRaw != "" {
		cfg.Auth.TokenTTL, err = time.ParseDuration(cfg.Auth.TokenTTLRaw)
		if err != nil {
			return fmt.Errorf("parsing token_ttl %q: %w", cfg.Auth.TokenTTLRaw, err)
		}
	}

	if cfg.Monitoring.StreamIntervalRaw != "" {
		cfg.Monitoring.StreamInterval, err = time.ParseDuration(cfg.Monitoring.StreamIntervalRaw)
		if err != nil {
			return fmt.Errorf("parsing stream_interval %q: %w", cfg.Monitoring.StreamIntervalRaw, err)
		}
	}

	return nil
}
