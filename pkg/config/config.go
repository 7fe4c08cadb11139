package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete DittoView configuration.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (DITTOVIEW_*)
//  2. Configuration file (YAML or TOML)
//  3. Default values
//
// Pluggable components (state store, archive sink) follow the store pattern:
// a Type field selects the implementation and only the matching
// type-specific map is decoded by its factory.
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Backend locates and throttles the tree backend
	Backend BackendConfig `mapstructure:"backend" yaml:"backend"`

	// Browser configures navigation and search
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`

	// Sync configures the live sync monitor
	Sync SyncConfig `mapstructure:"sync" yaml:"sync"`

	// State selects where browsing state is persisted
	State StateConfig `mapstructure:"state" yaml:"state"`

	// Metrics configures Prometheus metrics collection
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// Archive selects where `dittoview archive` stores the tree archive
	Archive ArchiveConfig `mapstructure:"archive" yaml:"archive"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" yaml:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" yaml:"format" validate:"required,oneof=text json"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" yaml:"output" validate:"required"`
}

// BackendConfig locates the tree backend.
type BackendConfig struct {
	// URL is the backend origin
	URL string `mapstructure:"url" yaml:"url" validate:"required,url"`

	// Timeout bounds each request
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gt=0"`

	// RequestsPerSecond throttles outgoing requests. 0 means unlimited.
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second" validate:"gte=0"`

	// Burst is the throttle burst size. 0 derives it from RequestsPerSecond.
	Burst int `mapstructure:"burst" yaml:"burst" validate:"gte=0"`
}

// BrowserConfig configures navigation and search.
type BrowserConfig struct {
	// RootID is the id of the top-level folder
	RootID string `mapstructure:"root_id" yaml:"root_id" validate:"required"`

	// RootName labels the root in breadcrumbs
	RootName string `mapstructure:"root_name" yaml:"root_name" validate:"required"`

	// SearchDebounce is the typing pause before a search is issued
	SearchDebounce time.Duration `mapstructure:"search_debounce" yaml:"search_debounce" validate:"gte=0"`
}

// SyncConfig configures the live sync monitor.
type SyncConfig struct {
	// Enabled starts generation polling in `dittoview browse`
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// PollInterval is the generation poll period
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval" validate:"gt=0"`
}

// StateConfig specifies the persisted state store.
type StateConfig struct {
	// Type specifies which store implementation to use
	// Valid values: memory, badger
	Type string `mapstructure:"type" yaml:"type" validate:"required,oneof=memory badger"`

	// Badger contains BadgerDB-specific configuration
	// Only used when Type = "badger"
	Badger map[string]any `mapstructure:"badger" yaml:"badger"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	// Enabled turns on collection and the /metrics and /status server
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Host the metrics HTTP server binds. Use 0.0.0.0 to listen on all
	// interfaces; /status exposes the open document.
	Host string `mapstructure:"host" yaml:"host" validate:"omitempty,ip|hostname"`

	// Port for the metrics HTTP server
	Port int `mapstructure:"port" yaml:"port" validate:"gte=0,lte=65535"`
}

// ArchiveConfig specifies the archive sink.
type ArchiveConfig struct {
	// Type specifies which sink implementation to use
	// Valid values: file, s3
	Type string `mapstructure:"type" yaml:"type" validate:"required,oneof=file s3"`

	// File contains file sink configuration
	// Only used when Type = "file"
	File map[string]any `mapstructure:"file" yaml:"file"`

	// S3 contains S3 sink configuration
	// Only used when Type = "s3"
	S3 map[string]any `mapstructure:"s3" yaml:"s3"`
}

// envKeys are the scalar keys that can be overridden from the environment
// even when the config file does not mention them.
var envKeys = []string{
	"logging.level",
	"logging.format",
	"logging.output",
	"backend.url",
	"backend.timeout",
	"backend.requests_per_second",
	"backend.burst",
	"browser.root_id",
	"browser.root_name",
	"browser.search_debounce",
	"sync.enabled",
	"sync.poll_interval",
	"state.type",
	"metrics.enabled",
	"metrics.host",
	"metrics.port",
	"archive.type",
}

// Load loads configuration from file, environment, and defaults.
//
// Parameters:
//   - configPath: Path to config file (empty string uses default location)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: Configuration loading or validation error
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Example: DITTOVIEW_BACKEND_URL=http://10.11.99.1:5000
	v.SetEnvPrefix("DITTOVIEW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default location: $XDG_CONFIG_HOME/dittoview/config.{yaml,toml}
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists.
func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		// An explicit path that does not exist is treated the same way.
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	return nil
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to current
// directory (.) if home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "dittoview")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "dittoview")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// GetConfigDir returns the configuration directory path (exposed for init command).
func GetConfigDir() string {
	return getConfigDir()
}
