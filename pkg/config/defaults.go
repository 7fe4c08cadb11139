package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/marmos91/dittoview/pkg/tree"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// Default Strategy:
//   - Zero values (0, "", nil) are replaced with defaults
//   - Explicit values are preserved
//   - Booleans keep their zero value unless noted (sync.enabled is set by
//     GetDefaultConfig and by a config file, not here)
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyBackendDefaults(&cfg.Backend)
	applyBrowserDefaults(&cfg.Browser)
	applySyncDefaults(&cfg.Sync)
	applyStateDefaults(&cfg.State)
	applyMetricsDefaults(&cfg.Metrics)
	applyArchiveDefaults(&cfg.Archive)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyBackendDefaults(cfg *BackendConfig) {
	if cfg.URL == "" {
		cfg.URL = "http://127.0.0.1:5000"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	// RequestsPerSecond defaults to 0 (unlimited)
}

func applyBrowserDefaults(cfg *BrowserConfig) {
	if cfg.RootID == "" {
		cfg.RootID = tree.RootID
	}
	if cfg.RootName == "" {
		cfg.RootName = tree.RootName
	}
	if cfg.SearchDebounce == 0 {
		cfg.SearchDebounce = 300 * time.Millisecond
	}
}

func applySyncDefaults(cfg *SyncConfig) {
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 2 * time.Second
	}
}

func applyStateDefaults(cfg *StateConfig) {
	if cfg.Type == "" {
		cfg.Type = "badger"
	}

	if cfg.Badger == nil {
		cfg.Badger = make(map[string]any)
	}
	if _, ok := cfg.Badger["db_path"]; !ok {
		cfg.Badger["db_path"] = filepath.Join(getConfigDir(), "state")
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = 9090
	}
}

func applyArchiveDefaults(cfg *ArchiveConfig) {
	if cfg.Type == "" {
		cfg.Type = "file"
	}

	if cfg.File == nil {
		cfg.File = make(map[string]any)
	}
	if cfg.S3 == nil {
		cfg.S3 = make(map[string]any)
	}

	// Apply defaults for all sink types (for config file generation)
	if _, ok := cfg.File["path"]; !ok {
		cfg.File["path"] = "dittoview-archive.zip"
	}
	if _, ok := cfg.S3["key"]; !ok {
		cfg.S3["key"] = "dittoview/archive.zip"
	}
	if _, ok := cfg.S3["region"]; !ok {
		cfg.S3["region"] = "us-east-1"
	}
}

// GetDefaultConfig returns a Config struct with all default values applied.
//
// This is useful for:
//   - Generating sample configuration files
//   - Testing
func GetDefaultConfig() *Config {
	cfg := &Config{
		Sync: SyncConfig{
			Enabled: true,
		},
	}

	ApplyDefaults(cfg)
	return cfg
}
