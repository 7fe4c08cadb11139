package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestApplyDefaults_Empty(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")

	var cfg Config
	ApplyDefaults(&cfg)

	if cfg.Logging.Level != "INFO" || cfg.Logging.Format != "text" || cfg.Logging.Output != "stdout" {
		t.Errorf("Unexpected logging defaults: %+v", cfg.Logging)
	}
	if cfg.Backend.URL != "http://127.0.0.1:5000" {
		t.Errorf("Unexpected backend url: %q", cfg.Backend.URL)
	}
	if cfg.Backend.RequestsPerSecond != 0 {
		t.Errorf("Expected unlimited requests, got %g", cfg.Backend.RequestsPerSecond)
	}
	if cfg.Browser.RootName != "My files" {
		t.Errorf("Unexpected root name: %q", cfg.Browser.RootName)
	}
	if cfg.State.Type != "badger" {
		t.Errorf("Expected badger state store, got %q", cfg.State.Type)
	}
	if cfg.State.Badger["db_path"] != filepath.Join("/xdg", "dittoview", "state") {
		t.Errorf("Unexpected db_path: %v", cfg.State.Badger["db_path"])
	}
	if cfg.Metrics.Enabled {
		t.Error("Metrics should be disabled by default")
	}
	if cfg.Metrics.Port != 9090 {
		t.Errorf("Expected metrics port 9090, got %d", cfg.Metrics.Port)
	}
	if cfg.Metrics.Host != "127.0.0.1" {
		t.Errorf("Expected metrics host 127.0.0.1, got %q", cfg.Metrics.Host)
	}
	if cfg.Archive.File["path"] != "dittoview-archive.zip" {
		t.Errorf("Unexpected archive path: %v", cfg.Archive.File["path"])
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := Config{
		Backend: BackendConfig{URL: "http://x:1", Timeout: time.Second},
		Browser: BrowserConfig{RootID: "top", SearchDebounce: 50 * time.Millisecond},
		State:   StateConfig{Type: "memory", Badger: map[string]any{"db_path": "/data"}},
		Archive: ArchiveConfig{Type: "s3", S3: map[string]any{"region": "eu-west-1"}},
	}
	ApplyDefaults(&cfg)

	if cfg.Backend.URL != "http://x:1" || cfg.Backend.Timeout != time.Second {
		t.Errorf("Backend overwritten: %+v", cfg.Backend)
	}
	if cfg.Browser.RootID != "top" || cfg.Browser.SearchDebounce != 50*time.Millisecond {
		t.Errorf("Browser overwritten: %+v", cfg.Browser)
	}
	if cfg.State.Type != "memory" || cfg.State.Badger["db_path"] != "/data" {
		t.Errorf("State overwritten: %+v", cfg.State)
	}
	if cfg.Archive.S3["region"] != "eu-west-1" {
		t.Errorf("S3 region overwritten: %v", cfg.Archive.S3["region"])
	}
}

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	if !cfg.Sync.Enabled {
		t.Error("Live sync should be enabled in the default config")
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
}
