package config

import (
	"strings"
	"testing"
)

func TestValidate_ValidConfig(t *testing.T) {
	if err := Validate(GetDefaultConfig()); err != nil {
		t.Errorf("Expected valid config to pass validation, got error: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Level = "INVALID"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for invalid log level")
	}
	if !strings.Contains(err.Error(), "oneof") {
		t.Errorf("Expected 'oneof' validation error, got: %v", err)
	}
}

func TestValidate_InvalidLogFormat(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Format = "xml"

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for invalid log format")
	}
}

func TestValidate_InvalidBackendURL(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Backend.URL = "not a url"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for invalid backend url")
	}
	if !strings.Contains(err.Error(), "url") {
		t.Errorf("Expected 'url' validation error, got: %v", err)
	}
}

func TestValidate_NegativeThrottle(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Backend.RequestsPerSecond = -1

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for negative requests_per_second")
	}
}

func TestValidate_ZeroPollInterval(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Sync.PollInterval = 0

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for zero poll interval")
	}
}

func TestValidate_InvalidStateType(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.State.Type = "postgres"

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for unknown state type")
	}
}

func TestValidate_BadgerRequiresPath(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.State.Badger = map[string]any{}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for missing db_path")
	}
	if !strings.Contains(err.Error(), "db_path") {
		t.Errorf("Expected db_path error, got: %v", err)
	}
}

func TestValidate_S3RequiresBucket(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Archive.Type = "s3"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for missing bucket")
	}
	if !strings.Contains(err.Error(), "bucket") {
		t.Errorf("Expected bucket error, got: %v", err)
	}

	cfg.Archive.S3["bucket"] = "backups"
	if err := Validate(cfg); err != nil {
		t.Errorf("Expected valid S3 config, got: %v", err)
	}
}

func TestValidate_MetricsHost(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Metrics.Host = "not a host!"

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for invalid metrics host")
	}

	for _, host := range []string{"0.0.0.0", "::1", "localhost"} {
		cfg.Metrics.Host = host
		if err := Validate(cfg); err != nil {
			t.Errorf("Expected host %q to be valid, got: %v", host, err)
		}
	}
}

func TestValidate_MetricsPortRange(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Metrics.Port = 70000

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for out-of-range metrics port")
	}
}
