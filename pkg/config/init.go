package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// sectionComments documents each top-level section of the generated file.
var sectionComments = []struct {
	key     string
	comment string
}{
	{"logging", "Log level (DEBUG, INFO, WARN, ERROR), format (text, json) and output (stdout, stderr, file path)"},
	{"backend", "Tree backend origin, per-request timeout and optional request throttle (0 = unlimited)"},
	{"browser", "Root folder id and label, and the typing pause before a search is issued"},
	{"sync", "Live sync: poll the backend generation and refresh the listing and open document on change"},
	{"state", "Where browsing state is persisted: memory or badger"},
	{"metrics", "Prometheus metrics at http://<host>:<port>/metrics, browser status at /status"},
	{"archive", "Destination of `dittoview archive`: file or s3"},
}

// InitConfig writes the default configuration to the default location.
//
// Returns the path written. Fails if the file exists and force is false.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	if err := InitConfigToPath(path, force); err != nil {
		return "", err
	}
	return path, nil
}

// InitConfigToPath writes the default configuration to path.
func InitConfigToPath(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	content, err := generateYAMLWithComments(GetDefaultConfig())
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// generateYAMLWithComments renders cfg as YAML with a header and a comment
// above every top-level section.
func generateYAMLWithComments(cfg *Config) (string, error) {
	var doc yaml.Node
	if err := doc.Encode(cfg); err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}

	comments := make(map[string]string, len(sectionComments))
	for _, s := range sectionComments {
		comments[s.key] = s.comment
	}

	// Mapping content alternates key and value nodes.
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key := doc.Content[i]
		if c, ok := comments[key.Value]; ok {
			key.HeadComment = c
		}
	}

	var buf bytes.Buffer
	buf.WriteString("# DittoView Configuration File\n")
	buf.WriteString("# Environment variables override file values: DITTOVIEW_<SECTION>_<KEY>\n\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}

	return buf.String(), nil
}
