package config

import (
	"context"
	"fmt"

	"github.com/marmos91/dittoview/internal/logger"
	"github.com/marmos91/dittoview/pkg/archive"
	"github.com/marmos91/dittoview/pkg/browser"
	"github.com/marmos91/dittoview/pkg/state"
	stateBadger "github.com/marmos91/dittoview/pkg/state/badger"
	"github.com/marmos91/dittoview/pkg/state/memory"
	"github.com/marmos91/dittoview/pkg/treeclient"
	"github.com/mitchellh/mapstructure"
)

// CreateStateStore creates the persisted state store based on configuration.
//
// Supported types:
//   - "memory": Uses pkg/state/memory (lost on exit)
//   - "badger": Uses pkg/state/badger (BadgerDB, persistent)
//
// Parameters:
//   - ctx: Context for initialization operations
//   - cfg: State store configuration
//
// Returns:
//   - state.Store: Initialized store
//   - error: Configuration or initialization error
func CreateStateStore(ctx context.Context, cfg *StateConfig) (state.Store, error) {
	switch cfg.Type {
	case "memory":
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return memory.New(), nil
	case "badger":
		return createBadgerStateStore(ctx, cfg.Badger)
	default:
		return nil, fmt.Errorf("unknown state store type: %q (supported: memory, badger)", cfg.Type)
	}
}

// createBadgerStateStore creates a BadgerDB-based persistent state store.
func createBadgerStateStore(ctx context.Context, options map[string]any) (state.Store, error) {
	type BadgerStateStoreOptions struct {
		DBPath   string `mapstructure:"db_path"`
		InMemory bool   `mapstructure:"in_memory"`
	}

	var storeOpts BadgerStateStoreOptions
	if err := mapstructure.Decode(options, &storeOpts); err != nil {
		return nil, fmt.Errorf("failed to decode badger state store options: %w", err)
	}

	if storeOpts.DBPath == "" && !storeOpts.InMemory {
		return nil, fmt.Errorf("badger state store: db_path is required")
	}

	store, err := stateBadger.New(ctx, stateBadger.Config{
		DBPath:   storeOpts.DBPath,
		InMemory: storeOpts.InMemory,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create badger state store: %w", err)
	}

	return store, nil
}

// CreateArchiveSink creates the archive sink based on configuration.
//
// Supported types:
//   - "file": Writes to a local path
//   - "s3": Uploads to Amazon S3 or a compatible store
func CreateArchiveSink(ctx context.Context, cfg *ArchiveConfig) (archive.Sink, error) {
	switch cfg.Type {
	case "file":
		return createFileArchiveSink(cfg.File)
	case "s3":
		return createS3ArchiveSink(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown archive sink type: %q (supported: file, s3)", cfg.Type)
	}
}

func createFileArchiveSink(options map[string]any) (archive.Sink, error) {
	type FileSinkConfig struct {
		Path string `mapstructure:"path"`
	}

	var sinkCfg FileSinkConfig
	if err := mapstructure.Decode(options, &sinkCfg); err != nil {
		return nil, fmt.Errorf("failed to decode file archive sink config: %w", err)
	}

	return archive.NewFileSink(sinkCfg.Path)
}

func createS3ArchiveSink(ctx context.Context, options map[string]any) (archive.Sink, error) {
	type S3SinkConfig struct {
		Bucket          string `mapstructure:"bucket"`
		Key             string `mapstructure:"key"`
		Region          string `mapstructure:"region"`
		Endpoint        string `mapstructure:"endpoint"`
		AccessKeyID     string `mapstructure:"access_key_id"`
		SecretAccessKey string `mapstructure:"secret_access_key"`
		MaxRetries      int    `mapstructure:"max_retries"`
	}

	var sinkCfg S3SinkConfig
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &sinkCfg,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(options); err != nil {
		return nil, fmt.Errorf("failed to decode S3 archive sink config: %w", err)
	}

	return archive.NewS3Sink(ctx, archive.S3Config{
		Bucket:          sinkCfg.Bucket,
		Key:             sinkCfg.Key,
		Region:          sinkCfg.Region,
		Endpoint:        sinkCfg.Endpoint,
		AccessKeyID:     sinkCfg.AccessKeyID,
		SecretAccessKey: sinkCfg.SecretAccessKey,
		MaxRetries:      sinkCfg.MaxRetries,
	})
}

// CreateTreeClient builds the backend client from the backend section.
func CreateTreeClient(cfg *BackendConfig, m treeclient.Metrics) *treeclient.Client {
	logger.Debug("Tree backend: url=%s timeout=%s rps=%g", cfg.URL, cfg.Timeout, cfg.RequestsPerSecond)

	return treeclient.New(treeclient.Config{
		BaseURL:           cfg.URL,
		Timeout:           cfg.Timeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
		Metrics:           m,
	})
}

// BrowserOptions maps the browser section onto controller options.
func BrowserOptions(cfg *BrowserConfig, m browser.Metrics) browser.Options {
	return browser.Options{
		RootID:         cfg.RootID,
		RootName:       cfg.RootName,
		SearchDebounce: cfg.SearchDebounce,
		Metrics:        m,
	}
}
