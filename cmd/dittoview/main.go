package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/marmos91/dittoview/internal/logger"
	"github.com/marmos91/dittoview/pkg/archive"
	"github.com/marmos91/dittoview/pkg/browser"
	"github.com/marmos91/dittoview/pkg/config"
	"github.com/marmos91/dittoview/pkg/engine/headless"
	"github.com/marmos91/dittoview/pkg/metrics"
)

const usage = `DittoView - document tree browser

Usage:
  dittoview <command> [flags]

Commands:
  init      Write a default configuration file
  browse    Browse the document tree interactively
  archive   Download the whole tree archive to the configured sink

Run 'dittoview <command> -h' for command flags.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "init":
		err = runInit(os.Args[2:])
	case "browse":
		err = runBrowse(os.Args[2:])
	case "archive":
		err = runArchive(os.Args[2:])
	case "-h", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to write (default: $XDG_CONFIG_HOME/dittoview/config.yaml)")
	force := fs.Bool("force", false, "Overwrite an existing file")
	_ = fs.Parse(args)

	path := *configPath
	if path == "" {
		path = config.GetDefaultConfigPath()
	}
	if err := config.InitConfigToPath(path, *force); err != nil {
		return err
	}

	fmt.Printf("Configuration written to %s\n", path)
	return nil
}

// loadConfig loads the configuration and applies the logging section.
func loadConfig(fs *flag.FlagSet, args []string) (*config.Config, error) {
	configPath := fs.String("config", "", "Path to config file (default: $XDG_CONFIG_HOME/dittoview/config.yaml)")
	logLevel := fs.String("log-level", "", "Override log level (DEBUG, INFO, WARN, ERROR)")
	_ = fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	if err := logger.Configure(cfg.Logging.Format, cfg.Logging.Output); err != nil {
		return nil, err
	}
	logger.SetLevel(cfg.Logging.Level)

	return cfg, nil
}

func runBrowse(args []string) error {
	cfg, err := loadConfig(flag.NewFlagSet("browse", flag.ExitOnError), args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := config.InitializeMetrics(cfg)
	if m.Server != nil {
		go func() {
			if err := m.Server.Start(ctx); err != nil {
				logger.Error("Metrics server error: %v", err)
			}
		}()
	}

	store, err := config.CreateStateStore(ctx, &cfg.State)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close state store: %v", err)
		}
	}()

	client := config.CreateTreeClient(&cfg.Backend, m.TreeClient)
	engine := headless.New()
	defer engine.Shutdown()

	c := browser.New(client, engine, store, config.BrowserOptions(&cfg.Browser, m.Browser))
	defer c.Close()

	logger.Info("Backend: %s", client.BaseURL())
	c.Restore(ctx)

	var live *browser.LiveSync
	if cfg.Sync.Enabled {
		live = browser.NewLiveSync(c, cfg.Sync.PollInterval)
		live.Start(ctx)
		defer live.Stop()
		logger.Info("Live sync enabled (every %s)", cfg.Sync.PollInterval)
	}
	if m.Server != nil {
		m.Server.SetStatus(metrics.BrowserStatus(c, live))
	}

	sh := newShell(ctx, c, engine, os.Stdout)
	done := make(chan error, 1)
	go func() {
		done <- sh.run(os.Stdin)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
		return nil
	case err := <-done:
		return err
	}
}

func runArchive(args []string) error {
	fs := flag.NewFlagSet("archive", flag.ExitOnError)
	timeout := fs.Duration("timeout", 30*time.Minute, "Overall download timeout")
	cfg, err := loadConfig(fs, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	m := config.InitializeMetrics(cfg)

	sink, err := config.CreateArchiveSink(ctx, &cfg.Archive)
	if err != nil {
		return err
	}

	// The archive download is a single long transfer; the per-request
	// timeout does not apply.
	backend := cfg.Backend
	backend.Timeout = *timeout
	client := config.CreateTreeClient(&backend, m.TreeClient)

	n, err := archive.New(client, sink, m.Archive).Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Archived %d bytes to %s\n", n, sink.Name())
	return nil
}
