package config

import (
	"github.com/marmos91/dittoview/pkg/archive"
	"github.com/marmos91/dittoview/pkg/browser"
	"github.com/marmos91/dittoview/pkg/metrics"
	"github.com/marmos91/dittoview/pkg/treeclient"
)

// MetricsResult contains all metrics-related components created from configuration.
type MetricsResult struct {
	// Server is the HTTP server exposing metrics and status (nil if disabled)
	Server *metrics.Server

	// TreeClient observes backend requests (nil selects the client's no-op)
	TreeClient treeclient.Metrics

	// Browser observes controller activity (nil selects the controller's no-op)
	Browser browser.Metrics

	// Archive observes archive transfers (nil selects the archiver's no-op)
	Archive archive.Metrics
}

// InitializeMetrics creates and initializes all metrics components based on configuration.
//
// If metrics are enabled the global Prometheus registry is initialized and
// every collector is registered on it. Otherwise every field is nil.
//
// Must be called at most once per process.
func InitializeMetrics(cfg *Config) *MetricsResult {
	if !cfg.Metrics.Enabled {
		return &MetricsResult{}
	}

	metrics.InitRegistry()

	return &MetricsResult{
		Server: metrics.NewServer(metrics.ServerConfig{
			Host: cfg.Metrics.Host,
			Port: cfg.Metrics.Port,
		}),
		TreeClient: metrics.NewTreeClientMetrics(),
		Browser:    metrics.NewBrowserMetrics(),
		Archive:    metrics.NewArchiveMetrics(),
	}
}
