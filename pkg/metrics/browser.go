package metrics

import (
	"github.com/marmos91/dittoview/pkg/browser"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// browserMetrics is the Prometheus implementation of browser.Metrics.
type browserMetrics struct {
	navigations    *prometheus.CounterVec
	searches       *prometheus.CounterVec
	sessionsOpened prometheus.Counter
	reconciles     *prometheus.CounterVec
	generation     prometheus.Gauge
}

// NewBrowserMetrics creates a Prometheus-backed browser.Metrics.
//
// Returns nil if metrics are not enabled, which makes the controller fall
// back to its no-op implementation.
func NewBrowserMetrics() browser.Metrics {
	if !IsEnabled() {
		return nil
	}

	reg := GetRegistry()

	return &browserMetrics{
		navigations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittoview_navigations_total",
				Help: "Total number of folder navigations by outcome",
			},
			[]string{"outcome"}, // applied, not_found, superseded
		),
		searches: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittoview_searches_total",
				Help: "Total number of executed searches by outcome",
			},
			[]string{"outcome"},
		),
		sessionsOpened: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "dittoview_viewer_sessions_opened_total",
				Help: "Total number of document viewer sessions opened",
			},
		),
		reconciles: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittoview_live_sync_reconciles_total",
				Help: "Total number of open-document reconciliations by outcome",
			},
			[]string{"outcome"},
		),
		generation: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "dittoview_backend_generation",
				Help: "Last backend generation observed by live sync",
			},
		),
	}
}

func (m *browserMetrics) RecordNavigation(outcome string) {
	if m == nil {
		return
	}
	m.navigations.WithLabelValues(outcome).Inc()
}

func (m *browserMetrics) RecordSearch(outcome string) {
	if m == nil {
		return
	}
	m.searches.WithLabelValues(outcome).Inc()
}

func (m *browserMetrics) RecordSessionOpened() {
	if m == nil {
		return
	}
	m.sessionsOpened.Inc()
}

func (m *browserMetrics) RecordReconcile(outcome string) {
	if m == nil {
		return
	}
	m.reconciles.WithLabelValues(outcome).Inc()
}

func (m *browserMetrics) SetGeneration(generation int64) {
	if m == nil {
		return
	}
	m.generation.Set(float64(generation))
}
