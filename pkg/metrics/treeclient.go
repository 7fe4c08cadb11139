package metrics

import (
	"strconv"
	"time"

	"github.com/marmos91/dittoview/pkg/treeclient"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// treeClientMetrics is the Prometheus implementation of treeclient.Metrics.
type treeClientMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewTreeClientMetrics creates a Prometheus-backed treeclient.Metrics.
//
// Returns nil if metrics are not enabled, which makes the client fall back
// to its no-op implementation.
func NewTreeClientMetrics() treeclient.Metrics {
	if !IsEnabled() {
		return nil
	}

	reg := GetRegistry()

	return &treeClientMetrics{
		requestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittoview_backend_requests_total",
				Help: "Total number of tree backend requests by operation and HTTP status",
			},
			[]string{"operation", "status"},
		),
		requestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "dittoview_backend_request_duration_seconds",
				Help: "Duration of tree backend requests in seconds",
				Buckets: []float64{
					0.005, // 5ms
					0.01,  // 10ms
					0.025, // 25ms
					0.05,  // 50ms
					0.1,   // 100ms
					0.25,  // 250ms
					0.5,   // 500ms
					1.0,   // 1s
					2.5,   // 2.5s
					10.0,  // 10s
				},
			},
			[]string{"operation"},
		),
	}
}

// ObserveRequest implements treeclient.Metrics. A zero status is recorded
// as "error".
func (m *treeClientMetrics) ObserveRequest(operation string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}

	m.requestsTotal.WithLabelValues(operation, label).Inc()
	m.requestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
