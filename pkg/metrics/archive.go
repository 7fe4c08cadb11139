package metrics

import (
	"time"

	"github.com/marmos91/dittoview/pkg/archive"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// archiveMetrics is the Prometheus implementation of archive.Metrics.
type archiveMetrics struct {
	runsTotal   *prometheus.CounterVec
	bytesStored prometheus.Counter
	duration    prometheus.Histogram
}

// NewArchiveMetrics creates a Prometheus-backed archive.Metrics, or nil when
// metrics are disabled.
func NewArchiveMetrics() archive.Metrics {
	if !IsEnabled() {
		return nil
	}

	reg := GetRegistry()

	return &archiveMetrics{
		runsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittoview_archive_runs_total",
				Help: "Total number of archive downloads by status",
			},
			[]string{"status"}, // success, error
		),
		bytesStored: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "dittoview_archive_bytes_total",
				Help: "Total archive bytes stored",
			},
		),
		duration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "dittoview_archive_duration_seconds",
				Help:    "Duration of archive downloads in seconds",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s .. ~4m
			},
		),
	}
}

func (m *archiveMetrics) ObserveArchive(_ string, bytes int64, duration time.Duration, err error) {
	if m == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "error"
	} else {
		m.bytesStored.Add(float64(bytes))
	}

	m.runsTotal.WithLabelValues(status).Inc()
	m.duration.Observe(duration.Seconds())
}
