package treeclient

import "time"

// Metrics observes backend requests.
//
// Implementations live in pkg/metrics. A nil Metrics in Config selects the
// no-op implementation.
type Metrics interface {
	// ObserveRequest records one request. status is 0 when the request
	// failed before a response was received.
	ObserveRequest(operation string, status int, duration time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) ObserveRequest(string, int, time.Duration) {}
