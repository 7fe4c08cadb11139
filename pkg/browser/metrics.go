package browser

// Metrics observes controller activity.
//
// The Prometheus implementation lives in pkg/metrics. A nil Metrics in
// Options selects the no-op implementation.
type Metrics interface {
	// RecordNavigation records a navigation outcome:
	// "applied", "not_found" or "superseded".
	RecordNavigation(outcome string)

	// RecordSearch records a search outcome: "applied" or "superseded".
	RecordSearch(outcome string)

	// RecordSessionOpened counts viewer sessions opened.
	RecordSessionOpened()

	// RecordReconcile records a live-sync reconciliation outcome:
	// "unchanged", "adopted", "reopened", "removed" or "retry".
	RecordReconcile(outcome string)

	// SetGeneration records the last observed backend generation.
	SetGeneration(generation int64)
}

type noopMetrics struct{}

func (noopMetrics) RecordNavigation(string) {}
func (noopMetrics) RecordSearch(string)     {}
func (noopMetrics) RecordSessionOpened()    {}
func (noopMetrics) RecordReconcile(string)  {}
func (noopMetrics) SetGeneration(int64)     {}
