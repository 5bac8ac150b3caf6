package filesystem

// Observer records retry metrics. Implementations are provided by the metrics
// package to break the import cycle between filesystem and metrics.
type Observer interface {
	ObserveRetryAttempt(op string)
	ObserveRetrySuccess(op string)
	ObserveRetryFailure(op string)
	ObserveStaleError(op string)
	ObserveDuration(op string, durationSeconds float64)
}

type nopObserver struct{}

func (nopObserver) ObserveRetryAttempt(string)      {}
func (nopObserver) ObserveRetrySuccess(string)      {}
func (nopObserver) ObserveRetryFailure(string)      {}
func (nopObserver) ObserveStaleError(string)        {}
func (nopObserver) ObserveDuration(string, float64) {}

// defaultObserver is the package-level observer set at startup.
var defaultObserver Observer = nopObserver{}

// SetObserver sets the package-level metrics observer. A nil observer
// disables recording.
func SetObserver(o Observer) {
	if o == nil {
		o = nopObserver{}
	}
	defaultObserver = o
}
