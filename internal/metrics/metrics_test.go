package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsAreRegistered(t *testing.T) {
	InitializeMetrics()

	tests := []struct {
		name      string
		collector interface{}
	}{
		{"HTTPRequestsTotal", HTTPRequestsTotal},
		{"HTTPRequestDuration", HTTPRequestDuration},
		{"HTTPRequestsInFlight", HTTPRequestsInFlight},
		{"DBQueryTotal", DBQueryTotal},
		{"DBQueryDuration", DBQueryDuration},
		{"DBTransactionDuration", DBTransactionDuration},
		{"DBUpsertRows", DBUpsertRows},
		{"DBSizeBytes", DBSizeBytes},
		{"ScannerRunsTotal", ScannerRunsTotal},
		{"ScannerFilesHashed", ScannerFilesHashed},
		{"ScannerBytesHashed", ScannerBytesHashed},
		{"ScannerHashDuration", ScannerHashDuration},
		{"ScannerErrors", ScannerErrors},
		{"MetadataRowsTotal", MetadataRowsTotal},
		{"PreviewsGenerated", PreviewsGenerated},
		{"PreviewFailures", PreviewFailures},
		{"PreviewGenerationDuration", PreviewGenerationDuration},
		{"FFmpegInvocations", FFmpegInvocations},
		{"TasksSubmitted", TasksSubmitted},
		{"TasksFinished", TasksFinished},
		{"TaskDuration", TaskDuration},
		{"TasksQueued", TasksQueued},
		{"TaskRunning", TaskRunning},
		{"CatalogRowsTotal", CatalogRowsTotal},
		{"CatalogMissingPreviews", CatalogMissingPreviews},
		{"MemoryUsageRatio", MemoryUsageRatio},
		{"MemoryPaused", MemoryPaused},
		{"AppInfo", AppInfo},
	}

	for _, tt := range tests {
		if tt.collector == nil {
			t.Errorf("%s is nil", tt.name)
		}
	}
}

func TestTaskCounters(t *testing.T) {
	before := testutil.ToFloat64(TasksSubmitted.WithLabelValues("scan"))
	TasksSubmitted.WithLabelValues("scan").Inc()
	after := testutil.ToFloat64(TasksSubmitted.WithLabelValues("scan"))

	if after-before != 1 {
		t.Errorf("TasksSubmitted increased by %v, want 1", after-before)
	}
}

func TestSetAppInfo(t *testing.T) {
	SetAppInfo("1.2.3", "abc123", "go1.25", "local")

	if got := testutil.ToFloat64(AppInfo.WithLabelValues("1.2.3", "abc123", "go1.25", "local")); got != 1 {
		t.Errorf("AppInfo = %v, want 1", got)
	}
}

func TestFilesystemObserver(t *testing.T) {
	obs := NewFilesystemObserver()

	before := testutil.ToFloat64(FilesystemStaleErrors.WithLabelValues("open"))
	obs.ObserveStaleError("open")
	obs.ObserveRetryAttempt("open")
	obs.ObserveRetrySuccess("open")
	obs.ObserveDuration("open", 0.01)

	if got := testutil.ToFloat64(FilesystemStaleErrors.WithLabelValues("open")); got-before != 1 {
		t.Errorf("stale errors increased by %v, want 1", got-before)
	}
}
