package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "footage_archive_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "footage_archive_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "footage_archive_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "footage_archive_db_query_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "footage_archive_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBTransactionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "footage_archive_db_transaction_duration_seconds",
			Help:    "Duration of staged upsert transactions in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"table", "outcome"},
	)

	DBUpsertRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "footage_archive_db_upsert_rows_total",
			Help: "Rows merged into permanent tables through staging tables",
		},
		[]string{"table"},
	)

	DBSizeBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "footage_archive_db_size_bytes",
			Help: "Size of SQLite database files in bytes",
		},
		[]string{"file"}, // "main", "wal", "shm"
	)
)

// Scanner metrics
var (
	ScannerRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "footage_archive_scanner_runs_total",
			Help: "Total number of scans by mode (directory/files) and status",
		},
		[]string{"mode", "status"},
	)

	ScannerFilesHashed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "footage_archive_scanner_files_hashed_total",
			Help: "Total number of files hashed",
		},
	)

	ScannerBytesHashed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "footage_archive_scanner_bytes_hashed_total",
			Help: "Total number of bytes read while hashing",
		},
	)

	ScannerHashDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "footage_archive_scanner_hash_duration_seconds",
			Help:    "Time to hash a single file",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 120},
		},
	)

	ScannerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "footage_archive_scanner_errors_total",
			Help: "Scanner errors by stage (walk/stat/hash)",
		},
		[]string{"stage"},
	)
)

// Metadata import metrics
var (
	MetadataRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "footage_archive_metadata_rows_total",
			Help: "Metadata rows by outcome (imported/invalid/unmatched)",
		},
		[]string{"outcome"},
	)
)

// Preview metrics
var (
	PreviewsGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "footage_archive_previews_generated_total",
			Help: "Total number of clip previews generated",
		},
	)

	PreviewFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "footage_archive_preview_failures_total",
			Help: "Previews that could not be generated, by reason",
		},
		[]string{"reason"},
	)

	PreviewGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "footage_archive_preview_generation_seconds",
			Help:    "Time to extract, composite and encode one preview",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	FFmpegInvocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "footage_archive_ffmpeg_invocations_total",
			Help: "External tool invocations by tool (ffmpeg/ffprobe) and result",
		},
		[]string{"tool", "result"},
	)
)

// Task runner metrics
var (
	TasksSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "footage_archive_tasks_submitted_total",
			Help: "Tasks submitted by job kind",
		},
		[]string{"kind"},
	)

	TasksFinished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "footage_archive_tasks_finished_total",
			Help: "Tasks finished by job kind and terminal status",
		},
		[]string{"kind", "status"},
	)

	TaskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "footage_archive_task_duration_seconds",
			Help:    "Task execution time by job kind",
			Buckets: []float64{0.1, 1, 5, 15, 30, 60, 300, 900, 1800, 3600},
		},
		[]string{"kind"},
	)

	TasksQueued = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "footage_archive_tasks_queued",
			Help: "Number of tasks waiting to run",
		},
	)

	TaskRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "footage_archive_task_running",
			Help: "Whether a task is currently executing (1 = running, 0 = idle)",
		},
	)
)

// Catalog contents
var (
	CatalogRowsTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "footage_archive_catalog_rows",
			Help: "Rows per catalog table",
		},
		[]string{"table"},
	)

	CatalogMissingPreviews = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "footage_archive_catalog_missing_previews",
			Help: "Scanned files without a clip preview",
		},
	)
)

// Filesystem retry metrics
var (
	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "footage_archive_filesystem_retry_attempts_total",
			Help: "Retries of filesystem operations after stale NFS handles",
		},
		[]string{"operation"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "footage_archive_filesystem_retry_success_total",
			Help: "Filesystem operations that succeeded after at least one retry",
		},
		[]string{"operation"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "footage_archive_filesystem_retry_failures_total",
			Help: "Filesystem operations that failed after exhausting retries",
		},
		[]string{"operation"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "footage_archive_filesystem_stale_errors_total",
			Help: "ESTALE errors seen by filesystem operations",
		},
		[]string{"operation"},
	)

	FilesystemRetryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "footage_archive_filesystem_retry_duration_seconds",
			Help:    "Total time spent in a filesystem operation including retries",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"operation"},
	)
)

// Memory metrics
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "footage_archive_memory_usage_ratio",
			Help: "Go heap allocation as a fraction of the memory limit",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "footage_archive_memory_paused",
			Help: "1 while preview generation is held back by memory pressure",
		},
	)

	MemoryGCPauses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "footage_archive_memory_gc_pauses_total",
			Help: "Times memory pressure paused preview generation",
		},
	)
)

// Application info
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "footage_archive_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version", "release"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion, release string) {
	AppInfo.WithLabelValues(version, commit, goVersion, release).Set(1)
}
