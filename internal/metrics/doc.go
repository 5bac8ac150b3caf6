// Package metrics provides Prometheus instrumentation for footage-archive.
//
// All metrics are registered with promauto on the default registry and are
// prefixed with "footage_archive_".
//
// # Metric Categories
//
// ## HTTP Metrics
//
//   - HTTPRequestsTotal: requests by method, normalized path and status
//   - HTTPRequestDuration: request latency by method and path
//   - HTTPRequestsInFlight: requests currently being served
//
// ## Database Metrics
//
//   - DBQueryTotal / DBQueryDuration: per logical operation
//   - DBTransactionDuration: staged upsert transactions by table and outcome
//   - DBUpsertRows: rows merged per table
//   - DBSizeBytes: size of the main, WAL and SHM files
//
// ## Pipeline Metrics
//
//   - ScannerRunsTotal, ScannerFilesHashed, ScannerBytesHashed, ScannerHashDuration, ScannerErrors
//   - MetadataRowsTotal: imported, invalid and unmatched rows
//   - PreviewsGenerated, PreviewFailures, PreviewGenerationDuration, FFmpegInvocations
//
// ## Task Metrics
//
//   - TasksSubmitted, TasksFinished, TaskDuration by job kind
//   - TasksQueued, TaskRunning
//
// ## Catalog Metrics
//
// The [Collector] periodically asks a [StatsProvider] (the database) for row
// counts and updates CatalogRowsTotal and CatalogMissingPreviews:
//
//	collector := metrics.NewCollector(db, cfg.DatabasePath, 30*time.Second)
//	collector.Start()
//	defer collector.Stop()
//
// ## Filesystem Metrics
//
// NewFilesystemObserver returns a filesystem.Observer that records NFS retry
// behaviour of the scanner's file opens.
package metrics
