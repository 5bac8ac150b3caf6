package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, file := range []string{"main", "wal", "shm"} {
		DBSizeBytes.WithLabelValues(file)
	}

	for _, op := range []string{"stat", "open"} {
		FilesystemRetryAttempts.WithLabelValues(op)
		FilesystemRetrySuccess.WithLabelValues(op)
		FilesystemRetryFailures.WithLabelValues(op)
		FilesystemStaleErrors.WithLabelValues(op)
		FilesystemRetryDuration.WithLabelValues(op)
	}

	for _, mode := range []string{"directory", "files"} {
		ScannerRunsTotal.WithLabelValues(mode, "success")
		ScannerRunsTotal.WithLabelValues(mode, "error")
	}
	for _, stage := range []string{"walk", "stat", "hash"} {
		ScannerErrors.WithLabelValues(stage)
	}

	for _, outcome := range []string{"imported", "invalid", "unmatched"} {
		MetadataRowsTotal.WithLabelValues(outcome)
	}

	for _, reason := range []string{"missing_file", "no_duration", "no_frames", "encode", "store"} {
		PreviewFailures.WithLabelValues(reason)
	}
	for _, tool := range []string{"ffmpeg", "ffprobe"} {
		FFmpegInvocations.WithLabelValues(tool, "success")
		FFmpegInvocations.WithLabelValues(tool, "error")
	}

	for _, kind := range []string{"scan", "import", "preview_repair"} {
		TasksSubmitted.WithLabelValues(kind)
		TaskDuration.WithLabelValues(kind)
		TasksFinished.WithLabelValues(kind, "COMPLETED")
		TasksFinished.WithLabelValues(kind, "FAILED")
	}

	for _, table := range []string{"files", "file_details", "keywords", "clip_previews"} {
		CatalogRowsTotal.WithLabelValues(table)
		DBUpsertRows.WithLabelValues(table)
		DBTransactionDuration.WithLabelValues(table, "commit")
		DBTransactionDuration.WithLabelValues(table, "rollback")
	}

	for _, op := range []string{"initialize_schema", "upsert_files", "upsert_file_details",
		"upsert_keywords", "upsert_clip_previews", "get_file", "list_files", "get_file_details",
		"list_keywords", "get_clip_preview", "list_missing_previews", "stats"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}
}
