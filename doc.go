// Package main is the footage-archive server.
//
// The server catalogs video footage into a SQLite database: it hashes files
// found under scanned directories, merges metadata CSV exports into the
// catalog and renders keyframe preview strips with FFmpeg. All of that work
// runs as tasks on a single background runner; the HTTP API only submits
// tasks and reports on them.
//
// # Application Lifecycle
//
//  1. Configuration Loading: Sets the heap limit, reads and validates
//     environment variables
//  2. Database Initialization: Opens the SQLite catalog in WAL mode
//  3. Component Initialization:
//     - Scanner: Content hashing with a bounded worker pool
//     - Preview Generator: FFmpeg frame extraction and strip composition
//     - Memory Monitor: Holds preview rendering while the heap is near its limit
//     - Pipeline: Scan, import and preview repair flows
//     - Task Runner: Executes one job at a time in submission order
//     - Metrics Collector: Publishes catalog row counts every minute
//  4. HTTP Server Setup: Registers routes and middleware, starts serving
//  5. Graceful Shutdown: Handles SIGINT/SIGTERM
//
// # HTTP Server
//
//  1. Main Server (default port 8051): the catalog API, see package handlers
//  2. Metrics Server (default port 9090, optional): Prometheus /metrics
//
// # Environment Variables
//
//   - SERVER_HOST, SERVER_PORT: Listen address (default: 0.0.0.0:8051)
//   - METRICS_ENABLED, METRICS_PORT: Metrics server (default: true, 9090)
//   - RELEASE_NAME: Reported by /version (default: local)
//   - DB_PATH: Catalog database (default: $XDG_DATA_HOME/footage-archive)
//   - SCANNING_FILE_EXTENSIONS: Comma-separated allow-list (default: .mov)
//   - METADATA_PARSE_POLICY: skip or abort on invalid CSV rows (default: skip)
//   - HASH_WORKERS: Concurrent file hashes
//   - PREVIEW_WORK_DIR, PREVIEW_FRAME_WIDTH, PREVIEW_FRAME_HEIGHT, PREVIEW_FRAME_PADDING
//   - FFMPEG_PATH, FFPROBE_PATH: External tools (default: from PATH)
//   - LOG_LEVEL: debug, info, warn or error
//   - GOMEMLIMIT, or MEMORY_LIMIT with MEMORY_RATIO: Heap limit (ratio default: 0.85)
//
// # Graceful Shutdown
//
//  1. Stop accepting HTTP requests
//  2. Stop the memory monitor, releasing any paused preview
//  3. Stop the task runner; the running task finishes, queued tasks are dropped
//  4. Stop the metrics collector and metrics server
//  5. Close the database
//
// All steps share a 30 second deadline. A task still running at the deadline
// is cancelled and recorded as FAILED.
//
// The archivectl command runs the same flows against a local database
// without a server.
package main
