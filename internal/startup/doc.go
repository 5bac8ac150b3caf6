// Package startup handles configuration loading and startup/shutdown logging
// for the footage-archive server.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig]:
//
//   - SERVER_HOST: HTTP bind host (default: 0.0.0.0)
//   - SERVER_PORT: HTTP server port (default: 8051)
//   - METRICS_ENABLED: Enable or disable the metrics server (default: true)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - RELEASE_NAME: Release name reported by /version (default: local)
//   - DB_PATH: SQLite catalog (default: $XDG_DATA_HOME/footage-archive/footage_archive.sqlite)
//   - SCANNING_FILE_EXTENSIONS: Comma-separated extension allow-list (default: .mov)
//   - METADATA_PARSE_POLICY: skip or abort on unparsable metadata rows (default: skip)
//   - PREVIEW_WORK_DIR: Directory for intermediate stills (default: $TMPDIR/footage-archive)
//   - PREVIEW_FRAME_WIDTH, PREVIEW_FRAME_HEIGHT, PREVIEW_FRAME_PADDING: Strip geometry (default: 320, 180, 10)
//   - FFMPEG_PATH, FFPROBE_PATH: Tool binaries (default: ffmpeg, ffprobe)
//   - HASH_WORKERS: Hashing pool size override
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo]:
//
//	go build -ldflags "-X footage-archive/internal/startup.Version=1.2.0"
package startup
