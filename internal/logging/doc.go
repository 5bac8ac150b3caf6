// Package logging provides the leveled logger used across footage-archive.
//
// Levels, lowest first:
//   - DEBUG: per-file scan and preview details
//   - INFO: task lifecycle, scan and import totals
//   - WARN: skipped rows, skipped previews, missing tools
//   - ERROR: failed tasks and failed requests
//
// The level is read once from LOG_LEVEL (DEBUG=true forces debug) and can be
// overridden at runtime with SetLevel, which the CLI does for --verbose.
package logging
