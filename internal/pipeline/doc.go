// Package pipeline wires the scanner, the metadata importer and the preview
// generator to the catalog store. Pipeline implements tasks.Executor, so the
// task runner can drive it, and the CLI calls its methods directly.
//
// Three flows are provided:
//   - IndexDirectory hashes a directory tree and records every match
//   - ImportMetadata merges an editing-tool export with a scan of the files
//     it names and builds their previews
//   - RepairMissingPreviews builds previews for cataloged files without one
//
// External tool failures on a single file are logged, counted and skipped.
// Store and hashing failures fail the whole flow.
package pipeline
