// Package metadata imports clip metadata exported from an editing suite as a
// CSV file (UTF-16 with BOM, as the suite writes it, or UTF-8).
//
// An Importer reads the whole export once and derives two views of it:
//
//   - Details: one mediatypes.FileDetails per row, with width, height and a
//     numeric frame rate derived from the Resolution and Shot Frame Rate
//     columns, the non-empty cells serialized to JSON, and the row's path.
//   - Keywords: the comma-separated Keywords column exploded into one
//     lowercased, trimmed, de-duplicated entry per file.
//
// Rows are keyed by file path. Resolving paths to content hashes is left to
// the pipeline, which scans the referenced files and drops rows that do not
// match.
package metadata
