// Package database provides the SQLite catalog for footage-archive.
//
// It stores four tables keyed by content hash:
//   - files: one row per scanned file
//   - file_details: imported metadata rows
//   - keywords: normalized keywords per file
//   - clip_previews: keyframe strips as JPEG blobs
//
// Writes go through a staged upsert. Each batch is loaded into a uniquely
// named temporary table, merged into the target with INSERT OR REPLACE and
// then dropped, all inside one transaction. Re-applying the same batch leaves
// the catalog unchanged.
//
// The database uses WAL mode and immediate transactions so that concurrent
// writers queue on the busy timeout instead of failing on lock upgrades.
package database
