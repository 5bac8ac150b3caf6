// Package mediatypes holds the value types and error taxonomy shared by the
// scanner, metadata importer, preview generator, store and task runner.
//
// It is a leaf package with no dependencies beyond the standard library so that
// every core component can import it without creating cycles.
//
// # Records
//
// ScanRecord is what the scanner emits for every matching file. Its ContentHash
// is the only join key used downstream:
//
//	rec.ContentHash // "9e107d9d372bb6826bd81d3542a419d6"
//	rec.FilePath()  // filepath.Join(rec.Directory, rec.FileName)
//
// FileDetails and Keyword come from metadata imports and carry a FilePath until
// the pipeline resolves them to a ContentHash. ClipPreview is the encoded strip
// produced from a file's keyframes.
//
// # Errors
//
// Components wrap one of the sentinel errors so callers can classify failures:
//
//	if errors.Is(err, mediatypes.ErrNotFound) { ... }
//	kind := mediatypes.KindOf(err) // "not_found", "io", ...
//
// # Extensions
//
// ExtensionSet is the case-insensitive allow-list configured through
// SCANNING_FILE_EXTENSIONS:
//
//	set := mediatypes.ParseExtensions(".mov, MP4")
//	set.Contains("clip.MOV") // true
package mediatypes
