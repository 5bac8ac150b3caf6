// Package scanner finds footage on disk and fingerprints it by content.
//
// A Scanner walks a directory tree (ScanDirectory) or checks an explicit list
// of paths (ScanFiles), keeps regular files whose extension is in the
// configured allow-list, and hashes each one with MD5 in fixed-size blocks.
// The resulting mediatypes.ScanRecord is keyed by that hash, so the same
// bytes found at two paths collapse to one identity.
//
// Hashing fans out over a bounded pool sized by workers.ForIO. Output order
// is deterministic, and the first unreadable file aborts the whole call with
// an error wrapping mediatypes.ErrIO.
package scanner
