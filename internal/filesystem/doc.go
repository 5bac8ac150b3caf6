/*
Package filesystem wraps os.Stat and os.Open with retry logic for NFS stale
file handle errors.

Footage libraries are frequently served from NAS mounts. When the server
replaces a file or the mount flaps, operations fail with ESTALE even though
the path is still valid moments later. The scanner opens every file through
this package so a transient ESTALE does not fail a whole scan.

Only ESTALE is retried. Every other error, including "not found", is returned
immediately:

	info, err := filesystem.StatWithRetry(path, filesystem.DefaultRetryConfig())
	f, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())

Retry behaviour is reported to an optional Observer, set once at startup:

	filesystem.SetObserver(metrics.NewFilesystemObserver())
*/
package filesystem
