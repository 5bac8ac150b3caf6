// Package memory sizes the Go heap for a container and holds back preview
// generation while the heap is close to that size.
//
// Preview strips are composed in memory from decoded frames while FFmpeg
// runs beside the server, so the heap limit is set below the container
// limit. [ConfigureFromEnv] reads:
//
//   - GOMEMLIMIT: used as-is when set
//   - MEMORY_LIMIT: container limit in bytes, e.g. from the Kubernetes
//     Downward API
//   - MEMORY_RATIO: fraction of MEMORY_LIMIT given to the heap (default 0.85)
//
// A [Monitor] samples the heap periodically. Above the critical mark it
// pauses callers of [Monitor.Wait] until usage drops under the high mark.
package memory
