/*
Package workers sizes worker pools from the CPUs actually available to the
process.

runtime.NumCPU reports the host's CPUs even inside a container limited by
cgroups. GOMAXPROCS follows the container limit, so pool sizes are derived
from it instead:

	n := workers.ForIO(8) // 2 per CPU, at most 8

The scanner uses ForIO to size its hashing pool, since hashing large video
files is dominated by disk and network reads.

Operators can pin the pool size with HASH_WORKERS:

	env:
	- name: HASH_WORKERS
	  value: "2"

The override is still capped by the limit passed by the caller.
*/
package workers
