// setaffinity_linux.go — Linux CPU affinity via sched_setaffinity(2).
//
// Called from main to pin each rank's worker goroutine to its assigned
// physical core before its round loop starts, and to pin the auxiliary
// seeder goroutine to the seed core. Pinning happens once per goroutine,
// not per repetition.

//go:build linux && !tinygo

package affinity

import "golang.org/x/sys/unix"

// SetAffinity pins the calling OS thread to the given CPU core. Errors are
// swallowed: an unpinned thread still produces a (noisier) latency sample,
// and the spec treats pinning failure as non-fatal to the run.
//
//go:norace
//go:nocheckptr
func SetAffinity(cpu int) {
	if cpu < 0 {
		return
	}
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	_ = unix.SchedSetaffinity(0, &set)
}
