// setaffinity_stub.go — no-op CPU affinity for platforms without
// sched_setaffinity(2) (macOS, BSD, tinygo). The benchmark still runs; the
// operator loses the ability to pin ranks to specific physical cores, which
// degrades measurement precision but not correctness.

//go:build !linux || tinygo

package affinity

//go:nosplit
//go:inline
func SetAffinity(cpu int) {
}
