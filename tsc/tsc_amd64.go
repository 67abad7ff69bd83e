// tsc_amd64.go — x86-64 cycle counter via RDTSC.
//
// Grounded on affinity's cgo-per-arch pattern (relax_amd64.go): a tiny
// inline-asm shim compiled only for the matching GOARCH, with a portable
// fallback for everything else. RDTSC is not serializing; callers that need
// a fence before/after the read issue it themselves via package xfence, the
// way the kernels in package kernel bracket every measured operation.

//go:build amd64 && !noasm && !nocgo

package tsc

/*
#include <stdint.h>

static inline uint64_t read_tsc(void) {
    uint32_t lo, hi;
    __asm__ __volatile__("rdtsc" : "=a"(lo), "=d"(hi));
    return ((uint64_t)hi << 32) | lo;
}
*/
import "C"

// Now returns the raw TSC value. It is not ordered with respect to
// surrounding memory operations; seeder.Duty issues a full fence
// immediately before sampling the round_start tick it publishes so that every
// rank's common_latency shares a consistent zero point.
//
//go:norace
//go:nocheckptr
//go:nosplit
//go:inline
//go:registerparams
func Now() uint64 {
	return uint64(C.read_tsc())
}
