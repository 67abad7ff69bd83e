// tsc_stub.go — fallback cycle counter for architectures without a cheap
// free-running hardware counter exposed to userspace, or when cgo is
// disabled. Uses the monotonic clock; samples are in nanoseconds rather
// than cycles, which is a coarser but still internally-consistent unit for
// the same AbsDeviation arithmetic in package pfd.

//go:build (!amd64 && !arm64) || noasm || nocgo

package tsc

import "time"

//go:nosplit
func Now() uint64 {
	return uint64(time.Now().UnixNano())
}
