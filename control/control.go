// control.go — Global control flags for coordinating worker shutdown
// ============================================================================
// RUN CONTROL ORCHESTRATION
// ============================================================================
//
// Control package provides lightweight global signaling infrastructure for
// aborting a run across every pinned worker goroutine with zero-allocation
// flag access on the measured path.
//
// Architecture overview:
//   • Global stop flag for lock-free inter-goroutine communication
//   • Zero-allocation flag access for hot path performance
//   • Graceful shutdown coordination across all pinned worker cores
//
// Threading model:
//   • Any worker or the controller calls Abort() on a fatal barrier/alloc
//     failure (spec: a barrier failure is fatal and terminates the run).
//   • Workers poll Stopped() between repetitions, never inside a measured
//     kernel call, so a mid-repetition sample is never torn.

package control

import "sync/atomic"

// stop is read by every pinned worker goroutine between repetitions and
// written by whichever goroutine first observes a fatal error - a plain
// uint32 here would be an unsynchronized cross-goroutine read/write with
// no happens-before edge, so it is an atomic.Bool.
var stop atomic.Bool

// Abort signals every worker to stop after its current repetition. Called
// once, by whichever goroutine first observes a fatal SystemError.
//
//go:nosplit
//go:inline
func Abort() {
	stop.Store(true)
}

// Stopped reports whether Abort has been called. Polled by round.Driver
// between repetitions, never inside a measured op.
//
//go:nosplit
//go:inline
func Stopped() bool {
	return stop.Load()
}

// Reset clears the abort flag. Used by tests that run multiple short
// synthetic rounds in the same process.
func Reset() {
	stop.Store(false)
}
