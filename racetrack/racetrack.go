// Package racetrack implements the RaceTracker of spec.md §3/§4.5: the
// per-repetition "first winner" claim, per-rank win/retry counters, and
// per-(rank,rep) common-start latency.
//
// Grounded on original_source/src/ccbench.c's winner/common-latency
// bookkeeping arrays; the source indexes these with raw thread-local IDs
// and plain int writes racing under hardware coherence alone, whereas
// this rewrite uses sync/atomic explicitly per spec.md §9's "eliminate
// data races at compile time" design note.
package racetrack

import (
	"sync/atomic"

	"ccbench/tsc"
)

// Unclaimed is the sentinel first_winner value before any rank wins a rep.
const Unclaimed = ^uint32(0)

// Tracker owns every Race-tracker array for one run. Created once by the
// controller; shared read/write by all ranks; freed post-join.
type Tracker struct {
	nRanks, nReps int

	roundStart  []uint64 // set once per rep by the seeder
	firstWinner []uint32 // Unclaimed until claimed
	commonLat   []uint64 // rank*nReps + rep

	wins         []uint32
	casAttempts  []uint64
	casSuccesses []uint64
	casFailures  []uint64
}

// New allocates a Tracker for nRanks ranks and nReps repetitions.
func New(nRanks, nReps int) *Tracker {
	t := &Tracker{
		nRanks:       nRanks,
		nReps:        nReps,
		roundStart:   make([]uint64, nReps),
		firstWinner:  make([]uint32, nReps),
		commonLat:    make([]uint64, nRanks*nReps),
		wins:         make([]uint32, nRanks),
		casAttempts:  make([]uint64, nRanks),
		casSuccesses: make([]uint64, nRanks),
		casFailures:  make([]uint64, nRanks),
	}
	for i := range t.firstWinner {
		t.firstWinner[i] = Unclaimed
	}
	return t
}

// PublishRoundStart is called exactly once per rep by the seeder, just
// before releasing B4 (spec.md §4.4 step 5).
func (t *Tracker) PublishRoundStart(rep int, now uint64) {
	atomic.StoreUint64(&t.roundStart[rep], now)
}

// RoundStart returns the published start tick for rep.
func (t *Tracker) RoundStart(rep int) uint64 {
	return atomic.LoadUint64(&t.roundStart[rep])
}

// ResetWinner resets first_winner[rep] to Unclaimed; called by the seeder
// each rep before releasing B4 (spec.md §4.4 step 3).
func (t *Tracker) ResetWinner(rep int) {
	atomic.StoreUint32(&t.firstWinner[rep], Unclaimed)
}

// TryClaim compare-and-sets first_winner[rep] from Unclaimed to rank; on
// success it atomically increments wins[rank]. At most one rank per rep
// transitions the cell.
func (t *Tracker) TryClaim(rank, rep int) bool {
	if atomic.CompareAndSwapUint32(&t.firstWinner[rep], Unclaimed, uint32(rank)) {
		atomic.AddUint32(&t.wins[rank], 1)
		return true
	}
	return false
}

// FirstWinner returns the rank that won rep, or Unclaimed.
func (t *Tracker) FirstWinner(rep int) uint32 {
	return atomic.LoadUint32(&t.firstWinner[rep])
}

// RecordSuccess sets common_latency[rank,rep] to now - round_start[rep] if
// it has not already been set. Idempotent, per spec.md §4.5.
func (t *Tracker) RecordSuccess(rank, rep int, now uint64) {
	idx := rank*t.nReps + rep
	if atomic.LoadUint64(&t.commonLat[idx]) != 0 {
		return
	}
	start := t.RoundStart(rep)
	atomic.CompareAndSwapUint64(&t.commonLat[idx], 0, now-start)
}

// CommonLatency returns the recorded common-start latency for (rank,rep),
// or 0 if none was recorded.
func (t *Tracker) CommonLatency(rank, rep int) uint64 {
	return atomic.LoadUint64(&t.commonLat[rank*t.nReps+rep])
}

// Wins returns rank's cumulative win count.
func (t *Tracker) Wins(rank int) uint32 {
	return atomic.LoadUint32(&t.wins[rank])
}

// RecordCASAttempt/Success/Failure are called only by the owning rank; no
// synchronization is strictly required, but atomics are used for
// uniformity with every other counter in this package.
func (t *Tracker) RecordCASAttempt(rank int) {
	atomic.AddUint64(&t.casAttempts[rank], 1)
}

func (t *Tracker) RecordCASSuccess(rank int) {
	atomic.AddUint64(&t.casSuccesses[rank], 1)
}

func (t *Tracker) RecordCASFailure(rank int) {
	atomic.AddUint64(&t.casFailures[rank], 1)
}

// CASStats returns (attempts, successes, failures) for rank.
func (t *Tracker) CASStats(rank int) (attempts, successes, failures uint64) {
	return atomic.LoadUint64(&t.casAttempts[rank]),
		atomic.LoadUint64(&t.casSuccesses[rank]),
		atomic.LoadUint64(&t.casFailures[rank])
}

// Now is a thin re-export of tsc.Now so callers driving the tracker don't
// need a separate import for the common case of "claim with the current
// tick".
func Now() uint64 { return tsc.Now() }
