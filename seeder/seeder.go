// Package seeder implements the seed-mode priming duty of spec.md §4.4:
// the per-repetition work that arms the contended line and releases every
// contender simultaneously through B4.
//
// Grounded on original_source/src/ccbench.c's seeder thread body (the
// source inlines this in main()'s seed-core branch rather than factoring
// it into a named function; this package is the factored-out equivalent
// spec.md §4.4 names explicitly).
package seeder

import (
	"ccbench/atomicops"
	"ccbench/barrier"
	"ccbench/cacheline"
	"ccbench/constants"
	"ccbench/control"
	"ccbench/racetrack"
	"ccbench/runconfig"
	"ccbench/tsc"
	"ccbench/xfence"
)

// Duty performs one repetition's priming sequence: arm the target line
// with an alternating bit (forcing every repetition's CAS expected value
// to differ from the last), reset the winner cell, and publish the round
// start tick - each step separated by a full fence, per spec.md §4.4's
// numbered steps 1-6. The caller is responsible for entering B4
// afterward (step 7).
func Duty(region *cacheline.Region, tr *racetrack.Tracker, rep int) {
	line := region.Target()

	atomicops.Store32(&line.Word[0], uint32(rep&1))
	xfence.MFence()

	tr.ResetWinner(rep)
	xfence.MFence()

	tr.PublishRoundStart(rep, tsc.Now())
	xfence.MFence()
}

// B4Participants reports how many callers must enter B4 each round: 0 in
// classic mode (no seeder at all), T when the seed core is one of the
// supplied cores (in-band - the seeder is already counted among the
// ranks), or T+1 when a dedicated auxiliary seeder thread is spawned
// outside the rank set.
func B4Participants(cfg runconfig.RunConfig) int {
	if !cfg.SeedMode() {
		return 0
	}
	t := cfg.Ranks.T()
	if cfg.InBandSeederRank() >= 0 {
		return t
	}
	return t + 1
}

// AuxiliaryLoop is the body of the dedicated seeder goroutine spawned when
// the seed core is not among the supplied cores (spec.md §4.4's
// "Auxiliary seeder" shape). It never measures anything and never
// contends for the line itself; it only primes and releases.
func AuxiliaryLoop(region *cacheline.Region, bank *barrier.Bank, tr *racetrack.Tracker, reps, auxRankIndex int) error {
	for rep := 0; rep < reps; rep++ {
		if control.Stopped() {
			return nil
		}
		Duty(region, tr, rep)
		if err := bank.Wait(constants.B4, auxRankIndex); err != nil {
			return err
		}
	}
	return nil
}
