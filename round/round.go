// Package round implements the per-worker repetition loop of spec.md
// §4.7: the round driver state machine every pinned rank goroutine runs
// from setup to its final repetition.
//
// Grounded on original_source/src/ccbench.c's per-thread main loop
// (the body of each worker's pthread entry point): optional flush, enter
// B0, branch on seed-mode vs. classic-mode, enter B3. This rewrite
// factors that loop into an explicit state machine instead of the
// source's flat C for-loop with inline ifs, per spec.md §4.7's named
// states.
package round

import (
	"unsafe"

	"ccbench/barrier"
	"ccbench/cacheline"
	"ccbench/constants"
	"ccbench/control"
	"ccbench/kernel"
	"ccbench/pfd"
	"ccbench/racetrack"
	"ccbench/rankmap"
	"ccbench/runconfig"
	"ccbench/seeder"
	"ccbench/xfence"
)

// State names one node of the per-rank state machine spec.md §4.7
// describes: SETUP -> WAIT_B0 -> (SEED_PRIME|WAIT_B1/B2) -> RUN_KERNEL ->
// WAIT_B3 -> SETUP, terminating in COLLECT_STATS after the N_reps-th
// repetition. Driver.Run walks these states without exposing them as a
// separate type the caller must drive - State exists for observability
// (Driver.State reports where a stalled run is stuck).
type State int

const (
	StateSetup State = iota
	StateWaitB0
	StateSeedOrChoreography
	StateRunKernel
	StateWaitB3
	StateCollectStats
)

// Driver runs one rank's full set of repetitions.
type Driver struct {
	Region    *cacheline.Region
	Bank      *barrier.Bank
	Tracker   *racetrack.Tracker
	Store0    *pfd.Store
	Store1    *pfd.Store
	Cfg       runconfig.RunConfig
	Rank      rankmap.Rank
	RankIndex int
	TestID    kernel.TestID
	Rand      *kernel.Rand

	state State
}

// State reports the driver's current position in the state machine, for
// diagnostics.
func (d *Driver) State() State { return d.state }

// Run executes cfg.Repetitions repetitions. It returns nil early if
// control.Abort is observed between repetitions (never mid-repetition -
// a kernel call, once started, always completes); any barrier failure
// is returned verbatim as the SystemError it already wraps.
func (d *Driver) Run() error {
	d.state = StateSetup
	groupSize := 0
	if d.Rank.Group < len(d.Cfg.Ranks.GroupSizes) {
		groupSize = d.Cfg.Ranks.GroupSizes[d.Rank.Group]
	}
	choreo := kernel.Choreography(d.TestID, d.Rank.Role, groupSize)
	isInBandSeeder := d.Cfg.SeedMode() && d.Cfg.InBandSeederRank() == d.RankIndex

	for rep := 0; rep < d.Cfg.Repetitions; rep++ {
		if control.Stopped() {
			d.state = StateCollectStats
			return nil
		}
		d.state = StateSetup

		if d.Cfg.Flush == runconfig.FlushBeforeRep {
			xfence.CLFlush(unsafe.Pointer(&d.Region.Target().Word[0]))
			xfence.MFence()
		}

		d.state = StateWaitB0
		if err := d.Bank.Wait(constants.B0, d.RankIndex); err != nil {
			return err
		}

		d.state = StateSeedOrChoreography
		params := kernel.ExecParams{
			Region:    d.Region,
			Rand:      d.Rand,
			Cfg:       d.Cfg,
			Tracker:   d.Tracker,
			Bank:      d.Bank,
			Store0:    d.Store0,
			Store1:    d.Store1,
			Rank:      d.Rank,
			RankIndex: d.RankIndex,
			Rep:       rep,
		}

		if d.Cfg.SeedMode() {
			if isInBandSeeder {
				seeder.Duty(d.Region, d.Tracker, rep)
			}
			if err := d.Bank.Wait(constants.B4, d.RankIndex); err != nil {
				return err
			}

			d.state = StateRunKernel
			if !isInBandSeeder || d.TestID == kernel.CASUntilSuccess {
				kernel.RunDirect(d.TestID, params)
			}

			if err := d.Bank.Wait(barrier.PerGroupSlot(d.Rank.Group, 0), d.RankIndex); err != nil {
				return err
			}
		} else {
			d.state = StateRunKernel
			for _, a := range choreo {
				if err := kernel.RunAction(a, d.TestID, params); err != nil {
					return err
				}
			}
		}

		d.state = StateWaitB3
		if err := d.Bank.Wait(constants.B3, d.RankIndex); err != nil {
			return err
		}
	}

	d.state = StateCollectStats
	return nil
}
