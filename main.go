// ccbench is a cache-coherence microbenchmark engine: it pins one worker
// per configured rank, runs each through a shared barrier-synchronized
// repetition loop contending on a single cache line, and reports
// per-core latency statistics.
//
// Grounded on the teacher's own main.go phase structure (PHASE 0: parse
// and validate config; PHASE 1: allocate shared resources; PHASE 2: spawn
// and join pinned workers; PHASE 3: report and tear down) - the same
// ordering, generalized from the teacher's router/harvester wiring to
// this module's barrier bank / buffer / rank table.
package main

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"ccbench/affinity"
	"ccbench/barrier"
	"ccbench/cliconfig"
	"ccbench/constants"
	"ccbench/control"
	"ccbench/debug"
	"ccbench/fingerprint"
	"ccbench/history"
	"ccbench/jsonout"
	"ccbench/kernel"
	"ccbench/numaalloc"
	"ccbench/pfd"
	"ccbench/racetrack"
	"ccbench/rankmap"
	"ccbench/report"
	"ccbench/round"
	"ccbench/runconfig"
	"ccbench/seeder"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	// PHASE 0: parse and validate - terminates before any allocation or
	// thread spawn, per spec.md §7's propagation policy.
	cfg, err := cliconfig.Parse(argv)
	if err != nil {
		debug.DropError("ccbench", err)
		return 1
	}
	if cfg.Help {
		fmt.Print(cfg.Usage)
		return 0
	}
	rc := cfg.RunConfig
	T := rc.Ranks.T()

	// PHASE 1: allocate shared resources.
	bank := barrier.NewBank(T)
	defer bank.Term()

	if n := seeder.B4Participants(rc); n > 0 {
		if err := bank.SetParticipants(constants.B4, n); err != nil {
			debug.DropError("ccbench", err)
			return 1
		}
	}
	if err := configureGroupSlots(bank, rc); err != nil {
		debug.DropError("ccbench", err)
		return 1
	}

	buf, err := numaalloc.Alloc(numaalloc.Options{
		Lines:       cfg.RegionLines(),
		LockPages:   rc.MLock,
		DisableNUMA: rc.NoNUMA,
	})
	if err != nil {
		debug.DropError("ccbench", err)
		return 1
	}
	defer func() {
		if cerr := buf.Close(); cerr != nil {
			debug.DropError("ccbench", cerr)
		}
	}()

	if needsPointerChase(rc.Ranks) {
		kernel.BuildChaseCycle(&buf.Region, uint64(time.Now().UnixNano())|1)
	}

	tr := racetrack.New(T, rc.Repetitions)

	stores := make([][constants.MaxStoresPerRank]*pfd.Store, T)
	for i := range stores {
		stores[i][0] = pfd.NewStore(rc.Repetitions)
		stores[i][1] = pfd.NewStore(rc.Repetitions)
	}

	// PHASE 2: spawn and join every pinned worker, plus an auxiliary
	// seeder if the seed core is not among the supplied cores.
	var wg sync.WaitGroup
	errs := make([]error, T)

	for i := 0; i < T; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			runtime.LockOSThread()
			rank := rc.Ranks.Ranks[i]
			affinity.SetAffinity(rank.Core)
			d := &round.Driver{
				Region:    &buf.Region,
				Bank:      bank,
				Tracker:   tr,
				Store0:    stores[i][0],
				Store1:    stores[i][1],
				Cfg:       rc,
				Rank:      rank,
				RankIndex: i,
				TestID:    kernel.TestID(rank.Test),
				Rand:      kernel.NewRand(uint64(i)*2 + 1),
			}
			if errs[i] = d.Run(); errs[i] != nil {
				control.Abort()
			}
		}(i)
	}

	auxIndex := rc.InBandSeederRank()
	if rc.SeedMode() && auxIndex < 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runtime.LockOSThread()
			affinity.SetAffinity(rc.SeedCore)
			if err := seeder.AuxiliaryLoop(&buf.Region, bank, tr, rc.Repetitions, T); err != nil {
				debug.DropError("ccbench seeder", err)
				control.Abort()
			}
		}()
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			debug.DropError("ccbench rank", err)
			return 1
		}
	}
	if control.Stopped() {
		return 1
	}

	// PHASE 3: report and tear down.
	summary := buildSummary(rc, tr, stores)
	report.Print(os.Stdout, summary)

	testID := 0
	if T > 0 {
		testID = rc.Ranks.Ranks[0].Test
	}
	fp := fingerprint.Hash(rc, testID)
	fmt.Printf("fingerprint: %s\n", fp)

	if cfg.JSON {
		if err := jsonout.Write(os.Stdout, summary, fp); err != nil {
			debug.DropError("ccbench json", err)
		}
	}

	if cfg.HistoryDB != "" {
		if err := recordHistory(cfg.HistoryDB, fp, testID, summary); err != nil {
			debug.DropError("ccbench history", err)
		}
	}

	return 0
}

// configureGroupSlots sizes every group's per-group barrier slots to the
// number of ranks that actually wait there.
//
// In seed mode, every rank in a group waits once on PerGroupSlot(g,0)
// after racing the kernel directly (round.Driver's seed-mode branch), so
// that slot's participant count is simply the group's size.
//
// In classic mode, spec.md §4.7's choreography table is not symmetric
// across roles - STORE_ON_MODIFIED's role 0 never waits on anything at
// all, for instance - so PerGroupSlot(g,0)/(g,1) must be sized to the
// roles whose choreography actually calls Wait, via
// kernel.BarrierParticipants, never assumed to be the whole group.
// Ranks within a group are assumed to share one test id, the common case
// the choreography table is defined over.
func configureGroupSlots(bank *barrier.Bank, rc runconfig.RunConfig) error {
	for g, size := range rc.Ranks.GroupSizes {
		if rc.SeedMode() {
			if err := bank.SetParticipants(barrier.PerGroupSlot(g, 0), size); err != nil {
				return err
			}
			continue
		}
		testID := kernel.TestID(representativeTest(rc.Ranks, g))
		b1, b2 := kernel.BarrierParticipants(testID, size)
		if err := bank.SetParticipants(barrier.PerGroupSlot(g, 0), b1); err != nil {
			return err
		}
		if err := bank.SetParticipants(barrier.PerGroupSlot(g, 1), b2); err != nil {
			return err
		}
	}
	return nil
}

func representativeTest(ranks rankmap.Map, group int) int {
	for _, r := range ranks.Ranks {
		if r.Group == group {
			return r.Test
		}
	}
	return 0
}

func needsPointerChase(ranks rankmap.Map) bool {
	for _, r := range ranks.Ranks {
		if kernel.TestID(r.Test) == kernel.LoadFromMemSize {
			return true
		}
	}
	return false
}

func buildSummary(rc runconfig.RunConfig, tr *racetrack.Tracker, stores [][constants.MaxStoresPerRank]*pfd.Store) report.Summary {
	T := rc.Ranks.T()
	inputs := make([]report.BuildInput, T)
	firstWinners := make([]uint32, rc.Repetitions)
	for rep := 0; rep < rc.Repetitions; rep++ {
		firstWinners[rep] = tr.FirstWinner(rep)
	}

	for i, rank := range rc.Ranks.Ranks {
		commonLats := make([]uint64, rc.Repetitions)
		for rep := 0; rep < rc.Repetitions; rep++ {
			commonLats[rep] = tr.CommonLatency(i, rep)
		}
		in := report.BuildInput{
			Rank:       rank,
			RankIndex:  i,
			Stores:     []*pfd.Store{stores[i][0], stores[i][1]},
			Wins:       tr.Wins(i),
			CommonLats: commonLats,
		}
		if kernel.HasCASStats(kernel.TestID(rank.Test)) {
			attempts, successes, failures := tr.CASStats(i)
			in.HasCASStats = true
			in.CASAttempts = attempts
			in.CASSuccesses = successes
			in.CASFailures = failures
		}
		inputs[i] = in
	}

	return report.Build(inputs, firstWinners, racetrack.Unclaimed, nil)
}

func recordHistory(path, fp string, testID int, summary report.Summary) error {
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Record(history.Row{
		Fingerprint: fp,
		TestID:      testID,
		RecordedAt:  time.Now(),
		AvgMean:     summary.MeanOfAverages,
		AvgMin:      summary.MinOfAverages,
		AvgMax:      summary.MaxOfAverages,
		Fairness:    summary.FairnessAgreement,
	})
}
