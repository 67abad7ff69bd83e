// Package report implements the Reporter of spec.md §4.8: the post-join
// aggregation and stdout output every run produces from rank 0, in the
// stable line-oriented format spec.md §6 names as the surface sibling
// scripts consume.
//
// Grounded on original_source/src/ccbench.c's print path after
// pthread_join (the source computes and prints core stats inline in
// main; this rewrite factors the same computation into
// `report.Build`/`report.Print` so rank 0's orchestration code stays
// thin).
package report

import (
	"fmt"
	"io"
	"math"
	"sort"

	"ccbench/pfd"
	"ccbench/rankmap"
)

// SocketPolicy maps a physical core id to a socket id. The default
// implements spec.md §4.8's even/odd-parity heuristic; callers that know
// their platform's real topology can supply their own.
type SocketPolicy func(core int) int

// DefaultSocketPolicy is the even/odd-parity heuristic: even physical ids
// go to socket 0, odd ids to socket 1.
func DefaultSocketPolicy(core int) int { return core % 2 }

// RankResult is one rank's reportable summary: its first valid PFDStore
// (by store_id ascending), win tally, common-latency stats, and - when
// applicable - CAS-until-success counters.
type RankResult struct {
	Core  int
	Rank  int
	Role  int
	Group int

	pfd.Summary

	// HasSamples is false when every one of the rank's PFDStores recorded
	// zero samples - spec.md §8's N_reps = 0 boundary - in which case Print
	// emits the "no samples recorded" line instead of the avg/min/max line.
	HasSamples bool

	Wins int

	CommonLatMean float64
	CommonLatMin  uint64
	CommonLatMax  uint64

	HasCASStats  bool
	CASAttempts  uint64
	CASSuccesses uint64
	CASFailures  uint64
}

// Summary is the full report: per-rank results plus the cross-rank
// rollups spec.md §4.8 names.
type Summary struct {
	Ranks []RankResult

	MeanOfAverages float64
	MinOfAverages  float64
	MaxOfAverages  float64
	MinAvgCore     int
	MaxAvgCore     int

	SocketMeans map[int]float64

	// FairnessAgreement is the fraction of repetitions where first_winner
	// equals argmin(common_latency) across ranks - 1.0 is perfect
	// agreement between "who won the CAS race" and "who had the lowest
	// measured common-start latency".
	FairnessAgreement float64
}

// firstValid selects, per rank, the first of its PFDStores (by index
// ascending) that has at least one recorded sample - spec.md's "first
// valid PFDStore by store_id ascending". ok is false when every store is
// empty - spec.md §8's "N_reps = 0: no workers enter the round loop"
// boundary, and more generally any rank whose choreography never calls a
// PFD-bracketed kernel.
func firstValid(stores []*pfd.Store) (summary pfd.Summary, ok bool) {
	for _, s := range stores {
		if s != nil && s.Len() > 0 {
			return pfd.Summarize(s), true
		}
	}
	return pfd.Summary{}, false
}

// BuildInput is everything Build needs for one rank.
type BuildInput struct {
	Rank         rankmap.Rank
	RankIndex    int
	Stores       []*pfd.Store // store_id ascending
	Wins         uint32
	CommonLats   []uint64 // per-rep, 0 means "not recorded"
	HasCASStats  bool
	CASAttempts  uint64
	CASSuccesses uint64
	CASFailures  uint64
}

// Build aggregates per-rank inputs into a Summary. firstWinners[rep] is
// the race tracker's first_winner for rep (the tracker's Unclaimed
// sentinel if none); it is compared against each rep's argmin-
// common_latency rank to compute FairnessAgreement.
func Build(inputs []BuildInput, firstWinners []uint32, unclaimed uint32, policy SocketPolicy) Summary {
	if policy == nil {
		policy = DefaultSocketPolicy
	}

	results := make([]RankResult, len(inputs))
	var sumAvg float64
	minAvg, maxAvg := math.Inf(1), math.Inf(-1)
	minAvgCore, maxAvgCore := 0, 0

	for i, in := range inputs {
		summary, ok := firstValid(in.Stores)
		mean, min, max := commonLatencyStats(in.CommonLats)

		results[i] = RankResult{
			Core:          in.Rank.Core,
			Rank:          in.RankIndex,
			Role:          in.Rank.Role,
			Group:         in.Rank.Group,
			Summary:       summary,
			HasSamples:    ok,
			Wins:          int(in.Wins),
			CommonLatMean: mean,
			CommonLatMin:  min,
			CommonLatMax:  max,
			HasCASStats:   in.HasCASStats,
			CASAttempts:   in.CASAttempts,
			CASSuccesses:  in.CASSuccesses,
			CASFailures:   in.CASFailures,
		}

		sumAvg += summary.Avg
		if summary.Avg < minAvg {
			minAvg = summary.Avg
			minAvgCore = in.Rank.Core
		}
		if summary.Avg > maxAvg {
			maxAvg = summary.Avg
			maxAvgCore = in.Rank.Core
		}
	}

	socketSums := map[int]float64{}
	socketCounts := map[int]int{}
	for _, in := range inputs {
		s := policy(in.Rank.Core)
		summary, _ := firstValid(in.Stores)
		socketSums[s] += summary.Avg
		socketCounts[s]++
	}
	socketMeans := map[int]float64{}
	for s, sum := range socketSums {
		socketMeans[s] = sum / float64(socketCounts[s])
	}

	agreement := fairnessAgreement(inputs, firstWinners, unclaimed)

	n := float64(len(inputs))
	meanAvg := 0.0
	if n > 0 {
		meanAvg = sumAvg / n
	} else {
		minAvg, maxAvg = 0, 0
	}

	return Summary{
		Ranks:             results,
		MeanOfAverages:    meanAvg,
		MinOfAverages:     minAvg,
		MaxOfAverages:     maxAvg,
		MinAvgCore:        minAvgCore,
		MaxAvgCore:        maxAvgCore,
		SocketMeans:       socketMeans,
		FairnessAgreement: agreement,
	}
}

func commonLatencyStats(lats []uint64) (mean float64, min, max uint64) {
	var sum float64
	count := 0
	for _, v := range lats {
		if v == 0 {
			continue
		}
		sum += float64(v)
		count++
		if min == 0 || v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if count > 0 {
		mean = sum / float64(count)
	}
	return mean, min, max
}

func fairnessAgreement(inputs []BuildInput, firstWinners []uint32, unclaimed uint32) float64 {
	if len(firstWinners) == 0 {
		return 0
	}
	agree, total := 0, 0
	for rep, winner := range firstWinners {
		if winner == unclaimed {
			continue
		}
		argmin, found := -1, uint64(0)
		for i, in := range inputs {
			if rep >= len(in.CommonLats) || in.CommonLats[rep] == 0 {
				continue
			}
			if argmin == -1 || in.CommonLats[rep] < found {
				argmin = i
				found = in.CommonLats[rep]
			}
		}
		if argmin == -1 {
			continue
		}
		total++
		if uint32(argmin) == winner {
			agree++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(agree) / float64(total)
}

// Print writes Summary to w in spec.md §6's stdout format: a header line
// per rank's role/group mapping, one "Core number..." line per rank, a
// "Summary :" rollup line, per-thread win lines, and - when present -
// per-thread retry stats and common-start latency blocks.
func Print(w io.Writer, s Summary) {
	ranks := make([]RankResult, len(s.Ranks))
	copy(ranks, s.Ranks)
	sort.Slice(ranks, func(i, j int) bool { return ranks[i].Core < ranks[j].Core })

	for _, r := range ranks {
		fmt.Fprintf(w, "Group %d role %d is using thread: %d.\n", r.Group, r.Role, r.Core)
	}
	for _, r := range ranks {
		if !r.HasSamples {
			// original_source/src/ccbench.c:1483-1486: stats == NULL skips
			// the avg/min/max line entirely and prints the core id alone.
			fmt.Fprintf(w, "Thread %d : no samples recorded\n", r.Core)
			continue
		}
		fmt.Fprintf(w, "Core number %d is using thread: %d. with: avg %.2f cycles (min %d | max %d), std dev: %.2f, abs dev: %.2f\n",
			r.Role, r.Core, r.Avg, r.Min, r.Max, r.StdDev, r.AbsDev)
	}

	fmt.Fprintf(w, "Summary : mean avg %.2f cycles | min avg %.2f (core %d) | max avg %.2f (core %d)\n",
		s.MeanOfAverages, s.MinOfAverages, s.MinAvgCore, s.MaxOfAverages, s.MaxAvgCore)

	for _, r := range ranks {
		fmt.Fprintf(w, "Group %d role %d on thread %d (thread ID %d): %d wins\n",
			r.Group, r.Role, r.Core, r.Rank, r.Wins)
	}

	for _, r := range ranks {
		if r.HasCASStats {
			fmt.Fprintf(w, "Group %d role %d on thread %d: %d attempts, %d successes, %d failures\n",
				r.Group, r.Role, r.Core, r.CASAttempts, r.CASSuccesses, r.CASFailures)
		}
	}

	for _, r := range ranks {
		if r.CommonLatMean != 0 || r.CommonLatMin != 0 || r.CommonLatMax != 0 {
			fmt.Fprintf(w, "Group %d role %d on thread %d: common-start latency mean %.2f (min %d | max %d)\n",
				r.Group, r.Role, r.Core, r.CommonLatMean, r.CommonLatMin, r.CommonLatMax)
		}
	}

	sockets := make([]int, 0, len(s.SocketMeans))
	for sock := range s.SocketMeans {
		sockets = append(sockets, sock)
	}
	sort.Ints(sockets)
	for _, sock := range sockets {
		fmt.Fprintf(w, "Socket %d : avg %.2f cycles\n", sock, s.SocketMeans[sock])
	}
}
