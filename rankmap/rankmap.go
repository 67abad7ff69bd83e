// Package rankmap converts the raw jagged arrays parsed from -t/-x/-A into
// dense per-rank (core, test, role, group, backoff) tuples.
//
// Grounded on original_source/src/ccbench.c lines ~378-454: the same shape
// rules, evaluated in the same priority order, are reproduced here without
// the C source's manual malloc bookkeeping.
package rankmap

import (
	"fmt"

	"ccbench/ccerr"
	"ccbench/jagged"
)

// Rank is one worker's full mapping, per spec.md §3.
type Rank struct {
	Core       int
	Test       int
	Role       int
	Group      int
	BackoffCap int
}

// Map is the dense result of building the rank table: one Rank per logical
// worker, plus the derived group sizes.
type Map struct {
	Ranks      []Rank
	GroupSizes []int
}

// T returns the total number of ranks.
func (m Map) T() int { return len(m.Ranks) }

// DefaultBackoffCap is used when neither -A nor a caller-supplied default
// requests otherwise.
const DefaultBackoffCap = 1024

// Build applies spec.md §4.3's shape rules in order. cores is -x (nil means
// absent); tests is -t (nil means absent); backoff is -A (nil means
// absent). defaultT and defaultTest apply when cores is absent; defaultCap
// is every rank's cap when backoff is absent. A present backoff must be
// one row with exactly one entry per rank.
func Build(cores, tests, backoff *jagged.Array, defaultT, defaultTest, defaultCap int) (Map, error) {
	if defaultCap < 1 {
		defaultCap = 1
	}

	var ranks []Rank
	var groupSizes []int

	if cores == nil {
		// Rule 1: -x absent, synthesize one group of defaultT ranks.
		for r := 0; r < defaultT; r++ {
			ranks = append(ranks, Rank{Core: r, Test: defaultTest, Role: 0, Group: 0, BackoffCap: defaultCap})
		}
		groupSizes = []int{defaultT}
	} else {
		numGroups := cores.NumRows()
		groupSizes = make([]int, numGroups)
		for g := 0; g < numGroups; g++ {
			groupSizes[g] = len(cores.Row(g))
		}

		for g := 0; g < numGroups; g++ {
			groupCores := cores.Row(g)
			assigned := defaultTest
			perThread := false

			if tests != nil {
				switch {
				case tests.NumRows() == 1 && numGroups == 1 && len(tests.Row(0)) == len(groupCores):
					// Rule 2a: single row equal in length to the one group's
					// size -> per-thread ops list, applied below per rank.
					perThread = true
				case tests.NumRows() == 1:
					// Rule 2b: one row of length >= num_groups -> per-group
					// value at position g.
					row := tests.Row(0)
					if g >= len(row) {
						return Map{}, fmt.Errorf("rankmap: -t row has %d entries, need one for group %d: %w", len(row), g, ccerr.ErrConfig)
					}
					assigned = row[g]
				case tests.NumRows() == numGroups:
					// Rule 2c: one row per group, first entry used.
					row := tests.Row(g)
					if len(row) < 1 {
						return Map{}, fmt.Errorf("rankmap: -t row %d is empty: %w", g, ccerr.ErrConfig)
					}
					assigned = row[0]
				default:
					return Map{}, fmt.Errorf("rankmap: mismatched -t/-x shapes (-t has %d rows, -x has %d groups): %w", tests.NumRows(), numGroups, ccerr.ErrConfig)
				}
			}

			for j, core := range groupCores {
				test := assigned
				if perThread {
					test = tests.Row(0)[j]
				}
				ranks = append(ranks, Rank{Core: core, Test: test, Role: j, Group: g, BackoffCap: defaultCap})
			}
		}
	}

	if backoff != nil {
		// Rule 3: -A is a single row of length T; clamp each entry to >=1.
		row := backoff.Row(0)
		if backoff.NumRows() != 1 || len(row) != len(ranks) {
			return Map{}, fmt.Errorf("rankmap: -A must be a single row of length %d, got %d rows of length %d: %w", len(ranks), backoff.NumRows(), len(row), ccerr.ErrConfig)
		}
		for i := range ranks {
			cap := row[i]
			if cap < 1 {
				cap = 1
			}
			ranks[i].BackoffCap = cap
		}
	}

	return Map{Ranks: ranks, GroupSizes: groupSizes}, nil
}
