// Package runconfig holds the immutable RunConfig every worker reads and
// the RunState that bundles the run's shared, atomics-backed structures.
//
// Grounded on spec.md §9's "Process-wide state" design note: the source
// treats fence modes, stride, test_id, reps, and the tracker arrays as
// global mutables; this package is exactly the split the note prescribes
// rather than a teacher file transplant — no single ccbench.c struct
// corresponds to it, since global variables are precisely what it erases.
package runconfig

import (
	"fmt"

	"ccbench/barrier"
	"ccbench/ccerr"
	"ccbench/numaalloc"
	"ccbench/racetrack"
	"ccbench/rankmap"
)

// FenceMode is one of the four fence strengths spec.md §6 names.
type FenceMode int

const (
	FenceNone FenceMode = iota
	FencePartial
	FenceFull
	FenceDoubleWrite
)

// FencePolicy is the resolved (load, store) fence-mode pair for a
// --fence level.
type FencePolicy struct {
	Load  FenceMode
	Store FenceMode
}

// fencePolicyTable implements spec.md §6's fence-policy table verbatim:
// 0=(none,none), 1=(partial,partial), 2=(full,full), 3=(partial,none),
// 4=(none,partial), 5=(full,none), 6=(none,full), 7=(full,partial),
// 8=(partial,full), 9=(none,double-write).
var fencePolicyTable = [10]FencePolicy{
	{FenceNone, FenceNone},
	{FencePartial, FencePartial},
	{FenceFull, FenceFull},
	{FencePartial, FenceNone},
	{FenceNone, FencePartial},
	{FenceFull, FenceNone},
	{FenceNone, FenceFull},
	{FenceFull, FencePartial},
	{FencePartial, FenceFull},
	{FenceNone, FenceDoubleWrite},
}

// ResolveFencePolicy maps a --fence level to its (load, store) modes.
func ResolveFencePolicy(level int) (FencePolicy, error) {
	if level < 0 || level >= len(fencePolicyTable) {
		return FencePolicy{}, fmt.Errorf("runconfig: fence level %d out of range [0,%d]: %w", level, len(fencePolicyTable)-1, ccerr.ErrConfig)
	}
	return fencePolicyTable[level], nil
}

// FlushPolicy controls whether the contended line is flushed before every
// repetition (spec.md §4.7 step 1, the --flush flag).
type FlushPolicy int

const (
	FlushNever FlushPolicy = iota
	FlushBeforeRep
)

// RunConfig is immutable once built by package cliconfig; every worker
// goroutine reads it without synchronization.
type RunConfig struct {
	Repetitions  int
	Stride       int
	Fence        FencePolicy
	Flush        FlushPolicy
	ForceSuccess bool
	Backoff      bool
	MemSizeBytes int
	MLock        bool
	NoNUMA       bool
	Verbose      bool

	// SeedCore is -1 when classic mode (no seed core) is in effect.
	SeedCore int

	Ranks rankmap.Map
}

// InBandSeederRank returns the rank index whose Core equals cfg.SeedCore,
// or -1 if the seed core is not among the supplied cores (meaning an
// auxiliary seeder must be spawned), or if SeedCore < 0 (classic mode).
func (cfg RunConfig) InBandSeederRank() int {
	if cfg.SeedCore < 0 {
		return -1
	}
	for i, r := range cfg.Ranks.Ranks {
		if r.Core == cfg.SeedCore {
			return i
		}
	}
	return -1
}

// SeedMode reports whether a seed core was configured at all.
func (cfg RunConfig) SeedMode() bool {
	return cfg.SeedCore >= 0
}

// RunState bundles every shared, mutable structure a run needs: the race
// tracker's atomics, the barrier bank, and the allocated buffer. Built
// once by the controller; read/written by every worker; torn down on
// every exit path including early abort.
type RunState struct {
	Tracker *racetrack.Tracker
	Bank    *barrier.Bank
	Buffer  *numaalloc.Region
}

// Close releases every resource RunState owns. Safe to call once, on
// every exit path per spec.md §5's lifecycle requirement.
func (rs *RunState) Close() error {
	rs.Bank.Term()
	if rs.Buffer != nil {
		return rs.Buffer.Close()
	}
	return nil
}
