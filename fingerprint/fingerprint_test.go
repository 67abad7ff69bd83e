package fingerprint

import (
	"testing"

	"ccbench/rankmap"
	"ccbench/runconfig"
)

func sampleConfig() runconfig.RunConfig {
	return runconfig.RunConfig{
		Repetitions: 1000,
		Stride:      4,
		Fence:       runconfig.FencePolicy{Load: runconfig.FenceNone, Store: runconfig.FenceFull},
		SeedCore:    -1,
		Ranks: rankmap.Map{
			Ranks:      []rankmap.Rank{{Core: 0, Test: 0, Role: 0, Group: 0, BackoffCap: 1024}},
			GroupSizes: []int{1},
		},
	}
}

func TestHash_DeterministicForSameConfig(t *testing.T) {
	a := Hash(sampleConfig(), 0)
	b := Hash(sampleConfig(), 0)
	if a != b {
		t.Fatalf("expected identical hashes, got %q and %q", a, b)
	}
}

func TestHash_DiffersOnRepetitionsChange(t *testing.T) {
	c1 := sampleConfig()
	c2 := sampleConfig()
	c2.Repetitions = 2000
	if Hash(c1, 0) == Hash(c2, 0) {
		t.Fatalf("expected different hashes for different repetitions")
	}
}

func TestHash_DiffersOnTestID(t *testing.T) {
	c := sampleConfig()
	if Hash(c, 0) == Hash(c, 1) {
		t.Fatalf("expected different hashes for different test IDs")
	}
}

func TestHash_IgnoresVerboseFlag(t *testing.T) {
	c1 := sampleConfig()
	c2 := sampleConfig()
	c2.Verbose = true
	if Hash(c1, 0) != Hash(c2, 0) {
		t.Fatalf("expected Verbose to not affect the fingerprint")
	}
}

func TestHash_Is32HexChars(t *testing.T) {
	h := Hash(sampleConfig(), 0)
	if len(h) != 32 {
		t.Fatalf("expected 32 hex chars (16 bytes), got %d: %q", len(h), h)
	}
}
