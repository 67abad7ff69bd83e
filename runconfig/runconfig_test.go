package runconfig

import (
	"errors"
	"testing"

	"ccbench/ccerr"
	"ccbench/rankmap"
)

func TestResolveFencePolicy_Table(t *testing.T) {
	cases := []struct {
		level int
		want  FencePolicy
	}{
		{0, FencePolicy{FenceNone, FenceNone}},
		{1, FencePolicy{FencePartial, FencePartial}},
		{2, FencePolicy{FenceFull, FenceFull}},
		{3, FencePolicy{FencePartial, FenceNone}},
		{4, FencePolicy{FenceNone, FencePartial}},
		{5, FencePolicy{FenceFull, FenceNone}},
		{6, FencePolicy{FenceNone, FenceFull}},
		{7, FencePolicy{FenceFull, FencePartial}},
		{8, FencePolicy{FencePartial, FenceFull}},
		{9, FencePolicy{FenceNone, FenceDoubleWrite}},
	}
	for _, c := range cases {
		got, err := ResolveFencePolicy(c.level)
		if err != nil {
			t.Fatalf("level %d: unexpected error: %v", c.level, err)
		}
		if got != c.want {
			t.Errorf("level %d: got %+v, want %+v", c.level, got, c.want)
		}
	}
}

func TestResolveFencePolicy_OutOfRange(t *testing.T) {
	if _, err := ResolveFencePolicy(10); !errors.Is(err, ccerr.ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
	if _, err := ResolveFencePolicy(-1); !errors.Is(err, ccerr.ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}

func TestRunConfig_InBandSeederRank(t *testing.T) {
	cfg := RunConfig{
		SeedCore: 2,
		Ranks: rankmap.Map{Ranks: []rankmap.Rank{
			{Core: 0}, {Core: 1}, {Core: 2},
		}},
	}
	if got := cfg.InBandSeederRank(); got != 2 {
		t.Fatalf("expected rank 2, got %d", got)
	}
}

func TestRunConfig_AuxiliarySeeder(t *testing.T) {
	cfg := RunConfig{
		SeedCore: 9,
		Ranks: rankmap.Map{Ranks: []rankmap.Rank{
			{Core: 0}, {Core: 1},
		}},
	}
	if got := cfg.InBandSeederRank(); got != -1 {
		t.Fatalf("expected -1 (auxiliary seeder), got %d", got)
	}
	if !cfg.SeedMode() {
		t.Fatal("expected SeedMode true when SeedCore >= 0")
	}
}

func TestRunConfig_ClassicMode(t *testing.T) {
	cfg := RunConfig{SeedCore: -1}
	if cfg.SeedMode() {
		t.Fatal("expected SeedMode false when SeedCore < 0")
	}
	if got := cfg.InBandSeederRank(); got != -1 {
		t.Fatalf("expected -1 in classic mode, got %d", got)
	}
}
