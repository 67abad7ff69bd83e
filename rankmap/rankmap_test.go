package rankmap

import (
	"errors"
	"testing"

	"ccbench/ccerr"
	"ccbench/jagged"
)

func mustParse(t *testing.T, s string) *jagged.Array {
	t.Helper()
	a, err := jagged.Parse(s)
	if err != nil {
		t.Fatalf("jagged.Parse(%q): %v", s, err)
	}
	return &a
}

func TestBuild_NoCoresSynthesizesOneGroup(t *testing.T) {
	m, err := Build(nil, nil, nil, 4, 12, DefaultBackoffCap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.T() != 4 {
		t.Fatalf("expected T=4, got %d", m.T())
	}
	for r, rank := range m.Ranks {
		if rank.Core != r || rank.Test != 12 || rank.Role != 0 || rank.Group != 0 {
			t.Fatalf("rank %d: %+v", r, rank)
		}
	}
}

func TestBuild_TwoGroupsPerGroupTest(t *testing.T) {
	cores := mustParse(t, "[[0,1],[2,3]]")
	tests := mustParse(t, "[[12],[13]]")
	m, err := Build(cores, tests, nil, 0, 0, DefaultBackoffCap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.T() != 4 {
		t.Fatalf("expected T=4, got %d", m.T())
	}
	want := []Rank{
		{Core: 0, Test: 12, Role: 0, Group: 0, BackoffCap: DefaultBackoffCap},
		{Core: 1, Test: 12, Role: 1, Group: 0, BackoffCap: DefaultBackoffCap},
		{Core: 2, Test: 13, Role: 0, Group: 1, BackoffCap: DefaultBackoffCap},
		{Core: 3, Test: 13, Role: 1, Group: 1, BackoffCap: DefaultBackoffCap},
	}
	for i, w := range want {
		if m.Ranks[i] != w {
			t.Fatalf("rank %d: got %+v, want %+v", i, m.Ranks[i], w)
		}
	}
	if len(m.GroupSizes) != 2 || m.GroupSizes[0] != 2 || m.GroupSizes[1] != 2 {
		t.Fatalf("group sizes: %+v", m.GroupSizes)
	}
}

func TestBuild_SingleRowPositional(t *testing.T) {
	cores := mustParse(t, "[[0,1],[2,3]]")
	tests := mustParse(t, "[[20,21]]")
	m, err := Build(cores, tests, nil, 0, 0, DefaultBackoffCap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Ranks[0].Test != 20 || m.Ranks[1].Test != 20 {
		t.Fatalf("group 0 ranks should get test 20: %+v", m.Ranks[:2])
	}
	if m.Ranks[2].Test != 21 || m.Ranks[3].Test != 21 {
		t.Fatalf("group 1 ranks should get test 21: %+v", m.Ranks[2:])
	}
}

func TestBuild_PerThreadOpsList(t *testing.T) {
	cores := mustParse(t, "[[0,1]]")
	tests := mustParse(t, "[[7,9]]")
	m, err := Build(cores, tests, nil, 0, 0, DefaultBackoffCap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Ranks[0].Test != 7 || m.Ranks[1].Test != 9 {
		t.Fatalf("per-thread ops list mismatch: %+v", m.Ranks)
	}
}

func TestBuild_MismatchedShapesIsConfigError(t *testing.T) {
	cores := mustParse(t, "[[0,1],[2,3],[4,5]]")
	tests := mustParse(t, "[[1],[2]]")
	_, err := Build(cores, tests, nil, 0, 0, DefaultBackoffCap)
	if !errors.Is(err, ccerr.ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}

func TestBuild_BackoffArrayAppliesAndClamps(t *testing.T) {
	cores := mustParse(t, "[[0,1]]")
	backoff := mustParse(t, "[[0,50]]")
	m, err := Build(cores, nil, backoff, 0, 5, DefaultBackoffCap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Ranks[0].BackoffCap != 1 {
		t.Fatalf("zero entry should clamp to 1, got %d", m.Ranks[0].BackoffCap)
	}
	if m.Ranks[1].BackoffCap != 50 {
		t.Fatalf("expected 50, got %d", m.Ranks[1].BackoffCap)
	}
}

func TestBuild_BackoffLengthMismatchIsConfigError(t *testing.T) {
	cores := mustParse(t, "[[0,1,2]]")
	backoff := mustParse(t, "[[5,5]]")
	_, err := Build(cores, nil, backoff, 0, 5, DefaultBackoffCap)
	if !errors.Is(err, ccerr.ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}

// Invariant (spec.md §8): for every parsed -x, sum of group sizes == T, and
// role set within each group is exactly {0,...,group_size-1}.
func TestBuild_RoleInvariant(t *testing.T) {
	cores := mustParse(t, "[[0,1,2],[3,4]]")
	m, err := Build(cores, nil, nil, 0, 1, DefaultBackoffCap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sum := 0
	for _, sz := range m.GroupSizes {
		sum += sz
	}
	if sum != m.T() {
		t.Fatalf("group sizes sum %d != T %d", sum, m.T())
	}
	seen := map[int]map[int]bool{}
	for _, r := range m.Ranks {
		if seen[r.Group] == nil {
			seen[r.Group] = map[int]bool{}
		}
		seen[r.Group][r.Role] = true
	}
	for g, sz := range m.GroupSizes {
		for role := 0; role < sz; role++ {
			if !seen[g][role] {
				t.Fatalf("group %d missing role %d", g, role)
			}
		}
	}
}
