package report

import (
	"bytes"
	"strings"
	"testing"

	"ccbench/pfd"
	"ccbench/rankmap"
)

func storeWith(samples ...uint64) *pfd.Store {
	s := pfd.NewStore(len(samples))
	for _, v := range samples {
		s.Record(v)
	}
	return s
}

func TestFirstValid_SkipsEmptyStores(t *testing.T) {
	empty := pfd.NewStore(4)
	filled := storeWith(10, 20, 30)
	got, ok := firstValid([]*pfd.Store{empty, filled})
	if !ok {
		t.Fatalf("expected ok=true when a later store has samples")
	}
	if got.Avg != 20 {
		t.Fatalf("expected avg 20 from first non-empty store, got %v", got.Avg)
	}
}

func TestFirstValid_AllEmptyReturnsZeroSummaryAndFalse(t *testing.T) {
	got, ok := firstValid([]*pfd.Store{pfd.NewStore(1), pfd.NewStore(1)})
	if ok {
		t.Fatalf("expected ok=false when every store is empty")
	}
	if got.Avg != 0 || got.Min != 0 || got.Max != 0 {
		t.Fatalf("expected zero summary, got %+v", got)
	}
}

func TestBuild_MeanMinMaxOfAverages(t *testing.T) {
	inputs := []BuildInput{
		{Rank: rankmap.Rank{Core: 0}, RankIndex: 0, Stores: []*pfd.Store{storeWith(10, 10, 10)}},
		{Rank: rankmap.Rank{Core: 1}, RankIndex: 1, Stores: []*pfd.Store{storeWith(30, 30, 30)}},
	}
	s := Build(inputs, nil, ^uint32(0), nil)
	if s.MeanOfAverages != 20 {
		t.Fatalf("expected mean 20, got %v", s.MeanOfAverages)
	}
	if s.MinOfAverages != 10 || s.MaxOfAverages != 30 {
		t.Fatalf("expected min/max 10/30, got %v/%v", s.MinOfAverages, s.MaxOfAverages)
	}
}

func TestBuild_SocketRollupUsesPolicy(t *testing.T) {
	inputs := []BuildInput{
		{Rank: rankmap.Rank{Core: 0}, RankIndex: 0, Stores: []*pfd.Store{storeWith(100)}},
		{Rank: rankmap.Rank{Core: 1}, RankIndex: 1, Stores: []*pfd.Store{storeWith(200)}},
		{Rank: rankmap.Rank{Core: 2}, RankIndex: 2, Stores: []*pfd.Store{storeWith(300)}},
	}
	s := Build(inputs, nil, ^uint32(0), DefaultSocketPolicy)
	if s.SocketMeans[0] != 200 { // cores 0,2 -> (100+300)/2
		t.Fatalf("expected socket 0 mean 200, got %v", s.SocketMeans[0])
	}
	if s.SocketMeans[1] != 200 { // core 1 alone
		t.Fatalf("expected socket 1 mean 200, got %v", s.SocketMeans[1])
	}
}

func TestBuild_FairnessAgreement_PerfectMatch(t *testing.T) {
	unclaimed := ^uint32(0)
	inputs := []BuildInput{
		{Rank: rankmap.Rank{Core: 0}, RankIndex: 0, Stores: []*pfd.Store{storeWith(1)}, CommonLats: []uint64{5, 50}},
		{Rank: rankmap.Rank{Core: 1}, RankIndex: 1, Stores: []*pfd.Store{storeWith(1)}, CommonLats: []uint64{50, 5}},
	}
	firstWinners := []uint32{0, 1} // rank 0 wins rep 0 (also has lowest common lat), rank 1 wins rep 1
	s := Build(inputs, firstWinners, unclaimed, nil)
	if s.FairnessAgreement != 1.0 {
		t.Fatalf("expected perfect agreement, got %v", s.FairnessAgreement)
	}
}

func TestBuild_FairnessAgreement_SkipsUnclaimedReps(t *testing.T) {
	unclaimed := ^uint32(0)
	inputs := []BuildInput{
		{Rank: rankmap.Rank{Core: 0}, RankIndex: 0, Stores: []*pfd.Store{storeWith(1)}, CommonLats: []uint64{5}},
	}
	firstWinners := []uint32{unclaimed}
	s := Build(inputs, firstWinners, unclaimed, nil)
	if s.FairnessAgreement != 0 {
		t.Fatalf("expected zero agreement with no claimed reps, got %v", s.FairnessAgreement)
	}
}

func TestBuild_CASStatsCarriedWhenPresent(t *testing.T) {
	inputs := []BuildInput{
		{
			Rank: rankmap.Rank{Core: 0}, RankIndex: 0,
			Stores: []*pfd.Store{storeWith(1)}, HasCASStats: true,
			CASAttempts: 10, CASSuccesses: 3, CASFailures: 7,
		},
	}
	s := Build(inputs, nil, ^uint32(0), nil)
	r := s.Ranks[0]
	if !r.HasCASStats || r.CASAttempts != 10 || r.CASSuccesses != 3 || r.CASFailures != 7 {
		t.Fatalf("CAS stats not carried through: %+v", r)
	}
}

func TestPrint_EmitsOneLinePerRankAndSummary(t *testing.T) {
	inputs := []BuildInput{
		{Rank: rankmap.Rank{Core: 3, Role: 1, Group: 0}, RankIndex: 0, Stores: []*pfd.Store{storeWith(10, 20, 30)}, Wins: 2},
	}
	s := Build(inputs, nil, ^uint32(0), nil)
	var buf bytes.Buffer
	Print(&buf, s)
	out := buf.String()
	if !strings.Contains(out, "is using thread: 3.") {
		t.Fatalf("expected thread-3 line, got: %s", out)
	}
	if !strings.Contains(out, "2 wins") {
		t.Fatalf("expected win tally in output, got: %s", out)
	}
	if !strings.Contains(out, "Summary : mean avg") {
		t.Fatalf("expected summary line, got: %s", out)
	}
}

func TestBuild_HasSamplesFalseWhenEveryStoreIsEmpty(t *testing.T) {
	inputs := []BuildInput{
		{Rank: rankmap.Rank{Core: 4}, RankIndex: 0, Stores: []*pfd.Store{pfd.NewStore(1)}},
	}
	s := Build(inputs, nil, ^uint32(0), nil)
	if s.Ranks[0].HasSamples {
		t.Fatalf("expected HasSamples false for a rank whose store recorded nothing")
	}
}

func TestBuild_HasSamplesTrueWhenAStoreHasSamples(t *testing.T) {
	inputs := []BuildInput{
		{Rank: rankmap.Rank{Core: 4}, RankIndex: 0, Stores: []*pfd.Store{storeWith(1, 2, 3)}},
	}
	s := Build(inputs, nil, ^uint32(0), nil)
	if !s.Ranks[0].HasSamples {
		t.Fatalf("expected HasSamples true for a rank with recorded samples")
	}
}

func TestPrint_CoreLineUsesRoleNotRankIndex(t *testing.T) {
	// rankmap.Rank.Role (7) differs from RankIndex (0) so the assertion
	// actually distinguishes the two fields.
	inputs := []BuildInput{
		{Rank: rankmap.Rank{Core: 3, Role: 7, Group: 0}, RankIndex: 0, Stores: []*pfd.Store{storeWith(10, 20, 30)}},
	}
	s := Build(inputs, nil, ^uint32(0), nil)
	var buf bytes.Buffer
	Print(&buf, s)
	out := buf.String()
	if !strings.Contains(out, "Core number 7 is using thread: 3.") {
		t.Fatalf("expected role 7 in the core line, got: %s", out)
	}
}

func TestPrint_NoSamplesRecordedLineForEmptyRank(t *testing.T) {
	inputs := []BuildInput{
		{Rank: rankmap.Rank{Core: 9, Role: 2}, RankIndex: 0, Stores: []*pfd.Store{pfd.NewStore(1)}},
	}
	s := Build(inputs, nil, ^uint32(0), nil)
	var buf bytes.Buffer
	Print(&buf, s)
	out := buf.String()
	if !strings.Contains(out, "Thread 9 : no samples recorded") {
		t.Fatalf("expected no-samples line for core 9, got: %s", out)
	}
	if strings.Contains(out, "Core number") {
		t.Fatalf("expected the avg/min/max line to be skipped, got: %s", out)
	}
}

func TestPrint_SortsRanksByCore(t *testing.T) {
	inputs := []BuildInput{
		{Rank: rankmap.Rank{Core: 5}, RankIndex: 0, Stores: []*pfd.Store{storeWith(1)}},
		{Rank: rankmap.Rank{Core: 1}, RankIndex: 1, Stores: []*pfd.Store{storeWith(1)}},
	}
	s := Build(inputs, nil, ^uint32(0), nil)
	var buf bytes.Buffer
	Print(&buf, s)
	out := buf.String()
	if strings.Index(out, "thread: 1.") > strings.Index(out, "thread: 5.") {
		t.Fatalf("expected core-1 line before core-5 line, got: %s", out)
	}
}
