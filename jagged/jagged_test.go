package jagged

import (
	"errors"
	"reflect"
	"testing"

	"ccbench/ccerr"
)

func TestParse_SingleFlatRow(t *testing.T) {
	a, err := Parse("[16]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.NumRows() != 1 || !reflect.DeepEqual(a.Row(0), []int{16}) {
		t.Fatalf("got %+v", a)
	}
}

func TestParse_SingleRowMultipleCores(t *testing.T) {
	a, err := Parse("[[0,1]]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.NumRows() != 1 || !reflect.DeepEqual(a.Row(0), []int{0, 1}) {
		t.Fatalf("got %+v", a)
	}
}

func TestParse_TwoGroups(t *testing.T) {
	a, err := Parse("[[0,1],[2,3]]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.NumRows() != 2 {
		t.Fatalf("expected 2 rows, got %d", a.NumRows())
	}
	if !reflect.DeepEqual(a.Row(0), []int{0, 1}) || !reflect.DeepEqual(a.Row(1), []int{2, 3}) {
		t.Fatalf("got %+v", a)
	}
}

func TestParse_PerGroupTestIDs(t *testing.T) {
	a, err := Parse("[[12],[13]]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.NumRows() != 2 || a.Row(0)[0] != 12 || a.Row(1)[0] != 13 {
		t.Fatalf("got %+v", a)
	}
}

func TestParse_InclusiveRange(t *testing.T) {
	a, err := Parse("[0...3]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(a.Row(0), []int{0, 1, 2, 3}) {
		t.Fatalf("got %+v", a.Row(0))
	}
}

func TestParse_DescendingRange(t *testing.T) {
	a, err := Parse("[5...3]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(a.Row(0), []int{5, 4, 3}) {
		t.Fatalf("got %+v", a.Row(0))
	}
}

func TestParse_EmptyInputIsConfigError(t *testing.T) {
	_, err := Parse("")
	if !errors.Is(err, ccerr.ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}

func TestParse_UnterminatedRow(t *testing.T) {
	_, err := Parse("[1,2")
	if !errors.Is(err, ccerr.ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}

func TestParse_NegativeInteger(t *testing.T) {
	a, err := Parse("[-1]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(a.Row(0), []int{-1}) {
		t.Fatalf("got %+v", a.Row(0))
	}
}

// Parser idempotence (spec.md §8): round-trip parse(serialize(A)) == A on
// well-formed, already-expanded inputs (ranges collapse into explicit lists
// on output, so the fixed point is the expanded form, not the original text).
func TestRoundTrip_ParseSerialize(t *testing.T) {
	inputs := []string{"[16]", "[[0,1]]", "[[0,1],[2,3]]", "[[12],[13]]"}
	for _, in := range inputs {
		a, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
		out := Serialize(a)
		b, err := Parse(out)
		if err != nil {
			t.Fatalf("Parse(Serialize(%q)) = Parse(%q): %v", in, out, err)
		}
		if !reflect.DeepEqual(a, b) {
			t.Fatalf("round-trip mismatch for %q: %+v vs %+v", in, a, b)
		}
	}
}
