package numaalloc

import "testing"

func TestAlloc_DefaultLines(t *testing.T) {
	r, err := Alloc(Options{PreferredNode: -1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer r.Close()
	if r.Len() == 0 {
		t.Fatal("expected a non-empty region")
	}
}

func TestAlloc_ZeroInitialized(t *testing.T) {
	r, err := Alloc(Options{Lines: 8, PreferredNode: -1, Touch: TouchFullRegion})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer r.Close()
	for i := 0; i < r.Len(); i++ {
		line := r.At(uint32(i))
		for _, w := range line.Word {
			if w != 0 {
				t.Fatalf("line %d not zero-initialized", i)
			}
		}
	}
}

func TestAlloc_TargetIsLineZero(t *testing.T) {
	r, err := Alloc(Options{Lines: 4, PreferredNode: -1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer r.Close()
	if r.Target() != r.At(0) {
		t.Fatal("Target() should be line 0")
	}
}

func TestAlloc_DisableNUMANeverFails(t *testing.T) {
	r, err := Alloc(Options{Lines: 4, DisableNUMA: true, PreferredNode: 0})
	if err != nil {
		t.Fatalf("unexpected error with NUMA disabled: %v", err)
	}
	defer r.Close()
}

func TestAlloc_LockPagesBestEffort(t *testing.T) {
	r, err := Alloc(Options{Lines: 4, PreferredNode: -1, LockPages: true})
	if err != nil {
		t.Fatalf("LockPages should never fail the allocation itself: %v", err)
	}
	defer r.Close()
}

func TestAlloc_UnknownNodeFallsBackSilently(t *testing.T) {
	r, err := Alloc(Options{Lines: 4, PreferredNode: 99999})
	if err != nil {
		t.Fatalf("unknown NUMA node should fall back, not error: %v", err)
	}
	defer r.Close()
}

func TestAlloc_CloseSucceeds(t *testing.T) {
	r, err := Alloc(Options{Lines: 4, PreferredNode: -1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("unexpected error on close: %v", err)
	}
}
