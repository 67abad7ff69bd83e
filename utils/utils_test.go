package utils

import (
	"os"
	"testing"
)

func TestB2s(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{"empty slice", []byte{}, ""},
		{"nil slice", nil, ""},
		{"ascii", []byte("core 3"), "core 3"},
		{"single byte", []byte("x"), "x"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := B2s(tc.input); got != tc.expected {
				t.Errorf("B2s(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestB2s_ZeroAlloc(t *testing.T) {
	b := []byte("a stable backing array")
	allocs := testing.AllocsPerRun(100, func() { _ = B2s(b) })
	if allocs > 0 {
		t.Errorf("B2s allocated memory: %.2f allocs/op", allocs)
	}
}

func TestMix64_Deterministic(t *testing.T) {
	var seed uint64 = 0x9e3779b97f4a7c15
	a := Mix64(seed)
	b := Mix64(seed)
	if a != b {
		t.Error("Mix64 must be a pure function of its input")
	}
}

func TestMix64_Avalanche(t *testing.T) {
	a := Mix64(0)
	b := Mix64(1)
	if a == b {
		t.Error("Mix64(0) and Mix64(1) collided, avalanche property violated")
	}
}

func TestMix64_SequenceDistinct(t *testing.T) {
	seen := make(map[uint64]bool)
	x := uint64(12345)
	for i := 0; i < 1000; i++ {
		x = Mix64(x)
		if seen[x] {
			t.Fatalf("Mix64 produced a repeat after %d iterations", i)
		}
		seen[x] = true
	}
}

func TestPrintWarning_NoPanic(t *testing.T) {
	old := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stderr = w
	defer func() { os.Stderr = old }()

	PrintWarning("test warning\n")

	w.Close()
	buf := make([]byte, 64)
	n, _ := r.Read(buf)
	if string(buf[:n]) != "test warning\n" {
		t.Errorf("PrintWarning wrote %q, want %q", buf[:n], "test warning\n")
	}
}

func BenchmarkB2s(b *testing.B) {
	data := []byte("benchmark payload for zero-alloc conversion")
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = B2s(data)
	}
}

func BenchmarkMix64(b *testing.B) {
	x := uint64(1)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = Mix64(x)
	}
}
