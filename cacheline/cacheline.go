// Package cacheline defines the shared memory shape every rank contends on:
// a run of 64-byte lines, the first of which is the target every kernel in
// package kernel measures against.
package cacheline

import "unsafe"

// Line is one 64-byte cache line: 16 32-bit words, word[0] is the contended
// slot every kernel operates on, word[16] would be a second line's word[0]
// (used by the "double-write" store fence mode to touch two lines per
// iteration without crossing a cache-line boundary within one Line value).
//
//go:notinheap
//go:align 64
type Line struct {
	Word [16]uint32
}

// NextPtr interprets a Line as the head of a pointer-chase arena: word[0] and
// word[1] together hold the 64-bit address of the next Line in the
// permutation cycle built by BuildChaseCycle.
func (l *Line) NextPtr() *uint64 {
	return (*uint64)(unsafe.Pointer(&l.Word[0]))
}

// Region is an ordered run of Lines. Line 0 is the contended target;
// lines 1..N-1 form the stride-hiding / pointer-chase arena.
type Region struct {
	Lines []Line
}

// Target returns the contended line, always Lines[0].
func (r *Region) Target() *Line { return &r.Lines[0] }

// At returns the line at stride offset i from the target, wrapping modulo
// the region length so any stride value the operator supplies is safe to
// index with.
func (r *Region) At(i uint32) *Line {
	return &r.Lines[int(i)%len(r.Lines)]
}

// Len is the number of lines in the region.
func (r *Region) Len() int { return len(r.Lines) }

// Flat reinterprets the region's Lines as one contiguous []uint32, letting
// the double-write store kernel address word[16] one line past word[0] the
// same way the source's cl[cln].word[16] addressing reaches into the next
// struct in an array without an explicit second Line reference.
func (r *Region) Flat() []uint32 {
	return unsafe.Slice((*uint32)(unsafe.Pointer(&r.Lines[0])), len(r.Lines)*16)
}
