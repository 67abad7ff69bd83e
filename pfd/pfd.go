// Package pfd implements the PFDStore of spec.md §3/§4.6: a bounded,
// single-writer/single-reader buffer of per-repetition cycle samples, plus
// the AbsDeviation summary statistics derived from it.
//
// Grounded on original_source/src/ccbench.c's PFD_IN/PFD_OUT macros and
// the pfd_t sample array they write into; "PFD" (per-file-descriptor in
// the source's naming convention, "profiling data" in its use here) is
// kept as the package name to keep the terminology consistent with the
// spec's own glossary entry.
package pfd

import "math"

// Store is one rank's fixed-capacity cycle-sample buffer for one store_id
// (spec.md's PFDStore(rank, store_id)).
type Store struct {
	samples []uint64
	n       int
}

// NewStore allocates a Store with capacity for reps samples.
func NewStore(reps int) *Store {
	return &Store{samples: make([]uint64, reps)}
}

// Record appends one sample; once the store is full, further samples are
// dropped, not wrapped. Called only by the owning rank; no
// synchronization needed per spec.md §5.
func (s *Store) Record(cycles uint64) {
	if s.n >= len(s.samples) {
		return
	}
	s.samples[s.n] = cycles
	s.n++
}

// Len reports how many samples have actually been recorded.
func (s *Store) Len() int { return s.n }

// Samples returns the recorded prefix of the buffer, read-only.
func (s *Store) Samples() []uint64 { return s.samples[:s.n] }

// Summary is spec.md's AbsDeviation: {avg, min, max, std_dev, abs_dev}.
type Summary struct {
	Avg    float64
	Min    uint64
	Max    uint64
	StdDev float64
	AbsDev float64
}

// Summarize computes a Summary over the recorded samples. Called by the
// Reporter after every worker has joined; the zero Summary (all fields
// zero) is returned for an empty Store. Callers that need to distinguish
// "genuinely zero" from "no samples recorded" (spec.md §8's boundary
// case) must check Len() first - report.firstValid does this before ever
// calling Summarize.
func Summarize(s *Store) Summary {
	data := s.Samples()
	if len(data) == 0 {
		return Summary{}
	}

	var sum float64
	min, max := data[0], data[0]
	for _, v := range data {
		sum += float64(v)
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	avg := sum / float64(len(data))

	var varSum, absSum float64
	for _, v := range data {
		d := float64(v) - avg
		varSum += d * d
		absSum += math.Abs(d)
	}
	stdDev := math.Sqrt(varSum / float64(len(data)))
	absDev := absSum / float64(len(data))

	return Summary{Avg: avg, Min: min, Max: max, StdDev: stdDev, AbsDev: absDev}
}
