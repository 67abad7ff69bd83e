// Package ccerr defines the run-wide error taxonomy: every fallible
// operation in this module wraps one of these four sentinels so callers
// can distinguish categories with errors.Is without string matching.
package ccerr

import "errors"

var (
	// ErrConfig covers mismatched -t/-x/-A shapes, out-of-range fence
	// levels, and impossible stride/repetition combinations.
	ErrConfig = errors.New("ccbench: config error")

	// ErrAlloc covers buffer or tracker allocation failure. NUMA fallback
	// to plain aligned allocation is not itself an error.
	ErrAlloc = errors.New("ccbench: allocation error")

	// ErrSystem covers OS/thread primitive failure: pin, create, join,
	// barrier wait.
	ErrSystem = errors.New("ccbench: system error")

	// ErrKernelInternal names the unknown-test_id category. No code in this
	// module returns or logs it: a worker whose test_id is unknown gets no
	// choreography steps, runs no kernel and records no samples.
	ErrKernelInternal = errors.New("ccbench: unknown kernel")
)
