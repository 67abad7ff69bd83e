// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: constants.go — Global Benchmark Tunables & Layout Constants
//
// Purpose:
//   - Defines the compile-time shape of the barrier bank, PFD sample rings,
//     and cache-line region layout shared by every package in this module.
//
// Notes:
//   - Everything here is compile-time resolvable; run-specific values (test
//     ids, core lists, repetitions) live in runconfig.RunConfig instead.
//
// ⚠️ No runtime logic here — all values must be compile-time resolvable
// ─────────────────────────────────────────────────────────────────────────────

package constants

// ───────────────────────────── Barrier bank ───────────────────────────────

const (
	// BarrierCount is the number of fixed, named barrier slots: B0-B4, B10,
	// plus a block of per-group slots. Mirrors original_source's NUM_BARRIERS.
	BarrierCount = 16

	// PerGroupBase is the first slot index reserved for per-group barriers;
	// slots below this are the fixed named ones (B0..B4, B10, ...).
	PerGroupBase = 8

	// PerGroupSlots is the number of barrier slots reserved per group
	// (currently B1 and B2 equivalents per group).
	PerGroupSlots = 2

	// MaxGroups bounds how many groups PerGroupBase/PerGroupSlots can address
	// without overflowing BarrierCount.
	MaxGroups = (BarrierCount - PerGroupBase) / PerGroupSlots
)

// Named fixed barrier slots.
const (
	B0  = 0 // round start
	B1  = 1 // reserved as a fallback global B1 when a rank has no group
	B2  = 2 // reserved as a fallback global B2
	B3  = 3 // round end
	B4  = 4 // seed-release barrier
	B10 = 5 // reserved for future use (mirrors original_source's barrier[10] slot)
)

// ───────────────────────────── PFD sample store ───────────────────────────

const (
	// MaxStoresPerRank bounds how many distinct PFDStore measurement points
	// a single rank's kernel may record per repetition (e.g. the second
	// store in an owned-transition test).
	MaxStoresPerRank = 2
)

// ───────────────────────────── Cache-line region ──────────────────────────

const (
	// LineWords is the number of 32-bit words per 64-byte cache line.
	LineWords = 16

	// LineBytes is the size in bytes of one cache line.
	LineBytes = LineWords * 4

	// DefaultRegionLines is the number of lines allocated when the operator
	// does not request a --mem-size large enough to need more, sized so the
	// stride-hiding loop always has somewhere to land beyond the target.
	DefaultRegionLines = 1024
)

// ───────────────────────────── Run defaults ───────────────────────────────

const (
	// DefaultRepetitions mirrors original_source's platform default.
	DefaultRepetitions = 1_000_000

	// DefaultStride is the stride-hiding factor when --stride is not given.
	DefaultStride = 1

	// DefaultBackoffCap is the retry-until-success pause cap when neither
	// --backoff-max nor --backoff-array supplies one.
	DefaultBackoffCap = 1024
)
