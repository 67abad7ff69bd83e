// Package kernel implements every measured operation spec.md §4.6 calls an
// operation kernel, plus the classic-mode choreography table of §4.7.
//
// Grounded on original_source/src/ccbench.c's kernel functions (cas,
// cas_0_eventually, fai, tas, swap, store_0[_eventually[_pfd1]], load_0[_
// eventually[_no_pf]], load_next, invalidate): same stride-hiding
// draw-then-op loop, same fence-mode dispatch, same PFD bracket placement.
// Every kernel here takes its rank and repetition index as explicit
// parameters (spec.md §9's "no thread-local lookup" design note) instead
// of reading the source's __thread ID.
package kernel

import (
	"unsafe"

	"ccbench/atomicops"
	"ccbench/barrier"
	"ccbench/cacheline"
	"ccbench/pfd"
	"ccbench/racetrack"
	"ccbench/rankmap"
	"ccbench/runconfig"
	"ccbench/tsc"
	"ccbench/utils"
	"ccbench/xfence"
)

// TestID names one entry in the kernel catalogue of spec.md §4.6.
type TestID int

const (
	StoreOnModified TestID = iota
	StoreOnExclusive
	StoreOnShared
	StoreOnOwnedMine
	StoreOnOwned
	StoreOnInvalid
	LoadFromModified
	LoadFromExclusive
	LoadFromShared
	LoadFromOwned
	LoadFromInvalid
	InvalidateID
	CAS
	FAI
	Swap
	TAS
	CASOnModified
	FAIOnModified
	TASOnModified
	SwapOnModified
	CASOnShared
	FAIOnShared
	TASOnShared
	SwapOnShared
	CASConcurrent
	CASUntilSuccess
	LoadFromL1
	LoadFromMemSize
	LFenceID
	SFenceID
	MFenceID
	PauseID
	NopID
	StoreOnModifiedNoSync
)

// Rand is the per-rank stride-hiding PRNG. Seeded once at round setup and
// reused across every repetition, mirroring the source's thread-local
// clrand() state.
//
// Grounded on utils.Mix64, already used elsewhere in this tree as an
// avalanche mix; chained on itself it is a minimal, allocation-free xorshift-
// style generator, in keeping with the source's own tiny xorshift clrand().
type Rand struct{ state uint64 }

// NewRand creates a Rand from a nonzero seed (0 is remapped to 1 so the
// generator never gets stuck).
func NewRand(seed uint64) *Rand {
	if seed == 0 {
		seed = 1
	}
	return &Rand{state: seed}
}

// Next draws a value in [0, stride). stride <= 1 always yields 0, matching
// the source's clrand() under --stride 1 (the default): the loop below
// always exits on its first iteration.
func (r *Rand) Next(stride int) uint32 {
	r.state = utils.Mix64(r.state)
	if stride <= 1 {
		return 0
	}
	return uint32(r.state % uint64(stride))
}

// StrideHide repeats op on a freshly drawn line index until the draw lands
// on 0, guaranteeing at least one touch of the contended target (line 0)
// per call while defeating hardware prefetchers with the intervening
// touches. It returns the result of that final, cln==0 call.
func StrideHide(rnd *Rand, stride int, op func(cln uint32) uint64) uint64 {
	for {
		cln := rnd.Next(stride)
		res := op(cln)
		if cln == 0 {
			return res
		}
	}
}

// claimOnTouch reports the winner-claim rule every kernel in this package
// follows: every kernel that touches the contended line - whether via a
// single-shot op or the final, cln==0 iteration of a stride-hiding loop -
// calls Tracker.TryClaim at that touch. This matches every RACE_TRY_WITH_
// REP/RACE_TRY call site in the source, which appears in every kernel
// regardless of its functional family; only Tracker.RecordSuccess is
// reserved for the narrower set spec.md §4.5 names (retry-until-success,
// TAS, FAI, SWAP).
func claimOnTouch(tr *racetrack.Tracker, rank, rep int) {
	tr.TryClaim(rank, rep)
}

// --- Store-on-state family ---------------------------------------------

// StoreEventually is the stride-hiding store kernel behind every
// STORE_ON_* test, dispatching on the configured store fence mode. Double-
// write mode touches a second line's word[0] in the same iteration,
// matching the source's store_0_eventually_dw's w[16] write.
func StoreEventually(region *cacheline.Region, rnd *Rand, stride int, fence runconfig.FenceMode, tr *racetrack.Tracker, store *pfd.Store, rank, rep int) {
	storeEventuallyInto(region, rnd, stride, fence, tr, store, rank, rep)
}

// StoreEventuallyPFD1 is store_0_eventually_pfd1: a second store point used
// by the owned-transition choreographies, which need two measured stores
// per repetition, recorded into the rank's second PFDStore.
func StoreEventuallyPFD1(region *cacheline.Region, rnd *Rand, stride int, fence runconfig.FenceMode, tr *racetrack.Tracker, store *pfd.Store, rank, rep int) {
	storeEventuallyInto(region, rnd, stride, fence, tr, store, rank, rep)
}

func storeEventuallyInto(region *cacheline.Region, rnd *Rand, stride int, fence runconfig.FenceMode, tr *racetrack.Tracker, store *pfd.Store, rank, rep int) {
	StrideHide(rnd, stride, func(cln uint32) uint64 {
		line := region.At(cln)
		start := tsc.Now()
		atomicops.Store32(&line.Word[0], cln)
		if fence == runconfig.FenceDoubleWrite {
			flat := region.Flat()
			idx := (int(cln)%region.Len())*16 + 16
			if idx < len(flat) {
				atomicops.Store32(&flat[idx], cln)
			}
		} else if fence == runconfig.FencePartial {
			xfence.SFence()
		} else if fence == runconfig.FenceFull {
			xfence.MFence()
		}
		elapsed := tsc.Now() - start
		if cln == 0 {
			claimOnTouch(tr, rank, rep)
			store.Record(elapsed)
		}
		return uint64(cln)
	})
}

// StoreSingle is store_0: a single, non-stride-hidden store, used by
// STORE_ON_MODIFIED_NO_SYNC's measured roles 0-2.
func StoreSingle(region *cacheline.Region, fence runconfig.FenceMode, tr *racetrack.Tracker, store *pfd.Store, rank, rep int) {
	line := region.Target()
	claimOnTouch(tr, rank, rep)
	start := tsc.Now()
	atomicops.Store32(&line.Word[0], uint32(rep))
	switch fence {
	case runconfig.FencePartial:
		xfence.SFence()
	case runconfig.FenceFull, runconfig.FenceDoubleWrite:
		xfence.MFence()
	}
	store.Record(tsc.Now() - start)
}

// StoreSingleNoPF is store_0_no_pf: the same single store as StoreSingle,
// still claiming a touch for race-winner purposes, but with no PFD
// bracket - used by STORE_ON_MODIFIED_NO_SYNC's non-measured contenders.
func StoreSingleNoPF(region *cacheline.Region, fence runconfig.FenceMode, tr *racetrack.Tracker, rank, rep int) {
	line := region.Target()
	claimOnTouch(tr, rank, rep)
	atomicops.Store32(&line.Word[0], uint32(rep))
	switch fence {
	case runconfig.FencePartial:
		xfence.SFence()
	case runconfig.FenceFull, runconfig.FenceDoubleWrite:
		xfence.MFence()
	}
}

// --- Load-from-state family ---------------------------------------------

// LoadEventually is load_0_eventually: dispatches on the configured load
// fence mode and always finishes with an unconditional full fence,
// matching the source's trailing _mm_mfence() outside the dispatch.
func LoadEventually(region *cacheline.Region, rnd *Rand, stride int, fence runconfig.FenceMode, tr *racetrack.Tracker, store *pfd.Store, rank, rep int) uint32 {
	var val uint32
	StrideHide(rnd, stride, func(cln uint32) uint64 {
		line := region.At(cln)
		start := tsc.Now()
		v := atomicops.Load32(&line.Word[0])
		switch fence {
		case runconfig.FencePartial:
			xfence.LFence()
		case runconfig.FenceFull, runconfig.FenceDoubleWrite:
			xfence.MFence()
		}
		elapsed := tsc.Now() - start
		if cln == 0 {
			val = v
			claimOnTouch(tr, rank, rep)
			store.Record(elapsed)
		}
		return uint64(v)
	})
	xfence.MFence()
	return val
}

// LoadNoPF is load_0_eventually_no_pf: the non-measured variant used by
// contenders in a choreography step that only need to force Shared state,
// never recording a sample but still participating in the race for
// winner-claim purposes (the source calls RACE_TRY() here too).
func LoadNoPF(region *cacheline.Region, rnd *Rand, stride int, tr *racetrack.Tracker, rank, rep int) uint32 {
	var val uint32
	StrideHide(rnd, stride, func(cln uint32) uint64 {
		line := region.At(cln)
		v := atomicops.Load32(&line.Word[0])
		if cln == 0 {
			val = v
			claimOnTouch(tr, rank, rep)
		}
		return uint64(v)
	})
	xfence.MFence()
	return val
}

// LoadSingle is load_0: a single, non-stride-hidden load.
func LoadSingle(region *cacheline.Region, fence runconfig.FenceMode, tr *racetrack.Tracker, store *pfd.Store, rank, rep int) uint32 {
	line := region.Target()
	claimOnTouch(tr, rank, rep)
	start := tsc.Now()
	v := atomicops.Load32(&line.Word[0])
	switch fence {
	case runconfig.FencePartial:
		xfence.LFence()
	case runconfig.FenceFull, runconfig.FenceDoubleWrite:
		xfence.MFence()
	}
	store.Record(tsc.Now() - start)
	xfence.MFence()
	return v
}

// --- Invalidate -----------------------------------------------------------

// InvalidateOp is invalidate: a clflush on the target line followed by a
// full fence, timed.
func InvalidateOp(region *cacheline.Region, tr *racetrack.Tracker, store *pfd.Store, rank, rep int) {
	line := region.Target()
	claimOnTouch(tr, rank, rep)
	start := tsc.Now()
	xfence.CLFlush(unsafe.Pointer(&line.Word[0]))
	xfence.MFence()
	store.Record(tsc.Now() - start)
}

// --- CAS / FAI / TAS / SWAP -----------------------------------------------

// CASSingle is cas: a single CAS on the target line with expected value
// rep&1, desired its complement.
func CASSingle(region *cacheline.Region, tr *racetrack.Tracker, store *pfd.Store, rank, rep int) bool {
	line := region.Target()
	o := uint32(rep & 1)
	no := o ^ 1
	claimOnTouch(tr, rank, rep)
	start := tsc.Now()
	_, swapped := atomicops.CAS32(&line.Word[0], o, no)
	store.Record(tsc.Now() - start)
	return swapped
}

// CASNoPF is cas_no_pf: the same single CAS without a PFD bracket, run by
// a DoOpNoPF step on a CAS-family test. CAS_CONCURRENT measures every role
// with CASSingle and does not use it.
func CASNoPF(region *cacheline.Region, tr *racetrack.Tracker, rank, rep int) bool {
	line := region.Target()
	o := uint32(rep & 1)
	no := o ^ 1
	claimOnTouch(tr, rank, rep)
	_, swapped := atomicops.CAS32(&line.Word[0], o, no)
	return swapped
}

// CASEventually is cas_0_eventually: the stride-hiding CAS loop.
func CASEventually(region *cacheline.Region, rnd *Rand, stride int, tr *racetrack.Tracker, store *pfd.Store, rank, rep int) bool {
	o := uint32(rep & 1)
	no := o ^ 1
	var success bool
	StrideHide(rnd, stride, func(cln uint32) uint64 {
		line := region.At(cln)
		start := tsc.Now()
		observed, swapped := atomicops.CAS32(&line.Word[0], o, no)
		elapsed := tsc.Now() - start
		if cln == 0 {
			success = swapped
			claimOnTouch(tr, rank, rep)
			store.Record(elapsed)
		}
		return uint64(observed)
	})
	return success
}

// FAIEventually is fai: the stride-hiding fetch-and-add loop. FAI always
// carries winner semantics, so a successful touch records both a win claim
// and a common-start latency sample.
func FAIEventually(region *cacheline.Region, rnd *Rand, stride int, tr *racetrack.Tracker, store *pfd.Store, rank, rep int) uint32 {
	var result uint32
	StrideHide(rnd, stride, func(cln uint32) uint64 {
		line := region.At(cln)
		start := tsc.Now()
		v := atomicops.FAI32(&line.Word[0])
		elapsed := tsc.Now() - start
		if cln == 0 {
			result = v
			claimOnTouch(tr, rank, rep)
			store.Record(elapsed)
			tr.RecordSuccess(rank, rep, tsc.Now())
		}
		return uint64(v)
	})
	return result
}

// TASEventually is tas: the stride-hiding test-and-set loop. Reports
// whether the touch observed the slot previously Free (i.e. acquired it),
// per the source's (r != 255) return. The slot itself is left Taken; the
// choreography's DoReset step is responsible for re-arming it.
func TASEventually(region *cacheline.Region, rnd *Rand, stride int, tr *racetrack.Tracker, store *pfd.Store, rank, rep int) bool {
	var acquired bool
	StrideHide(rnd, stride, func(cln uint32) uint64 {
		line := region.At(cln)
		start := tsc.Now()
		prev := atomicops.TAS32(&line.Word[0])
		elapsed := tsc.Now() - start
		if cln == 0 {
			acquired = prev == atomicops.Free
			claimOnTouch(tr, rank, rep)
			store.Record(elapsed)
			if acquired {
				tr.RecordSuccess(rank, rep, tsc.Now())
			}
		}
		return uint64(prev)
	})
	return acquired
}

// TASReset rearms the target line's slot to Free after a TAS measurement,
// preserving re-entrancy across repetitions (spec.md §4.6).
func TASReset(region *cacheline.Region) {
	atomicops.Store32(&region.Target().Word[0], atomicops.Free)
}

// forceSuccessPrime realizes the --success flag's documented effect on
// CAS_ON_MODIFIED and TAS_ON_MODIFIED's role-0 priming step
// (original_source/src/ccbench.c:1100-1108, :1138-1148); it is a no-op
// for every other test id.
//
// CAS_ON_MODIFIED: with --success, the expected value CASSingle/
// CASEventually will compare against (rep&1) is written into the line
// so role 1's CAS is guaranteed to observe a match.
//
// TAS_ON_MODIFIED: without --success, the line is forced to a non-Free
// sentinel so role 1's TAS reliably contends against a held slot;
// with --success, that forcing is skipped, leaving whatever
// store_0_eventually wrote so role 1's TAS can acquire it.
func forceSuccessPrime(testID TestID, p ExecParams) {
	switch testID {
	case CASOnModified:
		if p.Cfg.ForceSuccess {
			atomicops.Store32(&p.Region.Target().Word[0], uint32(p.Rep&1))
		}
	case TASOnModified:
		if !p.Cfg.ForceSuccess {
			atomicops.Store32(&p.Region.Target().Word[0], 0xFFFFFFFF)
			xfence.MFence()
		}
	}
}

// SwapEventually is swap: the stride-hiding unconditional-swap loop,
// writing rank's own identity into the slot and reporting the prior
// occupant. Ends with an unconditional full fence, matching the source.
func SwapEventually(region *cacheline.Region, rnd *Rand, stride int, tr *racetrack.Tracker, store *pfd.Store, rank, rep int) uint32 {
	var prevResult uint32
	StrideHide(rnd, stride, func(cln uint32) uint64 {
		line := region.At(cln)
		start := tsc.Now()
		prev := atomicops.Swap32(&line.Word[0], uint32(rank))
		elapsed := tsc.Now() - start
		if cln == 0 {
			prevResult = prev
			claimOnTouch(tr, rank, rep)
			store.Record(elapsed)
			tr.RecordSuccess(rank, rep, tsc.Now())
		}
		return uint64(prev)
	})
	xfence.MFence()
	return prevResult
}

// CASUntilSuccessOp is the retry-until-success kernel of spec.md §4.6: a
// stride-hiding walk to the target line (for prefetcher defeat, like every
// other kernel here), then a CAS retry loop with exponential pause
// backoff capped at the rank's backoff_cap. Every attempt increments
// cas_attempts; only a successful attempt claims the repetition and
// records its common-start latency - this asymmetry (never claiming on a
// failed attempt) is deliberate, per spec.md §9's resolved open question.
func CASUntilSuccessOp(region *cacheline.Region, rnd *Rand, stride int, tr *racetrack.Tracker, store *pfd.Store, rank, rep, backoffCap int) {
	line := region.Target()
	StrideHide(rnd, stride, func(cln uint32) uint64 { return uint64(cln) })

	if backoffCap < 1 {
		backoffCap = 1
	}
	backoff := 1
	start := tsc.Now()
	for {
		cur := atomicops.Load32(&line.Word[0])
		desired := cur ^ 1
		tr.RecordCASAttempt(rank)
		if _, swapped := atomicops.CAS32(&line.Word[0], cur, desired); swapped {
			tr.RecordCASSuccess(rank)
			break
		}
		tr.RecordCASFailure(rank)
		for i := 0; i < backoff; i++ {
			xfence.Pause()
		}
		if backoff < backoffCap {
			backoff *= 2
			if backoff > backoffCap {
				backoff = backoffCap
			}
		}
	}
	store.Record(tsc.Now() - start)
	claimOnTouch(tr, rank, rep)
	tr.RecordSuccess(rank, rep, tsc.Now())
}

// --- Pointer-chase / load-from-mem-size -----------------------------------

// BuildChaseCycle links region's lines into a single permutation cycle of
// length region.Len(), so following NextPtr from any line visits every
// other line exactly once before returning. Grounded on the source's
// create_rand_list_cl, reproduced here as a Fisher-Yates shuffle over line
// indices rather than the source's manual singly-linked-list construction.
func BuildChaseCycle(region *cacheline.Region, seed uint64) {
	n := region.Len()
	if n < 2 {
		return
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	rnd := NewRand(seed)
	for i := n - 1; i > 0; i-- {
		j := int(rnd.Next(i + 1))
		order[i], order[j] = order[j], order[i]
	}
	for i := 0; i < n; i++ {
		from := region.At(uint32(order[i]))
		to := region.At(uint32(order[(i+1)%n]))
		*from.NextPtr() = uint64(uintptr(unsafe.Pointer(to)))
	}
}

// PointerChase is load_next: follows the chase cycle for nLines
// dereferences, applying the configured load fence mode between each one,
// and records the average per-dereference cost (the source's PFDOR,
// "PFD out, ranged" - elapsed divided by the dereference count).
func PointerChase(region *cacheline.Region, fence runconfig.FenceMode, nLines int, tr *racetrack.Tracker, store *pfd.Store, rank, rep int) {
	if nLines <= 0 {
		nLines = region.Len()
	}
	claimOnTouch(tr, rank, rep)
	line := region.Target()
	start := tsc.Now()
	for i := 0; i < nLines; i++ {
		next := *line.NextPtr()
		line = (*cacheline.Line)(unsafe.Pointer(uintptr(next)))
		switch fence {
		case runconfig.FencePartial:
			xfence.LFence()
		case runconfig.FenceFull, runconfig.FenceDoubleWrite:
			xfence.MFence()
		}
	}
	elapsed := tsc.Now() - start
	store.Record(elapsed / uint64(nLines))
}

// --- Fences ----------------------------------------------------------------

// FenceOp times a single instance of the named fence/pause/nop primitive.
func FenceOp(id TestID, store *pfd.Store) {
	start := tsc.Now()
	switch id {
	case LFenceID:
		xfence.LFence()
	case SFenceID:
		xfence.SFence()
	case MFenceID:
		xfence.MFence()
	case PauseID:
		xfence.Pause()
	case NopID:
		// no-op baseline
	}
	store.Record(tsc.Now() - start)
}

// --- Choreography -----------------------------------------------------------

// ActionKind is one step of a classic-mode choreography.
type ActionKind int

const (
	DoStore ActionKind = iota
	DoStore2
	DoStoreSingle
	DoStoreSingleNoPF
	DoLoad
	DoLoadNoPF
	DoInvalidate
	DoOp
	DoOpNoPF
	DoReset
	DoForceSuccessPrime
	DoPointerChase
	DoFence
	WaitB1
	WaitB2
)

// Action is one interpreted step; round.Driver walks a []Action in order.
type Action struct {
	Kind ActionKind
}

// Choreography returns the ordered steps role must perform for testID in
// classic (no seed core) mode, per the family table in spec.md §4.7.
// groupSize lets LOAD_FROM_SHARED's resolved choreography collapse
// correctly when a group has only two participants (role 2's step never
// exists, so it is simply never returned).
func Choreography(id TestID, role, groupSize int) []Action {
	switch id {
	case StoreOnModified:
		switch role {
		case 0:
			return []Action{{DoStore}}
		case 1:
			return []Action{{WaitB1}, {DoStore}}
		default:
			return []Action{{WaitB1}}
		}
	case StoreOnModifiedNoSync:
		// original_source/src/ccbench.c:792-802: roles 0, 1, and 2 all race
		// the plain, non-stride-hidden store_0 with no barrier at all (the
		// "no sync" in the name); every other role contends unmeasured via
		// store_0_no_pf.
		switch role {
		case 0, 1, 2:
			return []Action{{DoStoreSingle}}
		default:
			return []Action{{DoStoreSingleNoPF}}
		}
	case StoreOnExclusive:
		switch role {
		case 0:
			return []Action{{DoLoad}, {WaitB1}}
		case 1:
			return []Action{{WaitB1}, {DoStore}}
		default:
			return []Action{{WaitB1}}
		}
	case StoreOnShared:
		switch role {
		case 0:
			return []Action{{DoLoad}, {WaitB1}, {WaitB2}}
		case 1:
			return []Action{{WaitB1}, {WaitB2}, {DoStore}}
		case 2:
			return []Action{{WaitB1}, {DoLoad}, {WaitB2}}
		default:
			return []Action{{WaitB1}, {DoLoadNoPF}, {WaitB2}}
		}
	case StoreOnOwnedMine:
		switch role {
		case 0:
			return []Action{{WaitB1}, {DoLoad}, {WaitB2}}
		case 1:
			return []Action{{DoStore}, {WaitB1}, {WaitB2}, {DoStore2}}
		default:
			return []Action{{WaitB1}, {DoLoadNoPF}, {WaitB2}}
		}
	case StoreOnOwned:
		switch role {
		case 0:
			return []Action{{DoStore}, {WaitB1}, {WaitB2}}
		case 1:
			return []Action{{WaitB1}, {DoLoad}, {WaitB2}, {DoStore2}}
		default:
			return []Action{{WaitB1}, {DoLoadNoPF}, {WaitB2}}
		}
	case StoreOnInvalid:
		switch role {
		case 0:
			return []Action{{WaitB1}, {DoStore}}
		case 1:
			return []Action{{DoInvalidate}, {WaitB1}}
		default:
			return []Action{{WaitB1}}
		}
	case LoadFromModified:
		switch role {
		case 0:
			return []Action{{DoStore}, {WaitB1}}
		case 1:
			return []Action{{WaitB1}, {DoLoad}}
		default:
			return []Action{{WaitB1}}
		}
	case LoadFromExclusive:
		switch role {
		case 0:
			return []Action{{DoLoad}, {WaitB1}}
		case 1:
			return []Action{{WaitB1}, {DoLoad}}
		default:
			return []Action{{WaitB1}}
		}
	case LoadFromShared:
		// Resolved open question (spec.md §9): mirrors StoreOnShared with
		// the measured op moved to the last-arriving role.
		switch role {
		case 0:
			return []Action{{DoStore}, {WaitB1}, {WaitB2}}
		case 1:
			return []Action{{WaitB1}, {WaitB2}, {DoLoad}}
		case 2:
			if groupSize < 3 {
				return []Action{{WaitB1}, {WaitB2}}
			}
			return []Action{{WaitB1}, {DoLoadNoPF}, {WaitB2}}
		default:
			return []Action{{WaitB1}, {DoLoadNoPF}, {WaitB2}}
		}
	case LoadFromOwned:
		switch role {
		case 0:
			return []Action{{DoStore}, {WaitB1}, {WaitB2}}
		case 1:
			return []Action{{WaitB1}, {DoLoad}, {WaitB2}}
		case 2:
			return []Action{{WaitB1}, {WaitB2}, {DoLoad}}
		default:
			return []Action{{WaitB1}, {WaitB2}}
		}
	case LoadFromInvalid:
		switch role {
		case 0:
			return []Action{{WaitB1}, {DoLoad}}
		case 1:
			return []Action{{DoInvalidate}, {WaitB1}}
		default:
			return []Action{{WaitB1}}
		}
	case CAS, FAI, Swap:
		switch role {
		case 0:
			return []Action{{DoOp}, {WaitB1}}
		case 1:
			return []Action{{WaitB1}, {DoOp}}
		default:
			return []Action{{WaitB1}}
		}
	case TAS:
		switch role {
		case 0:
			return []Action{{DoOp}, {WaitB1}, {WaitB2}}
		case 1:
			return []Action{{WaitB1}, {DoOp}, {DoReset}, {WaitB2}}
		default:
			return []Action{{WaitB1}, {WaitB2}}
		}
	case CASOnModified, TASOnModified:
		// original_source/src/ccbench.c:1100-1108 (CAS) and :1138-1148
		// (TAS): role 0's priming store is followed by a --success-
		// dependent forcing step before B1 - forceSuccessPrime (called
		// from RunAction) is a no-op for every other test id.
		switch role {
		case 0:
			return []Action{{DoStore}, {DoForceSuccessPrime}, {WaitB1}}
		case 1:
			return []Action{{WaitB1}, {DoOp}}
		default:
			return []Action{{WaitB1}}
		}
	case FAIOnModified, SwapOnModified:
		switch role {
		case 0:
			return []Action{{DoStore}, {WaitB1}}
		case 1:
			return []Action{{WaitB1}, {DoOp}}
		default:
			return []Action{{WaitB1}}
		}
	case CASOnShared:
		switch role {
		case 0:
			return []Action{{DoLoad}, {WaitB1}, {WaitB2}}
		case 1:
			return []Action{{WaitB1}, {DoOp}, {WaitB2}}
		case 2:
			return []Action{{WaitB1}, {DoLoad}, {WaitB2}}
		default:
			return []Action{{WaitB1}, {DoLoadNoPF}, {WaitB2}}
		}
	case FAIOnShared, TASOnShared, SwapOnShared:
		switch role {
		case 0:
			return []Action{{DoLoad}, {WaitB1}, {WaitB2}}
		case 1:
			return []Action{{WaitB1}, {WaitB2}, {DoOp}}
		case 2:
			return []Action{{WaitB1}, {DoLoad}, {WaitB2}}
		default:
			return []Action{{WaitB1}, {DoLoadNoPF}, {WaitB2}}
		}
	case CASConcurrent:
		// original_source/src/ccbench.c:1298-1307: the classic-mode case
		// guards on `ID < test_cores`, and test_cores == T, so every rank
		// runs the measured, single-shot cas() - there is no unmeasured
		// contender role and no barrier wait.
		return []Action{{DoOp}}
	case CASUntilSuccess:
		switch role {
		case 0:
			return []Action{{DoOp}, {WaitB1}}
		case 1:
			return []Action{{WaitB1}, {DoOp}}
		default:
			return []Action{{WaitB1}}
		}
	case LoadFromL1:
		if role == 0 {
			return []Action{{DoOp}, {DoOp}, {DoOp}}
		}
		return nil
	case LoadFromMemSize:
		return []Action{{DoPointerChase}}
	case LFenceID, SFenceID, MFenceID, PauseID, NopID:
		if role <= 1 {
			return []Action{{DoFence}}
		}
		return nil
	case InvalidateID:
		if role == 0 {
			return []Action{{DoInvalidate}}
		}
		return nil
	default:
		return nil
	}
}

// BarrierParticipants counts how many of groupSize roles' classic-mode
// choreography for testID actually wait on B1 and on B2. The table in
// spec.md §4.7 is not symmetric across roles - STORE_ON_MODIFIED's role 0
// never waits on anything at all, for instance - so the barrier bank's
// per-group slots must be sized to the roles that actually call Wait,
// never just assumed to be the whole group. Callers configure
// barrier.Bank.SetParticipants with these counts before spawning any
// worker for a classic-mode test.
func BarrierParticipants(testID TestID, groupSize int) (b1, b2 int) {
	for role := 0; role < groupSize; role++ {
		for _, a := range Choreography(testID, role, groupSize) {
			switch a.Kind {
			case WaitB1:
				b1++
			case WaitB2:
				b2++
			}
		}
	}
	return b1, b2
}

// family buckets the atomic-op test IDs so runOp can dispatch a DoOp/
// DoOpNoPF step to the right underlying kernel regardless of which
// ON_MODIFIED/ON_SHARED/plain variant requested it.
type family int

const (
	famNone family = iota
	famCAS
	famFAI
	famTAS
	famSwap
	famCASUntilSuccess
	famCASConcurrent
)

// HasCASStats reports whether testID is the one kernel that records
// cas_attempts/cas_successes/cas_failures (CASUntilSuccess's retry loop);
// every other test family never calls racetrack.Tracker.RecordCASAttempt
// and friends, so a report built for them has nothing to show there.
func HasCASStats(testID TestID) bool {
	return testID == CASUntilSuccess
}

func baseFamily(id TestID) family {
	switch id {
	case CAS, CASOnModified, CASOnShared:
		return famCAS
	case FAI, FAIOnModified, FAIOnShared:
		return famFAI
	case TAS, TASOnModified, TASOnShared:
		return famTAS
	case Swap, SwapOnModified, SwapOnShared:
		return famSwap
	case CASUntilSuccess:
		return famCASUntilSuccess
	case CASConcurrent:
		return famCASConcurrent
	default:
		return famNone
	}
}

// ExecParams bundles everything RunAction needs to interpret one Action.
// RankIndex is the dense index into the run's shared arrays (Tracker,
// PFDStores); Rank carries the per-worker (core, test, role, group,
// backoff) tuple package rankmap built.
type ExecParams struct {
	Region    *cacheline.Region
	Rand      *Rand
	Cfg       runconfig.RunConfig
	Tracker   *racetrack.Tracker
	Bank      *barrier.Bank
	Store0    *pfd.Store
	Store1    *pfd.Store
	Rank      rankmap.Rank
	RankIndex int
	Rep       int
}

// RunAction executes one choreography step. Barrier steps address the
// caller's own group's per-group slots via barrier.PerGroupSlot.
func RunAction(a Action, testID TestID, p ExecParams) error {
	switch a.Kind {
	case WaitB1:
		return p.Bank.Wait(barrier.PerGroupSlot(p.Rank.Group, 0), p.RankIndex)
	case WaitB2:
		return p.Bank.Wait(barrier.PerGroupSlot(p.Rank.Group, 1), p.RankIndex)
	case DoStore:
		StoreEventually(p.Region, p.Rand, p.Cfg.Stride, p.Cfg.Fence.Store, p.Tracker, p.Store0, p.RankIndex, p.Rep)
	case DoStore2:
		StoreEventuallyPFD1(p.Region, p.Rand, p.Cfg.Stride, p.Cfg.Fence.Store, p.Tracker, p.Store1, p.RankIndex, p.Rep)
	case DoStoreSingle:
		StoreSingle(p.Region, p.Cfg.Fence.Store, p.Tracker, p.Store0, p.RankIndex, p.Rep)
	case DoStoreSingleNoPF:
		StoreSingleNoPF(p.Region, p.Cfg.Fence.Store, p.Tracker, p.RankIndex, p.Rep)
	case DoLoad:
		LoadEventually(p.Region, p.Rand, p.Cfg.Stride, p.Cfg.Fence.Load, p.Tracker, p.Store0, p.RankIndex, p.Rep)
	case DoLoadNoPF:
		LoadNoPF(p.Region, p.Rand, p.Cfg.Stride, p.Tracker, p.RankIndex, p.Rep)
	case DoInvalidate:
		InvalidateOp(p.Region, p.Tracker, p.Store0, p.RankIndex, p.Rep)
	case DoReset:
		TASReset(p.Region)
	case DoForceSuccessPrime:
		forceSuccessPrime(testID, p)
	case DoPointerChase:
		PointerChase(p.Region, p.Cfg.Fence.Load, p.Region.Len(), p.Tracker, p.Store0, p.RankIndex, p.Rep)
	case DoFence:
		FenceOp(testID, p.Store0)
	case DoOp:
		runOp(testID, p, true)
	case DoOpNoPF:
		runOp(testID, p, false)
	}
	return nil
}

// RunDirect executes the single measured kernel call appropriate for
// testID with no choreography and no barriers - this is what seed mode
// uses (spec.md §4.7 step 3c): once B4 releases every contender
// simultaneously, each one races straight into its own kernel call.
func RunDirect(testID TestID, p ExecParams) {
	switch testID {
	case StoreOnModified, StoreOnModifiedNoSync, StoreOnExclusive, StoreOnShared, StoreOnInvalid:
		StoreEventually(p.Region, p.Rand, p.Cfg.Stride, p.Cfg.Fence.Store, p.Tracker, p.Store0, p.RankIndex, p.Rep)
	case StoreOnOwnedMine, StoreOnOwned:
		StoreEventually(p.Region, p.Rand, p.Cfg.Stride, p.Cfg.Fence.Store, p.Tracker, p.Store0, p.RankIndex, p.Rep)
		StoreEventuallyPFD1(p.Region, p.Rand, p.Cfg.Stride, p.Cfg.Fence.Store, p.Tracker, p.Store1, p.RankIndex, p.Rep)
	case LoadFromModified, LoadFromExclusive, LoadFromShared, LoadFromOwned, LoadFromInvalid:
		LoadEventually(p.Region, p.Rand, p.Cfg.Stride, p.Cfg.Fence.Load, p.Tracker, p.Store0, p.RankIndex, p.Rep)
	case InvalidateID:
		InvalidateOp(p.Region, p.Tracker, p.Store0, p.RankIndex, p.Rep)
	case LoadFromMemSize:
		PointerChase(p.Region, p.Cfg.Fence.Load, p.Region.Len(), p.Tracker, p.Store0, p.RankIndex, p.Rep)
	case LFenceID, SFenceID, MFenceID, PauseID, NopID:
		FenceOp(testID, p.Store0)
	default:
		runOp(testID, p, true)
	}
}

func runOp(testID TestID, p ExecParams, measured bool) {
	if testID == LoadFromL1 {
		// original_source/src/ccbench.c:1334-1341: LOAD_FROM_L1 is three
		// single, non-stride-hidden loads (load_0), not a stride-hiding
		// loop - it is not one of the atomic-op families runOp otherwise
		// dispatches, so it is handled directly here.
		LoadSingle(p.Region, p.Cfg.Fence.Load, p.Tracker, p.Store0, p.RankIndex, p.Rep)
		return
	}
	switch baseFamily(testID) {
	case famCAS:
		if measured {
			CASEventually(p.Region, p.Rand, p.Cfg.Stride, p.Tracker, p.Store0, p.RankIndex, p.Rep)
		} else {
			CASNoPF(p.Region, p.Tracker, p.RankIndex, p.Rep)
		}
	case famFAI:
		FAIEventually(p.Region, p.Rand, p.Cfg.Stride, p.Tracker, p.Store0, p.RankIndex, p.Rep)
	case famTAS:
		TASEventually(p.Region, p.Rand, p.Cfg.Stride, p.Tracker, p.Store0, p.RankIndex, p.Rep)
	case famSwap:
		SwapEventually(p.Region, p.Rand, p.Cfg.Stride, p.Tracker, p.Store0, p.RankIndex, p.Rep)
	case famCASUntilSuccess:
		backoffCap := p.Rank.BackoffCap
		if !p.Cfg.Backoff {
			// Without --backoff the pause between failed attempts stays at
			// one iteration instead of doubling.
			backoffCap = 1
		}
		CASUntilSuccessOp(p.Region, p.Rand, p.Cfg.Stride, p.Tracker, p.Store0, p.RankIndex, p.Rep, backoffCap)
	case famCASConcurrent:
		CASSingle(p.Region, p.Tracker, p.Store0, p.RankIndex, p.Rep)
	}
}
