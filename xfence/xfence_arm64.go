// xfence_arm64.go — ARM64 memory barrier intrinsics.
//
// ARM64 has no word-granular cache-line flush instruction exposed to
// userspace without privileged access on most kernels (DC CIVAC requires
// CPU feature gating); CLFlush is therefore a best-effort full barrier, and
// the invalidate kernel's measured cost on this architecture reflects a
// store-and-drain rather than a true eviction. Documented in DESIGN.md.

//go:build arm64 && !noasm && !nocgo

package xfence

/*
static inline void do_dmb_ld(void)  { __asm__ __volatile__("dmb ishld" ::: "memory"); }
static inline void do_dmb_st(void)  { __asm__ __volatile__("dmb ishst" ::: "memory"); }
static inline void do_dmb_full(void){ __asm__ __volatile__("dmb ish"   ::: "memory"); }
static inline void do_yield(void)   { __asm__ __volatile__("yield"     ::: "memory"); }
*/
import "C"
import "unsafe"

//go:norace
//go:nocheckptr
//go:nosplit
//go:inline
func LFence() { C.do_dmb_ld() }

//go:norace
//go:nocheckptr
//go:nosplit
//go:inline
func SFence() { C.do_dmb_st() }

//go:norace
//go:nocheckptr
//go:nosplit
//go:inline
func MFence() { C.do_dmb_full() }

//go:norace
//go:nocheckptr
//go:nosplit
//go:inline
func Pause() { C.do_yield() }

// CLFlush issues a full barrier; see the architecture note above.
//
//go:norace
//go:nocheckptr
func CLFlush(p unsafe.Pointer) { C.do_dmb_full() }
