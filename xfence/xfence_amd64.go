// xfence_amd64.go — x86-64 memory fence and pause intrinsics.
//
// These back the Barrier bank's "full fence before every wait()" rule
// (§5 Ordering guarantees) and the configurable load/store fence modes
// consumed by package kernel's store/load families.

//go:build amd64 && !noasm && !nocgo

package xfence

/*
static inline void do_lfence(void) { __asm__ __volatile__("lfence" ::: "memory"); }
static inline void do_sfence(void) { __asm__ __volatile__("sfence" ::: "memory"); }
static inline void do_mfence(void) { __asm__ __volatile__("mfence" ::: "memory"); }
static inline void do_pause(void)  { __asm__ __volatile__("pause"  ::: "memory"); }
static inline void do_clflush(void *p) { __asm__ __volatile__("clflush (%0)" :: "r"(p) : "memory"); }
*/
import "C"
import "unsafe"

//go:norace
//go:nocheckptr
//go:nosplit
//go:inline
func LFence() { C.do_lfence() }

//go:norace
//go:nocheckptr
//go:nosplit
//go:inline
func SFence() { C.do_sfence() }

//go:norace
//go:nocheckptr
//go:nosplit
//go:inline
func MFence() { C.do_mfence() }

//go:norace
//go:nocheckptr
//go:nosplit
//go:inline
func Pause() { C.do_pause() }

// CLFlush evicts the cache line containing p from all levels of the
// caching hierarchy, forcing the next access to observe Invalid state.
//
//go:norace
//go:nocheckptr
func CLFlush(p unsafe.Pointer) { C.do_clflush(p) }
