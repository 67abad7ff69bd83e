// relax_amd64.go — x86-64 spin-wait hint.
//
// A bare PAUSE between spin iterations lets the core yield pipeline
// resources to a sibling SMT thread and avoids the memory-order
// misprediction penalty x86 takes on tight store/load spins. The retry
// loops in package kernel pause through xfence.Pause, not CPURelax.

//go:build amd64 && !noasm && !nocgo

package affinity

/*
#ifdef __x86_64__
static inline void cpu_pause() {
    __asm__ __volatile__("pause" ::: "memory");
}
#else
#error "This file requires x86-64 architecture"
#endif
*/
import "C"

// CPURelax emits the x86-64 PAUSE instruction.
//
//go:norace
//go:nocheckptr
//go:nosplit
//go:inline
//go:registerparams
func CPURelax() {
	C.cpu_pause()
}
