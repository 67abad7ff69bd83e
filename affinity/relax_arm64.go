// relax_arm64.go — ARM64 spin-wait hint, mirrors relax_amd64.go.

//go:build arm64 && !noasm && !nocgo

package affinity

/*
#ifdef __aarch64__
static inline void cpu_yield() {
    __asm__ __volatile__("yield" ::: "memory");
}
#else
#error "This file requires ARM64 architecture"
#endif
*/
import "C"

// CPURelax emits the ARM64 YIELD instruction.
//
//go:norace
//go:nocheckptr
//go:nosplit
//go:inline
//go:registerparams
func CPURelax() {
	C.cpu_yield()
}
