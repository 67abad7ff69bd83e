// tsc_arm64.go — ARM64 cycle counter via the virtual count register CNTVCT_EL0.

//go:build arm64 && !noasm && !nocgo

package tsc

/*
#include <stdint.h>

static inline uint64_t read_cntvct(void) {
    uint64_t val;
    __asm__ __volatile__("mrs %0, cntvct_el0" : "=r"(val));
    return val;
}
*/
import "C"

//go:norace
//go:nocheckptr
//go:nosplit
//go:inline
//go:registerparams
func Now() uint64 {
	return uint64(C.read_cntvct())
}
