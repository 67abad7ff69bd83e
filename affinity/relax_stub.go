// relax_stub.go — no-op spin hint for architectures without PAUSE/YIELD,
// or when cgo/asm is disabled.

//go:build (!amd64 && !arm64) || noasm || nocgo

package affinity

//go:norace
//go:nocheckptr
//go:nosplit
//go:inline
//go:registerparams
func CPURelax() {
}
