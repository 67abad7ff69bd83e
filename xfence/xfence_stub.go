// xfence_stub.go — portable fallback when cgo/asm is unavailable. Uses
// sync/atomic's sequential-consistency fence as a conservative superset of
// every weaker fence mode; Pause and CLFlush degrade to no-ops, which only
// affects measured latency, not correctness of the coherence protocol.

//go:build (!amd64 && !arm64) || noasm || nocgo

package xfence

import (
	"sync/atomic"
	"unsafe"
)

var seq int32

//go:nosplit
func LFence() { atomic.AddInt32(&seq, 1) }

//go:nosplit
func SFence() { atomic.AddInt32(&seq, 1) }

//go:nosplit
func MFence() { atomic.AddInt32(&seq, 1) }

//go:nosplit
func Pause() {}

func CLFlush(p unsafe.Pointer) {}
