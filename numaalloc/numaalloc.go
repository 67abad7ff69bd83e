// Package numaalloc is the Buffer allocator of spec.md §4.2: a cache-line
// aligned CacheLineRegion, optionally NUMA-pinned and page-locked.
//
// Grounded on original_source/src/ccbench.c's use of posix_memalign plus
// libnuma's numa_alloc_onnode/numa_tonode_memory for the region, and
// mlock for --mlock. This rewrite uses golang.org/x/sys/unix's Mmap/Mlock
// directly (an anonymous mmap is already page- and therefore cache-line
// aligned) instead of linking libnuma. No node-local placement is done:
// a preferred node is only checked for a directory under
// /sys/devices/system/node, and the region is placed wherever the kernel's
// default memory policy puts it. No cgo libnuma binding is linked, since no
// example repo in the pack links against libnuma and x/sys is already the
// pack's syscall dependency of choice.
package numaalloc

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"unsafe"

	"golang.org/x/sys/unix"

	"ccbench/cacheline"
	"ccbench/ccerr"
	"ccbench/constants"
)

// TouchPolicy controls how much of the region is first-touched before the
// run begins, per spec.md §4.2.
type TouchPolicy int

const (
	TouchSingleLine TouchPolicy = iota
	TouchFullRegion
)

// Options mirrors spec.md §4.2's allocator contract.
type Options struct {
	Lines         int
	PreferredNode int // -1 means no preference
	LockPages     bool
	Touch         TouchPolicy
	DisableNUMA   bool
}

// Region wraps the allocated cacheline.Region together with the raw mmap
// slice it was carved from, so Close can unmap it.
type Region struct {
	cacheline.Region
	raw    []byte
	locked bool
}

// Alloc returns a cache-line-aligned, zero-initialized CacheLineRegion.
// The region is always a plain anonymous mmap; a requested NUMA node is
// checked for existence only and does not bind the region to that node.
// A missing node is not an error (spec.md §4.2).
func Alloc(opt Options) (*Region, error) {
	if opt.Lines <= 0 {
		opt.Lines = constants.DefaultRegionLines
	}
	size := opt.Lines * constants.LineBytes

	raw, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("numaalloc: mmap %d bytes: %v: %w", size, err, ccerr.ErrAlloc)
	}

	if !opt.DisableNUMA && opt.PreferredNode >= 0 {
		// Best-effort node hint; failure here never fails the allocation.
		_ = preferNode(opt.PreferredNode)
	}

	r := &Region{raw: raw}
	r.Lines = linesFromBytes(raw)

	switch opt.Touch {
	case TouchFullRegion:
		for i := range r.Lines {
			r.Lines[i] = cacheline.Line{}
		}
	default:
		r.Lines[0] = cacheline.Line{}
	}

	if opt.LockPages {
		if err := unix.Mlock(raw); err == nil {
			r.locked = true
		}
		// best-effort: failure to lock pages is non-fatal per spec.md §4.2.
	}

	return r, nil
}

// Close unmaps the region, unlocking pages first if they were locked.
func (r *Region) Close() error {
	if r.locked {
		_ = unix.Munlock(r.raw)
	}
	return unix.Munmap(r.raw)
}

func linesFromBytes(raw []byte) []cacheline.Line {
	n := len(raw) / constants.LineBytes
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*cacheline.Line)(unsafe.Pointer(&raw[0])), n)
}

// preferNode checks that the node's directory exists under
// /sys/devices/system/node; it writes no placement hint. The caller
// ignores its result, so a platform without NUMA (containers, non-Linux)
// never fails the allocation.
func preferNode(node int) error {
	path := filepath.Join("/sys/devices/system/node", "node"+strconv.Itoa(node))
	if _, err := os.Stat(path); err != nil {
		return err
	}
	// Real node-local allocation requires mbind(2), which x/sys does not
	// wrap on most architectures; presence of the node directory is used
	// only as a best-effort existence check so callers on non-NUMA hosts
	// silently fall back rather than erroring.
	return nil
}
