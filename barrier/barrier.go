// Package barrier implements the fixed bank of reconfigurable
// synchronization points spec.md §4.1 calls the BarrierBank.
//
// Grounded on original_source/src/barrier.c/barrier.h: the same fixed-size
// array of named slots (NUM_BARRIERS=16), the same "reconfigure a slot to
// expect n participants" operation, and the same full-fence-before-wait
// rule. Go has no pthread_barrier_t, so each slot is a sense-reversing
// barrier built from sync.Mutex/sync.Cond and a generation counter instead
// of wrapping a libc primitive.
package barrier

import (
	"fmt"
	"sync"

	"ccbench/ccerr"
	"ccbench/constants"
	"ccbench/xfence"
)

// slot is one reconfigurable sense-reversing barrier.
type slot struct {
	mu           sync.Mutex
	cond         *sync.Cond
	participants int
	waiting      int
	generation   uint64
	active       bool // true while at least one waiter is blocked
}

// Bank is the fixed array of barrier slots, addressed by index.
// Per-group slots live at constants.PerGroupBase + group*constants.PerGroupSlots + k.
type Bank struct {
	slots [constants.BarrierCount]*slot
}

// NewBank allocates a Bank with every slot initially expecting numProcs
// participants, mirroring barriers_init's color_all default.
func NewBank(numProcs int) *Bank {
	b := &Bank{}
	for i := range b.slots {
		s := &slot{participants: numProcs}
		s.cond = sync.NewCond(&s.mu)
		b.slots[i] = s
	}
	return b
}

// PerGroupSlot computes the barrier index for (group, k) per spec.md §4.1.
func PerGroupSlot(group, k int) int {
	return constants.PerGroupBase + group*constants.PerGroupSlots + k
}

// SetParticipants reconfigures slot to expect n callers on its next round.
// Returns ErrConfig if any thread is currently waiting on that slot, per
// spec.md §4.1's contract (barrier_set_participants has no such check in
// the source, since it is only ever called before threads are spawned;
// this rewrite enforces it explicitly since Go makes misuse easy to detect).
func (b *Bank) SetParticipants(slotIdx, n int) error {
	if slotIdx < 0 || slotIdx >= len(b.slots) {
		return fmt.Errorf("barrier: slot %d out of range: %w", slotIdx, ccerr.ErrConfig)
	}
	s := b.slots[slotIdx]
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return fmt.Errorf("barrier: slot %d has callers currently waiting: %w", slotIdx, ccerr.ErrConfig)
	}
	s.participants = n
	return nil
}

// Wait blocks rank until every configured participant for slotIdx has
// called Wait. A full memory fence is issued before entering, establishing
// the happens-before edge spec.md §5 requires. rank is accepted for
// symmetry with the source's barrier_wait(barrier_num, id, total_cores)
// signature and for future color-function support; this implementation
// treats every caller as a participant (color_all).
func (b *Bank) Wait(slotIdx int, rank int) error {
	if slotIdx < 0 || slotIdx >= len(b.slots) {
		return fmt.Errorf("barrier: slot %d out of range: %w", slotIdx, ccerr.ErrSystem)
	}
	xfence.MFence()

	s := b.slots[slotIdx]
	s.mu.Lock()
	if s.participants <= 0 {
		s.mu.Unlock()
		return nil
	}
	gen := s.generation
	s.waiting++
	s.active = true
	if s.waiting == s.participants {
		s.waiting = 0
		s.active = false
		s.generation++
		s.cond.Broadcast()
		s.mu.Unlock()
		return nil
	}
	for gen == s.generation {
		s.cond.Wait()
	}
	s.mu.Unlock()
	return nil
}

// Term is a no-op retained for symmetry with barriers_term; Go's garbage
// collector reclaims every slot once the Bank is dropped.
func (b *Bank) Term() {}
