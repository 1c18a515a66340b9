package probe

import (
	"context"
	"sync"
	"time"
)

// Slot serializes activations of one probe. Beginning a new activation
// cancels the pending one with ErrSuperseded, so only the latest activation
// may render.
type Slot struct {
	mu     sync.Mutex
	seq    uint64
	cancel context.CancelCauseFunc
}

// Ticket identifies one activation on a Slot.
type Ticket struct {
	slot *Slot
	seq  uint64
}

// Begin starts an activation bounded by timeout (0 = none). The returned
// release func must be called once the activation has completed.
func (s *Slot) Begin(parent context.Context, timeout time.Duration) (context.Context, Ticket, func()) {
	ctx, cancel := context.WithCancelCause(parent)

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel(ErrSuperseded)
	}
	s.seq++
	seq := s.seq
	s.cancel = cancel
	s.mu.Unlock()

	runCtx := ctx
	stopTimeout := context.CancelFunc(func() {})
	if timeout > 0 {
		runCtx, stopTimeout = context.WithTimeoutCause(ctx, timeout, ErrTimeout)
	}

	release := func() {
		stopTimeout()
		cancel(nil)
		s.mu.Lock()
		if s.seq == seq {
			s.cancel = nil
		}
		s.mu.Unlock()
	}
	return runCtx, Ticket{slot: s, seq: seq}, release
}

// Cancel aborts the pending activation, if any.
func (s *Slot) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel(ErrCanceled)
		s.cancel = nil
	}
}

// Current reports whether t is still the latest activation of its slot.
func (t Ticket) Current() bool {
	if t.slot == nil {
		return false
	}
	t.slot.mu.Lock()
	defer t.slot.mu.Unlock()
	return t.slot.seq == t.seq
}
