package decoration

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type Purpose int

const (
	PurposeHighlight Purpose = iota
	PurposeSync
)

func (p Purpose) String() string {
	switch p {
	case PurposeHighlight:
		return "highlight"
	case PurposeSync:
		return "sync"
	}
	return fmt.Sprintf("Purpose(%d)", int(p))
}

// Task is one scheduled run of a Slot.
type Task struct {
	Purpose Purpose
	Seq     uint64
	ctx     context.Context
}

// Wait blocks until the task's delay has elapsed or it was superseded, and
// reports whether the delay elapsed. Wait is safe to call from any goroutine.
func (t Task) Wait() bool {
	if t.ctx == nil {
		return false
	}
	<-t.ctx.Done()
	return errors.Is(t.ctx.Err(), context.DeadlineExceeded)
}

// Slot is a single-slot delayed task scheduler: scheduling cancels whatever
// was pending, so at most one task per slot can ever be claimed. Apart from
// Task.Wait it must be used from one goroutine.
type Slot struct {
	purpose Purpose
	delay   time.Duration
	seq     uint64
	pending bool
	cancel  context.CancelFunc
}

func NewSlot(purpose Purpose, delay time.Duration) *Slot {
	return &Slot{purpose: purpose, delay: delay}
}

func (s *Slot) Delay() time.Duration { return s.delay }

// Schedule replaces any pending task with a new one due after the slot delay.
func (s *Slot) Schedule() Task {
	s.Cancel()

	ctx, cancel := context.WithTimeout(context.Background(), s.delay)
	s.seq++
	s.pending = true
	s.cancel = cancel

	return Task{Purpose: s.purpose, Seq: s.seq, ctx: ctx}
}

// Cancel drops the pending task, if any.
func (s *Slot) Cancel() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.pending = false
}

func (s *Slot) Pending() bool { return s.pending }

// Claim reports whether t is the slot's live task and marks it done. Stale or
// cancelled tasks are never claimed.
func (s *Slot) Claim(t Task) bool {
	if t.Purpose != s.purpose || t.Seq != s.seq || !s.pending {
		return false
	}
	s.pending = false
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	return true
}
