package timing

import (
	"sync"
	"time"
)

// Scheduler holds at most one pending task. Scheduling a new task replaces
// any pending one; the replaced task never fires.
type Scheduler interface {
	// Schedule arms the slot to run fn after d, cancelling any pending task.
	Schedule(d time.Duration, fn func())

	// Cancel clears the slot. A no-op when nothing is pending.
	Cancel()
}

// SlotScheduler is the wall-clock Scheduler backed by time.AfterFunc.
type SlotScheduler struct {
	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

// NewSlotScheduler creates an empty scheduler slot.
func NewSlotScheduler() *SlotScheduler {
	return &SlotScheduler{}
}

// Schedule arms the slot, replacing any pending task.
func (s *SlotScheduler) Schedule(d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.timer = time.AfterFunc(d, func() {
		// A stale timer that lost the Stop race must not fire.
		s.mu.Lock()
		current := s.gen == gen
		s.mu.Unlock()
		if current {
			fn()
		}
	})
}

// Cancel clears the slot.
func (s *SlotScheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
}

// ManualScheduler is a Scheduler driven by explicit Fire calls. For testing.
type ManualScheduler struct {
	mu      sync.Mutex
	pending func()
	delay   time.Duration
}

// NewManualScheduler creates an empty manual scheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// Schedule records the task without starting any clock.
func (s *ManualScheduler) Schedule(d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = fn
	s.delay = d
}

// Cancel clears the recorded task.
func (s *ManualScheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
	s.delay = 0
}

// Fire runs the pending task, if any, and clears the slot.
func (s *ManualScheduler) Fire() {
	s.mu.Lock()
	fn := s.pending
	s.pending = nil
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Pending reports whether a task is armed and with what delay.
func (s *ManualScheduler) Pending() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delay, s.pending != nil
}
