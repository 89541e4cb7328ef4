package testutil

import (
	"sync"
	"time"

	"github.com/fixwave/fixwave-api/internal/ports"
)

// FakeScheduler implements ports.Scheduler with manual firing so tests can
// drive timer callbacks deterministically and observe cancellations.
type FakeScheduler struct {
	mu     sync.Mutex
	timers []*FakeTimer
}

// NewFakeScheduler returns an empty FakeScheduler.
func NewFakeScheduler() *FakeScheduler {
	return &FakeScheduler{}
}

// AfterFunc records a timer; nothing fires until the test calls Fire.
func (s *FakeScheduler) AfterFunc(d time.Duration, fn func()) ports.Timer {
	t := &FakeTimer{Delay: d, fn: fn}
	s.mu.Lock()
	s.timers = append(s.timers, t)
	s.mu.Unlock()
	return t
}

// Timers returns every timer ever scheduled, in scheduling order.
func (s *FakeScheduler) Timers() []*FakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*FakeTimer, len(s.timers))
	copy(out, s.timers)
	return out
}

// Scheduled reports how many timers were ever scheduled.
func (s *FakeScheduler) Scheduled() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Cancelled reports how many timers were stopped before firing.
func (s *FakeScheduler) Cancelled() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if t.Stopped() && !t.Fired() {
			n++
		}
	}
	return n
}

// Pending reports how many timers are scheduled but neither fired nor stopped.
func (s *FakeScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.Stopped() && !t.Fired() {
			n++
		}
	}
	return n
}

// FireNext fires the oldest pending timer synchronously and reports whether
// one existed.
func (s *FakeScheduler) FireNext() bool {
	s.mu.Lock()
	var next *FakeTimer
	for _, t := range s.timers {
		if !t.Stopped() && !t.Fired() {
			next = t
			break
		}
	}
	s.mu.Unlock()

	if next == nil {
		return false
	}
	next.Fire()
	return true
}

// FakeTimer is a manually fired timer handle.
type FakeTimer struct {
	Delay time.Duration

	mu      sync.Mutex
	fn      func()
	stopped bool
	fired   bool
}

// Stop marks the timer cancelled and reports whether it was still pending.
func (t *FakeTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Fire invokes the callback synchronously. It runs even after Stop, so tests
// can simulate a callback that was already in flight when it was cancelled.
func (t *FakeTimer) Fire() {
	t.mu.Lock()
	if t.fired {
		t.mu.Unlock()
		return
	}
	t.fired = true
	fn := t.fn
	t.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Stopped reports whether Stop was called before the timer fired.
func (t *FakeTimer) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// Fired reports whether the timer's callback ran.
func (t *FakeTimer) Fired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fired
}
