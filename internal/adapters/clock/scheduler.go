package clock

// Package clock provides the production ports.Scheduler backed by the
// runtime timer. Tests substitute testutil.FakeScheduler.

import (
	"time"

	"github.com/fixwave/fixwave-api/internal/ports"
)

// Scheduler schedules one-shot callbacks with time.AfterFunc.
type Scheduler struct{}

var _ ports.Scheduler = Scheduler{}

// NewScheduler returns the system scheduler.
func NewScheduler() Scheduler { return Scheduler{} }

// AfterFunc schedules fn to run once after d on its own goroutine.
func (Scheduler) AfterFunc(d time.Duration, fn func()) ports.Timer {
	return systemTimer{t: time.AfterFunc(d, fn)}
}

type systemTimer struct {
	t *time.Timer
}

// Stop cancels the pending callback. It reports whether the callback had not
// yet fired; it does not wait for an already-started callback to finish.
func (s systemTimer) Stop() bool { return s.t.Stop() }
