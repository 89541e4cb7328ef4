package ports

import "time"

// Timer is a handle to a single scheduled callback.
type Timer interface {
	// Stop cancels the callback. It reports whether the timer was still
	// pending; stopping an already-fired or already-stopped timer is a no-op.
	Stop() bool
}

// Scheduler schedules one-shot callbacks. The production implementation wraps
// time.AfterFunc; tests substitute a fake that fires under manual control so
// cancellation and late-callback behavior can be exercised deterministically.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}
