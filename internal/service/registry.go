package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	domainauth "github.com/fixwave/fixwave-api/internal/domain/auth"
)

// MonitorRegistryOptions groups dependencies for MonitorRegistry.
type MonitorRegistryOptions struct {
	Backends StateManagerBackends
	Polling  PollerOptions
	Notifier *domainauth.Notifier
	Logger   *slog.Logger
}

// MonitorRegistry owns one StateManager per live session. Managers are
// created lazily on first access and torn down on sign-out or after going
// idle (see Sweep). The registry also routes session-change push events to
// the manager they concern.
type MonitorRegistry struct {
	backends StateManagerBackends
	polling  PollerOptions
	notifier *domainauth.Notifier
	logger   *slog.Logger

	mu       sync.Mutex
	managers map[string]*StateManager
}

// NewMonitorRegistry constructs a new MonitorRegistry.
func NewMonitorRegistry(opts MonitorRegistryOptions) *MonitorRegistry {
	if opts.Backends.Sessions == nil {
		panic("SessionStore is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &MonitorRegistry{
		backends: opts.Backends,
		polling:  opts.Polling,
		notifier: opts.Notifier,
		logger:   logger,
		managers: make(map[string]*StateManager),
	}
}

// Acquire returns the manager for sessionID, creating and initialising one
// on first access. A freshly created manager is refreshed before return so
// callers never observe the loading state beyond the first resolution.
func (r *MonitorRegistry) Acquire(ctx context.Context, sessionID string) *StateManager {
	r.mu.Lock()
	mgr, ok := r.managers[sessionID]
	if !ok {
		mgr = NewStateManager(StateManagerOptions{
			SessionID: sessionID,
			Backends:  r.backends,
			Polling:   r.polling,
			Logger:    r.logger,
			Metrics:   r.polling.Metrics,
		})
		r.managers[sessionID] = mgr
	}
	r.mu.Unlock()

	if !ok {
		mgr.Refresh(ctx)
	}
	return mgr
}

// Lookup returns the manager for sessionID if one exists.
func (r *MonitorRegistry) Lookup(sessionID string) (*StateManager, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	mgr, ok := r.managers[sessionID]
	return mgr, ok
}

// Remove tears down the manager for sessionID, stopping its poll timer.
func (r *MonitorRegistry) Remove(sessionID string) {
	r.mu.Lock()
	mgr, ok := r.managers[sessionID]
	if ok {
		delete(r.managers, sessionID)
	}
	r.mu.Unlock()

	if ok {
		mgr.Close()
	}
}

// Len reports the number of live managers.
func (r *MonitorRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.managers)
}

// Sweep tears down managers idle since before cutoff and reports how many
// were removed. Sign-out already removes managers eagerly; the sweep catches
// sessions abandoned without one.
func (r *MonitorRegistry) Sweep(cutoff time.Time) int {
	r.mu.Lock()
	var stale []*StateManager
	for id, mgr := range r.managers {
		if mgr.IdleSince().Before(cutoff) {
			stale = append(stale, mgr)
			delete(r.managers, id)
		}
	}
	r.mu.Unlock()

	for _, mgr := range stale {
		mgr.Close()
	}
	if len(stale) > 0 {
		r.logger.Info("swept idle auth monitors", "count", len(stale))
	}
	return len(stale)
}

// Run consumes session-change events until ctx is cancelled, routing each
// to the manager for its session. Events for sessions with no live manager
// are dropped; the manager created on next access refreshes anyway.
func (r *MonitorRegistry) Run(ctx context.Context) error {
	if r.notifier == nil {
		<-ctx.Done()
		return ctx.Err()
	}

	events, cancel := r.notifier.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			r.dispatch(ctx, ev)
		}
	}
}

func (r *MonitorRegistry) dispatch(ctx context.Context, ev domainauth.Event) {
	mgr, ok := r.Lookup(ev.SessionID)
	if !ok {
		return
	}
	mgr.HandleEvent(ctx, ev)
	if ev.Type == domainauth.EventSignedOut {
		r.Remove(ev.SessionID)
	}
}
