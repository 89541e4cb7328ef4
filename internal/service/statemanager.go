package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fixwave/fixwave-api/internal/core"
	"github.com/fixwave/fixwave-api/internal/data"
	domainauth "github.com/fixwave/fixwave-api/internal/domain/auth"
	"github.com/fixwave/fixwave-api/internal/observability/metrics"
	"github.com/fixwave/fixwave-api/internal/observability/statsd"
	"github.com/fixwave/fixwave-api/internal/ports"
)

// StateManagerBackends groups the backend collaborators for StateManager.
type StateManagerBackends struct {
	Sessions  ports.SessionStore
	Directory ports.IdentityDirectory
	Profiles  core.ProfileRepository
}

// StateManagerOptions groups dependencies for StateManager.
type StateManagerOptions struct {
	SessionID string
	Backends  StateManagerBackends

	// Polling configures the embedded verification poller. Checker defaults
	// to a directory-backed checker when nil; OnVerified and OnFailure are
	// owned by the manager and must be left unset.
	Polling PollerOptions

	Logger  *slog.Logger
	Metrics statsd.Sink
}

// StateManager owns the auth state for one session. It is the sole writer;
// every other consumer reads snapshots or subscribes to changes. All backend
// failures fold into State.LastError, never into returned errors, except for
// programmer mistakes (empty IDs).
type StateManager struct {
	sessionID string
	sessions  ports.SessionStore
	directory ports.IdentityDirectory
	profiles  core.ProfileRepository
	poller    *VerificationPoller
	logger    *slog.Logger
	metrics   statsd.Sink

	mu         sync.Mutex
	state      domainauth.State
	subs       map[chan domainauth.Snapshot]struct{}
	lastAccess time.Time
}

// NewStateManager constructs a StateManager bound to one session ID.
func NewStateManager(opts StateManagerOptions) *StateManager {
	if opts.SessionID == "" {
		panic("session ID is required")
	}
	if opts.Backends.Sessions == nil {
		panic("SessionStore is required")
	}
	if opts.Backends.Directory == nil {
		panic("IdentityDirectory is required")
	}
	if opts.Backends.Profiles == nil {
		panic("ProfileRepository is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("session_id", opts.SessionID)

	m := &StateManager{
		sessionID:  opts.SessionID,
		sessions:   opts.Backends.Sessions,
		directory:  opts.Backends.Directory,
		profiles:   opts.Backends.Profiles,
		logger:     logger,
		metrics:    opts.Metrics,
		state:      domainauth.Initial(),
		subs:       make(map[chan domainauth.Snapshot]struct{}),
		lastAccess: time.Now(),
	}

	polling := opts.Polling
	if polling.Checker == nil {
		polling.Checker = NewDirectoryChecker(opts.Backends.Directory)
	}
	if polling.Logger == nil {
		polling.Logger = logger
	}
	if polling.Metrics == nil {
		polling.Metrics = opts.Metrics
	}
	polling.OnVerified = m.handleVerified
	polling.OnFailure = m.handlePollFailure
	m.poller = NewVerificationPoller(polling)

	return m
}

// SessionID returns the session this manager is bound to.
func (m *StateManager) SessionID() string { return m.sessionID }

// Snapshot returns the current state and its derived status.
func (m *StateManager) Snapshot() domainauth.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastAccess = time.Now()
	return domainauth.Snapshot{State: m.state, Status: domainauth.DeriveStatus(m.state)}
}

// Status returns the derived three-variant status.
func (m *StateManager) Status() domainauth.Status {
	return m.Snapshot().Status
}

// Subscribe registers for snapshot notifications on every state mutation.
// The channel keeps only the latest undelivered snapshot. Cancel is
// idempotent and closes the channel.
func (m *StateManager) Subscribe() (<-chan domainauth.Snapshot, func()) {
	ch := make(chan domainauth.Snapshot, 1)

	m.mu.Lock()
	m.subs[ch] = struct{}{}
	m.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, ch)
			m.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// IdleSince reports the last time a caller read or mutated this manager.
func (m *StateManager) IdleSince() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastAccess
}

// Refresh resolves the session and profile queries and replaces the state
// atomically. Session-query failure surfaces ErrorKindSessionQuery and clears
// the session; a missing or failing profile query leaves Profile nil, which
// derives to pending_profile. Refresh never returns transient backend errors.
func (m *StateManager) Refresh(ctx context.Context) {
	started := time.Now()

	next := domainauth.State{}

	sess, err := m.sessions.Get(ctx, m.sessionID)
	switch {
	case errors.Is(err, ports.ErrSessionNotFound):
		// Signed out or expired: a normal outcome, not an error.
	case err != nil:
		m.logger.Error("session query failed", "error", err)
		next.LastError = domainauth.ErrorKindSessionQuery
	default:
		identity := sess.Identity()
		next.HasSession = true
		next.Identity = &identity

		prof, profErr := m.profiles.GetByUserID(ctx, sess.UserID)
		switch {
		case errors.Is(profErr, data.ErrProfileNotFound):
			// Profile rows are provisioned asynchronously; absence is expected.
		case profErr != nil:
			m.logger.Warn("profile query failed", "user_id", sess.UserID, "error", profErr)
			next.LastError = domainauth.ErrorKindProfileQuery
		default:
			next.Profile = prof
		}
	}

	m.setState(next)
	metrics.EmitAuthTransition(m.metrics, metrics.AuthMetric{
		Operation:  "refresh",
		Transition: string(domainauth.DeriveStatus(next)),
		Result:     refreshResult(next.LastError),
		Duration:   time.Since(started),
		Err:        err,
	})
}

func refreshResult(kind domainauth.ErrorKind) string {
	if kind == domainauth.ErrorKindNone {
		return metrics.ResultSuccess
	}
	return metrics.ResultError
}

// SignOut stops any active poll session, revokes the backend session, and
// unconditionally resets the state to unauthenticated. Revocation failure is
// logged only; the local reset must never depend on remote success.
func (m *StateManager) SignOut(ctx context.Context) {
	m.poller.Stop()

	m.mu.Lock()
	userID := ""
	if m.state.Identity != nil {
		userID = m.state.Identity.UserID
	}
	m.mu.Unlock()

	if userID != "" {
		if err := m.directory.RevokeSessions(ctx, userID); err != nil {
			m.logger.Warn("revoke backend sessions failed", "user_id", userID, "error", err)
		}
	}
	if err := m.sessions.Delete(ctx, m.sessionID); err != nil {
		m.logger.Warn("delete session failed", "error", err)
	}

	m.setState(domainauth.State{})
	metrics.EmitAuthTransition(m.metrics, metrics.AuthMetric{
		Operation:  "sign_out",
		Transition: string(domainauth.StatusUnauthenticated),
		Result:     metrics.ResultSuccess,
	})
}

// StartVerificationPolling begins polling the backend for the session
// identity's verification flag. It returns an error only when no identity is
// loaded; poll failures surface through State.LastError.
//
// The poll session outlives the call that starts it (typically an HTTP
// request whose context is cancelled as soon as the response is written), so
// the session runs on a detached context: values carry over, cancellation
// does not. The session ends via Stop, SignOut, or a terminal poll state.
func (m *StateManager) StartVerificationPolling(ctx context.Context) error {
	m.mu.Lock()
	identity := m.state.Identity
	m.mu.Unlock()

	if identity == nil {
		return fmt.Errorf("no identity loaded for session")
	}
	if identity.Verified() {
		return nil
	}
	return m.poller.Start(context.WithoutCancel(ctx), identity.UserID)
}

// StopVerificationPolling cancels any active poll session. Idempotent.
func (m *StateManager) StopVerificationPolling() {
	m.poller.Stop()
}

// PollState exposes the poller state for the status endpoint.
func (m *StateManager) PollState() PollState {
	return m.poller.State()
}

// HandleEvent reacts to a session-change push event. Sign-in and token
// refresh trigger a full refresh; sign-out resets state and stops polling.
func (m *StateManager) HandleEvent(ctx context.Context, ev domainauth.Event) {
	switch ev.Type {
	case domainauth.EventSignedIn, domainauth.EventTokenRefreshed:
		m.Refresh(ctx)
	case domainauth.EventSignedOut:
		m.poller.Stop()
		m.setState(domainauth.State{})
	default:
		m.logger.Debug("ignoring unknown session event", "type", ev.Type)
	}
}

// Close releases the manager's resources (the poll timer).
func (m *StateManager) Close() {
	m.poller.Stop()
}

// handleVerified is the poller success callback. It re-reads the identity so
// the persisted session carries the fresh VerifiedAt, then refreshes state.
func (m *StateManager) handleVerified(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	identity, err := m.directory.Lookup(ctx, userID)
	if err != nil {
		m.logger.Warn("post-verification identity lookup failed", "user_id", userID, "error", err)
	} else if sess, getErr := m.sessions.Get(ctx, m.sessionID); getErr == nil {
		sess.VerifiedAt = identity.VerifiedAt
		if saveErr := m.sessions.Save(ctx, sess); saveErr != nil {
			m.logger.Warn("persist verified session failed", "error", saveErr)
		}
	}

	m.Refresh(ctx)
}

// handlePollFailure records a poll failure or timeout without touching the
// rest of the state; the caller stays on the verification screen with the
// error visible and a manual retry available.
func (m *StateManager) handlePollFailure(kind domainauth.ErrorKind) {
	m.updateState(func(s *domainauth.State) {
		s.LastError = kind
	})
}

// setState replaces the state atomically and notifies subscribers with the
// new snapshot.
func (m *StateManager) setState(next domainauth.State) {
	m.updateState(func(s *domainauth.State) {
		*s = next
	})
}

// updateState applies mutate to the current state and publishes the result,
// all under one critical section: mutations by concurrent writers are never
// interleaved with a stale read-modify-write. Publish never blocks; slow
// subscribers keep only the newest snapshot.
func (m *StateManager) updateState(mutate func(*domainauth.State)) {
	m.mu.Lock()
	mutate(&m.state)
	m.lastAccess = time.Now()
	snap := domainauth.Snapshot{State: m.state, Status: domainauth.DeriveStatus(m.state)}
	for ch := range m.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
	m.mu.Unlock()
}
