package auth

import "github.com/fixwave/fixwave-api/internal/domain/profile"

// ErrorKind labels the last failure recorded on the auth state. Errors never
// cross the component boundary as panics or transport errors; every backend
// call site folds failure into one of these kinds for the view layer.
type ErrorKind string

const (
	ErrorKindNone         ErrorKind = ""
	ErrorKindSessionQuery ErrorKind = "session_query_failed"
	ErrorKindProfileQuery ErrorKind = "profile_query_failed"
	ErrorKindPollFailed   ErrorKind = "poll_failed"
	ErrorKindPollTimeout  ErrorKind = "poll_timeout"
	ErrorKindSignOut      ErrorKind = "sign_out_failed"
)

// Status is the three-variant discriminant the view layer switches on.
type Status string

const (
	StatusUnauthenticated Status = "unauthenticated"
	StatusPendingProfile  Status = "pending_profile"
	StatusReady           Status = "ready"
)

// State is the in-memory auth record owned by the state manager.
//
// Invariants:
//   - Profile != nil implies HasSession.
//   - Loading means identity and profile are unknown, not absent; consumers
//     must not interpret nil fields while Loading is true.
type State struct {
	Loading    bool
	HasSession bool
	Identity   *Identity
	Profile    *profile.Profile
	LastError  ErrorKind
}

// Initial returns the state created at process start: loading, signed out.
func Initial() State {
	return State{Loading: true}
}

// DeriveStatus folds a State into its Status. It is a pure function of
// HasSession and Profile presence; Loading and LastError never influence it.
func DeriveStatus(s State) Status {
	switch {
	case !s.HasSession:
		return StatusUnauthenticated
	case s.Profile == nil:
		return StatusPendingProfile
	default:
		return StatusReady
	}
}

// Snapshot is the immutable view published to subscribers on every mutation.
type Snapshot struct {
	State  State
	Status Status
}
