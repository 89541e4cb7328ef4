package ports

// Package ports defines interfaces (hexagonal ports) for the hosted backend
// services this core consumes. Implementations live in internal/adapters;
// orchestration in internal/service.

import (
	"context"
	"errors"

	domainauth "github.com/fixwave/fixwave-api/internal/domain/auth"
)

// ErrSessionNotFound is returned by SessionStore.Get when no live session
// exists for the given ID. Expired sessions surface the same way.
var ErrSessionNotFound = errors.New("session not found")

// BeginInput carries inputs for initiating an auth flow.
type BeginInput struct {
	RedirectURL string
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// AuthProvider initiates and completes an authentication flow against an IdP.
type AuthProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and returns the authenticated identity.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}

// SessionStore persists and retrieves user sessions.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// RoleMapper maps provider groups to application roles.
type RoleMapper interface {
	Map(groups []string) domainauth.Role
}

// IdentityDirectory queries the identity backend for the current view of a
// user. Lookup is the source of truth for the verification flag; absence of
// the user surfaces as an error, not a zero Identity.
type IdentityDirectory interface {
	Lookup(ctx context.Context, userID string) (domainauth.Identity, error)

	// ResendVerification asks the backend to re-send the verification email.
	ResendVerification(ctx context.Context, userID string) error

	// RevokeSessions terminates the user's backend-side sessions. Callers
	// treat failure as non-blocking: local sign-out proceeds regardless.
	RevokeSessions(ctx context.Context, userID string) error
}
