package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/fixwave/fixwave-api/internal/domain/auth"
	"github.com/fixwave/fixwave-api/internal/ports"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider ports.AuthProvider
	Sessions ports.SessionStore
	Roles    ports.RoleMapper

	// Notifier, when set, receives a session-change event on login,
	// refresh, and logout so state monitors can react without polling.
	Notifier *domainauth.Notifier
}

// AuthService orchestrates authentication flows by coordinating provider, role mapping, and session persistence.
type AuthService struct {
	provider ports.AuthProvider
	sessions ports.SessionStore
	roles    ports.RoleMapper
	notifier *domainauth.Notifier
}

var errSessionExpired = errors.New("session expired")

// ErrSessionExpired reports whether err marks an expired session.
func ErrSessionExpired(err error) bool { return errors.Is(err, errSessionExpired) }

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	return &AuthService{
		provider: opts.Provider,
		sessions: opts.Sessions,
		roles:    opts.Roles,
		notifier: opts.Notifier,
	}
}

// BeginLoginResult contains the result of beginning a login flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginLogin initiates an authentication flow and returns the provider auth URL with state and nonce.
func (s *AuthService) BeginLogin(ctx context.Context, redirectURL string) (*BeginLoginResult, error) {
	if redirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	input := ports.BeginInput{RedirectURL: redirectURL}
	authURL, state, nonce, err := s.provider.Begin(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}

	return &BeginLoginResult{
		AuthURL: authURL,
		State:   state,
		Nonce:   nonce,
	}, nil
}

// CompleteLoginInput groups parameters for completing a login flow.
type CompleteLoginInput struct {
	Code  string
	State string
	Nonce string
}

// CompleteLoginResult contains the result of completing a login flow.
type CompleteLoginResult struct {
	Session domainauth.Session
}

// CompleteLogin completes an authentication flow by exchanging the code for an identity,
// mapping roles, and persisting a session. A signed-in event is published on success.
func (s *AuthService) CompleteLogin(ctx context.Context, input CompleteLoginInput) (*CompleteLoginResult, error) {
	if input.Code == "" {
		return nil, errors.New("authorization code is required")
	}
	if input.State == "" {
		return nil, errors.New("state parameter is required")
	}
	if input.Nonce == "" {
		return nil, errors.New("nonce parameter is required")
	}

	exchangeInput := ports.ExchangeInput{
		Code:  input.Code,
		State: input.State,
		Nonce: input.Nonce,
	}
	identity, err := s.provider.Exchange(ctx, exchangeInput)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	role := s.roles.Map(identity.Groups)

	session := domainauth.Session{
		ID:         generateSessionID(),
		UserID:     identity.UserID,
		FirstName:  identity.FirstName,
		LastName:   identity.LastName,
		Email:      identity.Email,
		Role:       role,
		VerifiedAt: identity.VerifiedAt,
		ExpiresAt:  identity.ExpiresAt,
	}

	if saveErr := s.sessions.Save(ctx, session); saveErr != nil {
		return nil, fmt.Errorf("save session: %w", saveErr)
	}

	s.publish(domainauth.Event{
		Type:      domainauth.EventSignedIn,
		SessionID: session.ID,
		UserID:    session.UserID,
	})

	return &CompleteLoginResult{Session: session}, nil
}

// GetSession retrieves a session by ID, cleaning up expired sessions.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, errors.New("session ID is required")
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if time.Now().After(session.ExpiresAt) {
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			return nil, errors.Join(errSessionExpired, fmt.Errorf("delete session: %w", deleteErr))
		}
		return nil, errSessionExpired
	}

	return &session, nil
}

// RefreshSession extends a live session's expiry and publishes a
// token-refreshed event. The session keeps its identity and role as-is; a
// changed backend identity surfaces through the next state refresh instead.
func (s *AuthService) RefreshSession(ctx context.Context, sessionID string, ttl time.Duration) (*domainauth.Session, error) {
	if ttl <= 0 {
		return nil, errors.New("ttl must be positive")
	}

	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	session.ExpiresAt = time.Now().Add(ttl)
	if saveErr := s.sessions.Save(ctx, *session); saveErr != nil {
		return nil, fmt.Errorf("save refreshed session: %w", saveErr)
	}

	s.publish(domainauth.Event{
		Type:      domainauth.EventTokenRefreshed,
		SessionID: session.ID,
		UserID:    session.UserID,
	})

	return session, nil
}

// Logout removes a session and publishes a signed-out event.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil // Nothing to logout
	}

	// Resolve the user before the record disappears; best effort only.
	userID := ""
	if sess, err := s.sessions.Get(ctx, sessionID); err == nil {
		userID = sess.UserID
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	s.publish(domainauth.Event{
		Type:      domainauth.EventSignedOut,
		SessionID: sessionID,
		UserID:    userID,
	})
	return nil
}

func (s *AuthService) publish(ev domainauth.Event) {
	if s.notifier != nil {
		s.notifier.Publish(ev)
	}
}

// generateSessionID creates a cryptographically secure random session ID.
func generateSessionID() string {
	// Use UUID for session ID - it's URL-safe and has good entropy
	id := uuid.New()
	return id.String()
}
