package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	domainauth "github.com/fixwave/fixwave-api/internal/domain/auth"
	"github.com/fixwave/fixwave-api/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthProvider      = (*MockAuthProvider)(nil)
	_ ports.SessionStore      = (*MemorySessionStore)(nil)
	_ ports.RoleMapper        = (*StaticRoleMapper)(nil)
	_ ports.IdentityDirectory = (*MemoryDirectory)(nil)
)

// MockAuthProvider simulates an IdP for tests with deterministic state/nonce handling.
type MockAuthProvider struct {
	BeginFunc    func(ctx context.Context, in ports.BeginInput) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error)

	// Deterministic values for predictable testing
	AuthURL     string
	StatePrefix string
	NoncePrefix string
	DefaultUser domainauth.Identity

	// Internal state tracking for deterministic behavior
	callCount int
}

// NewMockAuthProvider creates a MockAuthProvider with sensible defaults.
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{
		AuthURL:     "https://mock-idp/auth",
		StatePrefix: "state",
		NoncePrefix: "nonce",
		DefaultUser: domainauth.Identity{
			UserID:    "mock-user-1",
			FirstName: "Mock",
			LastName:  "User",
			Email:     "mock.user@example.com",
			Groups:    []string{"customers"},
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
}

func (m *MockAuthProvider) Begin(ctx context.Context, in ports.BeginInput) (string, string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, in)
	}

	m.callCount++
	authURL := m.AuthURL
	if authURL == "" {
		authURL = "https://mock-idp/auth"
	}

	statePrefix := m.StatePrefix
	if statePrefix == "" {
		statePrefix = "state"
	}
	noncePrefix := m.NoncePrefix
	if noncePrefix == "" {
		noncePrefix = "nonce"
	}

	state := fmt.Sprintf("%s-%d", statePrefix, m.callCount)
	nonce := fmt.Sprintf("%s-%d", noncePrefix, m.callCount)

	return authURL, state, nonce, nil
}

func (m *MockAuthProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}

	// Return a copy of the default user with a fresh expiration time
	user := m.DefaultUser
	if user.UserID == "" {
		user = domainauth.Identity{
			UserID:    "mock-user-1",
			FirstName: "Mock",
			LastName:  "User",
			Email:     "mock.user@example.com",
			Groups:    []string{"customers"},
		}
	}
	user.ExpiresAt = time.Now().Add(time.Hour)

	return user, nil
}

// MemorySessionStore is an in-memory session store for unit tests.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session

	// SaveErr, GetErr and DeleteErr, when set, are returned by the matching method.
	SaveErr   error
	GetErr    error
	DeleteErr error
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]domainauth.Session),
	}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	if m.GetErr != nil {
		return domainauth.Session{}, m.GetErr
	}
	if id == "" {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	m.mu.Lock()
	sess, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	if id == "" {
		return nil
	}
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

// StaticRoleMapper maps groups by simple string membership rules.
type StaticRoleMapper struct {
	AdminGroup    string
	ProviderGroup string
	CustomerGroup string
}

func (m StaticRoleMapper) Map(groups []string) domainauth.Role {
	for _, g := range groups {
		if m.AdminGroup != "" && g == m.AdminGroup {
			return domainauth.RoleAdmin
		}
	}
	for _, g := range groups {
		if m.ProviderGroup != "" && g == m.ProviderGroup {
			return domainauth.RoleProvider
		}
	}
	for _, g := range groups {
		if m.CustomerGroup != "" && g == m.CustomerGroup {
			return domainauth.RoleCustomer
		}
	}
	return domainauth.RoleGuest
}

// MemoryDirectory is an in-memory identity directory. Tests flip the
// verified flag with MarkVerified to simulate the user clicking the email
// link mid-poll.
type MemoryDirectory struct {
	mu         sync.Mutex
	identities map[string]domainauth.Identity

	LookupErr error
	ResendErr error
	RevokeErr error

	ResendCalls int
	RevokeCalls int
}

// NewMemoryDirectory creates an empty MemoryDirectory.
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{identities: make(map[string]domainauth.Identity)}
}

// Put stores or replaces an identity.
func (d *MemoryDirectory) Put(identity domainauth.Identity) {
	d.mu.Lock()
	d.identities[identity.UserID] = identity
	d.mu.Unlock()
}

// MarkVerified stamps the identity's VerifiedAt with the current time.
func (d *MemoryDirectory) MarkVerified(userID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	identity, ok := d.identities[userID]
	if !ok {
		return
	}
	now := time.Now()
	identity.VerifiedAt = &now
	d.identities[userID] = identity
}

func (d *MemoryDirectory) Lookup(_ context.Context, userID string) (domainauth.Identity, error) {
	if d.LookupErr != nil {
		return domainauth.Identity{}, d.LookupErr
	}
	d.mu.Lock()
	identity, ok := d.identities[userID]
	d.mu.Unlock()
	if !ok {
		return domainauth.Identity{}, fmt.Errorf("identity %s not found", userID)
	}
	return identity, nil
}

func (d *MemoryDirectory) ResendVerification(_ context.Context, _ string) error {
	d.mu.Lock()
	d.ResendCalls++
	d.mu.Unlock()
	return d.ResendErr
}

func (d *MemoryDirectory) RevokeSessions(_ context.Context, _ string) error {
	d.mu.Lock()
	d.RevokeCalls++
	d.mu.Unlock()
	return d.RevokeErr
}
