package auth

// Package auth contains domain-level types for identities, sessions, and the
// client-facing auth state. It is pure and free of framework/adapter concerns.

import "time"

// Role represents an application's authorization role.
// Keep string form for easy persistence and cookies.
// Valid values are defined as constants below.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleProvider Role = "provider"
	RoleCustomer Role = "customer"
	RoleGuest    Role = "guest"
)

// Identity represents the principal as known by the identity backend.
// Adapters map provider-specific claims into this shape.
type Identity struct {
	UserID     string // stable user identifier (e.g., sub)
	FirstName  string
	LastName   string
	Email      string
	Groups     []string
	VerifiedAt *time.Time // email verification timestamp; nil until verified
	ExpiresAt  time.Time  // absolute expiry from IdP token
}

// Verified reports whether the identity's email has been confirmed.
// The backend contract is "verified iff VerifiedAt is non-nil".
func (i Identity) Verified() bool { return i.VerifiedAt != nil }

// Session is the server-side record we persist for an authenticated user.
// ID is an opaque session identifier (e.g., random URL-safe string).
type Session struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	Email      string     `json:"email"`
	Role       Role       `json:"role"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	ExpiresAt  time.Time  `json:"expires_at"`
}

// IsGuest returns true if the session role is guest.
func (s Session) IsGuest() bool { return s.Role == RoleGuest }

// Verified reports whether the session's identity has confirmed its email.
func (s Session) Verified() bool { return s.VerifiedAt != nil }

// Identity rebuilds the identity snapshot carried by the session.
func (s Session) Identity() Identity {
	return Identity{
		UserID:     s.UserID,
		FirstName:  s.FirstName,
		LastName:   s.LastName,
		Email:      s.Email,
		VerifiedAt: s.VerifiedAt,
		ExpiresAt:  s.ExpiresAt,
	}
}
