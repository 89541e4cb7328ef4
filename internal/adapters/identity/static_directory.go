package identity

import (
	"context"
	"sync"
	"time"

	domainauth "github.com/fixwave/fixwave-api/internal/domain/auth"
)

// StaticDirectory is an in-memory IdentityDirectory for local development.
// With VerifyAfter set, users become verified that long after registration,
// which lets the polling flow complete without a real backend.
type StaticDirectory struct {
	mu          sync.Mutex
	users       map[string]staticUser
	verifyAfter time.Duration
	now         func() time.Time
}

type staticUser struct {
	identity     domainauth.Identity
	registeredAt time.Time
}

// NewStaticDirectory returns an empty directory. verifyAfter <= 0 means
// users stay unverified until MarkVerified.
func NewStaticDirectory(verifyAfter time.Duration) *StaticDirectory {
	return &StaticDirectory{
		users:       make(map[string]staticUser),
		verifyAfter: verifyAfter,
		now:         time.Now,
	}
}

// Put registers or replaces a user.
func (d *StaticDirectory) Put(id domainauth.Identity) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[id.UserID] = staticUser{identity: id, registeredAt: d.now()}
}

// MarkVerified stamps the user verified as of now.
func (d *StaticDirectory) MarkVerified(userID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.users[userID]
	if !ok {
		return
	}
	ts := d.now()
	u.identity.VerifiedAt = &ts
	d.users[userID] = u
}

func (d *StaticDirectory) Lookup(_ context.Context, userID string) (domainauth.Identity, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.users[userID]
	if !ok {
		return domainauth.Identity{}, ErrUserNotFound
	}
	id := u.identity
	if id.VerifiedAt == nil && d.verifyAfter > 0 {
		if due := u.registeredAt.Add(d.verifyAfter); !d.now().Before(due) {
			id.VerifiedAt = &due
			u.identity = id
			d.users[userID] = u
		}
	}
	return id, nil
}

func (d *StaticDirectory) ResendVerification(_ context.Context, userID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.users[userID]; !ok {
		return ErrUserNotFound
	}
	return nil
}

func (d *StaticDirectory) RevokeSessions(_ context.Context, userID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.users[userID]; !ok {
		return ErrUserNotFound
	}
	return nil
}
