package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/fixwave/fixwave-api/internal/domain/auth"
)

func TestStaticDirectory_LookupAndMarkVerified(t *testing.T) {
	dir := NewStaticDirectory(0)
	dir.Put(domainauth.Identity{UserID: "u-1", Email: "u1@example.com"})

	id, err := dir.Lookup(context.Background(), "u-1")
	require.NoError(t, err)
	assert.False(t, id.Verified())

	dir.MarkVerified("u-1")

	id, err = dir.Lookup(context.Background(), "u-1")
	require.NoError(t, err)
	assert.True(t, id.Verified())
}

func TestStaticDirectory_VerifyAfterElapses(t *testing.T) {
	dir := NewStaticDirectory(10 * time.Minute)
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	now := base
	dir.now = func() time.Time { return now }

	dir.Put(domainauth.Identity{UserID: "u-2"})

	id, err := dir.Lookup(context.Background(), "u-2")
	require.NoError(t, err)
	assert.False(t, id.Verified())

	now = base.Add(11 * time.Minute)
	id, err = dir.Lookup(context.Background(), "u-2")
	require.NoError(t, err)
	require.NotNil(t, id.VerifiedAt)
	assert.Equal(t, base.Add(10*time.Minute), *id.VerifiedAt)
}

func TestStaticDirectory_UnknownUser(t *testing.T) {
	dir := NewStaticDirectory(0)

	_, err := dir.Lookup(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.ErrorIs(t, dir.ResendVerification(context.Background(), "ghost"), ErrUserNotFound)
	assert.ErrorIs(t, dir.RevokeSessions(context.Background(), "ghost"), ErrUserNotFound)
}
