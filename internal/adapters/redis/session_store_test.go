package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/fixwave/fixwave-api/internal/domain/auth"
	"github.com/fixwave/fixwave-api/internal/ports"
	"github.com/fixwave/fixwave-api/internal/testutil"
)

// setupTestRedis creates a Redis client for testing.
// Tests will be skipped if Redis is not available.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	return testutil.SetupTestRedis(t)
}

func testSession(id string) domainauth.Session {
	return domainauth.Session{
		ID:        id,
		UserID:    "user-123",
		FirstName: "Ada",
		Email:     "user@example.com",
		Role:      domainauth.RoleCustomer,
		ExpiresAt: time.Now().Add(30 * time.Minute),
	}
}

func TestSessionStore_SaveAndGet(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(client)
	ctx := context.Background()

	session := testSession("test-session-1")
	verifiedAt := time.Now().Add(-time.Hour).Truncate(time.Second)
	session.VerifiedAt = &verifiedAt

	err := store.Save(ctx, session)
	require.NoError(t, err)

	retrieved, err := store.Get(ctx, "test-session-1")
	require.NoError(t, err)
	assert.Equal(t, session.ID, retrieved.ID)
	assert.Equal(t, session.UserID, retrieved.UserID)
	assert.Equal(t, session.Email, retrieved.Email)
	assert.Equal(t, session.Role, retrieved.Role)
	require.NotNil(t, retrieved.VerifiedAt)
	assert.WithinDuration(t, verifiedAt, *retrieved.VerifiedAt, time.Second)
	assert.WithinDuration(t, session.ExpiresAt, retrieved.ExpiresAt, time.Second)
}

func TestSessionStore_GetNonExistent(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(client)

	_, err := store.Get(context.Background(), "non-existent")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)
}

func TestSessionStore_Delete(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(client)
	ctx := context.Background()

	session := testSession("test-session-delete")
	require.NoError(t, store.Save(ctx, session))

	require.NoError(t, store.Delete(ctx, session.ID))

	_, err := store.Get(ctx, session.ID)
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)
}

func TestSessionStore_SaveRejectsExpired(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(client)

	session := testSession("test-session-expired")
	session.ExpiresAt = time.Now().Add(-time.Minute)

	err := store.Save(context.Background(), session)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func TestSessionStore_SaveRequiresID(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(client)

	session := testSession("")
	assert.Error(t, store.Save(context.Background(), session))
}

func TestSessionStore_CustomPrefix(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	ctx := context.Background()
	store := NewSessionStoreWithPrefix(client, "fixwave:sess:")

	session := testSession("test-session-prefix")
	require.NoError(t, store.Save(ctx, session))

	val, err := client.Get(ctx, "fixwave:sess:test-session-prefix").Result()
	require.NoError(t, err)
	assert.Contains(t, val, `"user-123"`)

	// The default-prefix store must not see it.
	_, err = NewSessionStore(client).Get(ctx, session.ID)
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)
}
