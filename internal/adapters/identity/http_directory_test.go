package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userPayload = `{
	"id": "u-42",
	"first_name": "Ada",
	"last_name": "Byron",
	"email": "ada@example.com",
	"email_verified_at": "2026-01-15T10:30:00Z",
	"groups": ["fixwave-providers"]
}`

func newTestDirectory(t *testing.T, handler http.Handler, paths ClaimPaths) *HTTPDirectory {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	dir, err := NewHTTPDirectory(HTTPDirectoryConfig{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Paths:   paths,
	})
	require.NoError(t, err)
	return dir
}

func TestHTTPDirectory_Lookup(t *testing.T) {
	var gotAuth, gotPath string
	dir := newTestDirectory(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(userPayload)) //nolint:errcheck // test server
	}), ClaimPaths{})

	id, err := dir.Lookup(context.Background(), "u-42")
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "/users/u-42", gotPath)
	assert.Equal(t, "u-42", id.UserID)
	assert.Equal(t, "Ada", id.FirstName)
	assert.Equal(t, "ada@example.com", id.Email)
	assert.Equal(t, []string{"fixwave-providers"}, id.Groups)
	require.NotNil(t, id.VerifiedAt)
	assert.Equal(t, time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC), id.VerifiedAt.UTC())
}

func TestHTTPDirectory_LookupUnverifiedUser(t *testing.T) {
	dir := newTestDirectory(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"id": "u-7", "email": "new@example.com", "email_verified_at": null}`)) //nolint:errcheck
	}), ClaimPaths{})

	id, err := dir.Lookup(context.Background(), "u-7")
	require.NoError(t, err)
	assert.Nil(t, id.VerifiedAt)
	assert.False(t, id.Verified())
}

func TestHTTPDirectory_LookupNotFound(t *testing.T) {
	dir := newTestDirectory(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}), ClaimPaths{})

	_, err := dir.Lookup(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestHTTPDirectory_CustomClaimPaths(t *testing.T) {
	payload := `{
		"data": {
			"user": {"uid": "u-9", "contact": {"mail": "x@example.com"}},
			"memberships": [{"name": "a"}, {"name": "b"}]
		}
	}`
	dir := newTestDirectory(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(payload)) //nolint:errcheck // test server
	}), ClaimPaths{
		UserID: "data.user.uid",
		Email:  "data.user.contact.mail",
		Groups: "data.memberships[].name",
	})

	id, err := dir.Lookup(context.Background(), "u-9")
	require.NoError(t, err)
	assert.Equal(t, "u-9", id.UserID)
	assert.Equal(t, "x@example.com", id.Email)
	assert.Equal(t, []string{"a", "b"}, id.Groups)
}

func TestHTTPDirectory_ResendAndRevoke(t *testing.T) {
	var paths []string
	dir := newTestDirectory(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		paths = append(paths, r.URL.Path)
		w.WriteHeader(http.StatusAccepted)
	}), ClaimPaths{})

	require.NoError(t, dir.ResendVerification(context.Background(), "u-1"))
	require.NoError(t, dir.RevokeSessions(context.Background(), "u-1"))
	assert.Equal(t, []string{"/users/u-1/verification/resend", "/users/u-1/sessions/revoke"}, paths)
}

func TestHTTPDirectory_ServerErrorSurfaces(t *testing.T) {
	dir := newTestDirectory(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}), ClaimPaths{})

	_, err := dir.Lookup(context.Background(), "u-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 502")

	err = dir.ResendVerification(context.Background(), "u-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 502")
}

func TestNewHTTPDirectory_Validation(t *testing.T) {
	_, err := NewHTTPDirectory(HTTPDirectoryConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base URL is required")

	_, err = NewHTTPDirectory(HTTPDirectoryConfig{BaseURL: "ftp://backend"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid base URL scheme")

	_, err = NewHTTPDirectory(HTTPDirectoryConfig{
		BaseURL: "https://backend",
		Paths:   ClaimPaths{UserID: "data.["},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "claim path")
}
