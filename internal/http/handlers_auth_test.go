package httpx

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/fixwave/fixwave-api/internal/data"
	domainauth "github.com/fixwave/fixwave-api/internal/domain/auth"
	"github.com/fixwave/fixwave-api/internal/domain/profile"
)

func testSession(id, userID string) domainauth.Session {
	return domainauth.Session{
		ID:        id,
		UserID:    userID,
		FirstName: "Mock",
		Email:     "mock.user@example.com",
		Role:      domainauth.RoleCustomer,
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func cookieByName(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func TestLogin_RedirectsToProviderWithCookies(t *testing.T) {
	t.Parallel()
	h := newRouterHarness(t)

	rec := h.do(httptest.NewRequest(http.MethodGet, "/auth/login?redirect_uri=/profile", nil))
	require.Equal(t, http.StatusFound, rec.Code)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(loc.String(), "https://mock-idp/auth"))

	state := cookieByName(t, rec, "oauth_state")
	assert.NotEmpty(t, state.Value)
	assert.NotEmpty(t, cookieByName(t, rec, "oauth_nonce").Value)
	assert.Equal(t, "/profile", cookieByName(t, rec, "post_login_redirect").Value)
}

func TestLogin_RejectsAbsoluteRedirects(t *testing.T) {
	t.Parallel()
	h := newRouterHarness(t)

	rec := h.do(httptest.NewRequest(http.MethodGet, "/auth/login?redirect_uri=https://evil.example.com/", nil))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", cookieByName(t, rec, "post_login_redirect").Value)
}

func TestCallback_CompletesLoginAndSetsSession(t *testing.T) {
	t.Parallel()
	h := newRouterHarness(t)

	login := h.do(httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	state := cookieByName(t, login, "oauth_state")
	nonce := cookieByName(t, login, "oauth_nonce")

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=abc&state="+state.Value, nil)
	rec := h.do(req, state, nonce)
	require.Equal(t, http.StatusFound, rec.Code)

	session := cookieByName(t, rec, "session_id")
	assert.NotEmpty(t, session.Value)

	stored, err := h.Sessions.Get(t.Context(), session.Value)
	require.NoError(t, err)
	assert.Equal(t, "mock-user-1", stored.UserID)
	assert.Equal(t, domainauth.RoleCustomer, stored.Role)
}

func TestCallback_RejectsStateMismatch(t *testing.T) {
	t.Parallel()
	h := newRouterHarness(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=abc&state=forged", nil)
	rec := h.do(req, &http.Cookie{Name: "oauth_state", Value: "different"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_state", decodeBody(t, rec)["error"])
}

func TestStatus_WithoutSessionIsUnauthenticated(t *testing.T) {
	t.Parallel()
	h := newRouterHarness(t)

	rec := h.do(httptest.NewRequest(http.MethodGet, "/api/auth/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "unauthenticated", body["status"])
	assert.Equal(t, false, body["is_loading"])
	assert.Equal(t, "idle", body["poll_state"])
}

func TestStatus_PendingProfileWhenProfileMissing(t *testing.T) {
	t.Parallel()
	h := newRouterHarness(t)

	sess := testSession("sess-1", "mock-user-1")
	cookie := h.signIn(t, sess)
	h.Directory.Put(sess.Identity())
	h.Profiles.EXPECT().GetByUserID(gomock.Any(), "mock-user-1").
		Return(nil, data.ErrProfileNotFound)

	rec := h.do(httptest.NewRequest(http.MethodGet, "/api/auth/status", nil), cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "pending_profile", body["status"])
	assert.Equal(t, true, body["has_session"])
	assert.NotContains(t, body, "last_error")

	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "mock-user-1", user["id"])
	assert.Equal(t, false, user["verified"])
}

func TestStatus_ReadyWithProfile(t *testing.T) {
	t.Parallel()
	h := newRouterHarness(t)

	sess := testSession("sess-1", "mock-user-1")
	cookie := h.signIn(t, sess)
	h.Directory.Put(sess.Identity())
	h.Profiles.EXPECT().GetByUserID(gomock.Any(), "mock-user-1").
		Return(&profile.Profile{ID: "p-1", UserID: "mock-user-1", DisplayName: "Mock"}, nil)

	rec := h.do(httptest.NewRequest(http.MethodGet, "/api/auth/status", nil), cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "ready", body["status"])
	prof, ok := body["profile"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Mock", prof["display_name"])
}

func TestRefresh_RequeriesBackends(t *testing.T) {
	t.Parallel()
	h := newRouterHarness(t)

	sess := testSession("sess-1", "mock-user-1")
	cookie := h.signIn(t, sess)
	h.Directory.Put(sess.Identity())

	// First resolution on acquire, second on the explicit refresh.
	h.Profiles.EXPECT().GetByUserID(gomock.Any(), "mock-user-1").
		Return(nil, data.ErrProfileNotFound)
	h.Profiles.EXPECT().GetByUserID(gomock.Any(), "mock-user-1").
		Return(&profile.Profile{ID: "p-1", UserID: "mock-user-1", DisplayName: "Mock"}, nil)

	rec := h.do(httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil), cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", decodeBody(t, rec)["status"])
}

func TestSessionRefresh_ExtendsCookie(t *testing.T) {
	t.Parallel()
	h := newRouterHarness(t)

	sess := testSession("sess-1", "mock-user-1")
	sess.ExpiresAt = time.Now().Add(10 * time.Minute)
	cookie := h.signIn(t, sess)

	rec := h.do(httptest.NewRequest(http.MethodPost, "/api/auth/session/refresh", nil), cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	refreshed := cookieByName(t, rec, "session_id")
	assert.Equal(t, "sess-1", refreshed.Value)
	assert.Greater(t, refreshed.MaxAge, int((6 * time.Hour).Seconds()))
}

func TestSessionRefresh_WithoutCookieIsUnauthorized(t *testing.T) {
	t.Parallel()
	h := newRouterHarness(t)

	rec := h.do(httptest.NewRequest(http.MethodPost, "/api/auth/session/refresh", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStartPolling_AcceptsAndReportsWaiting(t *testing.T) {
	t.Parallel()
	h := newRouterHarness(t)

	sess := testSession("sess-1", "mock-user-1")
	cookie := h.signIn(t, sess)
	h.Directory.Put(sess.Identity())
	h.Profiles.EXPECT().GetByUserID(gomock.Any(), "mock-user-1").
		Return(nil, data.ErrProfileNotFound).AnyTimes()

	rec := h.do(httptest.NewRequest(http.MethodPost, "/api/auth/verification/poll", nil), cookie)
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "waiting", decodeBody(t, rec)["poll_state"])

	// Stop is symmetric and returns to idle.
	rec = h.do(httptest.NewRequest(http.MethodDelete, "/api/auth/verification/poll", nil), cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "idle", decodeBody(t, rec)["poll_state"])
}

func TestStartPolling_WithoutSessionIsUnauthorized(t *testing.T) {
	t.Parallel()
	h := newRouterHarness(t)

	rec := h.do(httptest.NewRequest(http.MethodPost, "/api/auth/verification/poll", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestResendVerification(t *testing.T) {
	t.Parallel()
	h := newRouterHarness(t)

	sess := testSession("sess-1", "mock-user-1")
	cookie := h.signIn(t, sess)
	h.Directory.Put(sess.Identity())

	rec := h.do(httptest.NewRequest(http.MethodPost, "/api/auth/verification/resend", nil), cookie)
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 1, h.Directory.ResendCalls)
}

func TestLogout_ClearsSession(t *testing.T) {
	t.Parallel()
	h := newRouterHarness(t)

	sess := testSession("sess-1", "mock-user-1")
	cookie := h.signIn(t, sess)
	h.Directory.Put(sess.Identity())

	rec := h.do(httptest.NewRequest(http.MethodPost, "/auth/logout", nil), cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "signed_out", decodeBody(t, rec)["status"])

	cleared := cookieByName(t, rec, "session_id")
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)

	_, err := h.Sessions.Get(t.Context(), "sess-1")
	assert.Error(t, err)
}

func TestHealthz(t *testing.T) {
	t.Parallel()
	h := newRouterHarness(t)

	rec := h.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
