package oidc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixwave/fixwave-api/internal/ports"
)

func newDiscoveryServer(t *testing.T) *httptest.Server {
	t.Helper()
	issuer := ""
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		doc := DiscoveryDocument{
			Issuer:                issuer,
			AuthorizationEndpoint: "https://idp.fixwave.dev/auth",
			TokenEndpoint:         "https://idp.fixwave.dev/token",
			UserinfoEndpoint:      "https://idp.fixwave.dev/userinfo",
			JwksURI:               "https://idp.fixwave.dev/jwks",
		}
		_ = json.NewEncoder(w).Encode(doc)
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	issuer = srv.URL
	return srv
}

func createTestProvider(t *testing.T) *Provider {
	t.Helper()
	srv := newDiscoveryServer(t)
	provider, err := NewProvider(ProviderConfig{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		RedirectURL:  "http://localhost:8080/auth/callback",
		Scope:        "openid profile email groups",
		DiscoveryURL: srv.URL,
		LogoutURL:    "https://idp.fixwave.dev/logout",
	})
	require.NoError(t, err)
	return provider
}

func TestNewProvider_Success(t *testing.T) {
	provider := createTestProvider(t)

	assert.Equal(t, "https://idp.fixwave.dev/auth", provider.config.Endpoint.AuthURL)
	assert.Equal(t, "https://idp.fixwave.dev/token", provider.config.Endpoint.TokenURL)
	assert.Equal(t, "https://idp.fixwave.dev/logout", provider.LogoutURL())
}

func TestNewProvider_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		config ProviderConfig
		errMsg string
	}{
		{
			name: "missing client ID",
			config: ProviderConfig{
				ClientSecret: "secret",
				RedirectURL:  "http://localhost/callback",
				DiscoveryURL: "http://example.com",
			},
			errMsg: "client ID is required",
		},
		{
			name: "missing client secret",
			config: ProviderConfig{
				ClientID:     "client",
				RedirectURL:  "http://localhost/callback",
				DiscoveryURL: "http://example.com",
			},
			errMsg: "client secret is required",
		},
		{
			name:   "missing redirect URL",
			config: ProviderConfig{ClientID: "client", ClientSecret: "secret", DiscoveryURL: "http://example.com"},
			errMsg: "redirect URL is required",
		},
		{
			name: "missing discovery URL",
			config: ProviderConfig{
				ClientID:     "client",
				ClientSecret: "secret",
				RedirectURL:  "http://localhost/callback",
			},
			errMsg: "discovery URL is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProvider(tt.config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestProvider_Begin(t *testing.T) {
	provider := createTestProvider(t)

	authURL, state, nonce, err := provider.Begin(context.Background(), ports.BeginInput{
		RedirectURL: "http://localhost:8080/auth/callback",
	})
	require.NoError(t, err)

	assert.Len(t, state, 32)
	assert.Len(t, nonce, 32)
	assert.NotEqual(t, state, nonce)

	u, err := url.Parse(authURL)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(authURL, "https://idp.fixwave.dev/auth"))
	q := u.Query()
	assert.Equal(t, state, q.Get("state"))
	assert.Equal(t, nonce, q.Get("nonce"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "select_account", q.Get("prompt"))
}

func TestProvider_Begin_RequiresRedirectURL(t *testing.T) {
	provider := createTestProvider(t)

	_, _, _, err := provider.Begin(context.Background(), ports.BeginInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redirect URL is required")
}

func TestMapIDTokenClaims(t *testing.T) {
	claims := idTokenClaims{
		Sub:        "u-42",
		GivenName:  "Ada",
		FamilyName: "Byron",
		Email:      "ada@example.com",
		Groups:     []string{"providers"},
	}

	f := mapIDTokenClaims(claims)
	assert.Equal(t, "u-42", f.userID)
	assert.Equal(t, "Ada", f.givenName)
	assert.Equal(t, "Byron", f.familyName)
	assert.Equal(t, "ada@example.com", f.email)
	assert.Equal(t, []string{"providers"}, f.groups)
	assert.Nil(t, f.verifiedAt, "unverified identity has no timestamp")
}

func TestVerifiedAtFromClaims(t *testing.T) {
	t.Run("explicit timestamp wins", func(t *testing.T) {
		ts := verifiedAtFromClaims(false, "2026-01-15T10:30:00Z", 0)
		require.NotNil(t, ts)
		assert.Equal(t, time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC), ts.UTC())
	})

	t.Run("flag anchors at iat", func(t *testing.T) {
		iat := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
		ts := verifiedAtFromClaims(true, "", iat.Unix())
		require.NotNil(t, ts)
		assert.Equal(t, iat, ts.UTC())
	})

	t.Run("flag without iat falls back to now", func(t *testing.T) {
		ts := verifiedAtFromClaims(true, "", 0)
		require.NotNil(t, ts)
		assert.WithinDuration(t, time.Now().UTC(), *ts, 5*time.Second)
	})

	t.Run("unverified yields nil", func(t *testing.T) {
		assert.Nil(t, verifiedAtFromClaims(false, "", time.Now().Unix()))
	})

	t.Run("malformed timestamp is ignored", func(t *testing.T) {
		assert.Nil(t, verifiedAtFromClaims(false, "yesterday", 0))
	})
}

func TestFillFromUserInfoClaims(t *testing.T) {
	f := idFields{userID: "u-1"}
	fillFromUserInfoClaims(&f, UserInfo{
		Subject:       "ignored",
		GivenName:     "Grace",
		FamilyName:    "Hopper",
		Email:         "grace@example.com",
		EmailVerified: true,
		Groups:        []string{"customers"},
	})

	assert.Equal(t, "u-1", f.userID, "existing fields are never overwritten")
	assert.Equal(t, "Grace", f.givenName)
	assert.Equal(t, "grace@example.com", f.email)
	assert.Equal(t, []string{"customers"}, f.groups)
	assert.NotNil(t, f.verifiedAt)
}

func TestGenerateRandomString(t *testing.T) {
	seen := make(map[string]struct{})
	for range 16 {
		s, err := generateRandomString(32)
		require.NoError(t, err)
		assert.Len(t, s, 32)
		_, dup := seen[s]
		assert.False(t, dup)
		seen[s] = struct{}{}
	}

	s, err := generateRandomString(0)
	require.NoError(t, err)
	assert.Empty(t, s)
}
