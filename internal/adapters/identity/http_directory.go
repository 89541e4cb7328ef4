package identity

// Package identity provides IdentityDirectory adapters over the hosted user
// backend. The HTTP directory speaks the backend's JSON user API; the static
// directory backs local development.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"

	domainauth "github.com/fixwave/fixwave-api/internal/domain/auth"
)

// ErrUserNotFound is returned by Lookup when the backend has no such user.
var ErrUserNotFound = errors.New("user not found")

// ClaimPaths holds JMESPath expressions that locate identity fields inside
// the backend's user payload. Zero values fall back to the default shape.
type ClaimPaths struct {
	UserID     string
	FirstName  string
	LastName   string
	Email      string
	Groups     string
	VerifiedAt string
}

// DefaultClaimPaths matches the hosted backend's stock user document.
func DefaultClaimPaths() ClaimPaths {
	return ClaimPaths{
		UserID:     "id",
		FirstName:  "first_name",
		LastName:   "last_name",
		Email:      "email",
		Groups:     "groups",
		VerifiedAt: "email_verified_at",
	}
}

// HTTPDirectoryConfig configures HTTPDirectory.
type HTTPDirectoryConfig struct {
	BaseURL string
	APIKey  string // sent as a bearer token when set

	// Paths overrides claim extraction for backends with a custom payload
	// shape. Zero-valued fields use DefaultClaimPaths.
	Paths ClaimPaths

	HTTPClient *http.Client // Optional, defaults to a 15s-timeout client
}

// HTTPDirectory implements ports.IdentityDirectory against the backend's
// REST user API.
type HTTPDirectory struct {
	baseURL string
	apiKey  string
	paths   ClaimPaths
	client  *http.Client
}

// NewHTTPDirectory validates the config, including compiling every claim
// path, and returns the directory.
func NewHTTPDirectory(cfg HTTPDirectoryConfig) (*HTTPDirectory, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL scheme: %s", u.Scheme)
	}

	paths := mergeClaimPaths(cfg.Paths)
	for name, expr := range map[string]string{
		"user ID":     paths.UserID,
		"first name":  paths.FirstName,
		"last name":   paths.LastName,
		"email":       paths.Email,
		"groups":      paths.Groups,
		"verified at": paths.VerifiedAt,
	} {
		if _, compileErr := jmespath.Compile(expr); compileErr != nil {
			return nil, fmt.Errorf("invalid %s claim path: %w", name, compileErr)
		}
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	return &HTTPDirectory{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		paths:   paths,
		client:  client,
	}, nil
}

func mergeClaimPaths(p ClaimPaths) ClaimPaths {
	def := DefaultClaimPaths()
	if p.UserID == "" {
		p.UserID = def.UserID
	}
	if p.FirstName == "" {
		p.FirstName = def.FirstName
	}
	if p.LastName == "" {
		p.LastName = def.LastName
	}
	if p.Email == "" {
		p.Email = def.Email
	}
	if p.Groups == "" {
		p.Groups = def.Groups
	}
	if p.VerifiedAt == "" {
		p.VerifiedAt = def.VerifiedAt
	}
	return p
}

// Lookup fetches the backend's current view of the user. The verification
// timestamp read here is the source of truth for the polling flow.
func (d *HTTPDirectory) Lookup(ctx context.Context, userID string) (domainauth.Identity, error) {
	if userID == "" {
		return domainauth.Identity{}, errors.New("user ID is required")
	}

	payload, err := d.getJSON(ctx, "/users/"+url.PathEscape(userID))
	if err != nil {
		return domainauth.Identity{}, err
	}
	return d.mapIdentity(payload)
}

// ResendVerification asks the backend to send a fresh verification email.
func (d *HTTPDirectory) ResendVerification(ctx context.Context, userID string) error {
	if userID == "" {
		return errors.New("user ID is required")
	}
	return d.post(ctx, "/users/"+url.PathEscape(userID)+"/verification/resend")
}

// RevokeSessions terminates all backend-side sessions for the user.
func (d *HTTPDirectory) RevokeSessions(ctx context.Context, userID string) error {
	if userID == "" {
		return errors.New("user ID is required")
	}
	return d.post(ctx, "/users/"+url.PathEscape(userID)+"/sessions/revoke")
}

func (d *HTTPDirectory) getJSON(ctx context.Context, path string) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	d.authorize(req)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directory request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrUserNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("directory request: unexpected status %d", resp.StatusCode)
	}

	var payload any
	if decodeErr := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payload); decodeErr != nil {
		return nil, fmt.Errorf("decode directory response: %w", decodeErr)
	}
	return payload, nil
}

func (d *HTTPDirectory) post(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	d.authorize(req)

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("directory request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrUserNotFound
	case resp.StatusCode >= 300:
		return fmt.Errorf("directory request: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func (d *HTTPDirectory) authorize(req *http.Request) {
	if d.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+d.apiKey)
	}
	req.Header.Set("Accept", "application/json")
}

// mapIdentity extracts identity fields from the payload via the configured
// claim paths.
func (d *HTTPDirectory) mapIdentity(payload any) (domainauth.Identity, error) {
	userID, err := searchString(d.paths.UserID, payload)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("extract user ID: %w", err)
	}
	if userID == "" {
		return domainauth.Identity{}, errors.New("directory payload is missing the user ID")
	}

	id := domainauth.Identity{UserID: userID}
	if id.FirstName, err = searchString(d.paths.FirstName, payload); err != nil {
		return domainauth.Identity{}, fmt.Errorf("extract first name: %w", err)
	}
	if id.LastName, err = searchString(d.paths.LastName, payload); err != nil {
		return domainauth.Identity{}, fmt.Errorf("extract last name: %w", err)
	}
	if id.Email, err = searchString(d.paths.Email, payload); err != nil {
		return domainauth.Identity{}, fmt.Errorf("extract email: %w", err)
	}
	if id.Groups, err = searchStrings(d.paths.Groups, payload); err != nil {
		return domainauth.Identity{}, fmt.Errorf("extract groups: %w", err)
	}

	rawVerified, err := searchString(d.paths.VerifiedAt, payload)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("extract verified at: %w", err)
	}
	if rawVerified != "" {
		ts, parseErr := time.Parse(time.RFC3339, rawVerified)
		if parseErr != nil {
			return domainauth.Identity{}, fmt.Errorf("parse verified at: %w", parseErr)
		}
		id.VerifiedAt = &ts
	}
	return id, nil
}

func searchString(expr string, payload any) (string, error) {
	v, err := jmespath.Search(expr, payload)
	if err != nil {
		return "", err
	}
	switch s := v.(type) {
	case nil:
		return "", nil
	case string:
		return s, nil
	default:
		return "", fmt.Errorf("claim %q resolved to %T, want string", expr, v)
	}
}

func searchStrings(expr string, payload any) ([]string, error) {
	v, err := jmespath.Search(expr, payload)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	raw, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("claim %q resolved to %T, want list", expr, v)
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("claim %q contains %T, want string", expr, item)
		}
		out = append(out, s)
	}
	return out, nil
}
