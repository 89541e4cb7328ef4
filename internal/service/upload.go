package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/fixwave/fixwave-api/internal/ports"
)

// UploadKind selects the storage class and validation rules for a file.
type UploadKind string

const (
	UploadAvatar    UploadKind = "avatar"
	UploadPortfolio UploadKind = "portfolio"
	UploadDocument  UploadKind = "document"
)

// Upload failure sentinels, mapped to 4xx responses by the HTTP layer.
var (
	ErrUploadTooLarge       = errors.New("file exceeds the size limit")
	ErrUnsupportedFileType  = errors.New("unsupported file type")
	ErrUnknownUploadKind    = errors.New("unknown upload kind")
	ErrImportHostNotAllowed = errors.New("import host is not allowed")
)

// UploadConfig holds per-kind limits and the avatar import allowlist.
type UploadConfig struct {
	MaxAvatarBytes    int64
	MaxPortfolioBytes int64
	MaxDocumentBytes  int64

	// ImportHosts are HostMatcher patterns for import-from-URL sources.
	ImportHosts []string

	// PresignTTL bounds download URLs for private objects.
	PresignTTL time.Duration
}

// DefaultUploadConfig returns production limits.
func DefaultUploadConfig() UploadConfig {
	return UploadConfig{
		MaxAvatarBytes:    5 << 20,
		MaxPortfolioBytes: 15 << 20,
		MaxDocumentBytes:  20 << 20,
		PresignTTL:        15 * time.Minute,
	}
}

// UploadServiceOptions groups dependencies for UploadService.
type UploadServiceOptions struct {
	Store  ports.ObjectStore
	Config UploadConfig

	// Client fetches avatar imports; http.DefaultClient when nil.
	Client *http.Client
}

// UploadService validates and stores user files. Content types are sniffed
// from the payload, never trusted from the client.
type UploadService struct {
	store  ports.ObjectStore
	cfg    UploadConfig
	hosts  *HostMatcher
	client *http.Client
}

// NewUploadService constructs a new UploadService.
func NewUploadService(opts UploadServiceOptions) *UploadService {
	if opts.Store == nil {
		panic("ObjectStore is required")
	}
	cfg := opts.Config
	if cfg.MaxAvatarBytes <= 0 || cfg.MaxPortfolioBytes <= 0 || cfg.MaxDocumentBytes <= 0 {
		def := DefaultUploadConfig()
		if cfg.MaxAvatarBytes <= 0 {
			cfg.MaxAvatarBytes = def.MaxAvatarBytes
		}
		if cfg.MaxPortfolioBytes <= 0 {
			cfg.MaxPortfolioBytes = def.MaxPortfolioBytes
		}
		if cfg.MaxDocumentBytes <= 0 {
			cfg.MaxDocumentBytes = def.MaxDocumentBytes
		}
	}
	if cfg.PresignTTL <= 0 {
		cfg.PresignTTL = DefaultUploadConfig().PresignTTL
	}
	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}
	return &UploadService{
		store:  opts.Store,
		cfg:    cfg,
		hosts:  NewHostMatcher(cfg.ImportHosts),
		client: client,
	}
}

// UploadInput groups parameters for Upload.
type UploadInput struct {
	UserID string
	Kind   UploadKind
	Body   io.Reader
}

// UploadResult reports where the stored file lives.
type UploadResult struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Upload validates and stores one file. Avatars and portfolio images get a
// public URL; documents get a presigned, time-limited one.
func (s *UploadService) Upload(ctx context.Context, in UploadInput) (*UploadResult, error) {
	if in.UserID == "" {
		return nil, errors.New("user ID is required")
	}
	limit, allowed, err := s.kindPolicy(in.Kind)
	if err != nil {
		return nil, err
	}

	payload, err := readCapped(in.Body, limit)
	if err != nil {
		return nil, err
	}

	mtype := mimetype.Detect(payload)
	if !mimetype.EqualsAny(mtype.String(), allowed...) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, mtype.String())
	}

	key := fmt.Sprintf("%ss/%s/%s%s", in.Kind, in.UserID, uuid.NewString(), mtype.Extension())
	put, err := s.store.Put(ctx, ports.PutObjectInput{
		Key:         key,
		Body:        bytes.NewReader(payload),
		ContentType: mtype.String(),
		Size:        int64(len(payload)),
	})
	if err != nil {
		return nil, fmt.Errorf("store object: %w", err)
	}

	result := &UploadResult{
		Key:         put.Key,
		URL:         put.URL,
		ContentType: mtype.String(),
		Size:        int64(len(payload)),
	}
	if in.Kind == UploadDocument || result.URL == "" {
		signed, signErr := s.store.PresignGet(ctx, put.Key, s.cfg.PresignTTL)
		if signErr != nil {
			return nil, fmt.Errorf("presign object: %w", signErr)
		}
		result.URL = signed
	}
	return result, nil
}

// Delete removes a stored object.
func (s *UploadService) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("object key is required")
	}
	if err := s.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// PresignDownload issues a fresh download URL for a stored object.
func (s *UploadService) PresignDownload(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", errors.New("object key is required")
	}
	return s.store.PresignGet(ctx, key, s.cfg.PresignTTL)
}

// ImportAvatarFromURL fetches an avatar from an allowlisted https host and
// stores it like a direct upload.
func (s *UploadService) ImportAvatarFromURL(ctx context.Context, userID, rawURL string) (*UploadResult, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse import URL: %w", err)
	}
	if u.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme %q", ErrImportHostNotAllowed, u.Scheme)
	}
	if !s.hosts.Allow(u.Host) {
		return nil, fmt.Errorf("%w: %s", ErrImportHostNotAllowed, u.Host)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build import request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch import URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch import URL: unexpected status %d", resp.StatusCode)
	}

	return s.Upload(ctx, UploadInput{UserID: userID, Kind: UploadAvatar, Body: resp.Body})
}

// KeyOwnedBy reports whether the object key belongs to userID. Keys are laid
// out as {kind}s/{user}/{file}, so the owner is the second segment.
func KeyOwnedBy(key, userID string) bool {
	if userID == "" {
		return false
	}
	parts := strings.SplitN(key, "/", 3)
	return len(parts) == 3 && parts[1] == userID
}

// kindPolicy returns the size cap and sniffed-MIME allowlist for a kind.
func (s *UploadService) kindPolicy(kind UploadKind) (int64, []string, error) {
	switch kind {
	case UploadAvatar:
		return s.cfg.MaxAvatarBytes, []string{"image/jpeg", "image/png", "image/webp"}, nil
	case UploadPortfolio:
		return s.cfg.MaxPortfolioBytes, []string{"image/jpeg", "image/png", "image/webp"}, nil
	case UploadDocument:
		return s.cfg.MaxDocumentBytes, []string{"application/pdf", "image/jpeg", "image/png"}, nil
	default:
		return 0, nil, fmt.Errorf("%w: %q", ErrUnknownUploadKind, kind)
	}
}

// readCapped reads at most limit bytes, failing when the source has more.
func readCapped(r io.Reader, limit int64) ([]byte, error) {
	if r == nil {
		return nil, errors.New("file body is required")
	}
	payload, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(payload)) > limit {
		return nil, ErrUploadTooLarge
	}
	if len(payload) == 0 {
		return nil, errors.New("file body is empty")
	}
	return payload, nil
}
