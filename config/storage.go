package config

import "time"

// StorageConfig contains object storage and upload configuration.
type StorageConfig struct {
	// Bucket is the S3 bucket holding user uploads.
	Bucket string `env:"BUCKET" envDefault:"fixwave-uploads"`

	// Region is the AWS region of the bucket. Empty defers to the
	// ambient AWS configuration.
	Region string `env:"REGION" envDefault:""`

	// Endpoint overrides the S3 endpoint, for MinIO or localstack.
	Endpoint string `env:"ENDPOINT" envDefault:""`

	// UsePathStyle forces path-style addressing. Required by most
	// S3-compatible stores when Endpoint is set.
	UsePathStyle bool `env:"USE_PATH_STYLE" envDefault:"false"`

	// PublicBaseURL is the CDN or bucket-website prefix for public
	// objects. Empty means every download URL is presigned.
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:""`

	// PresignTTL bounds presigned download URLs for private objects.
	PresignTTL time.Duration `env:"PRESIGN_TTL" envDefault:"15m"`

	// Per-kind upload size caps.
	MaxAvatarBytes    int64 `env:"MAX_AVATAR_BYTES"    envDefault:"5242880"`
	MaxPortfolioBytes int64 `env:"MAX_PORTFOLIO_BYTES" envDefault:"15728640"`
	MaxDocumentBytes  int64 `env:"MAX_DOCUMENT_BYTES"  envDefault:"20971520"`

	// ImportHosts is the allowlist for avatar import-from-URL sources.
	// Entries are exact hosts, "*.domain" wildcards, or registrable domains.
	ImportHosts []string `env:"IMPORT_HOSTS" envDefault:"" envSeparator:","`
}

// Sanitize applies guardrails to storage configuration values.
func (s *StorageConfig) Sanitize() {
	if s.PresignTTL < time.Minute {
		s.PresignTTL = time.Minute
	}
	if s.MaxAvatarBytes < 1 {
		s.MaxAvatarBytes = 5 << 20
	}
	if s.MaxPortfolioBytes < 1 {
		s.MaxPortfolioBytes = 15 << 20
	}
	if s.MaxDocumentBytes < 1 {
		s.MaxDocumentBytes = 20 << 20
	}
}
