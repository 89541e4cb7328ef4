package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/fixwave/fixwave-api/config"
	"github.com/fixwave/fixwave-api/internal/adapters/identity"
	s3store "github.com/fixwave/fixwave-api/internal/adapters/s3"
	"github.com/fixwave/fixwave-api/internal/adapters/sweeper"
	"github.com/fixwave/fixwave-api/internal/observability/statsd"
	"github.com/fixwave/fixwave-api/internal/ports"
	"github.com/fixwave/fixwave-api/internal/service"
)

// BuildObjectStore creates the S3-backed object store for user uploads.
func BuildObjectStore(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (*s3store.Store, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	store, err := s3store.NewStore(client, s3store.StoreConfig{
		Bucket:        cfg.Bucket,
		PublicBaseURL: cfg.PublicBaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("create object store: %w", err)
	}

	if logger != nil {
		logger.Info("object store configured",
			"bucket", cfg.Bucket,
			"endpoint", cfg.Endpoint,
			"public_base_url", cfg.PublicBaseURL,
		)
	}

	return store, nil
}

// devDirectoryVerifyAfter is how long the in-process dev directory waits
// before auto-verifying a freshly registered identity, so the polling flow
// stays exercisable without a real backend.
const devDirectoryVerifyAfter = 10 * time.Second

// BuildDirectory creates the identity directory. A configured base URL gets
// the HTTP directory; otherwise dev mode falls back to an in-process static
// directory and production fails.
//
//nolint:ireturn // callers only need the port; the concrete type depends on config.
func BuildDirectory(cfg config.DirectoryConfig, isDev bool, logger *slog.Logger) (ports.IdentityDirectory, error) {
	if cfg.BaseURL == "" {
		if !isDev {
			return nil, fmt.Errorf("directory base URL is required outside dev mode")
		}
		if logger != nil {
			logger.Warn("directory base URL not set; using in-process static directory")
		}
		return identity.NewStaticDirectory(devDirectoryVerifyAfter), nil
	}

	dir, err := identity.NewHTTPDirectory(identity.HTTPDirectoryConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Paths: identity.ClaimPaths{
			UserID:     cfg.UserIDPath,
			FirstName:  cfg.FirstNamePath,
			LastName:   cfg.LastNamePath,
			Email:      cfg.EmailPath,
			Groups:     cfg.GroupsPath,
			VerifiedAt: cfg.VerifiedAtPath,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create identity directory: %w", err)
	}
	return dir, nil
}

// SweeperConfig contains configuration for the monitor sweeper.
type SweeperConfig struct {
	Registry *service.MonitorRegistry
	Config   config.SweeperConfig
	Logger   *slog.Logger
	Metrics  statsd.Sink
}

// RunSweeper starts the idle-monitor sweeper service.
func RunSweeper(ctx context.Context, cfg SweeperConfig) error {
	runner, err := sweeper.NewRunner(sweeper.RunnerOptions{
		Registry: cfg.Registry,
		Interval: cfg.Config.Interval,
		IdleTTL:  cfg.Config.IdleTTL,
		Logger:   cfg.Logger,
		Metrics:  cfg.Metrics,
	})
	if err != nil {
		return fmt.Errorf("create sweeper runner: %w", err)
	}

	return runner.Run(ctx)
}
