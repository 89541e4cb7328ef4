package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/fixwave/fixwave-api/config"
	"github.com/fixwave/fixwave-api/internal/adapters/clock"
	redisadapter "github.com/fixwave/fixwave-api/internal/adapters/redis"
	"github.com/fixwave/fixwave-api/internal/data"
	domainauth "github.com/fixwave/fixwave-api/internal/domain/auth"
	"github.com/fixwave/fixwave-api/internal/observability/statsd"
	"github.com/fixwave/fixwave-api/internal/ports"
	"github.com/fixwave/fixwave-api/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Auth          *service.AuthService
	Monitors      *service.MonitorRegistry
	Profiles      *service.ProfileService
	Uploads       *service.UploadService
	Directory     ports.IdentityDirectory
	Notifier      *domainauth.Notifier
	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	MetricsSink   *statsd.Client
	MetricsConfig config.ObservabilityMetricsConfig
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// buildObservability configures the metrics sink.
func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	obsLogger := logger
	if obsLogger == nil {
		obsLogger = slog.Default()
	}

	var metricsSink *statsd.Client
	if cfg.Metrics.IsEnabled() {
		client, err := statsd.NewClient(statsd.Config{
			Enabled: true,
			Address: cfg.Metrics.StatsdAddress,
			Prefix:  "fixwave",
			Logger:  obsLogger,
		})
		if err != nil {
			obsLogger.Error("failed to initialise statsd client", "error", err)
		} else {
			metricsSink = client
		}
	}

	return ObservabilityContainer{
		MetricsSink:   metricsSink,
		MetricsConfig: cfg.Metrics,
	}
}

// metricsSink adapts the optional concrete client to the sink interface so
// downstream nil checks work on the interface value.
//
//nolint:ireturn // the sink interface is what consumers take.
func (o ObservabilityContainer) metricsSink() statsd.Sink {
	if o.MetricsSink == nil {
		return nil
	}
	return o.MetricsSink
}

// NewServices wires business services over the shared infrastructure.
func NewServices(ctx context.Context, deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil {
		return ServiceContainer{}, errors.New("service deps are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := deps.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	observability := buildObservability(logger, appCfg.Observability)

	directory, err := BuildDirectory(appCfg.Directory, appCfg.IsDev, logger)
	if err != nil {
		return ServiceContainer{}, err
	}

	store, err := BuildObjectStore(ctx, appCfg.Storage, logger)
	if err != nil {
		return ServiceContainer{}, err
	}

	notifier := domainauth.NewNotifier()

	authSvc := BuildAuthService(AuthConfig{
		Auth:        appCfg.Auth,
		RedisClient: deps.RedisClient,
		Redis:       appCfg.Redis,
		Notifier:    notifier,
		Logger:      logger,
	})
	if authSvc == nil {
		return ServiceContainer{}, errors.New("auth service could not be configured")
	}

	sessionStore := sessionStoreFromRedis(deps.RedisClient, appCfg.Redis)

	monitors := service.NewMonitorRegistry(service.MonitorRegistryOptions{
		Backends: service.StateManagerBackends{
			Sessions:  sessionStore,
			Directory: directory,
			Profiles:  data.NewProfileRepo(deps.DB),
		},
		Polling: service.PollerOptions{
			Scheduler: clock.NewScheduler(),
			Config: service.PollConfig{
				InitialInterval: appCfg.Verification.InitialInterval,
				MaxInterval:     appCfg.Verification.MaxInterval,
				Multiplier:      appCfg.Verification.Multiplier,
				MaxAttempts:     appCfg.Verification.MaxAttempts,
			},
			Logger:  logger,
			Metrics: observability.metricsSink(),
		},
		Notifier: notifier,
		Logger:   logger,
	})

	profileSvc := service.NewProfileService(service.ProfileServiceOptions{
		Profiles:  data.NewProfileRepo(deps.DB),
		Addresses: data.NewAddressRepo(deps.DB),
	})

	uploadSvc := service.NewUploadService(service.UploadServiceOptions{
		Store: store,
		Config: service.UploadConfig{
			MaxAvatarBytes:    appCfg.Storage.MaxAvatarBytes,
			MaxPortfolioBytes: appCfg.Storage.MaxPortfolioBytes,
			MaxDocumentBytes:  appCfg.Storage.MaxDocumentBytes,
			ImportHosts:       appCfg.Storage.ImportHosts,
			PresignTTL:        appCfg.Storage.PresignTTL,
		},
	})

	return ServiceContainer{
		Auth:          authSvc,
		Monitors:      monitors,
		Profiles:      profileSvc,
		Uploads:       uploadSvc,
		Directory:     directory,
		Notifier:      notifier,
		Observability: observability,
	}, nil
}

// ServiceOrchestrationConfig contains configuration for service orchestration.
type ServiceOrchestrationConfig struct {
	Config      *config.AppConfig
	Services    ServiceContainer
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// RunServicesWithShutdown starts all enabled services and manages their
// lifecycle. It blocks until a shutdown signal arrives or a service fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil {
		return errors.New("service orchestration config is required")
	}
	if cfg.Config == nil {
		return errors.New("service orchestration config missing AppConfig")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	enabled, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	// The monitor event pump always runs; it is what turns session-change
	// events into state refreshes for live monitors.
	g.Go(func() error {
		return ignoreCancellation(cfg.Services.Monitors.Run(gctx))
	})

	if enabled[config.ServiceModeHTTP] {
		server := BuildHTTPServer(&HTTPServerConfig{
			Config:   cfg.Config,
			Services: cfg.Services,
			Logger:   logger,
		})

		g.Go(func() error {
			logger.Info("starting HTTP server", "addr", server.Addr)
			if serveErr := server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", serveErr)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Config.HTTP.ShutdownTimeout)
			defer cancel()
			logger.Info("shutting down HTTP server")
			return server.Shutdown(shutdownCtx)
		})
	}

	if enabled[config.ServiceModeSweeper] {
		g.Go(func() error {
			return ignoreCancellation(RunSweeper(gctx, SweeperConfig{
				Registry: cfg.Services.Monitors,
				Config:   cfg.Config.Sweeper,
				Logger:   logger,
				Metrics:  cfg.Services.Observability.metricsSink(),
			}))
		})
	}

	waitErr := g.Wait()
	logger.Info("services stopped")
	return waitErr
}

// ignoreCancellation treats a context-cancelled exit as a clean stop.
func ignoreCancellation(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// sessionStoreFromRedis mirrors the session store the auth service uses so
// the monitor registry reads sessions from the same keys.
//
//nolint:ireturn // the port is what the registry takes.
func sessionStoreFromRedis(client redis.UniversalClient, cfg config.RedisConfig) ports.SessionStore {
	prefix := cfg.SessionPrefix
	if prefix == "" {
		prefix = "session:"
	}
	return redisadapter.NewSessionStoreWithPrefix(client, prefix)
}
