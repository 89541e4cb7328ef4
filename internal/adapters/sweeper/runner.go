// Package sweeper provides the background runner that evicts idle
// per-session auth monitors from the registry.
package sweeper

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"github.com/fixwave/fixwave-api/internal/observability/statsd"
	"github.com/fixwave/fixwave-api/internal/service"
)

// RunnerOptions holds the dependencies for creating a Runner.
type RunnerOptions struct {
	Registry *service.MonitorRegistry
	Interval time.Duration // default 1m when zero
	IdleTTL  time.Duration // default 30m when zero
	Logger   *slog.Logger
	Metrics  statsd.Sink // Optional: metrics sink (StatsD-compatible)
}

// Runner periodically sweeps monitors that have not been touched within
// IdleTTL. Sweeping stops their pollers and drops them; the next request for
// that session simply builds a fresh monitor.
type Runner struct {
	registry *service.MonitorRegistry
	interval time.Duration
	idleTTL  time.Duration
	logger   *slog.Logger
	metrics  statsd.Sink
}

// NewRunner creates a new sweeper runner with the given options.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Registry == nil {
		return nil, errors.New("monitor registry is required")
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Minute
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = 30 * time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Runner{
		registry: opts.Registry,
		interval: opts.Interval,
		idleTTL:  opts.IdleTTL,
		logger:   opts.Logger.With("component", "monitor_sweeper"),
		metrics:  opts.Metrics,
	}, nil
}

// Run sweeps on every tick until the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting monitor sweeper",
		"interval", r.interval,
		"idle_ttl", r.idleTTL,
	)

	// Add jitter to prevent thundering herd if multiple instances start together
	r.waitWithJitter(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "monitor sweeper stopping", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

func (r *Runner) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-r.idleTTL)
	removed := r.registry.Sweep(cutoff)
	active := r.registry.Len()

	if removed > 0 {
		r.logger.InfoContext(ctx, "swept idle auth monitors",
			"removed", removed,
			"active", active,
		)
	}
	if r.metrics != nil {
		result := "noop"
		if removed > 0 {
			result = "success"
		}
		r.metrics.Count("monitor.sweep", int64(removed), map[string]string{"result": result})
		r.metrics.Gauge("monitor.active", float64(active), nil)
	}
}

// waitWithJitter adds a random delay up to 10% of the interval to prevent thundering herd.
func (r *Runner) waitWithJitter(ctx context.Context) {
	maxJitter := int64(r.interval / 10)
	if maxJitter <= 0 {
		return
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// If crypto/rand fails, skip jitter rather than failing startup
		r.logger.WarnContext(ctx, "failed to generate jitter, skipping", "error", err)
		return
	}

	// Use modulo on uint64 before converting to avoid overflow
	jitterNanos := binary.BigEndian.Uint64(buf[:]) % uint64(maxJitter)
	jitter := time.Duration(int64(jitterNanos)) // #nosec G115 - bounded by maxJitter which is int64

	select {
	case <-time.After(jitter):
	case <-ctx.Done():
	}
}
