package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fixwave/fixwave-api/internal/core"
	domainauth "github.com/fixwave/fixwave-api/internal/domain/auth"
	"github.com/fixwave/fixwave-api/internal/observability/metrics"
	"github.com/fixwave/fixwave-api/internal/observability/statsd"
	"github.com/fixwave/fixwave-api/internal/ports"
)

// PollState labels the verification poller's state machine.
type PollState string

const (
	PollIdle      PollState = "idle"
	PollWaiting   PollState = "waiting"
	PollChecking  PollState = "checking"
	PollSucceeded PollState = "succeeded"
	PollTimedOut  PollState = "timed_out"
	PollFailed    PollState = "failed"
)

// PollConfig holds the backoff policy for verification polling.
type PollConfig struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	MaxAttempts     int
}

// DefaultPollConfig returns the production backoff policy: 2s initial,
// 1.3x growth capped at 30s, 20 attempts (roughly a ten minute window).
func DefaultPollConfig() PollConfig {
	return PollConfig{
		InitialInterval: 2 * time.Second,
		MaxInterval:     30 * time.Second,
		Multiplier:      1.3,
		MaxAttempts:     20,
	}
}

// normalize guards against zero values from partially filled configs.
func (c PollConfig) normalize() PollConfig {
	def := DefaultPollConfig()
	if c.InitialInterval <= 0 {
		c.InitialInterval = def.InitialInterval
	}
	if c.MaxInterval < c.InitialInterval {
		c.MaxInterval = def.MaxInterval
	}
	if c.Multiplier < 1 {
		c.Multiplier = def.Multiplier
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = def.MaxAttempts
	}
	return c
}

// NextInterval applies one backoff step: interval * multiplier, capped at the
// configured maximum. The result is never smaller than its input.
func (c PollConfig) NextInterval(current time.Duration) time.Duration {
	next := time.Duration(float64(current) * c.Multiplier)
	if next > c.MaxInterval {
		next = c.MaxInterval
	}
	if next < current {
		next = current
	}
	return next
}

// PollerOptions groups dependencies for VerificationPoller.
type PollerOptions struct {
	Checker   core.VerificationChecker
	Scheduler ports.Scheduler
	Config    PollConfig
	Logger    *slog.Logger
	Metrics   statsd.Sink

	// OnVerified fires once per session when the backend reports the
	// identity as verified. OnFailure fires with ErrorKindPollFailed or
	// ErrorKindPollTimeout. Both run outside the poller's lock.
	OnVerified func(userID string)
	OnFailure  func(kind domainauth.ErrorKind)
}

// VerificationPoller periodically asks the backend whether an identity has
// completed email verification, backing off between checks. At most one poll
// session is active at a time; Start cancels any prior session and a late
// timer or in-flight check belonging to a replaced session is discarded.
type VerificationPoller struct {
	checker core.VerificationChecker
	sched   ports.Scheduler
	cfg     PollConfig
	logger  *slog.Logger
	metrics statsd.Sink

	onVerified func(userID string)
	onFailure  func(kind domainauth.ErrorKind)

	mu      sync.Mutex
	state   PollState
	session *pollSession
}

// pollSession is the per-Start bookkeeping. It is replaced wholesale, never
// mutated across sessions, so a callback can compare pointers to detect that
// it is stale.
type pollSession struct {
	ctx      context.Context
	userID   string
	attempt  int
	interval time.Duration
	timer    ports.Timer
}

// NewVerificationPoller constructs a new VerificationPoller.
func NewVerificationPoller(opts PollerOptions) *VerificationPoller {
	if opts.Checker == nil {
		panic("VerificationChecker is required")
	}
	if opts.Scheduler == nil {
		panic("Scheduler is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &VerificationPoller{
		checker:    opts.Checker,
		sched:      opts.Scheduler,
		cfg:        opts.Config.normalize(),
		logger:     logger,
		metrics:    opts.Metrics,
		onVerified: opts.OnVerified,
		onFailure:  opts.OnFailure,
		state:      PollIdle,
	}
}

// Start begins a poll session for userID, scheduling the first check after
// the initial interval. Any existing session is cancelled first; the last
// caller wins. ctx bounds the backend calls for the whole session.
func (p *VerificationPoller) Start(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("user ID is required")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.cancelLocked()

	sess := &pollSession{
		ctx:      ctx,
		userID:   userID,
		attempt:  0,
		interval: p.cfg.InitialInterval,
	}
	p.session = sess
	p.state = PollWaiting
	sess.timer = p.sched.AfterFunc(sess.interval, func() { p.checkOnce(sess) })

	p.logger.Debug("verification polling started",
		"user_id", userID, "interval", sess.interval)
	return nil
}

// Stop cancels any outstanding scheduled check and resets the poller to
// idle. It is idempotent; stopping with no active session is a no-op.
func (p *VerificationPoller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelLocked()
	p.state = PollIdle
}

// cancelLocked discards the active session, if any. Callers hold p.mu.
func (p *VerificationPoller) cancelLocked() {
	if p.session == nil {
		return
	}
	if p.session.timer != nil {
		p.session.timer.Stop()
	}
	p.session = nil
}

// State reports the current poller state. Terminal states (succeeded,
// timed_out, failed) persist until the next Start or Stop.
func (p *VerificationPoller) State() PollState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Attempt reports how many checks have completed without a verified result
// in the active session, or 0 when no session is active.
func (p *VerificationPoller) Attempt() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return 0
	}
	return p.session.attempt
}

// checkOnce runs one verification check for sess. It is only ever invoked by
// the scheduled timer. A session replaced or stopped while the check was
// pending or in flight is detected by pointer identity and its result
// discarded.
func (p *VerificationPoller) checkOnce(sess *pollSession) {
	p.mu.Lock()
	if p.session != sess {
		p.mu.Unlock()
		return
	}
	p.state = PollChecking
	p.mu.Unlock()

	verified, err := p.checker.Verified(sess.ctx, sess.userID)

	p.mu.Lock()
	if p.session != sess {
		// Stopped or restarted while the query was in flight.
		p.mu.Unlock()
		return
	}

	switch {
	case err != nil:
		p.session = nil
		p.state = PollFailed
		p.mu.Unlock()
		p.logger.Warn("verification check failed",
			"user_id", sess.userID, "attempt", sess.attempt, "error", err)
		metrics.EmitPollAttempt(p.metrics, metrics.PollMetric{
			Result:  metrics.ResultError,
			Attempt: sess.attempt,
			Err:     err,
		})
		p.fail(domainauth.ErrorKindPollFailed)

	case verified:
		p.session = nil
		p.state = PollSucceeded
		p.mu.Unlock()
		p.logger.Info("identity verified", "user_id", sess.userID, "attempt", sess.attempt)
		metrics.EmitPollAttempt(p.metrics, metrics.PollMetric{
			Result:  metrics.ResultSuccess,
			Attempt: sess.attempt,
		})
		if p.onVerified != nil {
			p.onVerified(sess.userID)
		}

	default:
		sess.attempt++
		if sess.attempt >= p.cfg.MaxAttempts {
			p.session = nil
			p.state = PollTimedOut
			p.mu.Unlock()
			p.logger.Warn("verification polling timed out",
				"user_id", sess.userID, "attempts", sess.attempt)
			metrics.EmitPollAttempt(p.metrics, metrics.PollMetric{
				Result:  metrics.ResultNoop,
				Attempt: sess.attempt,
			})
			p.fail(domainauth.ErrorKindPollTimeout)
			return
		}
		sess.interval = p.cfg.NextInterval(sess.interval)
		p.state = PollWaiting
		sess.timer = p.sched.AfterFunc(sess.interval, func() { p.checkOnce(sess) })
		p.mu.Unlock()
		metrics.EmitPollAttempt(p.metrics, metrics.PollMetric{
			Result:  metrics.ResultNoop,
			Attempt: sess.attempt,
		})
	}
}

func (p *VerificationPoller) fail(kind domainauth.ErrorKind) {
	if p.onFailure != nil {
		p.onFailure(kind)
	}
}

// directoryChecker adapts an IdentityDirectory into the narrow
// VerificationChecker the poller depends on.
type directoryChecker struct {
	dir ports.IdentityDirectory
}

// NewDirectoryChecker wraps dir as a core.VerificationChecker.
func NewDirectoryChecker(dir ports.IdentityDirectory) core.VerificationChecker {
	return directoryChecker{dir: dir}
}

func (c directoryChecker) Verified(ctx context.Context, userID string) (bool, error) {
	identity, err := c.dir.Lookup(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("lookup identity: %w", err)
	}
	return identity.Verified(), nil
}
