package config

import "time"

// VerificationConfig contains verification polling configuration. The poller
// re-checks the directory with exponential backoff until the identity reports
// as verified or the attempt budget runs out.
type VerificationConfig struct {
	// InitialInterval is the delay before the first check.
	InitialInterval time.Duration `env:"INITIAL_INTERVAL" envDefault:"2s"`

	// MaxInterval caps the backoff growth.
	MaxInterval time.Duration `env:"MAX_INTERVAL" envDefault:"30s"`

	// Multiplier is the backoff growth factor per attempt.
	Multiplier float64 `env:"MULTIPLIER" envDefault:"1.3"`

	// MaxAttempts bounds the number of checks before the poll times out.
	MaxAttempts int `env:"MAX_ATTEMPTS" envDefault:"20"`
}

// Sanitize applies guardrails to verification polling values.
func (v *VerificationConfig) Sanitize() {
	if v.InitialInterval < 100*time.Millisecond {
		v.InitialInterval = 100 * time.Millisecond
	}
	if v.MaxInterval < v.InitialInterval {
		v.MaxInterval = v.InitialInterval
	}
	if v.Multiplier < 1 {
		v.Multiplier = 1
	}
	if v.MaxAttempts < 1 {
		v.MaxAttempts = 1
	}
}
