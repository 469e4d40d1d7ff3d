package resilience

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// BackoffStrategy selects how the delay grows between attempts.
type BackoffStrategy int

const (
	// BackoffExponential multiplies the delay by Multiplier per retry.
	BackoffExponential BackoffStrategy = iota
	// BackoffLinear adds InitialDelay per retry.
	BackoffLinear
	// BackoffConstant waits InitialDelay before every retry.
	BackoffConstant
)

// Retry defaults.
const (
	DefaultMaxAttempts  = 3
	DefaultInitialDelay = 100 * time.Millisecond
	DefaultMaxDelay     = 5 * time.Second
	DefaultMultiplier   = 2.0
)

// RetryConfig configures Retry.
type RetryConfig struct {
	// MaxAttempts counts the first attempt.
	// Default: DefaultMaxAttempts
	MaxAttempts int

	// InitialDelay is the wait before the first retry.
	// Default: DefaultInitialDelay
	InitialDelay time.Duration

	// MaxDelay caps any single wait.
	// Default: DefaultMaxDelay
	MaxDelay time.Duration

	// Multiplier applies to BackoffExponential.
	// Default: DefaultMultiplier
	Multiplier float64

	Strategy BackoffStrategy

	// Jitter adds up to 25% to each wait.
	Jitter bool

	// AttemptTimeout bounds each attempt. Zero leaves attempts bounded by
	// ctx only.
	AttemptTimeout time.Duration

	// RetryIf reports whether err is worth another attempt. Permanent
	// errors are never retried.
	// Default: every non-nil error.
	RetryIf func(err error) bool

	// OnRetry observes each scheduled retry.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Retry re-runs a failing operation with backoff. A retry is only scheduled
// when ctx has enough time left to wait for it, so an operation running
// under a deadline returns its last error instead of sleeping past it.
type Retry struct {
	config  RetryConfig
	timeout *Timeout
}

// NewRetry creates a Retry, filling unset fields with defaults.
func NewRetry(config RetryConfig) *Retry {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultMaxAttempts
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = DefaultInitialDelay
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = DefaultMaxDelay
	}
	if config.Multiplier <= 0 {
		config.Multiplier = DefaultMultiplier
	}
	if config.RetryIf == nil {
		config.RetryIf = func(err error) bool { return err != nil }
	}

	r := &Retry{config: config}
	if config.AttemptTimeout > 0 {
		r.timeout = NewTimeout(TimeoutConfig{Timeout: config.AttemptTimeout})
	}
	return r
}

// Execute runs op until it succeeds or no further retry applies. op gets
// the 1-based attempt number. The attempt count is returned with the last
// error.
func (r *Retry) Execute(ctx context.Context, op func(ctx context.Context, attempt int) error) (int, error) {
	attempt := 1
	for {
		err := r.run(ctx, op, attempt)
		if err == nil || !r.retryable(err) || attempt >= r.config.MaxAttempts {
			return attempt, err
		}

		delay := r.calculateDelay(attempt)
		if !fits(ctx, delay) {
			return attempt, err
		}
		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt, err, delay)
		}
		if werr := wait(ctx, delay); werr != nil {
			return attempt, werr
		}
		attempt++
	}
}

func (r *Retry) retryable(err error) bool {
	return !errors.Is(err, ErrPermanent) && r.config.RetryIf(err)
}

func (r *Retry) run(ctx context.Context, op func(context.Context, int) error, attempt int) error {
	if r.timeout == nil {
		return op(ctx, attempt)
	}
	return r.timeout.Execute(ctx, func(ctx context.Context) error {
		return op(ctx, attempt)
	})
}

// fits reports whether ctx outlives a wait of d.
func fits(ctx context.Context, d time.Duration) bool {
	deadline, ok := ctx.Deadline()
	return !ok || time.Until(deadline) > d
}

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (r *Retry) calculateDelay(attempt int) time.Duration {
	var delay time.Duration
	switch r.config.Strategy {
	case BackoffConstant:
		delay = r.config.InitialDelay
	case BackoffLinear:
		delay = r.config.InitialDelay * time.Duration(attempt)
	default:
		delay = time.Duration(float64(r.config.InitialDelay) * math.Pow(r.config.Multiplier, float64(attempt-1)))
	}
	delay = min(delay, r.config.MaxDelay)

	if r.config.Jitter && delay >= 4 {
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		delay += time.Duration(rand.Int64N(int64(delay / 4)))
	}
	return delay
}

// Config returns the effective configuration.
func (r *Retry) Config() RetryConfig {
	return r.config
}
