package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultTimeout bounds a single operation when no limit is given.
const DefaultTimeout = 5 * time.Second

// TimeoutError reports that an operation ran past its limit. It matches
// ErrTimeout under errors.Is.
type TimeoutError struct {
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("Timeout after %dms", e.After.Milliseconds())
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

// TimeoutConfig configures the timeout wrapper.
type TimeoutConfig struct {
	// Timeout is the maximum duration for the operation.
	// Default: DefaultTimeout
	Timeout time.Duration
}

// Timeout bounds an operation by a deadline derived from the caller's ctx.
type Timeout struct {
	config TimeoutConfig
}

// NewTimeout creates a timeout wrapper.
func NewTimeout(config TimeoutConfig) *Timeout {
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	return &Timeout{config: config}
}

// Execute runs op under the configured limit. On expiry op's context is
// cancelled and a *TimeoutError is returned at once; op is not awaited.
// Cancellation of the parent is returned as the parent's error.
func (t *Timeout) Execute(ctx context.Context, op func(context.Context) error) error {
	opCtx, cancel := context.WithTimeout(ctx, t.config.Timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- op(opCtx) }()

	var err error
	select {
	case err = <-done:
		if err == nil {
			return nil
		}
	case <-opCtx.Done():
		err = opCtx.Err()
	}
	if t.expired(ctx, opCtx, err) {
		return &TimeoutError{After: t.config.Timeout}
	}
	return err
}

// expired distinguishes our own deadline from the parent's.
func (t *Timeout) expired(parent, opCtx context.Context, err error) bool {
	if parent.Err() != nil {
		return false
	}
	return errors.Is(opCtx.Err(), context.DeadlineExceeded) && errors.Is(err, context.DeadlineExceeded)
}

// Config returns the timeout configuration.
func (t *Timeout) Config() TimeoutConfig {
	return t.config
}

// ExecuteWithTimeout runs op bounded by timeout.
func ExecuteWithTimeout(ctx context.Context, timeout time.Duration, op func(context.Context) error) error {
	return NewTimeout(TimeoutConfig{Timeout: timeout}).Execute(ctx, op)
}
