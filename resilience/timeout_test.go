package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewTimeout_Default(t *testing.T) {
	timeout := NewTimeout(TimeoutConfig{})

	if timeout.Config().Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", timeout.Config().Timeout, DefaultTimeout)
	}
}

func TestTimeout_Passthrough(t *testing.T) {
	pingErr := errors.New("connection refused")

	tests := []struct {
		name string
		op   func(context.Context) error
		want error
	}{
		{"success", func(context.Context) error { return nil }, nil},
		{"error", func(context.Context) error { return pingErr }, pingErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ExecuteWithTimeout(context.Background(), time.Second, tt.op)
			if !errors.Is(err, tt.want) || (tt.want == nil && err != nil) {
				t.Errorf("Execute() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTimeout_Expired(t *testing.T) {
	start := time.Now()
	err := ExecuteWithTimeout(context.Background(), 10*time.Millisecond, func(ctx context.Context) error {
		time.Sleep(200 * time.Millisecond)
		return nil
	})

	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Execute() error = %v, want ErrTimeout", err)
	}
	var te *TimeoutError
	if !errors.As(err, &te) || te.After != 10*time.Millisecond {
		t.Errorf("TimeoutError = %+v", te)
	}
	if err.Error() != "Timeout after 10ms" {
		t.Errorf("Error() = %q", err.Error())
	}
	if time.Since(start) > 150*time.Millisecond {
		t.Error("Execute waited for the operation past its timeout")
	}
}

func TestTimeout_OperationObservesDeadline(t *testing.T) {
	err := ExecuteWithTimeout(context.Background(), 10*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Execute() error = %v, want ErrTimeout", err)
	}
}

func TestTimeout_ParentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := ExecuteWithTimeout(ctx, time.Second, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if errors.Is(err, ErrTimeout) {
		t.Error("parent cancellation reported as timeout")
	}
}
