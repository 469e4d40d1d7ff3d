// Package resilience provides the retry and timeout helpers probes use when
// talking to upstream services.
//
// The runner itself never retries; a probe that wants retries composes them
// here so that every attempt stays inside the probe's own time budget.
//
//	retry := resilience.NewRetry(resilience.RetryConfig{
//	    MaxAttempts:    3,
//	    InitialDelay:   100 * time.Millisecond,
//	    AttemptTimeout: 2 * time.Second,
//	})
//
//	attempts, err := retry.Execute(ctx, func(ctx context.Context, attempt int) error {
//	    return ping(ctx)
//	})
package resilience
