// Package runner orchestrates a health check run.
//
// A Run gates the request through auth, executes every configured probe
// concurrently (consulting the injected cache first), races completion
// against a single global budget, aggregates the results and sanitizes the
// report:
//
//	r := runner.New(runner.WithCache(cache.NewMemoryCache()))
//	resp, err := r.Run(ctx, runner.Config{
//	    Checks:   []health.Check{dbCheck, apiCheck},
//	    Budget:   3 * time.Second,
//	    CacheTTL: 30 * time.Second,
//	    Sanitize: sanitize.CountsOnly,
//	}, auth.FromHTTP(req))
//
// Probe faults never abort a run: errors and panics become Unknown nodes.
// An over-budget run returns a single Partial budget_exceeded node in place
// of all probes. By default in-flight probes are left running when the
// budget fires and their results still populate the cache; set
// CancelOnBudget to cancel them instead.
package runner
