package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonwraymond/watchtower/auth"
	"github.com/jonwraymond/watchtower/cache"
	"github.com/jonwraymond/watchtower/health"
	"github.com/jonwraymond/watchtower/observe"
	"github.com/jonwraymond/watchtower/sanitize"
)

// Runner executes health check runs.
//
// Contract:
//   - Concurrency: safe for concurrent use; overlapping runs share the cache.
//   - Errors: only auth denial and invalid config are returned as errors.
//     Probe errors and panics become Unknown nodes.
//   - Ownership: the returned Response is owned by the caller.
type Runner struct {
	cache  *cache.CheckCache
	inst   *observe.Instrumentation
	logger observe.Logger
	namer  Namer
	now    func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithCache sets the result store. Runs share entries by check id.
func WithCache(c cache.Cache) Option {
	return func(r *Runner) {
		r.cache = cache.NewCheckCache(c, cache.Policy{})
	}
}

// WithCheckCache sets a fully configured check cache.
func WithCheckCache(cc *cache.CheckCache) Option {
	return func(r *Runner) {
		r.cache = cc
	}
}

// WithLogger sets the run logger.
func WithLogger(l observe.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithInstrumentation wraps every probe with tracing and metrics.
func WithInstrumentation(inst *observe.Instrumentation) Option {
	return func(r *Runner) {
		r.inst = inst
	}
}

// WithNamer overrides site name resolution.
func WithNamer(n Namer) Option {
	return func(r *Runner) {
		r.namer = n
	}
}

// WithClock overrides the clock used for timestamps and timings.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// New creates a Runner. Without WithCache the runner keeps a private
// in-memory cache.
func New(opts ...Option) *Runner {
	r := &Runner{
		namer: EnvNamer{},
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.cache == nil {
		r.cache = cache.NewCheckCache(cache.NewMemoryCache(), cache.Policy{})
	}
	if r.logger == nil {
		r.logger = observe.NopLogger()
	}
	if r.inst == nil {
		r.inst = observe.NewInstrumentation(nil, nil, r.logger)
	}
	if r.namer == nil {
		r.namer = EnvNamer{}
	}
	return r
}

// Run performs one health check run for req.
func (r *Runner) Run(ctx context.Context, cfg Config, req *auth.Request) (*health.Response, error) {
	if d := auth.Validate(req, cfg.Auth); !d.Authorized {
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, d.Reason)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	site := r.namer.SiteName(req)
	logger := r.logger.With(
		observe.F("run_id", uuid.NewString()),
		observe.F("site", site),
	)

	start := r.now()
	services, completed, failed := r.execute(ctx, cfg, site, logger)
	elapsed := r.now().Sub(start)

	status := health.AggregateStatus(services, cfg.Precedence...)
	resp := &health.Response{
		ID:        HealthcheckID(site),
		Name:      DisplayName(site),
		Status:    status,
		Message:   health.StatusMessage(status, ""),
		Timestamp: r.now().UnixMilli(),
		Performance: health.Performance{
			TotalCheckTime:  elapsed.Milliseconds(),
			ChecksCompleted: completed,
			ChecksFailed:    failed,
		},
		Services: services,
	}

	logger.Debug(ctx, "health check run completed",
		observe.F("status", status.String()),
		observe.F("duration_ms", elapsed.Milliseconds()),
		observe.F("checks_failed", failed),
	)

	return sanitize.Sanitize(resp, cfg.Sanitize), nil
}

// execute runs all probes and returns the result nodes in config order,
// or the single budget node when the budget fires first.
func (r *Runner) execute(ctx context.Context, cfg Config, site string, logger observe.Logger) ([]health.StatusNode, int, int) {
	if len(cfg.Checks) == 0 {
		return []health.StatusNode{}, 0, 0
	}

	probeCtx := context.WithoutCancel(ctx)
	cancel := context.CancelFunc(func() {})
	if cfg.CancelOnBudget {
		probeCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	results := make([]health.StatusNode, len(cfg.Checks))
	var wg sync.WaitGroup
	for i, check := range cfg.Checks {
		wg.Add(1)
		go func(i int, check health.Check) {
			defer wg.Done()
			results[i] = r.runCheck(probeCtx, check, cfg.CacheTTL, site, logger)
		}(i, check)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(cfg.Budget)
	defer timer.Stop()

	select {
	case <-done:
	case <-timer.C:
		r.inst.BudgetExceeded(ctx, site, cfg.Budget)
		node := health.NewStatusNode(
			BudgetExceededID,
			"Budget Exceeded",
			health.StatusPartial,
			fmt.Sprintf("Health check exceeded %dms budget", cfg.Budget.Milliseconds()),
			nil, nil,
		)
		return []health.StatusNode{node}, 0, len(cfg.Checks)
	}

	failed := 0
	for _, node := range results {
		if node.Status.Failed() {
			failed++
		}
	}
	return results, len(results), failed
}

// runCheck runs one probe through the cache and instrumentation. It never
// returns an error: faults become an Unknown node.
func (r *Runner) runCheck(ctx context.Context, check health.Check, ttl time.Duration, site string, logger observe.Logger) health.StatusNode {
	wrapped := r.inst.Wrap(recoverCheck(check), site)

	node, hit, err := r.cache.Execute(ctx, check.ID(), ttl, wrapped.Run)
	if err != nil {
		logger.Warn(ctx, "check error",
			observe.F("check", check.ID()),
			observe.F("error", err),
		)
		return health.NewStatusNode(check.ID(), check.Name(), health.StatusUnknown, "Check error: "+err.Error(), nil, nil)
	}
	if hit {
		logger.Debug(ctx, "check served from cache", observe.F("check", check.ID()))
	}
	return node
}
