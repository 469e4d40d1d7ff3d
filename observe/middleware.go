package observe

import (
	"context"
	"time"

	"github.com/jonwraymond/watchtower/health"
)

// Instrumentation wraps probes with tracing, metrics and logging.
//
// Contract:
//   - Concurrency: safe for concurrent use; wrapped checks may run in parallel.
//   - Context: propagates the span context into the probe.
//   - Errors: probe errors are recorded and returned unchanged. Panics are
//     not recovered here.
type Instrumentation struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewInstrumentation creates Instrumentation from its parts. Nil parts are
// replaced with no-ops.
func NewInstrumentation(tracer Tracer, metrics Metrics, logger Logger) *Instrumentation {
	if tracer == nil {
		tracer = newNoopTracer()
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Instrumentation{tracer: tracer, metrics: metrics, logger: logger}
}

// InstrumentationFromObserver creates Instrumentation from an Observer.
func InstrumentationFromObserver(obs Observer) (*Instrumentation, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewInstrumentation(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}

// Wrap returns a check that instruments every Run of c. site labels the
// span and metrics.
func (i *Instrumentation) Wrap(c health.Check, site string) health.Check {
	meta := CheckMeta{ID: c.ID(), Name: c.Name(), Site: site}
	return health.NewCheck(c.ID(), c.Name(), func(ctx context.Context) (health.StatusNode, error) {
		ctx, span := i.tracer.StartSpan(ctx, meta)
		start := time.Now()

		node, err := c.Run(ctx)

		duration := time.Since(start)
		status := node.Status
		if err != nil {
			status = health.StatusUnknown
		}

		i.tracer.EndSpan(span, status, err)
		i.metrics.RecordCheck(ctx, meta, duration, status, err)

		fields := []Field{
			F("check", meta.ID),
			F("status", status.String()),
			F("duration_ms", duration.Milliseconds()),
		}
		switch {
		case err != nil:
			i.logger.Warn(ctx, "check faulted", append(fields, F("error", err))...)
		case status.Failed():
			i.logger.Info(ctx, "check failed", append(fields, F("message", node.Message))...)
		default:
			i.logger.Debug(ctx, "check completed", fields...)
		}

		return node, err
	})
}

// BudgetExceeded records a run that hit its budget.
func (i *Instrumentation) BudgetExceeded(ctx context.Context, site string, budget time.Duration) {
	i.metrics.RecordBudgetExceeded(ctx, site)
	i.logger.Warn(ctx, "health check exceeded budget",
		F("site", site),
		F("budget_ms", budget.Milliseconds()),
	)
}
