package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jonwraymond/watchtower/health"
)

// Metric names.
const (
	MetricCheckTotal     = "watchtower.check.total"
	MetricCheckFailures  = "watchtower.check.failures"
	MetricCheckDuration  = "watchtower.check.duration_ms"
	MetricBudgetExceeded = "watchtower.run.budget_exceeded"
)

// Metrics records probe and run metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordCheck records one probe execution.
	RecordCheck(ctx context.Context, meta CheckMeta, duration time.Duration, status health.Status, err error)

	// RecordBudgetExceeded records a run that hit its global budget.
	RecordBudgetExceeded(ctx context.Context, site string)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	totalCount   metric.Int64Counter
	failureCount metric.Int64Counter
	durationHist metric.Float64Histogram
	budgetCount  metric.Int64Counter
}

// NewMetrics creates a Metrics instance with the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	totalCount, err := meter.Int64Counter(
		MetricCheckTotal,
		metric.WithDescription("Total number of probe executions"),
		metric.WithUnit("{check}"),
	)
	if err != nil {
		return nil, err
	}

	failureCount, err := meter.Int64Counter(
		MetricCheckFailures,
		metric.WithDescription("Probe executions that faulted or resolved Down/Unknown"),
		metric.WithUnit("{check}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		MetricCheckDuration,
		metric.WithDescription("Probe execution duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	budgetCount, err := meter.Int64Counter(
		MetricBudgetExceeded,
		metric.WithDescription("Runs that exceeded their global budget"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		totalCount:   totalCount,
		failureCount: failureCount,
		durationHist: durationHist,
		budgetCount:  budgetCount,
	}, nil
}

// RecordCheck records metrics for a probe execution.
func (m *metricsImpl) RecordCheck(ctx context.Context, meta CheckMeta, duration time.Duration, status health.Status, err error) {
	opt := metric.WithAttributes(append(meta.attributes(), attribute.String("check.status", status.String()))...)

	m.totalCount.Add(ctx, 1, opt)
	if err != nil || status.Failed() {
		m.failureCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

// RecordBudgetExceeded increments the budget counter.
func (m *metricsImpl) RecordBudgetExceeded(ctx context.Context, site string) {
	m.budgetCount.Add(ctx, 1, metric.WithAttributes(attribute.String("check.site", site)))
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (noopMetrics) RecordCheck(context.Context, CheckMeta, time.Duration, health.Status, error) {}

func (noopMetrics) RecordBudgetExceeded(context.Context, string) {}
