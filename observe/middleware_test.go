package observe

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/jonwraymond/watchtower/health"
)

type testInstrumentation struct {
	inst     *Instrumentation
	spans    *tracetest.SpanRecorder
	reader   *sdkmetric.ManualReader
	logLines *bytes.Buffer
}

func newTestInstrumentation(t *testing.T) *testInstrumentation {
	t.Helper()
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	metrics, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	var buf bytes.Buffer
	logger, _ := NewLoggerWithWriter("debug", "json", &buf)

	return &testInstrumentation{
		inst:     NewInstrumentation(NewTracer(tp.Tracer("test")), metrics, logger),
		spans:    spans,
		reader:   reader,
		logLines: &buf,
	}
}

func (ti *testInstrumentation) counter(t *testing.T, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := ti.reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func TestInstrumentation_WrapSuccess(t *testing.T) {
	ti := newTestInstrumentation(t)
	check := health.NewCheck("db", "Database", func(ctx context.Context) (health.StatusNode, error) {
		return health.NewStatusNode("db", "Database", health.StatusUp, "ok", nil, nil), nil
	})

	wrapped := ti.inst.Wrap(check, "example")
	if wrapped.ID() != "db" || wrapped.Name() != "Database" {
		t.Fatalf("wrapped check identity changed: %s/%s", wrapped.ID(), wrapped.Name())
	}

	node, err := wrapped.Run(context.Background())
	if err != nil || node.Status != health.StatusUp {
		t.Fatalf("Run() = %+v, %v", node, err)
	}

	ended := ti.spans.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected 1 span, got %d", len(ended))
	}
	if ended[0].Name() != "watchtower.check.db" {
		t.Errorf("span name = %q", ended[0].Name())
	}
	if ended[0].Status().Code != codes.Ok {
		t.Errorf("span status = %v", ended[0].Status().Code)
	}

	if got := ti.counter(t, MetricCheckTotal); got != 1 {
		t.Errorf("%s = %d, want 1", MetricCheckTotal, got)
	}
	if got := ti.counter(t, MetricCheckFailures); got != 0 {
		t.Errorf("%s = %d, want 0", MetricCheckFailures, got)
	}
}

func TestInstrumentation_WrapFailures(t *testing.T) {
	ti := newTestInstrumentation(t)
	down := health.NewCheck("api", "API", func(ctx context.Context) (health.StatusNode, error) {
		return health.NewStatusNode("api", "API", health.StatusDown, "HTTP 502", nil, nil), nil
	})
	faulty := health.NewCheck("queue", "Queue", func(ctx context.Context) (health.StatusNode, error) {
		return health.StatusNode{}, errors.New("boom")
	})

	_, _ = ti.inst.Wrap(down, "example").Run(context.Background())
	_, err := ti.inst.Wrap(faulty, "example").Run(context.Background())
	if err == nil || err.Error() != "boom" {
		t.Fatalf("error must pass through unchanged, got %v", err)
	}

	if got := ti.counter(t, MetricCheckFailures); got != 2 {
		t.Errorf("%s = %d, want 2", MetricCheckFailures, got)
	}
	for _, span := range ti.spans.Ended() {
		if span.Status().Code != codes.Error {
			t.Errorf("span %s status = %v, want Error", span.Name(), span.Status().Code)
		}
	}
	if !bytes.Contains(ti.logLines.Bytes(), []byte("check faulted")) {
		t.Error("fault was not logged")
	}
}

func TestInstrumentation_BudgetExceeded(t *testing.T) {
	ti := newTestInstrumentation(t)
	ti.inst.BudgetExceeded(context.Background(), "example", 0)
	ti.inst.BudgetExceeded(context.Background(), "example", 0)

	if got := ti.counter(t, MetricBudgetExceeded); got != 2 {
		t.Errorf("%s = %d, want 2", MetricBudgetExceeded, got)
	}
}

func TestNewInstrumentation_NilParts(t *testing.T) {
	inst := NewInstrumentation(nil, nil, nil)
	check := health.NewCheck("x", "X", func(ctx context.Context) (health.StatusNode, error) {
		return health.NewStatusNode("x", "X", health.StatusUp, "", nil, nil), nil
	})
	if _, err := inst.Wrap(check, "").Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	inst.BudgetExceeded(context.Background(), "", 0)
}
