package observe

import "errors"

// Configuration errors. Config.Validate wraps one of these per problem.
var (
	ErrMissingServiceName     = errors.New("observe: service name is required")
	ErrInvalidSamplePct       = errors.New("observe: sample ratio must be within [0, 1]")
	ErrInvalidTracingExporter = errors.New("observe: unknown tracing exporter")
	ErrInvalidMetricsExporter = errors.New("observe: unknown metrics exporter")
	ErrInvalidLogLevel        = errors.New("observe: unknown log level")
	ErrInvalidLogFormat       = errors.New("observe: unknown log format")
)

// ErrNilObserver is returned when instrumentation is requested from a nil
// Observer.
var ErrNilObserver = errors.New("observe: observer is nil")

// Accepted names per setting. The empty string selects the default.
var (
	tracingExporters = []string{"", "none", "stdout", "otlp", "jaeger"}
	metricsExporters = []string{"", "none", "stdout", "otlp", "prometheus"}
	logLevels        = []string{"", "debug", "info", "warn", "error"}
	logFormats       = []string{"", "json", "console"}
)

// RedactedFields lists log field keys whose values are replaced before
// emission. Matching is case-insensitive.
var RedactedFields = []string{
	"authorization",
	"x-healthcheck-token",
	"token",
	"password",
	"secret",
	"api_key",
	"apiKey",
	"cookie",
	"credential",
}
