package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"regexp"
	"strings"
	"syscall"
	"time"

	"github.com/goccy/go-json"

	"github.com/jonwraymond/watchtower/health"
	"github.com/jonwraymond/watchtower/resilience"
)

// HTTP probe defaults.
const (
	DefaultHTTPTimeout    = 5 * time.Second
	DefaultHTTPRetries    = 2
	DefaultExpectedStatus = http.StatusOK
	DefaultRetryDelay     = 100 * time.Millisecond
	UserAgent             = "Watchtower-HealthCheck/1.0"
)

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]`)

// NodeID returns the node id for an endpoint path: "http_" followed by the
// path with every non-alphanumeric rune replaced by an underscore.
func NodeID(path string) string {
	return "http_" + nonAlnum.ReplaceAllString(path, "_")
}

// Endpoint describes one URL to probe.
type Endpoint struct {
	// Path is absolute (http:// or https://) or relative to the base URL.
	Path string `mapstructure:"path" yaml:"path"`
	Name string `mapstructure:"name" yaml:"name"`

	// Method defaults to GET.
	Method string `mapstructure:"method" yaml:"method"`

	// ExpectedStatus defaults to 200.
	ExpectedStatus int `mapstructure:"expected_status" yaml:"expected_status"`

	Headers map[string]string `mapstructure:"headers" yaml:"headers"`

	// Body is JSON encoded when set.
	Body any `mapstructure:"body" yaml:"body"`
}

// HTTPOptions are shared by the HTTP based probes.
type HTTPOptions struct {
	// BaseURL resolves relative paths. Empty resolves from the environment
	// at run time.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// Timeout bounds each attempt.
	// Default: 5s
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`

	// Retries is the number of retries after the first attempt. Zero uses
	// the default of 2; a negative value disables retries.
	Retries int `mapstructure:"retries" yaml:"retries"`

	// RetryDelay is the first backoff delay; it doubles on every retry.
	// Default: 100ms
	RetryDelay time.Duration `mapstructure:"retry_delay" yaml:"retry_delay"`

	// Concurrency caps parallel requests within one probe. Zero is
	// unlimited.
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`

	// Client performs requests. Default: a client without its own timeout.
	Client *http.Client `mapstructure:"-" yaml:"-"`

	// Getenv reads the environment for base URL resolution.
	// Default: os.Getenv
	Getenv func(string) string `mapstructure:"-" yaml:"-"`
}

func (o HTTPOptions) withDefaults() HTTPOptions {
	if o.Timeout <= 0 {
		o.Timeout = DefaultHTTPTimeout
	}
	switch {
	case o.Retries == 0:
		o.Retries = DefaultHTTPRetries
	case o.Retries < 0:
		o.Retries = 0
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = DefaultRetryDelay
	}
	if o.Client == nil {
		o.Client = &http.Client{}
	}
	if o.Getenv == nil {
		o.Getenv = os.Getenv
	}
	return o
}

// ResolveBaseURL finds the site base URL from SITE_URL, DEPLOY_URL or
// DOMAIN, in that order. Values without a scheme get https://.
func ResolveBaseURL(getenv func(string) string) (string, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := getenv("SITE_URL"); v != "" {
		return v, nil
	}
	for _, name := range []string{"DEPLOY_URL", "DOMAIN"} {
		v := getenv(name)
		if v == "" {
			continue
		}
		if strings.HasPrefix(v, "http") {
			return v, nil
		}
		return "https://" + v, nil
	}
	return "", ErrNoBaseURL
}

func isAbsolute(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

func joinURL(base, path string) string {
	if isAbsolute(path) {
		return path
	}
	base = strings.TrimSuffix(base, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

// HTTPClient probes single endpoints with retry and per-attempt timeout.
type HTTPClient struct {
	baseURL string
	opts    HTTPOptions
	retry   *resilience.Retry
}

// NewHTTPClient creates an HTTPClient. The base URL must already be
// resolved; relative paths against an empty base produce a Down node.
func NewHTTPClient(baseURL string, opts HTTPOptions) *HTTPClient {
	opts = opts.withDefaults()
	return &HTTPClient{
		baseURL: baseURL,
		opts:    opts,
		retry: resilience.NewRetry(resilience.RetryConfig{
			MaxAttempts:  opts.Retries + 1,
			InitialDelay: opts.RetryDelay,
			Multiplier:   2,
			MaxDelay:     opts.RetryDelay << 10,
		}),
	}
}

// CheckEndpoint probes ep and returns its node. A response with an
// unexpected status is Down and is not retried; transport errors are
// retried and reported Down after the last attempt.
func (c *HTTPClient) CheckEndpoint(ctx context.Context, ep Endpoint) health.StatusNode {
	id := NodeID(ep.Path)
	url := joinURL(c.baseURL, ep.Path)
	expected := ep.ExpectedStatus
	if expected == 0 {
		expected = DefaultExpectedStatus
	}

	start := time.Now()
	var statusCode int
	attempts, err := c.retry.Execute(ctx, func(ctx context.Context, _ int) error {
		code, err := c.do(ctx, url, ep)
		if err != nil {
			return err
		}
		statusCode = code
		return nil
	})
	elapsed := time.Since(start).Milliseconds()

	if err != nil {
		return health.NewStatusNode(id, ep.Name, health.StatusDown,
			fmt.Sprintf("%s (%dms)", c.describe(err), elapsed),
			nil,
			map[string]any{
				"error":    err.Error(),
				"url":      url,
				"attempts": attempts,
			},
		)
	}

	if statusCode != expected {
		return health.NewStatusNode(id, ep.Name, health.StatusDown,
			fmt.Sprintf("HTTP %d (expected %d) (%dms)", statusCode, expected, elapsed),
			nil,
			map[string]any{
				"statusCode":     statusCode,
				"expectedStatus": expected,
				"responseTime":   elapsed,
				"url":            url,
				"attempt":        attempts,
			},
		)
	}

	return health.NewStatusNode(id, ep.Name, health.StatusUp,
		fmt.Sprintf("%d OK (%dms)", statusCode, elapsed),
		nil,
		map[string]any{
			"statusCode":   statusCode,
			"responseTime": elapsed,
			"url":          url,
			"attempt":      attempts,
		},
	)
}

func (c *HTTPClient) do(ctx context.Context, url string, ep Endpoint) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	method := ep.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if ep.Body != nil {
		encoded, err := json.Marshal(ep.Body)
		if err != nil {
			return 0, resilience.Permanent(fmt.Errorf("encode body: %w", err))
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return 0, resilience.Permanent(err)
	}
	req.Header.Set("User-Agent", UserAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range ep.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.opts.Client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	return resp.StatusCode, nil
}

func (c *HTTPClient) describe(err error) string {
	var dnsErr *net.DNSError
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return (&resilience.TimeoutError{After: c.opts.Timeout}).Error()
	case errors.Is(err, syscall.ECONNREFUSED):
		return "Connection refused"
	case errors.As(err, &dnsErr) && dnsErr.IsNotFound:
		return "Host not found"
	default:
		return err.Error()
	}
}
