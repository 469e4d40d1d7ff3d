package httpapi

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonwraymond/watchtower/auth"
	"github.com/jonwraymond/watchtower/health"
	"github.com/jonwraymond/watchtower/observe"
	"github.com/jonwraymond/watchtower/runner"
)

func statusCheck(id string, status health.Status) health.Check {
	return health.NewCheck(id, id, func(context.Context) (health.StatusNode, error) {
		return health.NewStatusNode(id, id, status, "", nil, nil), nil
	})
}

func openConfig(checks ...health.Check) runner.Config {
	return runner.Config{
		Auth:   &auth.Config{RequireAuth: auth.Bool(false)},
		Checks: checks,
	}
}

func tokenConfig(strict bool, checks ...health.Check) runner.Config {
	return runner.Config{
		Auth:   &auth.Config{Token: "s3cret", StrictMode: auth.Bool(strict)},
		Checks: checks,
	}
}

func serve(t *testing.T, h http.Handler, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec, body
}

func TestHandler_StatusCodes(t *testing.T) {
	tests := []struct {
		status health.Status
		code   int
	}{
		{health.StatusUp, http.StatusOK},
		{health.StatusPartial, http.StatusOK},
		{health.StatusUnknown, http.StatusOK},
		{health.StatusDown, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			h := NewHandler(runner.New(), openConfig(statusCheck("db", tt.status)))
			rec, body := serve(t, h, httptest.NewRequest(http.MethodGet, "/healthcheck?site=shop", nil))

			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, ContentTypeJSON, rec.Header().Get("Content-Type"))
			assert.Equal(t, CacheControl, rec.Header().Get("Cache-Control"))
			assert.Equal(t, tt.status.String(), body["status"])
			assert.Equal(t, "shop_healthcheck", body["id"])
		})
	}
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	h := NewHandler(runner.New(), openConfig())
	rec, body := serve(t, h, httptest.NewRequest(http.MethodPost, "/healthcheck", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "Method not allowed", body["error"])
}

func TestHandler_UnauthorizedSkipsProbes(t *testing.T) {
	var calls atomic.Int32
	probe := health.NewCheck("db", "Database", func(context.Context) (health.StatusNode, error) {
		calls.Add(1)
		return health.NewStatusNode("db", "Database", health.StatusUp, "", nil, nil), nil
	})

	h := NewHandler(runner.New(), tokenConfig(false, probe))
	rec, body := serve(t, h, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", body["error"])
	assert.Equal(t, "Health check requires authentication", body["message"])
	assert.Equal(t, int32(0), calls.Load())
}

func TestHandler_DenialLoggedOnce(t *testing.T) {
	var buf bytes.Buffer
	logger, err := observe.NewLoggerWithWriter("debug", "json", &buf)
	require.NoError(t, err)

	var denials atomic.Int32
	cfg := tokenConfig(false)
	cfg.Auth.OnAuthFailure = func(_ *auth.Request, reason string) {
		denials.Add(1)
		logger.Warn(context.Background(), "health check auth failed", observe.F("reason", reason))
	}

	h := NewHandler(runner.New(), cfg, WithLogger(logger))
	rec, _ := serve(t, h, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	app := NewFiberApp("watchtower-test")
	app.All("/healthcheck", FiberHandler(runner.New(), cfg, WithLogger(logger)))
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/healthcheck", nil), 10_000)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	assert.Equal(t, int32(2), denials.Load())
	lines := bytes.Count(buf.Bytes(), []byte("\n"))
	assert.Equal(t, 2, lines, buf.String())
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("health check auth failed")))
}

func TestHandler_UnauthorizedStrict(t *testing.T) {
	h := NewHandler(runner.New(), tokenConfig(true))
	rec, body := serve(t, h, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, map[string]any{"error": "Unauthorized"}, body)
}

func TestHandler_AuthorizedWithToken(t *testing.T) {
	h := NewHandler(runner.New(), tokenConfig(true, statusCheck("db", health.StatusUp)))

	req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
	req.Header.Set(auth.HeaderToken, "s3cret")
	rec, body := serve(t, h, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Up", body["status"])
	services, ok := body["services"].([]any)
	require.True(t, ok)
	assert.Len(t, services, 1)
}

func TestHandler_InvalidConfigIs500(t *testing.T) {
	h := NewHandler(runner.New(), openConfig(health.Check(nil)))
	rec, body := serve(t, h, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Health check failed", body["error"])
}
