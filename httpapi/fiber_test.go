package httpapi

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonwraymond/watchtower/auth"
	"github.com/jonwraymond/watchtower/health"
	"github.com/jonwraymond/watchtower/runner"
)

func fiberDo(t *testing.T, cfg runner.Config, req *http.Request) (*http.Response, map[string]any) {
	t.Helper()
	app := NewFiberApp("watchtower-test")
	app.All("/healthcheck", FiberHandler(runner.New(), cfg))

	resp, err := app.Test(req, 10_000)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	return resp, body
}

func TestFiberHandler_Up(t *testing.T) {
	resp, body := fiberDo(t, openConfig(statusCheck("db", health.StatusUp)),
		httptest.NewRequest(http.MethodGet, "/healthcheck", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), ContentTypeJSON)
	assert.Equal(t, CacheControl, resp.Header.Get("Cache-Control"))
	assert.Equal(t, "Up", body["status"])
}

func TestFiberHandler_DownIs503(t *testing.T) {
	resp, body := fiberDo(t, openConfig(statusCheck("db", health.StatusDown)),
		httptest.NewRequest(http.MethodGet, "/healthcheck", nil))

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "Down", body["status"])
}

func TestFiberHandler_SiteHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
	req.Header.Set("X-Site-Name", "Blog")

	_, body := fiberDo(t, openConfig(), req)
	assert.Equal(t, "blog_healthcheck", body["id"])
	assert.Equal(t, "Blog Site Health", body["name"])
}

func TestFiberHandler_MethodNotAllowed(t *testing.T) {
	resp, body := fiberDo(t, openConfig(), httptest.NewRequest(http.MethodDelete, "/healthcheck", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, "Method not allowed", body["error"])
}

func TestFiberHandler_Unauthorized(t *testing.T) {
	resp, body := fiberDo(t, tokenConfig(false), httptest.NewRequest(http.MethodGet, "/healthcheck", nil))

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Unauthorized", body["error"])
}

func TestFiberHandler_QueryToken(t *testing.T) {
	cfg := runner.Config{
		Auth: &auth.Config{Token: "s3cret", AllowQueryToken: true},
	}
	resp, _ := fiberDo(t, cfg, httptest.NewRequest(http.MethodGet, "/healthcheck?token=s3cret", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
