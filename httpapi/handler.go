package httpapi

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/jonwraymond/watchtower/auth"
	"github.com/jonwraymond/watchtower/observe"
	"github.com/jonwraymond/watchtower/runner"
)

// Option configures a handler.
type Option func(*options)

type options struct {
	logger observe.Logger
}

// WithLogger sets the handler logger.
func WithLogger(l observe.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: observe.NopLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = observe.NopLogger()
	}
	return o
}

// Handler serves health reports over net/http.
type Handler struct {
	runner *runner.Runner
	cfg    runner.Config
	logger observe.Logger
}

// NewHandler creates a net/http handler running cfg on r.
func NewHandler(r *runner.Runner, cfg runner.Config, opts ...Option) *Handler {
	o := buildOptions(opts)
	return &Handler{runner: r, cfg: cfg, logger: o.logger}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.Header().Set("Cache-Control", CacheControl)

	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, methodNotAllowed)
		return
	}

	req := auth.FromHTTP(r)
	if d := auth.Validate(req, h.cfg.Auth); !d.Authorized {
		unauthorized := auth.UnauthorizedResponse(h.cfg.Auth.Strict())
		writeJSON(w, unauthorized.StatusCode, unauthorized.Body)
		return
	}

	resp, err := h.runner.Run(r.Context(), h.cfg, req)
	if err != nil {
		if errors.Is(err, runner.ErrUnauthorized) {
			unauthorized := auth.UnauthorizedResponse(h.cfg.Auth.Strict())
			writeJSON(w, unauthorized.StatusCode, unauthorized.Body)
			return
		}
		h.logger.Error(r.Context(), "health check run failed", observe.F("error", err))
		writeJSON(w, http.StatusInternalServerError, internalError)
		return
	}

	writeJSON(w, StatusCode(resp), resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Health check failed"}`))
		return
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
