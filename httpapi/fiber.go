package httpapi

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jonwraymond/watchtower/auth"
	"github.com/jonwraymond/watchtower/observe"
	"github.com/jonwraymond/watchtower/runner"
)

// NewFiberApp creates a Fiber app using go-json for encoding and recovering
// from handler panics.
func NewFiberApp(appName string) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(ErrorBody{Error: err.Error()})
		},
	})
	app.Use(recover.New())
	return app
}

// FiberHandler returns a Fiber handler running cfg on r. Mount it with
// app.All so non-GET requests receive 405 from the handler itself.
func FiberHandler(r *runner.Runner, cfg runner.Config, opts ...Option) fiber.Handler {
	o := buildOptions(opts)

	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderCacheControl, CacheControl)

		if c.Method() != fiber.MethodGet {
			return c.Status(fiber.StatusMethodNotAllowed).JSON(methodNotAllowed)
		}

		req := fiberRequest(c)
		if d := auth.Validate(req, cfg.Auth); !d.Authorized {
			unauthorized := auth.UnauthorizedResponse(cfg.Auth.Strict())
			return c.Status(unauthorized.StatusCode).JSON(unauthorized.Body)
		}

		resp, err := r.Run(c.UserContext(), cfg, req)
		if err != nil {
			if errors.Is(err, runner.ErrUnauthorized) {
				unauthorized := auth.UnauthorizedResponse(cfg.Auth.Strict())
				return c.Status(unauthorized.StatusCode).JSON(unauthorized.Body)
			}
			o.logger.Error(c.UserContext(), "health check run failed", observe.F("error", err))
			return c.Status(fiber.StatusInternalServerError).JSON(internalError)
		}

		return c.Status(StatusCode(resp)).JSON(resp)
	}
}

// fiberRequest copies headers and query out of the fasthttp request, whose
// buffers are reused after the handler returns.
func fiberRequest(c *fiber.Ctx) *auth.Request {
	header := http.Header{}
	for k, values := range c.GetReqHeaders() {
		for _, v := range values {
			header.Add(strings.Clone(k), strings.Clone(v))
		}
	}
	query := url.Values{}
	for k, v := range c.Queries() {
		query.Set(strings.Clone(k), strings.Clone(v))
	}
	return &auth.Request{Header: header, Query: query}
}
