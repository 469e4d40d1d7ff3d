package config

import (
	"context"
	"fmt"
	"os"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jonwraymond/watchtower/auth"
	"github.com/jonwraymond/watchtower/cache"
	"github.com/jonwraymond/watchtower/health"
	"github.com/jonwraymond/watchtower/observe"
	"github.com/jonwraymond/watchtower/probe"
	"github.com/jonwraymond/watchtower/runner"
	"github.com/jonwraymond/watchtower/sanitize"
)

// Namer resolves site names, using Site in place of the SITE variable when
// it is set.
func (c *Config) Namer() runner.Namer {
	site := c.Site
	return runner.EnvNamer{Getenv: func(key string) string {
		if key == "SITE" && site != "" {
			return site
		}
		return os.Getenv(key)
	}}
}

// AuthGate builds the gate configuration. Denials are logged with their
// internal reason. When a JWT secret is set, a request passes with either the
// static token or a valid signed token.
func (c *Config) AuthGate(logger observe.Logger) *auth.Config {
	if logger == nil {
		logger = observe.NopLogger()
	}
	gate := &auth.Config{
		Token:           c.Auth.Token,
		RequireAuth:     c.Auth.RequireAuth,
		AllowQueryToken: c.Auth.AllowQueryToken,
		StrictMode:      c.Auth.StrictMode,
		OnAuthFailure: func(_ *auth.Request, reason string) {
			logger.Warn(context.Background(), "health check auth failed", observe.F("reason", reason))
		},
	}

	if c.Auth.JWT.Secret == "" {
		return gate
	}

	jwtValidator := auth.NewJWTValidator(auth.JWTConfig{
		Issuer:   c.Auth.JWT.Issuer,
		Audience: c.Auth.JWT.Audience,
		Subjects: c.Auth.JWT.Subjects,
	}, auth.NewStaticKeyProvider([]byte(c.Auth.JWT.Secret)))

	token, allowQuery := gate.Token, gate.AllowQueryToken
	gate.CustomValidator = func(r *auth.Request) bool {
		if token != "" && auth.ConstantTimeCompare(auth.ExtractToken(r, allowQuery), token) {
			return true
		}
		return jwtValidator.Validate(r)
	}
	return gate
}

// RunnerConfig builds the per-run configuration around checks.
func (c *Config) RunnerConfig(checks []health.Check, gate *auth.Config) (runner.Config, error) {
	strategy, err := sanitize.ParseStrategy(c.Runner.Sanitize)
	if err != nil {
		return runner.Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	precedence, err := health.ParsePrecedence(c.Runner.Precedence)
	if err != nil {
		return runner.Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return runner.Config{
		Checks:         checks,
		Budget:         c.Runner.Budget,
		CacheTTL:       c.Runner.CacheTTL,
		Precedence:     precedence,
		Auth:           gate,
		Sanitize:       strategy,
		CancelOnBudget: c.Runner.CancelOnBudget,
	}, nil
}

// RedisClient creates a client for the cache.redis section.
func (c *Config) RedisClient() goredis.UniversalClient {
	return goredis.NewClient(&goredis.Options{
		Addr:     c.Cache.Redis.Addr,
		Password: c.Cache.Redis.Password,
		DB:       c.Cache.Redis.DB,
	})
}

// NeedsRedis reports whether the cache or a probe uses Redis.
func (c *Config) NeedsRedis() bool {
	return c.Cache.Backend == BackendRedis || (c.Checks.Redis != nil && c.Checks.Redis.Enabled)
}

// CheckCache creates the result cache. client is required for the redis
// backend.
func (c *Config) CheckCache(client goredis.UniversalClient) (*cache.CheckCache, error) {
	policy := cache.Policy{MaxTTL: c.Runner.MaxCacheTTL}

	if c.Cache.Backend == BackendRedis {
		store, err := cache.NewRedisCache(client, c.Cache.Redis.Prefix)
		if err != nil {
			return nil, err
		}
		return cache.NewCheckCache(store, policy), nil
	}
	return cache.NewCheckCache(cache.NewMemoryCache(), policy), nil
}

// BuildChecks instantiates the enabled probes in a fixed order: build, http,
// pages, redis.
func (c *Config) BuildChecks(client goredis.UniversalClient) []health.Check {
	var checks []health.Check
	if c.Checks.Build != nil {
		checks = append(checks, probe.NewBuildCheck(*c.Checks.Build))
	}
	if c.Checks.HTTP != nil {
		checks = append(checks, probe.NewHTTPCheck(*c.Checks.HTTP))
	}
	if c.Checks.Pages != nil {
		checks = append(checks, probe.NewPagesCheck(*c.Checks.Pages))
	}
	if c.Checks.Redis != nil && c.Checks.Redis.Enabled {
		checks = append(checks, probe.NewRedisCheck(client, probe.RedisCheckConfig{
			Timeout: c.Checks.Redis.Timeout,
		}))
	}
	return checks
}
