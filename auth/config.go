package auth

import (
	"os"
	"strings"
)

// Environment variables consulted for production-like defaults.
const (
	EnvRuntime     = "WATCHTOWER_ENV"
	EnvRequireAuth = "REQUIRE_HEALTHCHECK_AUTH"
)

var runtimeEnvVars = []string{EnvRuntime, "APP_ENV", "GO_ENV"}

// Config configures the gate.
type Config struct {
	// Token is the shared secret callers must present.
	Token string

	// RequireAuth denies requests when no Token is configured.
	// Nil resolves to IsProduction().
	RequireAuth *bool

	// AllowQueryToken accepts ?token=... as a token source. Query strings
	// tend to end up in access logs, so it is off unless set.
	AllowQueryToken bool

	// StrictMode strips the hint from unauthorized bodies.
	// Nil resolves to IsProduction().
	StrictMode *bool

	// CustomValidator, when set, is the whole decision.
	CustomValidator func(r *Request) bool

	// OnAuthFailure is called with the internal reason on every denial that
	// has a configuration.
	OnAuthFailure func(r *Request, reason string)
}

// Required resolves RequireAuth against the environment.
func (c *Config) Required() bool {
	if c == nil || c.RequireAuth == nil {
		return IsProduction()
	}
	return *c.RequireAuth
}

// Strict resolves StrictMode against the environment.
func (c *Config) Strict() bool {
	if c == nil || c.StrictMode == nil {
		return IsProduction()
	}
	return *c.StrictMode
}

// IsProduction reports whether the process runs in a production-like
// environment: any of WATCHTOWER_ENV, APP_ENV or GO_ENV is "production" or
// "prod", or REQUIRE_HEALTHCHECK_AUTH is "true".
func IsProduction() bool {
	if strings.EqualFold(os.Getenv(EnvRequireAuth), "true") {
		return true
	}
	for _, name := range runtimeEnvVars {
		switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
		case "production", "prod":
			return true
		}
	}
	return false
}

// Bool returns a pointer to b, for the optional Config fields.
func Bool(b bool) *bool {
	return &b
}
