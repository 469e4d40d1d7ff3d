package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/jonwraymond/watchtower/health"
	"github.com/jonwraymond/watchtower/observe"
	"github.com/jonwraymond/watchtower/probe"
	"github.com/jonwraymond/watchtower/sanitize"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "WATCHTOWER"

// Cache backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config is the full watchtower configuration.
type Config struct {
	// Site names the report when no request or environment value does.
	Site string `mapstructure:"site" yaml:"site"`

	// Template preloads a probe set: "default" or "minimal".
	Template string `mapstructure:"template" yaml:"template" validate:"omitempty,oneof=default minimal"`

	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Runner    RunnerConfig    `mapstructure:"runner" yaml:"runner"`
	Auth      AuthConfig      `mapstructure:"auth" yaml:"auth"`
	Cache     CacheConfig     `mapstructure:"cache" yaml:"cache"`
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`
	Checks    ChecksConfig    `mapstructure:"checks" yaml:"checks"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" yaml:"addr" validate:"required"`
	Path            string        `mapstructure:"path" yaml:"path" validate:"required,startswith=/"`
	MetricsPath     string        `mapstructure:"metrics_path" yaml:"metrics_path" validate:"omitempty,startswith=/,nefield=Path"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"gte=0"`
}

// RunnerConfig configures each health check run.
type RunnerConfig struct {
	Budget         time.Duration `mapstructure:"budget" yaml:"budget" validate:"gte=0"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl" validate:"gte=0"`
	MaxCacheTTL    time.Duration `mapstructure:"max_cache_ttl" yaml:"max_cache_ttl" validate:"gte=0"`
	Precedence     []string      `mapstructure:"precedence" yaml:"precedence"`
	Sanitize       string        `mapstructure:"sanitize" yaml:"sanitize"`
	CancelOnBudget bool          `mapstructure:"cancel_on_budget" yaml:"cancel_on_budget"`
}

// AuthConfig configures the auth gate.
type AuthConfig struct {
	Token           string    `mapstructure:"token" yaml:"token"`
	RequireAuth     *bool     `mapstructure:"require_auth" yaml:"require_auth"`
	AllowQueryToken bool      `mapstructure:"allow_query_token" yaml:"allow_query_token"`
	StrictMode      *bool     `mapstructure:"strict_mode" yaml:"strict_mode"`
	JWT             JWTConfig `mapstructure:"jwt" yaml:"jwt"`
}

// JWTConfig enables signed bearer tokens alongside the static token.
type JWTConfig struct {
	Secret   string   `mapstructure:"secret" yaml:"secret"`
	Issuer   string   `mapstructure:"issuer" yaml:"issuer"`
	Audience string   `mapstructure:"audience" yaml:"audience"`
	Subjects []string `mapstructure:"subjects" yaml:"subjects"`
}

// CacheConfig selects the result store.
type CacheConfig struct {
	Backend       string        `mapstructure:"backend" yaml:"backend" validate:"oneof=memory redis"`
	SweepInterval time.Duration `mapstructure:"sweep_interval" yaml:"sweep_interval" validate:"gte=0"`
	Redis         RedisConfig   `mapstructure:"redis" yaml:"redis"`
}

// RedisConfig configures the Redis connection shared by the cache and the
// Redis probe.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr" validate:"omitempty,hostname_port"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db" validate:"gte=0"`
	Prefix   string `mapstructure:"prefix" yaml:"prefix"`
}

// TelemetryConfig mirrors observe.Config.
type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	Tracing     struct {
		Enabled   bool    `mapstructure:"enabled" yaml:"enabled"`
		Exporter  string  `mapstructure:"exporter" yaml:"exporter"`
		SamplePct float64 `mapstructure:"sample_pct" yaml:"sample_pct" validate:"gte=0,lte=1"`
	} `mapstructure:"tracing" yaml:"tracing"`
	Metrics struct {
		Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
		Exporter string `mapstructure:"exporter" yaml:"exporter"`
	} `mapstructure:"metrics" yaml:"metrics"`
	Logging struct {
		Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
		Level   string `mapstructure:"level" yaml:"level"`
		Format  string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"logging" yaml:"logging"`
}

// ChecksConfig enables the reference probes. Nil sections are disabled.
type ChecksConfig struct {
	Build *probe.BuildCheckConfig `mapstructure:"build" yaml:"build"`
	HTTP  *probe.HTTPCheckConfig  `mapstructure:"http" yaml:"http"`
	Pages *probe.PagesCheckConfig `mapstructure:"pages" yaml:"pages"`
	Redis *RedisCheckConfig       `mapstructure:"redis" yaml:"redis"`
}

// RedisCheckConfig enables the Redis probe against Cache.Redis.
type RedisCheckConfig struct {
	Enabled bool          `mapstructure:"enabled" yaml:"enabled"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gte=0"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("site", "")
	v.SetDefault("template", TemplateNone)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.path", "/healthcheck")
	v.SetDefault("server.metrics_path", "/metrics")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("runner.budget", 5*time.Second)
	v.SetDefault("runner.cache_ttl", time.Duration(0))
	v.SetDefault("runner.max_cache_ttl", 10*time.Minute)
	v.SetDefault("runner.precedence", []string{})
	v.SetDefault("runner.sanitize", string(sanitize.None))
	v.SetDefault("runner.cancel_on_budget", false)

	v.SetDefault("auth.token", "")
	v.SetDefault("auth.allow_query_token", false)
	v.SetDefault("auth.jwt.secret", "")
	v.SetDefault("auth.jwt.issuer", "")
	v.SetDefault("auth.jwt.audience", "")

	v.SetDefault("cache.backend", BackendMemory)
	v.SetDefault("cache.sweep_interval", 60*time.Second)
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.prefix", "watchtower:")

	v.SetDefault("telemetry.service_name", "watchtower")
	v.SetDefault("telemetry.tracing.enabled", false)
	v.SetDefault("telemetry.tracing.exporter", "none")
	v.SetDefault("telemetry.tracing.sample_pct", 1.0)
	v.SetDefault("telemetry.metrics.enabled", false)
	v.SetDefault("telemetry.metrics.exporter", "prometheus")
	v.SetDefault("telemetry.logging.enabled", true)
	v.SetDefault("telemetry.logging.level", "info")
	v.SetDefault("telemetry.logging.format", "json")
}

// Load reads configuration from path, or from ./watchtower.yaml when path
// is empty and that file exists.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Optional values have no default, so bind them explicitly.
	for _, key := range []string{"auth.require_auth", "auth.strict_mode"} {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else {
		v.SetConfigName("watchtower")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("config: read: %w", err)
			}
		}
	}

	if err := templateDefaults(v, v.GetString("template")); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	cfg.applyTemplate()
	if err := cfg.resolveSecrets(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) resolveSecrets() error {
	for name, field := range map[string]*string{
		"auth.token":           &c.Auth.Token,
		"auth.jwt.secret":      &c.Auth.JWT.Secret,
		"cache.redis.password": &c.Cache.Redis.Password,
	} {
		if *field == "" {
			continue
		}
		resolved, err := ResolveSecret(*field)
		if err != nil {
			return fmt.Errorf("config: %s: %w", name, err)
		}
		*field = resolved
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and enumerated values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s failed %q", ErrInvalidConfig, fieldPath(verrs[0]), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := sanitize.ParseStrategy(c.Runner.Sanitize); err != nil {
		return fmt.Errorf("%w: runner.sanitize: %w", ErrInvalidConfig, err)
	}
	if _, err := health.ParsePrecedence(c.Runner.Precedence); err != nil {
		return fmt.Errorf("%w: runner.precedence: %w", ErrInvalidConfig, err)
	}
	obs := c.Observe()
	if err := obs.Validate(); err != nil {
		return fmt.Errorf("%w: telemetry: %w", ErrInvalidConfig, err)
	}
	return nil
}

// fieldPath renders a validation failure as its config key, e.g.
// "server.path" for Config.Server.Path.
func fieldPath(fe validator.FieldError) string {
	parts := strings.Split(fe.StructNamespace(), ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = strings.ToLower(p)
	}
	return strings.Join(parts, ".")
}

// Observe converts the telemetry section.
func (c *Config) Observe() observe.Config {
	return observe.Config{
		ServiceName: c.Telemetry.ServiceName,
		Tracing: observe.TracingConfig{
			Enabled:   c.Telemetry.Tracing.Enabled,
			Exporter:  c.Telemetry.Tracing.Exporter,
			SamplePct: c.Telemetry.Tracing.SamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  c.Telemetry.Metrics.Enabled,
			Exporter: c.Telemetry.Metrics.Exporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: c.Telemetry.Logging.Enabled,
			Level:   c.Telemetry.Logging.Level,
			Format:  c.Telemetry.Logging.Format,
		},
	}
}
