package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/jonwraymond/watchtower/cache"
	"github.com/jonwraymond/watchtower/config"
	"github.com/jonwraymond/watchtower/observe"
	"github.com/jonwraymond/watchtower/runner"
)

// app holds everything a command needs to run checks.
type app struct {
	cfg      *config.Config
	observer observe.Observer
	logger   observe.Logger
	registry *prometheus.Registry
	redis    goredis.UniversalClient
	cache    *cache.CheckCache
	runner   *runner.Runner
	runCfg   runner.Config
}

func newApp(ctx context.Context, opts *rootOptions) (*app, error) {
	if err := config.LoadEnv(opts.envFiles...); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, registry: prometheus.NewRegistry()}

	obsCfg := cfg.Observe()
	obsCfg.Version = version
	obsCfg.Metrics.Registerer = a.registry
	a.observer, err = observe.NewObserver(ctx, obsCfg)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}
	a.logger = a.observer.Logger()

	inst, err := observe.InstrumentationFromObserver(a.observer)
	if err != nil {
		return nil, err
	}

	if cfg.NeedsRedis() {
		a.redis = cfg.RedisClient()
	}
	a.cache, err = cfg.CheckCache(a.redis)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}

	a.runner = runner.New(
		runner.WithCheckCache(a.cache),
		runner.WithLogger(a.logger),
		runner.WithInstrumentation(inst),
		runner.WithNamer(cfg.Namer()),
	)

	a.runCfg, err = cfg.RunnerConfig(cfg.BuildChecks(a.redis), cfg.AuthGate(a.logger))
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (a *app) Close(ctx context.Context) error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.observer != nil {
		errs = append(errs, a.observer.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
