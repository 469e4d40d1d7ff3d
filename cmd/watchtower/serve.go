package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/jonwraymond/watchtower/cache"
	"github.com/jonwraymond/watchtower/httpapi"
	"github.com/jonwraymond/watchtower/observe"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the health check endpoint over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.Server.ShutdownTimeout)
				defer cancel()
				_ = a.Close(shutdownCtx)
			}()

			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			return serve(ctx, a, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

func serve(ctx context.Context, a *app, addr string) error {
	if mem, ok := a.cache.Cache().(*cache.MemoryCache); ok {
		mem.StartJanitor(ctx, a.cfg.Cache.SweepInterval)
	}

	server := httpapi.NewFiberApp("watchtower " + version)
	server.All(a.cfg.Server.Path, httpapi.FiberHandler(a.runner, a.runCfg, httpapi.WithLogger(a.logger)))
	if a.cfg.Telemetry.Metrics.Enabled && a.cfg.Telemetry.Metrics.Exporter == "prometheus" {
		server.Get(a.cfg.Server.MetricsPath, adaptor.HTTPHandler(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Listen(addr)
	}()
	a.logger.Info(ctx, "watchtower listening",
		observe.F("addr", addr),
		observe.F("path", a.cfg.Server.Path),
		observe.F("checks", len(a.runCfg.Checks)),
	)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info(context.WithoutCancel(ctx), "watchtower shutting down")
	if err := server.ShutdownWithTimeout(a.cfg.Server.ShutdownTimeout); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
