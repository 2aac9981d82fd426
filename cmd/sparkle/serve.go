package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/sparkle/internal/config"
	"github.com/vango-dev/sparkle/internal/demo"
	"github.com/vango-dev/sparkle/pkg/bead"
	"github.com/vango-dev/sparkle/pkg/blink"
	"github.com/vango-dev/sparkle/pkg/middleware"
	"github.com/vango-dev/sparkle/pkg/persist"
	"github.com/vango-dev/sparkle/pkg/server"
	"github.com/vango-dev/sparkle/pkg/sparkle"
	"github.com/vango-dev/sparkle/pkg/telemetry"
)

func serveCmd() *cobra.Command {
	var (
		app        string
		configPath string
		port       int
		host       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a demo app over WebSocket",
		Long: `Serve a demo app over WebSocket.

Examples:
  sparkle serve
  sparkle serve --app todo
  sparkle serve --app counter --config sparkle.yaml --port 9000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if app != "" {
				cfg.App = app
			}
			if port > 0 {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVarP(&app, "app", "a", "", "App to serve ("+fmt.Sprint(demo.Names())+")")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file (default: sparkle.json in the working directory)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from config)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from config)")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger := newLogger(os.Stderr, cfg.Log)

	var opts []server.Option
	opts = append(opts,
		server.WithLogger(logger.With("component", "server")),
		server.WithMiddleware(middleware.OpenTelemetry()),
	)

	var collector *telemetry.Collector
	if cfg.Metrics.Enabled {
		collector = telemetry.New(telemetry.WithNamespace(cfg.Metrics.Namespace))
		opts = append(opts,
			server.WithMetrics(collector),
			server.WithMetricsHandler(collector.Handler()),
			server.WithMiddleware(middleware.Prometheus(
				middleware.WithNamespace(cfg.Metrics.Namespace),
				middleware.WithRegistry(collector.Registry()),
			)),
		)
	}

	srvCfg := server.DefaultConfig()
	srvCfg.Addr = cfg.Address()
	srv := server.New(srvCfg, opts...)

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	delay, _ := cfg.SaveDelay()
	env := demo.Env{
		Host:   srv,
		Store:  store,
		Logger: logger.With("component", "demo"),
		PersistOptions: []persist.Option{
			persist.SaveDelay(delay),
			persist.WithLogger(logger.With("component", "persist")),
		},
		Options: []sparkle.Option{
			sparkle.WithLogger(logger.With("component", "sparkle")),
			sparkle.WithRuntime(blink.NewRuntime().WithMaxDepth(cfg.Decoration.MaxEffectDepth)),
			sparkle.WithMaxRedecorateDepth(cfg.Decoration.MaxRedecorateDepth),
			sparkle.WithTracer(telemetry.Tracer()),
		},
	}
	if collector != nil {
		env.Options = append(env.Options, sparkle.WithMetrics(collector))
		env.PersistOptions = append(env.PersistOptions, persist.WithObserver(collector))
	}

	inst, err := demo.Run(cfg.App, env)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := inst.Close(closeCtx); err != nil {
			logger.Error("close app", "app", inst.Name, "error", err)
		}
	}()
	srv.SetState(func() bead.State { return inst.App.State() })

	success("Serving %s", inst.Name)
	info("http://%s", cfg.Address())
	return srv.ListenAndServe(ctx)
}
