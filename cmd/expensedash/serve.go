package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"expensedash/internal/amqp"
	"expensedash/internal/backend"
	"expensedash/internal/cache"
	"expensedash/internal/cli"
	"expensedash/internal/dashboard"
	"expensedash/internal/log"
	apphttp "expensedash/internal/http"
	"expensedash/internal/metrics"
)

const confirmSweepInterval = time.Minute

func serveCmd() *cobra.Command {
	var port, backendURL string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard web server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := cli.LoadConfig()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}
			if backendURL != "" {
				cfg.BackendURL = backendURL
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger, err := cli.SetupLogger(cfg)
			if err != nil {
				return err
			}

			res, err := backend.NewFactory(logger).Create(ctx, backend.Config{
				Type:        backend.RESTBackend,
				BaseURL:     cfg.BackendURL,
				Timeout:     cfg.BackendTimeout,
				InsecureTLS: cfg.BackendInsecureTLS,
			})
			if err != nil {
				return err
			}
			defer res.Close()

			opts := dashboard.Options{ConfirmTTL: cfg.ConfirmTTL, Logger: logger}
			if cfg.AMQPURL != "" {
				client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, logger)
				if err != nil {
					// Mutation events are optional; the dashboard runs without them.
					logger.Warn("AMQP unavailable, mutation events disabled", log.FieldError, err)
				} else {
					defer client.Close()
					go client.Run(ctx)
					opts.Notifier = client
				}
			}
			dash := dashboard.New(res.Backend, opts)

			caches := cache.NewManager(logger)
			caches.Register(dash.Confirmations.Cleaner())
			caches.StartCleanup(ctx, confirmSweepInterval)
			defer caches.Stop()

			reg, err := metrics.NewRegistry()
			if err != nil {
				return err
			}

			srv, err := apphttp.NewServer(":"+cfg.Port, dash, apphttp.Options{
				Logger:             logger,
				RateLimitPerMinute: cfg.RateLimitPerMinute,
				TrustedProxies:     cfg.TrustedProxies,
				Registry:           reg,
			})
			if err != nil {
				return fmt.Errorf("build server: %w", err)
			}

			logger.Info("Starting expensedash server",
				"port", cfg.Port,
				"backend_url", cfg.BackendURL,
				"amqp", opts.Notifier != nil)
			return cli.Serve(ctx, logger, "dashboard", srv, cli.ShutdownTimeout)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides PORT)")
	cmd.Flags().StringVar(&backendURL, "backend-url", "", "REST backend base URL (overrides BACKEND_URL)")
	return cmd
}
