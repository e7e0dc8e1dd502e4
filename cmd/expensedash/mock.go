package main

import (
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"expensedash/internal/backend"
	"expensedash/internal/cli"
	"expensedash/internal/mockapi"
)

func mockBackendCmd() *cobra.Command {
	var port, store string

	cmd := &cobra.Command{
		Use:   "mock-backend",
		Short: "Run a local REST backend backed by memory or SQLite",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := cli.LoadConfig()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.MockPort = port
			}
			if store != "" {
				cfg.MockStore = store
			}
			if err := cfg.ValidateMock(); err != nil {
				return err
			}
			logger, err := cli.SetupLogger(cfg)
			if err != nil {
				return err
			}

			res, err := backend.NewFactory(logger).Create(ctx, backend.Config{
				Type:          backend.Type(cfg.MockStore),
				SQLiteDBPath:  cfg.SQLiteDBPath,
				DataDirectory: cfg.DataDirectory,
			})
			if err != nil {
				return err
			}
			defer res.Close()

			srv := &http.Server{
				Addr:              ":" + cfg.MockPort,
				Handler:           mockapi.New(res.Backend, "/api", logger),
				ReadHeaderTimeout: 10 * time.Second,
				IdleTimeout:       60 * time.Second,
			}

			logger.Info("Starting mock backend", "port", cfg.MockPort, "store", cfg.MockStore)
			return cli.Serve(ctx, logger, "mock-backend", srv, cli.ShutdownTimeout)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides MOCK_PORT)")
	cmd.Flags().StringVar(&store, "store", "", "memory or sqlite (overrides MOCK_STORE)")
	return cmd
}
