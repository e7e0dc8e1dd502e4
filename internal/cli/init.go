// Package cli provides common CLI initialization utilities shared by the
// dashboard and the mock backend commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"expensedash/internal/config"
	"expensedash/internal/log"
)

// ShutdownTimeout bounds how long in-flight requests get after a signal.
const ShutdownTimeout = 30 * time.Second

// LoadConfig reads .env (when present) and then the environment.
func LoadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	return config.Load(), nil
}

// SetupLogger builds the process logger from cfg and installs it as the
// slog default.
func SetupLogger(cfg *config.Config) (*log.Logger, error) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	c := log.DefaultConfig()
	c.Level = level
	c.Format = cfg.LogFormat
	logger := log.New(c)
	log.SetDefault(logger)
	return logger, nil
}

// Server is the part of *http.Server that Serve drives.
type Server interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// Serve runs srv until it fails or ctx is cancelled, then shuts it down
// within timeout. A clean shutdown returns nil.
func Serve(ctx context.Context, logger *log.Logger, name string, srv Server, timeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("%s: %w", name, err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutdown signal received", "server", name)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "server", name, log.FieldError, err)
		return err
	}
	logger.Info("Server stopped gracefully", "server", name)
	return nil
}
