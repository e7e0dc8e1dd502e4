package backend

import (
	"context"
	"fmt"
	"time"

	"expensedash/internal/backend/memory"
	"expensedash/internal/backend/rest"
	"expensedash/internal/backend/sqlite"
	"expensedash/internal/core"
	"expensedash/internal/log"
)

// Type selects a backend implementation.
type Type string

const (
	RESTBackend   Type = "rest"
	MemoryBackend Type = "memory"
	SQLiteBackend Type = "sqlite"
)

func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case RESTBackend, MemoryBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}

// Config holds configuration for backend creation
type Config struct {
	Type Type

	// REST specific
	BaseURL     string
	Timeout     time.Duration
	InsecureTLS bool

	// SQLite specific
	SQLiteDBPath string

	// Memory specific
	DataDirectory string
}

var (
	_ Store[core.Category]    = (*rest.Resource[core.Category])(nil)
	_ Store[core.Transaction] = (*memory.Table[core.Transaction])(nil)
	_ Store[core.User]        = (*sqlite.Table[core.User])(nil)
	_ SpendingReader          = (*rest.Client)(nil)
	_ SpendingReader          = (*memory.Store)(nil)
	_ SpendingReader          = (*sqlite.SQLiteRepository)(nil)
)

// Factory creates backends based on configuration
type Factory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) *Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Factory{logger: logger.WithComponent(log.ComponentBackend)}
}

// Create builds the backend described by config.
func (f *Factory) Create(ctx context.Context, config Config) (*Result, error) {
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}

	switch config.Type {
	case RESTBackend:
		return f.createREST(ctx, config)
	case SQLiteBackend:
		return f.createSQLite(ctx, config)
	default:
		return f.createMemory(ctx, config)
	}
}

func (f *Factory) createREST(ctx context.Context, config Config) (*Result, error) {
	client, err := rest.New(rest.Options{
		BaseURL:     config.BaseURL,
		Timeout:     config.Timeout,
		InsecureTLS: config.InsecureTLS,
		Logger:      f.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize REST client: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized REST backend",
		"base_url", config.BaseURL,
		"timeout", config.Timeout.String(),
		"insecure_tls", config.InsecureTLS)

	return &Result{Backend: Backend{
		Categories:   client.Categories(),
		Statuses:     client.Statuses(),
		Transactions: client.Transactions(),
		Users:        client.Users(),
		Spending:     client,
	}}, nil
}

func (f *Factory) createSQLite(ctx context.Context, config Config) (*Result, error) {
	repo, err := sqlite.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &Result{
		Backend: Backend{
			Categories:   repo.Categories(),
			Statuses:     repo.Statuses(),
			Transactions: repo.Transactions(),
			Users:        repo.Users(),
			Spending:     repo,
		},
		Cleanup: repo.Close,
	}, nil
}

func (f *Factory) createMemory(ctx context.Context, config Config) (*Result, error) {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}

	store := memory.NewFromFiles(dataDir)

	f.logger.InfoContext(ctx, "Initialized memory backend", "data_directory", dataDir)

	return &Result{Backend: Backend{
		Categories:   store.Categories(),
		Statuses:     store.Statuses(),
		Transactions: store.Transactions(),
		Users:        store.Users(),
		Spending:     store,
	}}, nil
}
