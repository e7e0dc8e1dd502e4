package backend

import (
	"context"

	"github.com/shopspring/decimal"

	"expensedash/internal/core"
)

// Ports for the resource backend.
type (
	// Store is the uniform list / get / save / delete contract every resource
	// exposes. Save treats id 0 as create.
	Store[T any] interface {
		List(ctx context.Context, f core.Filters) (core.ListResult[T], error)
		Get(ctx context.Context, id int64) (T, error)
		Save(ctx context.Context, item T) (core.Reply, error)
		Delete(ctx context.Context, id int64) (core.Reply, error)
	}

	// SpendingReader provides the aggregations behind the home chart.
	SpendingReader interface {
		SpendingByCategory(ctx context.Context) ([]core.CategoryTotal, error)
		TotalSpending(ctx context.Context) (decimal.Decimal, error)
	}
)

// Backend bundles one store per resource with the spending aggregations.
type Backend struct {
	Categories   Store[core.Category]
	Statuses     Store[core.Status]
	Transactions Store[core.Transaction]
	Users        Store[core.User]
	Spending     SpendingReader
}

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// Result is a backend together with its optional cleanup.
type Result struct {
	Backend Backend
	Cleanup CleanupFunc
}

// Close runs the cleanup, if any.
func (r *Result) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}
