package dashboard

import (
	"context"

	"golang.org/x/sync/errgroup"

	"expensedash/internal/backend"
	"expensedash/internal/core"
	"expensedash/internal/log"
)

// TransactionOptions are the choices offered by the transaction form.
// FreeText is set when either list could not be loaded, in which case the
// form falls back to plain inputs.
type TransactionOptions struct {
	Categories []core.Category
	Statuses   []core.Status
	FreeText   bool
}

// LoadTransactionOptions fetches the category and status lists concurrently.
func LoadTransactionOptions(ctx context.Context, cats backend.Store[core.Category], statuses backend.Store[core.Status], sl *log.StructuredLogger) TransactionOptions {
	sl = orDefault(sl)
	var opts TransactionOptions
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := cats.List(gctx, core.Filters{})
		if err == nil && !res.Success {
			err = core.ErrRejected
		}
		opts.Categories = res.Items
		return err
	})
	g.Go(func() error {
		res, err := statuses.List(gctx, core.Filters{})
		if err == nil && !res.Success {
			err = core.ErrRejected
		}
		opts.Statuses = res.Items
		return err
	})
	if err := g.Wait(); err != nil {
		sl.LogError(ctx, "Failed to load transaction form options", err, log.ComponentDashboard, log.OpList, nil)
		return TransactionOptions{FreeText: true}
	}
	return opts
}
