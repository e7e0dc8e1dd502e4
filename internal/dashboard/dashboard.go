// Package dashboard holds the view-state controllers behind each page: the
// resource lists and forms, the delete confirmation gate and the spending
// chart.
package dashboard

import (
	"context"
	"errors"
	"time"

	"expensedash/internal/backend"
	"expensedash/internal/core"
	"expensedash/internal/log"
)

type Dashboard struct {
	Categories   *Resource[core.Category]
	Statuses     *Resource[core.Status]
	Transactions *Resource[core.Transaction]
	Users        *Resource[core.User]

	Confirmations *Confirmations
	spending      backend.SpendingReader
	backend       backend.Backend
	log           *log.StructuredLogger
}

// Options configures a Dashboard.
type Options struct {
	ConfirmTTL time.Duration
	Notifier   Notifier
	Logger     *log.Logger
}

func New(b backend.Backend, opts Options) *Dashboard {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = noopNotifier{}
	}
	sl := log.NewStructuredLogger(logger)
	confirm := NewConfirmations(opts.ConfirmTTL)

	return &Dashboard{
		Categories: newResource(b.Categories, "category", "categories", core.CategoryFilterKeys,
			func() core.Category { return core.Category{IsActive: true} }, confirm, notifier, sl),
		Statuses: newResource(b.Statuses, "status", "statuses", core.StatusFilterKeys,
			func() core.Status { return core.Status{IsActive: true} }, confirm, notifier, sl),
		Transactions: newResource(b.Transactions, "transaction", "transactions", core.TransactionFilterKeys,
			func() core.Transaction { return core.Transaction{IsActive: true} }, confirm, notifier, sl),
		Users: newResource(b.Users, "user", "users", core.UserFilterKeys,
			func() core.User { return core.User{IsActive: true} }, confirm, notifier, sl),
		Confirmations: confirm,
		spending:      b.Spending,
		backend:       b,
		log:           sl,
	}
}

func newResource[T core.Entity[T]](store backend.Store[T], name, plural string, keys []string, defaults func() T,
	confirm *Confirmations, notifier Notifier, sl *log.StructuredLogger) *Resource[T] {
	return &Resource[T]{
		Name:       name,
		Plural:     plural,
		FilterKeys: keys,
		Defaults:   defaults,
		store:      store,
		confirm:    confirm,
		notifier:   notifier,
		log:        sl,
	}
}

// Chart loads the home page chart.
func (d *Dashboard) Chart(ctx context.Context) ChartState {
	return LoadChart(ctx, d.spending, d.log)
}

// TransactionOptions loads the category and status choices for the
// transaction form.
func (d *Dashboard) TransactionOptions(ctx context.Context) TransactionOptions {
	return LoadTransactionOptions(ctx, d.backend.Categories, d.backend.Statuses, d.log)
}

// Ready probes the backend with an unfiltered category list.
func (d *Dashboard) Ready(ctx context.Context) error {
	res, err := d.backend.Categories.List(ctx, core.Filters{})
	if err != nil {
		return err
	}
	if !res.Success {
		return errors.New("backend reported failure")
	}
	return nil
}
