package dashboard

import (
	"context"

	"expensedash/internal/core"
	"expensedash/internal/log"
)

// Notifier receives an event after every successful save or delete.
type Notifier interface {
	Notify(ctx context.Context, ev core.MutationEvent) error
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, core.MutationEvent) error { return nil }

func orDefault(sl *log.StructuredLogger) *log.StructuredLogger {
	if sl == nil {
		return log.NewStructuredLogger(log.New(log.DefaultConfig()))
	}
	return sl
}
