package dashboard

import (
	"context"
	"errors"
	"strings"
	"time"

	"expensedash/internal/backend"
	"expensedash/internal/core"
	"expensedash/internal/log"
)

// ListState is what the list partial renders.
type ListState[T any] struct {
	Filters core.Filters
	Items   []T
	Error   string
}

// FormState is what the form partial renders.
type FormState[T any] struct {
	Item    T
	Editing bool
	Error   string
}

// Outcome is the result of a save or a delete. Invalid marks input that
// failed validation before the backend was called.
type Outcome struct {
	OK      bool
	Message string
	Error   string
	Invalid bool
}

// Resource drives the list, form and delete flow of one resource.
type Resource[T core.Entity[T]] struct {
	Name       string // singular, e.g. "category"
	Plural     string
	FilterKeys []string
	// Defaults returns the create-mode form values.
	Defaults func() T

	store    backend.Store[T]
	confirm  *Confirmations
	notifier Notifier
	log      *log.StructuredLogger
}

func (r *Resource[T]) fields(id int64) log.LogFields {
	return log.NewFields().WithEntity(r.Name, id)
}

// Load fetches the list for the given filters. Failures and replies with
// success false both yield an empty list and a fixed message.
func (r *Resource[T]) Load(ctx context.Context, f core.Filters) ListState[T] {
	f = pick(f, r.FilterKeys)
	state := ListState[T]{Filters: f, Items: []T{}}

	res, err := r.store.List(ctx, f)
	if err == nil && !res.Success {
		err = core.ErrRejected
	}
	if err != nil {
		r.log.LogError(ctx, "Failed to fetch "+r.Plural, err, log.ComponentDashboard, log.OpList, r.fields(0))
		state.Error = "Failed to fetch " + r.Plural
		return state
	}
	if res.Items != nil {
		state.Items = res.Items
	}
	return state
}

// OpenForm returns create-mode defaults for id 0 and preloads the entity
// otherwise.
func (r *Resource[T]) OpenForm(ctx context.Context, id int64) FormState[T] {
	var zero T
	if r.Defaults != nil {
		zero = r.Defaults()
	}
	if id == 0 {
		return FormState[T]{Item: zero}
	}

	item, err := r.store.Get(ctx, id)
	if err != nil {
		r.log.LogError(ctx, "Failed to fetch "+r.Name+" details", err, log.ComponentDashboard, log.OpGet, r.fields(id))
		return FormState[T]{Item: zero, Error: "Failed to fetch " + r.Name + " details"}
	}
	return FormState[T]{Item: item, Editing: true}
}

// Submission is a form post.
type Submission[T any] struct {
	Item    T
	Editing bool
	// Check runs after the entity's own validation, for rules that need
	// fields outside the entity.
	Check func(T) error
}

// Submit validates, normalises the id for create, and saves. Only a reply
// that explicitly reports success counts as success.
func (r *Resource[T]) Submit(ctx context.Context, s Submission[T]) Outcome {
	if err := s.Item.Validate(); err != nil {
		return Outcome{Error: err.Error(), Invalid: true}
	}
	if s.Check != nil {
		if err := s.Check(s.Item); err != nil {
			return Outcome{Error: err.Error(), Invalid: true}
		}
	}
	if s.Editing && s.Item.EntityID() == 0 {
		return Outcome{Error: "Failed to save " + r.Name}
	}

	item := core.ForSave(s.Item, s.Editing)
	reply, err := r.store.Save(ctx, item)
	if err == nil && !reply.Success {
		err = core.ErrRejected
	}
	if err != nil {
		r.log.LogError(ctx, "Failed to save "+r.Name, err, log.ComponentDashboard, log.OpSave, r.fields(item.EntityID()))
		return Outcome{Error: "Failed to save " + r.Name}
	}

	// Creates carry no id: the backend reply does not echo the new one.
	r.log.LogMutation(ctx, r.Name, log.OpSave, item.EntityID(), reply.Message)
	r.publish(ctx, log.OpSave, item.EntityID(), reply.Message)
	return Outcome{OK: true, Message: successMessage(reply.Message, r.Name, "saved")}
}

// RequestDelete opens the confirmation modal. It never calls the backend.
func (r *Resource[T]) RequestDelete(id int64, label string) (Pending, error) {
	if id <= 0 {
		return Pending{}, errors.New("invalid id")
	}
	return r.confirm.Open(r.Name, id, label), nil
}

// ConfirmDelete executes the delete registered under token, exactly once.
// known is false when the token is unknown or already used, in which case
// the backend is not called.
func (r *Resource[T]) ConfirmDelete(ctx context.Context, token string) (out Outcome, known bool) {
	p, ok := r.confirm.Take(r.Name, token)
	if !ok {
		return Outcome{Error: "This delete request has expired"}, false
	}

	reply, err := r.store.Delete(ctx, p.ID)
	if err == nil && !reply.Success {
		err = core.ErrRejected
	}
	if err != nil {
		r.log.LogError(ctx, "Failed to delete "+r.Name, err, log.ComponentDashboard, log.OpDelete, r.fields(p.ID))
		return Outcome{Error: "Failed to delete " + r.Name}, true
	}

	r.log.LogMutation(ctx, r.Name, log.OpDelete, p.ID, reply.Message)
	r.publish(ctx, log.OpDelete, p.ID, reply.Message)
	return Outcome{OK: true, Message: successMessage(reply.Message, r.Name, "deleted")}, true
}

// CancelDelete drops the pending delete, if any.
func (r *Resource[T]) CancelDelete(token string) {
	r.confirm.Take(r.Name, token)
}

func (r *Resource[T]) publish(ctx context.Context, op string, id int64, message string) {
	ev := core.MutationEvent{
		Resource:  r.Name,
		Operation: op,
		ID:        id,
		Message:   message,
		Timestamp: time.Now().Unix(),
	}
	if err := r.notifier.Notify(ctx, ev); err != nil {
		r.log.LogError(ctx, "Failed to publish mutation event", err, log.ComponentAMQP, log.OpPublish, r.fields(id))
	}
}

func successMessage(reply, name, verb string) string {
	if reply != "" {
		return reply
	}
	return capitalize(name) + " " + verb
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func pick(f core.Filters, keys []string) core.Filters {
	out := make(core.Filters, len(keys))
	for _, k := range keys {
		out[k] = f[k]
	}
	return out
}
