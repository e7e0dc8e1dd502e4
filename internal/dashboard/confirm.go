package dashboard

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"expensedash/internal/cache"
)

// Pending is a delete awaiting explicit confirmation.
type Pending struct {
	Token    string
	Resource string
	ID       int64
	Label    string
}

// Message is the question shown in the confirmation modal.
func (p Pending) Message() string {
	if p.Label == "" {
		return fmt.Sprintf("Are you sure you want to delete this %s?", p.Resource)
	}
	return fmt.Sprintf("Are you sure you want to delete the %s %q?", p.Resource, p.Label)
}

// Confirmations is the registry of open confirmation modals. A delete can
// only be executed by taking its token, and a token can be taken once.
type Confirmations struct {
	pending *cache.LRUCache[Pending]
}

const maxPending = 1024

func NewConfirmations(ttl time.Duration) *Confirmations {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Confirmations{pending: cache.NewLRUCache[Pending](maxPending, ttl)}
}

// Open registers a pending delete and returns it with a fresh token.
func (c *Confirmations) Open(resource string, id int64, label string) Pending {
	p := Pending{
		Token:    uuid.NewString(),
		Resource: resource,
		ID:       id,
		Label:    label,
	}
	c.pending.Set(p.Token, p)
	return p
}

// Take removes the pending delete for token. It reports false for unknown,
// expired or already taken tokens, and for tokens of another resource.
func (c *Confirmations) Take(resource, token string) (Pending, bool) {
	p, ok := c.pending.Pop(token)
	if !ok || p.Resource != resource {
		return Pending{}, false
	}
	return p, true
}

// Peek returns the pending delete without consuming it.
func (c *Confirmations) Peek(token string) (Pending, bool) {
	return c.pending.Get(token)
}

// Cleaner exposes the registry for periodic expiry sweeps.
func (c *Confirmations) Cleaner() cache.Cleaner {
	return c.pending
}
