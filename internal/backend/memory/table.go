package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"expensedash/internal/core"
)

// Table is a mutex-guarded in-memory collection of one resource.
type Table[T core.Entity[T]] struct {
	mu     sync.Mutex
	items  map[int64]T
	nextID int64
}

func NewTable[T core.Entity[T]](seed ...T) *Table[T] {
	t := &Table[T]{items: make(map[int64]T), nextID: 1}
	for _, item := range seed {
		t.insert(item)
	}
	return t
}

func (t *Table[T]) insert(item T) T {
	id := item.EntityID()
	if id == 0 {
		id = t.nextID
	}
	if id >= t.nextID {
		t.nextID = id + 1
	}
	item = item.WithID(id)
	t.items[id] = item
	return item
}

// List returns the matching items ordered by id.
func (t *Table[T]) List(_ context.Context, f core.Filters) (core.ListResult[T], error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]T, 0, len(t.items))
	for _, item := range t.items {
		if item.Matches(f) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntityID() < out[j].EntityID() })
	return core.ListResult[T]{Success: true, Items: out}, nil
}

func (t *Table[T]) Get(_ context.Context, id int64) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	item, ok := t.items[id]
	if !ok {
		var zero T
		return zero, fmt.Errorf("id %d: %w", id, core.ErrNotFound)
	}
	return item, nil
}

// Save creates the item when its id is 0 and replaces it otherwise.
func (t *Table[T]) Save(_ context.Context, item T) (core.Reply, error) {
	if err := item.Validate(); err != nil {
		return core.Reply{}, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if id := item.EntityID(); id != 0 {
		if _, ok := t.items[id]; !ok {
			return core.Reply{}, fmt.Errorf("id %d: %w", id, core.ErrNotFound)
		}
		t.items[id] = item
		return core.Reply{Success: true, Message: "Updated"}, nil
	}
	t.insert(item)
	return core.Reply{Success: true, Message: "Created"}, nil
}

func (t *Table[T]) Delete(_ context.Context, id int64) (core.Reply, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.items[id]; !ok {
		return core.Reply{}, fmt.Errorf("id %d: %w", id, core.ErrNotFound)
	}
	delete(t.items, id)
	return core.Reply{Success: true, Message: "Deleted"}, nil
}

func (t *Table[T]) snapshot() []T {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]T, 0, len(t.items))
	for _, item := range t.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntityID() < out[j].EntityID() })
	return out
}
