package core

import (
	"net/url"
	"strings"
)

// Filters holds list filter values keyed by their wire name.
type Filters map[string]string

// Query encodes every declared key, sending unset keys as empty strings.
func (f Filters) Query(keys []string) url.Values {
	q := make(url.Values, len(keys))
	for _, k := range keys {
		q.Set(k, strings.TrimSpace(f[k]))
	}
	return q
}

// Pick keeps only the declared keys, taking values from src.
func Pick(src url.Values, keys []string) Filters {
	f := make(Filters, len(keys))
	for _, k := range keys {
		f[k] = strings.TrimSpace(src.Get(k))
	}
	return f
}

var (
	CategoryFilterKeys    = []string{"name", "code"}
	StatusFilterKeys      = []string{"name", "code"}
	TransactionFilterKeys = []string{"name", "statusCode", "categoryCode"}
	UserFilterKeys        = []string{"name"}
)

// ListResult is a normalised list reply.
type ListResult[T any] struct {
	Success bool
	Items   []T
}
