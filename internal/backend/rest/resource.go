package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"expensedash/internal/core"
)

// Endpoints describes one resource on the wire.
type Endpoints struct {
	Name       string
	List       string
	Get        string // empty when the backend has no get-by-id route
	Save       string
	Delete     string
	ListKey    string
	ItemKey    string
	FilterKeys []string
	// BareList accepts a top-level JSON array as a successful list.
	BareList bool
}

var (
	CategoryEndpoints = Endpoints{
		Name:       "category",
		List:       "/Category/GetAllCategory",
		Get:        "/Category/GetCategoryById",
		Save:       "/Category/RegisterCategory",
		Delete:     "/Category/DeleteCategory",
		ListKey:    "category",
		ItemKey:    "category",
		FilterKeys: core.CategoryFilterKeys,
	}

	StatusEndpoints = Endpoints{
		Name:       "status",
		List:       "/Status/GetAllStatus",
		Save:       "/Status/RegisterStatus",
		Delete:     "/Status/DeleteStatus",
		ListKey:    "status",
		ItemKey:    "status",
		FilterKeys: core.StatusFilterKeys,
	}

	TransactionEndpoints = Endpoints{
		Name:       "transaction",
		List:       "/Transactions/GetAllTransactions",
		Get:        "/Transactions/GetTransactionById",
		Save:       "/Transactions/CreateTransaction",
		Delete:     "/Transactions/DeleteTransaction",
		ListKey:    "transactions",
		ItemKey:    "transaction",
		FilterKeys: core.TransactionFilterKeys,
	}

	UserEndpoints = Endpoints{
		Name:       "user",
		List:       "/User/GetAllUsers",
		Get:        "/User/GetUserById",
		Save:       "/User/RegisterUser",
		Delete:     "/User/DeleteUser",
		ListKey:    "users",
		ItemKey:    "user",
		FilterKeys: core.UserFilterKeys,
		BareList:   true,
	}
)

// Resource is the API client for one resource.
type Resource[T core.Entity[T]] struct {
	c  *Client
	ep Endpoints
}

func NewResource[T core.Entity[T]](c *Client, ep Endpoints) *Resource[T] {
	return &Resource[T]{c: c, ep: ep}
}

func (c *Client) Categories() *Resource[core.Category] {
	return NewResource[core.Category](c, CategoryEndpoints)
}

func (c *Client) Statuses() *Resource[core.Status] {
	return NewResource[core.Status](c, StatusEndpoints)
}

func (c *Client) Transactions() *Resource[core.Transaction] {
	return NewResource[core.Transaction](c, TransactionEndpoints)
}

func (c *Client) Users() *Resource[core.User] {
	return NewResource[core.User](c, UserEndpoints)
}

// List fetches the resource list. Every declared filter key is sent, empty
// when unset. A well-formed reply with success false is returned as
// ListResult{Success: false} without an error.
func (r *Resource[T]) List(ctx context.Context, f core.Filters) (core.ListResult[T], error) {
	body, err := r.c.call(ctx, r.ep.Name, "list", http.MethodGet, r.ep.List, f.Query(r.ep.FilterKeys), nil)
	if err != nil {
		return core.ListResult[T]{}, err
	}
	return decodeList[T](body, r.ep)
}

func decodeList[T any](body []byte, ep Endpoints) (core.ListResult[T], error) {
	trimmed := bytes.TrimSpace(body)
	if ep.BareList && len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return core.ListResult[T]{}, fmt.Errorf("%s list: %w: %v", ep.Name, ErrUnexpectedShape, err)
		}
		return core.ListResult[T]{Success: true, Items: items}, nil
	}

	var env map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return core.ListResult[T]{}, fmt.Errorf("%s list: %w: %v", ep.Name, ErrUnexpectedShape, err)
	}

	var success bool
	raw, ok := env["success"]
	if !ok {
		return core.ListResult[T]{}, fmt.Errorf("%s list: %w: missing success", ep.Name, ErrUnexpectedShape)
	}
	if err := json.Unmarshal(raw, &success); err != nil {
		return core.ListResult[T]{}, fmt.Errorf("%s list: %w: success is not a boolean", ep.Name, ErrUnexpectedShape)
	}
	if !success {
		return core.ListResult[T]{Success: false}, nil
	}

	raw, ok = env[ep.ListKey]
	if !ok {
		return core.ListResult[T]{}, fmt.Errorf("%s list: %w: missing %q", ep.Name, ErrUnexpectedShape, ep.ListKey)
	}
	items := make([]T, 0)
	if !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		if err := json.Unmarshal(raw, &items); err != nil {
			return core.ListResult[T]{}, fmt.Errorf("%s list: %w: %v", ep.Name, ErrUnexpectedShape, err)
		}
	}
	return core.ListResult[T]{Success: true, Items: items}, nil
}

// Get fetches one entity. The body may be the entity itself or an envelope
// keyed by the singular resource name.
func (r *Resource[T]) Get(ctx context.Context, id int64) (T, error) {
	var zero T
	if r.ep.Get == "" {
		return r.pick(ctx, id)
	}

	body, err := r.c.call(ctx, r.ep.Name, "get", http.MethodGet, r.ep.Get, idQuery(id), nil)
	if err != nil {
		return zero, err
	}

	var env map[string]json.RawMessage
	if err := json.Unmarshal(body, &env); err != nil {
		return zero, fmt.Errorf("%s get: %w: %v", r.ep.Name, ErrUnexpectedShape, err)
	}
	payload := json.RawMessage(body)
	if inner, ok := env[r.ep.ItemKey]; ok && len(bytes.TrimSpace(inner)) > 0 && bytes.TrimSpace(inner)[0] == '{' {
		payload = inner
	} else if _, ok := env["id"]; !ok {
		if s, ok := env["success"]; ok && string(bytes.TrimSpace(s)) == "false" {
			return zero, fmt.Errorf("%s %d: %w", r.ep.Name, id, ErrRejected)
		}
		return zero, fmt.Errorf("%s get: %w: no entity in reply", r.ep.Name, ErrUnexpectedShape)
	}

	var item T
	if err := json.Unmarshal(payload, &item); err != nil {
		return zero, fmt.Errorf("%s get: %w: %v", r.ep.Name, ErrUnexpectedShape, err)
	}
	return item, nil
}

// pick lists unfiltered and selects by id, for resources without a get route.
func (r *Resource[T]) pick(ctx context.Context, id int64) (T, error) {
	var zero T
	res, err := r.List(ctx, core.Filters{})
	if err != nil {
		return zero, err
	}
	if !res.Success {
		return zero, fmt.Errorf("%s list: %w", r.ep.Name, ErrRejected)
	}
	for _, item := range res.Items {
		if item.EntityID() == id {
			return item, nil
		}
	}
	return zero, fmt.Errorf("%s %d: %w", r.ep.Name, id, ErrNotFound)
}

// Save posts the full record; id 0 creates.
func (r *Resource[T]) Save(ctx context.Context, item T) (core.Reply, error) {
	body, err := r.c.call(ctx, r.ep.Name, "save", http.MethodPost, r.ep.Save, nil, item)
	if err != nil {
		return core.Reply{}, err
	}
	reply, err := core.ParseReply(body)
	if err != nil {
		return reply, fmt.Errorf("%s save: %w", r.ep.Name, err)
	}
	return reply, nil
}

func (r *Resource[T]) Delete(ctx context.Context, id int64) (core.Reply, error) {
	body, err := r.c.call(ctx, r.ep.Name, "delete", http.MethodGet, r.ep.Delete, idQuery(id), nil)
	if err != nil {
		return core.Reply{}, err
	}
	reply, err := core.ParseReply(body)
	if err != nil {
		return reply, fmt.Errorf("%s delete %d: %w", r.ep.Name, id, err)
	}
	return reply, nil
}

func idQuery(id int64) url.Values {
	return url.Values{"id": {strconv.FormatInt(id, 10)}}
}
