// Package mockapi serves the remote REST contract on top of a local backend,
// for development and end-to-end tests of the REST client.
package mockapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"expensedash/internal/backend"
	"expensedash/internal/backend/rest"
	"expensedash/internal/core"
	"expensedash/internal/log"
)

const maxPayloadBytes = 1 << 20

// Handler serves the backend under the given path prefix, e.g. "/api".
type Handler struct {
	mux    *http.ServeMux
	logger *log.Logger
}

func New(b backend.Backend, prefix string, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	h := &Handler{
		mux:    http.NewServeMux(),
		logger: logger.WithComponent(log.ComponentMockAPI),
	}
	prefix = strings.TrimRight(prefix, "/")

	mount(h, prefix, b.Categories, rest.CategoryEndpoints, nil)
	mount(h, prefix, b.Statuses, rest.StatusEndpoints, nil)
	mount(h, prefix, b.Transactions, rest.TransactionEndpoints, nil)
	mount(h, prefix, b.Users, rest.UserEndpoints, func(u core.User) core.User {
		u.Password = ""
		return u
	})

	h.mux.HandleFunc("GET "+prefix+"/Transactions/GetTransactionByCategory", func(w http.ResponseWriter, r *http.Request) {
		rows, err := b.Spending.SpendingByCategory(r.Context())
		if err != nil {
			h.fail(w, r, "by_category", err)
			return
		}
		writeJSON(w, http.StatusOK, rows)
	})
	h.mux.HandleFunc("GET "+prefix+"/Transactions/GetTotalAmount", func(w http.ResponseWriter, r *http.Request) {
		total, err := b.Spending.TotalSpending(r.Context())
		if err != nil {
			h.fail(w, r, "total", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"totalSpending": total})
	})
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// mount registers list, get, save and delete routes for one resource.
// redact strips write-only fields before an entity is returned.
func mount[T core.Entity[T]](h *Handler, prefix string, store backend.Store[T], ep rest.Endpoints, redact func(T) T) {
	if redact == nil {
		redact = func(item T) T { return item }
	}

	h.mux.HandleFunc("GET "+prefix+ep.List, func(w http.ResponseWriter, r *http.Request) {
		res, err := store.List(r.Context(), core.Pick(r.URL.Query(), ep.FilterKeys))
		if err != nil {
			h.fail(w, r, ep.Name, err)
			return
		}
		items := make([]T, 0, len(res.Items))
		for _, item := range res.Items {
			items = append(items, redact(item))
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, ep.ListKey: items})
	})

	if ep.Get != "" {
		h.mux.HandleFunc("GET "+prefix+ep.Get, func(w http.ResponseWriter, r *http.Request) {
			id, ok := parseID(w, r)
			if !ok {
				return
			}
			item, err := store.Get(r.Context(), id)
			if err != nil {
				h.fail(w, r, ep.Name, err)
				return
			}
			writeJSON(w, http.StatusOK, redact(item))
		})
	}

	h.mux.HandleFunc("POST "+prefix+ep.Save, func(w http.ResponseWriter, r *http.Request) {
		var item T
		dec := json.NewDecoder(io.LimitReader(r.Body, maxPayloadBytes))
		if err := dec.Decode(&item); err != nil {
			http.Error(w, "invalid JSON payload", http.StatusBadRequest)
			return
		}
		reply, err := store.Save(r.Context(), item)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				h.fail(w, r, ep.Name, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": reply.Message})
	})

	h.mux.HandleFunc("GET "+prefix+ep.Delete, func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		reply, err := store.Delete(r.Context(), id)
		if err != nil {
			h.fail(w, r, ep.Name, err)
			return
		}
		// The remote backend answers deletes with plain text.
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, reply.Message)
	})
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, resource string, err error) {
	if errors.Is(err, core.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	h.logger.ErrorContext(r.Context(), "Mock backend request failed",
		log.FieldResource, resource,
		log.FieldPath, r.URL.Path,
		log.FieldError, err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
