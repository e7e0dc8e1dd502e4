package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"expensedash/internal/log"
)

type navLink struct {
	Path  string
	Title string
}

var navLinks = []navLink{
	{Path: "", Title: "Home"},
	{Path: "transactions", Title: "Transactions"},
	{Path: "categories", Title: "Categories"},
	{Path: "statuses", Title: "Statuses"},
	{Path: "users", Title: "Users"},
}

type pageData struct {
	Title    string
	Active   string
	Nav      []navLink
	Resource *resourcePage
}

func newPage(title, active string, res *resourcePage) pageData {
	return pageData{Title: title, Active: active, Nav: navLinks, Resource: res}
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "page", newPage("Home", "", nil))
}

// handleChart renders the spending chart once both the breakdown and the
// total have loaded.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "chart", s.dash.Chart(r.Context()))
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	})
}

// handleReady reports ready when the templates are loaded and the backend
// answers an unfiltered category list.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := map[string]any{
		"templates": "ok",
		"rate_limiter": map[string]any{
			"active_clients": s.limiter.ActiveClients(),
		},
	}

	if err := s.dash.Ready(ctx); err != nil {
		log.FromContext(r.Context()).WithComponent(log.ComponentBackend).WarnContext(r.Context(), "Readiness check failed",
			log.FieldError, err)
		checks["backend"] = "failed: " + err.Error()
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["backend"] = "ok"
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
