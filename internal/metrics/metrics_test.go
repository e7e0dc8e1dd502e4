package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerExposesCollectors(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	BackendRequests.WithLabelValues("category", "list", Outcome(nil)).Inc()

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `expensedash_backend_requests_total{operation="list",outcome="success",resource="category"}`))
	assert.True(t, strings.Contains(body, "go_goroutines"))
}

func TestRegistriesAreIndependent(t *testing.T) {
	_, err := NewRegistry()
	require.NoError(t, err)
	_, err = NewRegistry()
	require.NoError(t, err)
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "success", Outcome(nil))
	assert.Equal(t, "error", Outcome(errors.New("boom")))
}
