package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeTriggers(t *testing.T, w *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	raw := w.Header().Get("HX-Trigger")
	require.NotEmpty(t, raw, "HX-Trigger header not set")
	var triggers map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(raw), &triggers))
	return triggers
}

func TestResponseBuilder_SaveTriggers(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerChanged("category").
		TriggerModalClose().
		TriggerSuccessNotification("Created").
		Write(w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Empty(t, w.Header().Get("Content-Type"))

	triggers := decodeTriggers(t, w)
	assert.Contains(t, triggers, "category:changed")
	assert.Contains(t, triggers, "modal:close")

	var note notification
	require.NoError(t, json.Unmarshal(triggers["show-notification"], &note))
	assert.Equal(t, notification{Type: NotificationSuccess, Message: "Created", Duration: 3000}, note)
}

func TestResponseBuilder_NoTriggers(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().Write(w)

	assert.Empty(t, w.Header().Get("HX-Trigger"))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestResponseBuilder_LastNotificationWins(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerSuccessNotification("Saved").
		TriggerWarningNotification("Slow down").
		Write(w)

	var note notification
	require.NoError(t, json.Unmarshal(decodeTriggers(t, w)["show-notification"], &note))
	assert.Equal(t, NotificationWarning, note.Type)
	assert.Equal(t, "Slow down", note.Message)
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name       string
		builder    *HTMXResponseBuilder
		wantStatus int
		wantBody   string
	}{
		{"bad request", BadRequestError("Invalid input"), http.StatusBadRequest, `<div class="error">Invalid input</div>`},
		{"validation", UnprocessableEntityError("code is required"), http.StatusUnprocessableEntity, `<div class="error">code is required</div>`},
		{"conflict", ConflictError("This delete request has expired"), http.StatusConflict, `<div class="error">This delete request has expired</div>`},
		{"internal", InternalServerError("Failed to render page"), http.StatusInternalServerError, `<div class="error">Failed to render page</div>`},
		{"bad gateway", ErrorResponse(http.StatusBadGateway, "Failed to save user"), http.StatusBadGateway, `<div class="error">Failed to save user</div>`},
		{"escaped", BadRequestError("<script>alert('x')</script>"), http.StatusBadRequest, `<div class="error">&lt;script&gt;alert(&#39;x&#39;)&lt;/script&gt;</div>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantBody, w.Body.String())
			assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
		})
	}
}

func TestErrorResponseWithTriggers(t *testing.T) {
	w := httptest.NewRecorder()

	ConflictError("expired").
		TriggerErrorNotification("expired").
		TriggerChanged("status").
		TriggerModalClose().
		Write(w)

	assert.Equal(t, http.StatusConflict, w.Code)
	triggers := decodeTriggers(t, w)
	assert.Len(t, triggers, 3)

	var note notification
	require.NoError(t, json.Unmarshal(triggers["show-notification"], &note))
	assert.Equal(t, NotificationError, note.Type)
}
