package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"WARNING": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestLoggerTagsComponentOnce(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Format: "json", Output: &buf}).WithComponent(ComponentREST)
	l.Info("hello", FieldResource, "category")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line: %v (%s)", err, buf.String())
	}
	if rec[FieldComponent] != ComponentREST || rec[FieldResource] != "category" {
		t.Fatalf("unexpected record: %v", rec)
	}
	if bytes.Count(buf.Bytes(), []byte(`"component"`)) != 1 {
		t.Fatalf("component repeated: %s", buf.String())
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Format: "json", Output: &buf})

	h := Middleware(base)(RequestIDMiddleware(func(*http.Request) string { return "req_abc" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			FromContext(r.Context()).InfoContext(r.Context(), "inside")
		})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if rec[FieldRequestID] != "req_abc" {
		t.Fatalf("request id missing: %v", rec)
	}
}

func TestStructuredLoggerLogError(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Format: "json", Output: &buf}))
	sl.LogError(context.Background(), "Save failed", errors.New("boom"), ComponentDashboard, OpSave,
		NewFields().WithEntity("category", 7))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if rec["level"] != "ERROR" || rec[FieldError] != "boom" || rec[FieldEntityID] != float64(7) {
		t.Fatalf("unexpected record: %v", rec)
	}
	if rec[FieldComponent] != ComponentDashboard {
		t.Fatalf("component = %v", rec[FieldComponent])
	}
}

func TestFromContextDefault(t *testing.T) {
	if FromContext(context.Background()).Component() != "unknown" {
		t.Fatal("expected fallback logger")
	}
}

func TestStructuredLoggerPrefersRequestLogger(t *testing.T) {
	var base, scoped bytes.Buffer
	sl := NewStructuredLogger(New(Config{Format: "json", Output: &base}))
	reqLogger := New(Config{Format: "json", Output: &scoped}).With(FieldRequestID, "req_1")
	ctx := NewContext(context.Background(), reqLogger)

	sl.LogMutation(ctx, "category", OpDelete, 3, "Deleted")

	if base.Len() != 0 {
		t.Fatalf("base logger should stay silent, got %s", base.String())
	}
	var rec map[string]any
	if err := json.Unmarshal(scoped.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if rec[FieldRequestID] != "req_1" || rec[FieldMessage] != "Deleted" {
		t.Fatalf("unexpected record: %v", rec)
	}
}
