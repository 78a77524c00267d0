package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"ERROR":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewJSONIncludesComponent(t *testing.T) {
	var buf bytes.Buffer
	cfg := ConfigFrom("info", "json")
	cfg.Output = &buf
	cfg.Component = ComponentHTTP

	New(cfg).Info("hello", FieldRequestID, "req_1")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	if entry[FieldComponent] != ComponentHTTP || entry[FieldRequestID] != "req_1" || entry["msg"] != "hello" {
		t.Fatalf("entry = %v", entry)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	cfg := ConfigFrom("warn", "text")
	cfg.Output = &buf
	logger := New(cfg)

	logger.Info("dropped")
	logger.Warn("kept")

	if strings.Contains(buf.String(), "dropped") || !strings.Contains(buf.String(), "kept") {
		t.Fatalf("output = %q", buf.String())
	}
}

func TestContextRoundTrip(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext must never return nil")
	}

	logger := New(Config{Handler: slog.NewTextHandler(&bytes.Buffer{}, nil), Component: ComponentWorker})
	ctx := NewContext(context.Background(), logger)
	if got := FromContext(ctx); got != logger || got.Component() != ComponentWorker {
		t.Fatalf("FromContext returned %+v", got)
	}
}

func TestMiddlewareStoresLogger(t *testing.T) {
	logger := New(Config{Handler: slog.NewTextHandler(&bytes.Buffer{}, nil)})
	var seen *Logger
	h := Middleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if seen != logger {
		t.Fatal("handler did not see the middleware logger")
	}
}

func TestStatusLevel(t *testing.T) {
	if StatusLevel(200) != slog.LevelInfo || StatusLevel(404) != slog.LevelWarn || StatusLevel(503) != slog.LevelError {
		t.Fatal("unexpected level mapping")
	}
}
