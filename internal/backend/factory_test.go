package backend

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"expensetracker/internal/config"
	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
)

func testLogger() *applog.Logger {
	return applog.New(applog.Config{Output: &bytes.Buffer{}})
}

func TestCreateBackend(t *testing.T) {
	ctx := context.Background()
	factory := NewFactory(testLogger())

	tests := []struct {
		name   string
		config Config
	}{
		{"memory", Config{Type: MemoryBackend}},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "nested", "expenses.db")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := factory.CreateBackend(ctx, tt.config)
			if err != nil {
				t.Fatalf("CreateBackend() error = %v", err)
			}
			t.Cleanup(func() {
				if err := res.Close(); err != nil {
					t.Errorf("cleanup: %v", err)
				}
			})

			if err := res.Backend.Ping(ctx); err != nil {
				t.Fatalf("Ping() error = %v", err)
			}
			e, err := res.Backend.Insert(ctx, core.ExpenseFields{Amount: 12.5, Category: "food", Date: core.NewDate(2024, 3, 1)})
			if err != nil {
				t.Fatalf("Insert() error = %v", err)
			}
			if _, err := res.Backend.Get(ctx, e.ID); err != nil {
				t.Fatalf("Get() error = %v", err)
			}
		})
	}
}

func TestCreateBackendInvalid(t *testing.T) {
	factory := NewFactory(testLogger())
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{"unknown type", Config{Type: "sheets"}, "invalid backend type"},
		{"sqlite without path", Config{Type: SQLiteBackend}, "SQLite database path"},
		{"postgres without url", Config{Type: PostgresBackend}, "PostgreSQL URL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := factory.CreateBackend(context.Background(), tt.config)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("CreateBackend() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	cfg, err := FromAppConfig(&config.Config{DataBackend: "postgres", PostgresURL: "postgres://localhost/x", PostgresMaxConns: 4})
	if err != nil {
		t.Fatalf("FromAppConfig() error = %v", err)
	}
	if cfg.Type != PostgresBackend || cfg.PostgresURL != "postgres://localhost/x" || cfg.PostgresMaxConns != 4 {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	if _, err := FromAppConfig(&config.Config{DataBackend: "oracle"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "postgres", PostgresMaxConns: 1 << 32}); err == nil {
		t.Fatal("expected error for max conns that overflow int32")
	}
}

func TestBackendResultCloseNil(t *testing.T) {
	var res *BackendResult
	if err := res.Close(); err != nil {
		t.Fatal(err)
	}
	if err := (&BackendResult{}).Close(); err != nil {
		t.Fatal(err)
	}
}
