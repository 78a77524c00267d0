package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"expensetracker/internal/core"
)

// fakeSheet emulates the subset of the Sheets values API the client uses.
type fakeSheet struct {
	mu       sync.Mutex
	rows     [][]any
	failNext int
	failCode int
	calls    int

	// readDelay holds back column reads after the snapshot is taken.
	readDelay time.Duration
}

func (f *fakeSheet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet && f.readDelay > 0 {
		defer time.Sleep(f.readDelay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	if f.failNext > 0 {
		f.failNext--
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.failCode)
		fmt.Fprintf(w, `{"error":{"code":%d,"message":"try later"}}`, f.failCode)
		return
	}

	_, rng, ok := strings.Cut(r.URL.Path, "/values/")
	if !ok {
		http.NotFound(w, r)
		return
	}

	switch {
	case r.Method == http.MethodGet:
		var col [][]any
		for _, row := range f.rows {
			if len(row) == 0 {
				col = append(col, []any{})
				continue
			}
			col = append(col, []any{fmt.Sprint(row[0])})
		}
		writeJSON(w, gsheet.ValueRange{Range: rng, Values: col})

	case r.Method == http.MethodPut:
		var vr gsheet.ValueRange
		json.NewDecoder(r.Body).Decode(&vr)
		n := rowNumber(rng)
		f.rows[n-1] = vr.Values[0]
		writeJSON(w, gsheet.UpdateValuesResponse{UpdatedRange: rng})

	case strings.HasSuffix(rng, ":append"):
		var vr gsheet.ValueRange
		json.NewDecoder(r.Body).Decode(&vr)
		f.rows = append(f.rows, vr.Values...)
		writeJSON(w, gsheet.AppendValuesResponse{})

	case strings.HasSuffix(rng, ":clear"):
		n := rowNumber(strings.TrimSuffix(rng, ":clear"))
		f.rows[n-1] = nil
		writeJSON(w, gsheet.ClearValuesResponse{ClearedRange: rng})

	default:
		http.NotFound(w, r)
	}
}

func rowNumber(rng string) int {
	_, cells, _ := strings.Cut(rng, "!A")
	digits, _, _ := strings.Cut(cells, ":")
	n, _ := strconv.Atoi(digits)
	return n
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, fake *fakeSheet) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithHTTPClient(srv.Client()),
		goption.WithEndpoint(srv.URL+"/"),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	c, err := NewWithService(svc, Config{SpreadsheetID: "sheet-id", RetryAttempts: 3, RetryDelay: time.Millisecond})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func expense(id int64, amount float64) core.Expense {
	return core.Expense{
		ID:        id,
		Amount:    amount,
		Category:  "food",
		Date:      core.NewDate(2024, 3, 1),
		CreatedAt: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestNewWithService_MissingSpreadsheetID(t *testing.T) {
	if _, err := NewWithService(nil, Config{}); err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err := New(context.Background(), Config{SpreadsheetID: "x"})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("expected credentials error, got %v", err)
	}
}

func TestUpsertExpense_AppendsWithHeaderThenUpdatesInPlace(t *testing.T) {
	fake := &fakeSheet{}
	c := newTestClient(t, fake)
	ctx := context.Background()

	if err := c.UpsertExpense(ctx, expense(1, 10)); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := c.UpsertExpense(ctx, expense(2, 20)); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if len(fake.rows) != 3 {
		t.Fatalf("rows = %v, want header plus two", fake.rows)
	}
	if fake.rows[0][0] != "ID" {
		t.Fatalf("header = %v", fake.rows[0])
	}

	if err := c.UpsertExpense(ctx, expense(1, 99.5)); err != nil {
		t.Fatalf("update upsert: %v", err)
	}
	if len(fake.rows) != 3 {
		t.Fatalf("update must not append, rows = %v", fake.rows)
	}
	if got := fake.rows[1][4]; got != 99.5 {
		t.Fatalf("amount after update = %v", got)
	}
}

func TestUpsertExpense_ConcurrentSameID(t *testing.T) {
	fake := &fakeSheet{readDelay: 50 * time.Millisecond}
	c := newTestClient(t, fake)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- c.UpsertExpense(ctx, expense(7, 1))
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	var headers, matches int
	for _, row := range fake.rows {
		if len(row) == 0 {
			continue
		}
		switch fmt.Sprint(row[0]) {
		case "ID":
			headers++
		case "7":
			matches++
		}
	}
	if headers != 1 || matches != 1 {
		t.Fatalf("headers = %d, rows for id 7 = %d, want 1 and 1; rows = %v", headers, matches, fake.rows)
	}
}

func TestDeleteExpense(t *testing.T) {
	fake := &fakeSheet{}
	c := newTestClient(t, fake)
	ctx := context.Background()

	for _, id := range []int64{1, 2} {
		if err := c.UpsertExpense(ctx, expense(id, 1)); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	if err := c.DeleteExpense(ctx, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if fake.rows[1] != nil {
		t.Fatalf("row 2 not cleared: %v", fake.rows[1])
	}
	if fmt.Sprint(fake.rows[2][0]) != "2" {
		t.Fatalf("other row touched: %v", fake.rows[2])
	}

	if err := c.DeleteExpense(ctx, 1); err != nil {
		t.Fatalf("deleting a missing row should be a no-op, got %v", err)
	}
}

func TestRetriesOnRateLimit(t *testing.T) {
	fake := &fakeSheet{failNext: 2, failCode: http.StatusTooManyRequests}
	c := newTestClient(t, fake)

	if err := c.UpsertExpense(context.Background(), expense(1, 5)); err != nil {
		t.Fatalf("upsert after transient 429s: %v", err)
	}
	if len(fake.rows) != 2 {
		t.Fatalf("rows = %v", fake.rows)
	}
}

func TestDoesNotRetryClientErrors(t *testing.T) {
	fake := &fakeSheet{failNext: 1, failCode: http.StatusForbidden}
	c := newTestClient(t, fake)

	err := c.UpsertExpense(context.Background(), expense(1, 5))
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) || apiErr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 googleapi error, got %v", err)
	}
	if fake.calls != 1 {
		t.Fatalf("calls = %d, want 1", fake.calls)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{&googleapi.Error{Code: 429}, true},
		{&googleapi.Error{Code: 503}, true},
		{&googleapi.Error{Code: 400}, false},
		{fmt.Errorf("wrapped: %w", &googleapi.Error{Code: 500}), true},
		{errors.New("boom"), false},
	}
	for _, tt := range tests {
		if got := isRetryable(tt.err); got != tt.want {
			t.Errorf("isRetryable(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
