package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"expensetracker/internal/core"
)

func TestParseListQuery(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/expenses?category=food&start_date=2024-03-01&end_date=2024-03-31", nil)
	got := ParseListQuery(r)
	want := core.ListQuery{Category: "food", StartDate: "2024-03-01", EndDate: "2024-03-31"}
	if got != want {
		t.Fatalf("ParseListQuery() = %+v, want %+v", got, want)
	}

	if got := ParseListQuery(httptest.NewRequest(http.MethodGet, "/expenses", nil)); got != (core.ListQuery{}) {
		t.Fatalf("empty query = %+v", got)
	}
}

func TestParseExpenseID(t *testing.T) {
	tests := []struct {
		value   string
		want    int64
		wantErr bool
	}{
		{"1", 1, false},
		{"42", 42, false},
		{"abc", 0, true},
		{"1.5", 0, true},
		{"", 0, true},
		{"99999999999999999999", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/expenses/x", nil)
			r.SetPathValue("id", tt.value)
			got, err := parseExpenseID(r)
			if tt.wantErr {
				if !errors.Is(err, core.ErrNotFound) {
					t.Fatalf("parseExpenseID(%q) error = %v, want ErrNotFound", tt.value, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("parseExpenseID(%q) = %d, %v", tt.value, got, err)
			}
		})
	}
}

func TestDecodePayload(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantErr   error
		wantField string
	}{
		{name: "object", body: `{"amount": 12.50, "category": "food", "date": "2024-03-01"}`},
		{name: "empty body", body: ``, wantErr: core.ErrInvalidPayload},
		{name: "malformed", body: `{"amount": `, wantErr: core.ErrInvalidPayload},
		{name: "array", body: `[1, 2]`, wantErr: core.ErrInvalidPayload},
		{name: "string", body: `"food"`, wantErr: core.ErrInvalidPayload},
		{name: "null", body: `null`, wantErr: core.ErrInvalidPayload},
		{name: "trailing data", body: `{"amount": 1} {"amount": 2}`, wantErr: core.ErrInvalidPayload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/expenses/add", strings.NewReader(tt.body))
			p, err := DecodePayload(httptest.NewRecorder(), r)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("DecodePayload() error = %v", err)
				}
				if _, ok := p["amount"].(interface{ Float64() (float64, error) }); !ok {
					t.Fatalf("amount should decode as json.Number, got %T", p["amount"])
				}
				return
			}
			if !errors.Is(err, tt.wantErr) || !core.IsValidation(err) {
				t.Fatalf("DecodePayload() error = %v, want validation error %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodePayloadTooLarge(t *testing.T) {
	body := `{"description": "` + strings.Repeat("x", maxBodyBytes) + `"}`
	r := httptest.NewRequest(http.MethodPost, "/expenses/add", strings.NewReader(body))
	_, err := DecodePayload(httptest.NewRecorder(), r)
	var tooLarge *http.MaxBytesError
	if !errors.As(err, &tooLarge) {
		t.Fatalf("DecodePayload() error = %v, want *http.MaxBytesError", err)
	}
}
