package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"expensetracker/internal/core"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       any
	hasBody    bool
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value encoded as the response body.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	b.hasBody = true
	return b
}

// Write encodes the body before touching w, so an encoding failure turns
// into a 500 instead of a truncated response.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) error {
	var buf bytes.Buffer
	if b.hasBody {
		if err := json.NewEncoder(&buf).Encode(b.body); err != nil {
			http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
			return fmt.Errorf("encode response: %w", err)
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
	}
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}

	w.WriteHeader(b.statusCode)
	if buf.Len() > 0 {
		if _, err := w.Write(buf.Bytes()); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}
	return nil
}

type expenseResponse struct {
	ID          int64   `json:"id"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	CreatedAt   string  `json:"created_at"`
}

func newExpenseResponse(e core.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		Amount:      e.Amount,
		Category:    e.Category,
		Description: e.Description,
		Date:        e.Date.String(),
		CreatedAt:   e.CreatedAt.UTC().Format(core.TimestampLayout),
	}
}

// newExpenseListResponse never returns nil so an empty list encodes as [].
func newExpenseListResponse(expenses []core.Expense) []expenseResponse {
	out := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, newExpenseResponse(e))
	}
	return out
}

type dashboardResponse struct {
	Total          float64            `json:"total"`
	CategoryTotals map[string]float64 `json:"category_totals"`
	MonthlyTotals  map[string]float64 `json:"monthly_totals"`
	ExpenseCount   int                `json:"expense_count"`
}

func newDashboardResponse(d core.Dashboard) dashboardResponse {
	resp := dashboardResponse{
		Total:          d.Total,
		CategoryTotals: d.CategoryTotals,
		MonthlyTotals:  d.MonthlyTotals,
		ExpenseCount:   d.ExpenseCount,
	}
	if resp.CategoryTotals == nil {
		resp.CategoryTotals = map[string]float64{}
	}
	if resp.MonthlyTotals == nil {
		resp.MonthlyTotals = map[string]float64{}
	}
	return resp
}
