package amqp

import (
	"testing"
	"time"

	"expensetracker/internal/core"
)

func TestNewExpenseEvent(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 30, 0, 123456000, time.UTC)
	e := core.Expense{ID: 42, Amount: 12.5, Category: "food", Description: "lunch", Date: core.NewDate(2024, 3, 1), CreatedAt: created}

	msg := NewExpenseEvent(EventCreated, e)
	if msg.MessageID == "" {
		t.Error("message id should be set")
	}
	if msg.Type != EventCreated || msg.ExpenseID != 42 {
		t.Errorf("unexpected header fields: %+v", msg)
	}
	if time.Since(msg.Timestamp) > time.Second {
		t.Error("timestamp should be recent")
	}
	if other := NewExpenseEvent(EventCreated, e); other.MessageID == msg.MessageID {
		t.Error("message ids must be unique")
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}
	parsed, err := ExpenseEventFromJSON(body)
	if err != nil {
		t.Fatalf("ExpenseEventFromJSON() error = %v", err)
	}
	got, err := parsed.ToExpense()
	if err != nil {
		t.Fatalf("ToExpense() error = %v", err)
	}
	if got.ID != e.ID || got.Amount != e.Amount || got.Category != e.Category ||
		got.Description != e.Description || got.Date != e.Date || !got.CreatedAt.Equal(created) {
		t.Errorf("got %+v, want %+v", got, e)
	}
}

func TestExpenseEventFromJSON_Invalid(t *testing.T) {
	cases := map[string]string{
		"not json":      `{"expense_id": "x"`,
		"unknown type":  `{"type": "expense.archived", "expense_id": 1}`,
		"missing type":  `{"expense_id": 1}`,
		"missing id":    `{"type": "expense.deleted"}`,
		"wrong id type": `{"type": "expense.deleted", "expense_id": "one"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ExpenseEventFromJSON([]byte(body)); err == nil {
				t.Errorf("expected error for %s", body)
			}
		})
	}
}
