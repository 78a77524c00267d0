package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"expensetracker/internal/core"
)

// EventType names the kind of write an ExpenseEvent describes. It doubles as
// the AMQP message type header.
type EventType string

const (
	EventCreated EventType = "expense.created"
	EventUpdated EventType = "expense.updated"
	EventDeleted EventType = "expense.deleted"
)

func (t EventType) IsValid() bool {
	switch t {
	case EventCreated, EventUpdated, EventDeleted:
		return true
	default:
		return false
	}
}

// ExpenseSnapshot is the expense as it was right after the write, or right
// before it for deletions.
type ExpenseSnapshot struct {
	ID          int64   `json:"id"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	CreatedAt   string  `json:"created_at"`
}

// ExpenseEvent is published after every committed write.
type ExpenseEvent struct {
	MessageID string          `json:"message_id"`
	Type      EventType       `json:"type"`
	ExpenseID int64           `json:"expense_id"`
	Expense   ExpenseSnapshot `json:"expense"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewExpenseEvent creates an event with a fresh message id.
func NewExpenseEvent(t EventType, e core.Expense) *ExpenseEvent {
	return &ExpenseEvent{
		MessageID: uuid.NewString(),
		Type:      t,
		ExpenseID: e.ID,
		Expense: ExpenseSnapshot{
			ID:          e.ID,
			Amount:      e.Amount,
			Category:    e.Category,
			Description: e.Description,
			Date:        e.Date.String(),
			CreatedAt:   e.CreatedAt.UTC().Format(time.RFC3339Nano),
		},
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (m *ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ToExpense rebuilds the domain record carried by the event.
func (m *ExpenseEvent) ToExpense() (core.Expense, error) {
	date, err := core.ParseDate(m.Expense.Date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("snapshot date %q: %w", m.Expense.Date, err)
	}
	var createdAt time.Time
	if m.Expense.CreatedAt != "" {
		createdAt, err = time.Parse(time.RFC3339Nano, m.Expense.CreatedAt)
		if err != nil {
			return core.Expense{}, fmt.Errorf("snapshot created_at %q: %w", m.Expense.CreatedAt, err)
		}
	}
	return core.Expense{
		ID:          m.ExpenseID,
		Amount:      m.Expense.Amount,
		Category:    m.Expense.Category,
		Description: m.Expense.Description,
		Date:        date,
		CreatedAt:   createdAt.UTC(),
	}, nil
}

// ExpenseEventFromJSON decodes an event and rejects ones no consumer could act on.
func ExpenseEventFromJSON(data []byte) (*ExpenseEvent, error) {
	var msg ExpenseEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if !msg.Type.IsValid() {
		return nil, fmt.Errorf("unknown event type %q", msg.Type)
	}
	if msg.ExpenseID <= 0 {
		return nil, fmt.Errorf("event %s has no expense id", msg.MessageID)
	}
	return &msg, nil
}
