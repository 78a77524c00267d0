// Package sheets defines the spreadsheet mirror that receives every expense
// change published by the server.
package sheets

import (
	"context"

	"expensetracker/internal/core"
)

// ExpenseMirror keeps a copy of the expense table outside the primary store.
// Both operations are idempotent so redelivered events are harmless.
type ExpenseMirror interface {
	UpsertExpense(ctx context.Context, e core.Expense) error
	DeleteExpense(ctx context.Context, id int64) error
}
