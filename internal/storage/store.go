// Package storage defines the expense record store and its SQLite implementation.
package storage

import (
	"context"

	"expensetracker/internal/core"
)

// Store is the durable keyed collection of expenses.
//
// Every single-record write is atomic. Missing ids are reported as
// core.ErrNotFound. Scan and All return records in no particular order.
type Store interface {
	Insert(ctx context.Context, f core.ExpenseFields) (core.Expense, error)
	Get(ctx context.Context, id int64) (core.Expense, error)
	Scan(ctx context.Context, filter core.Filter) ([]core.Expense, error)
	Update(ctx context.Context, id int64, f core.ExpenseFields) (core.Expense, error)
	Delete(ctx context.Context, id int64) error
	All(ctx context.Context) ([]core.Expense, error)
}
