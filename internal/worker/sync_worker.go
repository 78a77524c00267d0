// Package worker applies expense change events to the spreadsheet mirror.
package worker

import (
	"context"
	"fmt"
	"time"

	"expensetracker/internal/amqp"
	applog "expensetracker/internal/log"
	"expensetracker/internal/sheets"
	"expensetracker/internal/storage"
)

// SyncWorker mirrors expenses into a spreadsheet. The store is optional and
// only used for reconciliation passes.
type SyncWorker struct {
	mirror sheets.ExpenseMirror
	store  storage.Store
}

func NewSyncWorker(mirror sheets.ExpenseMirror, store storage.Store) *SyncWorker {
	return &SyncWorker{mirror: mirror, store: store}
}

// HandleEvent applies one change event. It is the amqp.Handler of the worker.
func (w *SyncWorker) HandleEvent(ctx context.Context, event *amqp.ExpenseEvent) error {
	switch event.Type {
	case amqp.EventCreated, amqp.EventUpdated:
		expense, err := event.ToExpense()
		if err != nil {
			return fmt.Errorf("decode snapshot: %w", err)
		}
		if err := w.mirror.UpsertExpense(ctx, expense); err != nil {
			return fmt.Errorf("upsert expense %d: %w", event.ExpenseID, err)
		}
	case amqp.EventDeleted:
		if err := w.mirror.DeleteExpense(ctx, event.ExpenseID); err != nil {
			return fmt.Errorf("delete expense %d: %w", event.ExpenseID, err)
		}
	default:
		return fmt.Errorf("unsupported event type %q", event.Type)
	}

	applog.FromContext(ctx).InfoContext(ctx, "Mirrored expense event",
		"message_id", event.MessageID,
		"type", event.Type,
		"expense_id", event.ExpenseID)
	return nil
}

// Reconcile upserts every stored expense into the mirror. It recovers
// writes whose events were lost while the worker was down. Rows deleted
// during that window are not removed.
func (w *SyncWorker) Reconcile(ctx context.Context) error {
	if w.store == nil {
		return nil
	}
	expenses, err := w.store.All(ctx)
	if err != nil {
		return fmt.Errorf("load expenses for reconcile: %w", err)
	}

	synced, failed := 0, 0
	for _, e := range expenses {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.mirror.UpsertExpense(ctx, e); err != nil {
			applog.FromContext(ctx).ErrorContext(ctx, "Failed to reconcile expense", "id", e.ID, "error", err)
			failed++
			continue
		}
		synced++
	}

	applog.FromContext(ctx).InfoContext(ctx, "Reconcile completed",
		"total", len(expenses),
		"synced", synced,
		"errors", failed)
	return nil
}

// RunReconcileLoop calls Reconcile every interval until ctx is done.
func (w *SyncWorker) RunReconcileLoop(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := w.Reconcile(ctx); err != nil && ctx.Err() == nil {
				applog.FromContext(ctx).ErrorContext(ctx, "Periodic reconcile failed", "error", err)
			}
		}
	}
}
