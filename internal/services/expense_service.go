// Package services holds the expense use cases on top of the record store.
package services

import (
	"context"
	"fmt"
	"sort"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/storage"
)

// EventPublisher announces committed writes. amqp.Client implements it.
type EventPublisher interface {
	PublishExpenseEvent(ctx context.Context, t amqp.EventType, e core.Expense) error
}

// ExpenseService validates input, talks to the store and publishes change
// events. Publication failures are logged and never fail the request.
type ExpenseService struct {
	store  storage.Store
	events EventPublisher
}

// NewExpenseService builds the service. events may be nil.
func NewExpenseService(store storage.Store, events EventPublisher) *ExpenseService {
	return &ExpenseService{store: store, events: events}
}

// List returns the expenses matching q, newest date first. Equal dates are
// ordered by ascending id.
func (s *ExpenseService) List(ctx context.Context, q core.ListQuery) ([]core.Expense, error) {
	filter, err := core.NewFilter(q)
	if err != nil {
		return nil, err
	}
	expenses, err := s.store.Scan(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	sortByDateDesc(expenses)
	return expenses, nil
}

func (s *ExpenseService) Get(ctx context.Context, id int64) (core.Expense, error) {
	e, err := s.store.Get(ctx, id)
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense %d: %w", id, err)
	}
	return e, nil
}

// Add validates the payload and stores a new expense.
func (s *ExpenseService) Add(ctx context.Context, p core.ExpensePayload) (core.Expense, error) {
	fields, err := p.Fields()
	if err != nil {
		return core.Expense{}, err
	}
	e, err := s.store.Insert(ctx, fields)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	applog.FromContext(ctx).InfoContext(ctx, "Expense created", "id", e.ID, "category", e.Category, "amount", e.Amount)
	s.publish(ctx, amqp.EventCreated, e)
	return e, nil
}

// Update replaces the fields of an existing expense. A missing id is
// reported before the payload is validated.
func (s *ExpenseService) Update(ctx context.Context, id int64, p core.ExpensePayload) (core.Expense, error) {
	if _, err := s.store.Get(ctx, id); err != nil {
		return core.Expense{}, fmt.Errorf("get expense %d: %w", id, err)
	}
	fields, err := p.Fields()
	if err != nil {
		return core.Expense{}, err
	}
	e, err := s.store.Update(ctx, id, fields)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense %d: %w", id, err)
	}
	applog.FromContext(ctx).InfoContext(ctx, "Expense updated", "id", e.ID)
	s.publish(ctx, amqp.EventUpdated, e)
	return e, nil
}

func (s *ExpenseService) Delete(ctx context.Context, id int64) error {
	snapshot, err := s.store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get expense %d: %w", id, err)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	applog.FromContext(ctx).InfoContext(ctx, "Expense deleted", "id", id)
	s.publish(ctx, amqp.EventDeleted, snapshot)
	return nil
}

// Dashboard aggregates every stored expense.
func (s *ExpenseService) Dashboard(ctx context.Context) (core.Dashboard, error) {
	expenses, err := s.store.All(ctx)
	if err != nil {
		return core.Dashboard{}, fmt.Errorf("load expenses: %w", err)
	}
	return core.Summarize(expenses), nil
}

func (s *ExpenseService) publish(ctx context.Context, t amqp.EventType, e core.Expense) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishExpenseEvent(ctx, t, e); err != nil {
		applog.FromContext(ctx).ErrorContext(ctx, "Failed to publish expense event",
			"type", t, "id", e.ID, "error", err)
	}
}

func sortByDateDesc(expenses []core.Expense) {
	sort.Slice(expenses, func(i, j int) bool {
		a, b := expenses[i], expenses[j]
		if !a.Date.Equal(b.Date.Time) {
			return a.Date.After(b.Date.Time)
		}
		return a.ID < b.ID
	})
}
