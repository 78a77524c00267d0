// Package memory provides a process-local expense store for tests and
// throwaway runs.
package memory

import (
	"context"
	"sync"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/storage"
)

type Store struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]core.Expense
	now    func() time.Time
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{items: make(map[int64]core.Expense), now: time.Now}
}

func (s *Store) Insert(_ context.Context, f core.ExpenseFields) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	e := core.Expense{
		ID:          s.nextID,
		Amount:      f.Amount,
		Category:    f.Category,
		Description: f.Description,
		Date:        f.Date,
		CreatedAt:   s.now().UTC().Truncate(time.Microsecond),
	}
	s.items[e.ID] = e
	return e, nil
}

func (s *Store) Get(_ context.Context, id int64) (core.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.items[id]
	if !ok {
		return core.Expense{}, core.ErrNotFound
	}
	return e, nil
}

func (s *Store) Scan(_ context.Context, filter core.Filter) ([]core.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Expense, 0, len(s.items))
	for _, e := range s.items {
		if filter.Matches(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) All(ctx context.Context) ([]core.Expense, error) {
	return s.Scan(ctx, core.Filter{})
}

func (s *Store) Update(_ context.Context, id int64, f core.ExpenseFields) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[id]
	if !ok {
		return core.Expense{}, core.ErrNotFound
	}
	e.Amount = f.Amount
	e.Category = f.Category
	e.Description = f.Description
	e.Date = f.Date
	s.items[id] = e
	return e, nil
}

func (s *Store) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }
