// Package storagetest holds the behavioural checks every storage.Store
// implementation must pass.
package storagetest

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/storage"
)

// Run exercises store behaviour against fresh instances from newStore.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	t.Helper()

	t.Run("InsertAssignsUniqueIDs", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		seen := map[int64]bool{}
		for i := 0; i < 5; i++ {
			e, err := s.Insert(ctx, fields(1.5, "food", "", core.NewDate(2024, 3, i+1)))
			if err != nil {
				t.Fatalf("insert: %v", err)
			}
			if seen[e.ID] {
				t.Fatalf("duplicate id %d", e.ID)
			}
			seen[e.ID] = true
		}
	})

	t.Run("InsertThenGet", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		before := time.Now().UTC().Add(-time.Second)
		created, err := s.Insert(ctx, fields(12.5, "food", "lunch", core.NewDate(2024, 3, 1)))
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		if created.CreatedAt.Before(before) || created.CreatedAt.Location() != time.UTC {
			t.Fatalf("created_at = %v, want recent UTC time", created.CreatedAt)
		}

		got, err := s.Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		assertEqual(t, got, created)
	})

	t.Run("UpdateKeepsIdentity", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		created, err := s.Insert(ctx, fields(12.5, "food", "", core.NewDate(2024, 3, 1)))
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		updated, err := s.Update(ctx, created.ID, fields(20, "transport", "bus", core.NewDate(2024, 4, 2)))
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if updated.ID != created.ID || !updated.CreatedAt.Equal(created.CreatedAt) {
			t.Fatalf("identity changed: %+v vs %+v", updated, created)
		}
		if updated.Amount != 20 || updated.Category != "transport" || updated.Description != "bus" || updated.Date != core.NewDate(2024, 4, 2) {
			t.Fatalf("fields not replaced: %+v", updated)
		}

		got, err := s.Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		assertEqual(t, got, updated)
	})

	t.Run("DeleteRemoves", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		created, err := s.Insert(ctx, fields(3, "food", "", core.NewDate(2024, 3, 1)))
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		if err := s.Delete(ctx, created.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := s.Get(ctx, created.ID); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("get after delete: %v, want ErrNotFound", err)
		}
		if err := s.Delete(ctx, created.ID); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("second delete: %v, want ErrNotFound", err)
		}
	})

	t.Run("MissingID", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		if _, err := s.Get(ctx, 999); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("get: %v", err)
		}
		if _, err := s.Update(ctx, 999, fields(1, "food", "", core.NewDate(2024, 1, 1))); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("update: %v", err)
		}
		if err := s.Delete(ctx, 999); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("delete: %v", err)
		}
	})

	t.Run("ScanFilters", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		a := mustInsert(t, s, fields(12.5, "food", "", core.NewDate(2024, 3, 1)))
		b := mustInsert(t, s, fields(7.25, "food", "", core.NewDate(2024, 3, 15)))
		c := mustInsert(t, s, fields(30, "transport", "", core.NewDate(2024, 3, 10)))
		d := mustInsert(t, s, fields(4, "food", "", core.NewDate(2024, 4, 1)))

		cases := []struct {
			name   string
			filter core.Filter
			want   []int64
		}{
			{"none", core.Filter{}, []int64{a.ID, b.ID, c.ID, d.ID}},
			{"all", core.Filter{Category: core.AllCategories}, []int64{a.ID, b.ID, c.ID, d.ID}},
			{"category", core.Filter{Category: "food"}, []int64{a.ID, b.ID, d.ID}},
			{"unknown category", core.Filter{Category: "rent"}, nil},
			{"inclusive range", core.Filter{From: core.NewDate(2024, 3, 1), To: core.NewDate(2024, 3, 15)}, []int64{a.ID, b.ID, c.ID}},
			{"from only", core.Filter{From: core.NewDate(2024, 3, 11)}, []int64{b.ID, d.ID}},
			{"category and range", core.Filter{Category: "food", To: core.NewDate(2024, 3, 14)}, []int64{a.ID}},
		}
		for _, tc := range cases {
			got, err := s.Scan(ctx, tc.filter)
			if err != nil {
				t.Fatalf("%s: scan: %v", tc.name, err)
			}
			if !sameIDs(ids(got), tc.want) {
				t.Fatalf("%s: got ids %v, want %v", tc.name, ids(got), tc.want)
			}
		}
	})

	t.Run("All", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		all, err := s.All(ctx)
		if err != nil {
			t.Fatalf("all on empty store: %v", err)
		}
		if len(all) != 0 {
			t.Fatalf("expected empty store, got %d", len(all))
		}

		a := mustInsert(t, s, fields(1, "food", "", core.NewDate(2024, 1, 1)))
		b := mustInsert(t, s, fields(-2, "refund", "", core.NewDate(2023, 12, 31)))

		all, err = s.All(ctx)
		if err != nil {
			t.Fatalf("all: %v", err)
		}
		if !sameIDs(ids(all), []int64{a.ID, b.ID}) {
			t.Fatalf("got ids %v", ids(all))
		}
	})
}

func fields(amount float64, category, description string, date core.Date) core.ExpenseFields {
	return core.ExpenseFields{Amount: amount, Category: category, Description: description, Date: date}
}

func mustInsert(t *testing.T, s storage.Store, f core.ExpenseFields) core.Expense {
	t.Helper()
	e, err := s.Insert(context.Background(), f)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	return e
}

func assertEqual(t *testing.T, got, want core.Expense) {
	t.Helper()
	if got.ID != want.ID || got.Amount != want.Amount || got.Category != want.Category ||
		got.Description != want.Description || got.Date != want.Date || !got.CreatedAt.Equal(want.CreatedAt) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func ids(es []core.Expense) []int64 {
	out := make([]int64, 0, len(es))
	for _, e := range es {
		out = append(out, e.ID)
	}
	return out
}

func sameIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	a = append([]int64(nil), a...)
	b = append([]int64(nil), b...)
	sort.Slice(a, func(i, j int) bool { return a[i] < a[j] })
	sort.Slice(b, func(i, j int) bool { return b[i] < b[j] })
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
