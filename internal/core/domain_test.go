package core

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"2024-01-31", true},
		{"2024-02-29", true},
		{"2023-02-29", false},
		{"2024-1-5", false},
		{"2024/01/05", false},
		{"05-01-2024", false},
		{"", false},
		{"2024-01-05T00:00:00Z", false},
	}
	for _, tc := range cases {
		d, err := ParseDate(tc.in)
		if tc.ok {
			if err != nil {
				t.Fatalf("%q expected ok, got %v", tc.in, err)
			}
			if d.String() != tc.in {
				t.Fatalf("%q round trip gave %q", tc.in, d.String())
			}
		} else if !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q expected ErrInvalidDate, got %v", tc.in, err)
		}
	}
}

func TestDateMonthKey(t *testing.T) {
	if got := NewDate(2024, 3, 15).MonthKey(); got != "2024-03" {
		t.Fatalf("MonthKey = %q", got)
	}
}

func TestExpenseFieldsValidate(t *testing.T) {
	good := ExpenseFields{Amount: 12.5, Category: "food", Date: NewDate(2024, 3, 1)}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	negative := good
	negative.Amount = -3
	if err := negative.Validate(); err != nil {
		t.Fatalf("negative amounts are refunds, got %v", err)
	}

	bads := map[string]ExpenseFields{
		"amount":      {Amount: math.NaN(), Category: "c", Date: NewDate(2024, 1, 1)},
		"category":    {Amount: 1, Category: "  ", Date: NewDate(2024, 1, 1)},
		"description": {Amount: 1, Category: "c", Description: strings.Repeat("x", 201), Date: NewDate(2024, 1, 1)},
		"date":        {Amount: 1, Category: "c", Date: Date{Time: time.Time{}}},
	}
	for field, f := range bads {
		err := f.Validate()
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("%s: expected ValidationError, got %v", field, err)
		}
		if ve.Field != field {
			t.Fatalf("expected field %q, got %q", field, ve.Field)
		}
	}

	if err := (ExpenseFields{Amount: 1, Category: "c"}).Validate(); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("zero date: expected ErrInvalidDate, got %v", err)
	}
}

func TestNewFilter(t *testing.T) {
	f, err := NewFilter(ListQuery{Category: "all", StartDate: "2024-01-01", EndDate: "2024-01-31"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.HasCategory() {
		t.Fatalf("category 'all' must not constrain")
	}
	if f.From != NewDate(2024, 1, 1) || f.To != NewDate(2024, 1, 31) {
		t.Fatalf("unexpected bounds: %v %v", f.From, f.To)
	}

	_, err = NewFilter(ListQuery{StartDate: "01/01/2024"})
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "start_date" {
		t.Fatalf("expected start_date validation error, got %v", err)
	}
	_, err = NewFilter(ListQuery{EndDate: "nope"})
	if !errors.As(err, &ve) || ve.Field != "end_date" {
		t.Fatalf("expected end_date validation error, got %v", err)
	}
}

func TestNewFilter_CategoryKeptAsSent(t *testing.T) {
	f, err := NewFilter(ListQuery{Category: " food "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Category != " food " {
		t.Fatalf("category = %q, want it kept as sent", f.Category)
	}
	if f.Matches(Expense{Category: "food", Date: NewDate(2024, 1, 1)}) {
		t.Fatal("padded filter must not match the unpadded category")
	}
	if !f.Matches(Expense{Category: " food ", Date: NewDate(2024, 1, 1)}) {
		t.Fatal("padded filter must match the padded category")
	}

	for _, blank := range []string{"", "   ", " all "} {
		f, err := NewFilter(ListQuery{Category: blank})
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", blank, err)
		}
		if f.HasCategory() {
			t.Fatalf("%q must not constrain the category", blank)
		}
	}
}

func TestFilterMatches(t *testing.T) {
	e := Expense{ID: 1, Amount: 3, Category: "food", Date: NewDate(2024, 1, 15)}
	cases := []struct {
		name string
		f    Filter
		want bool
	}{
		{"empty", Filter{}, true},
		{"category hit", Filter{Category: "food"}, true},
		{"category miss", Filter{Category: "rent"}, false},
		{"all sentinel", Filter{Category: AllCategories}, true},
		{"inclusive lower", Filter{From: NewDate(2024, 1, 15)}, true},
		{"inclusive upper", Filter{To: NewDate(2024, 1, 15)}, true},
		{"before range", Filter{From: NewDate(2024, 1, 16)}, false},
		{"after range", Filter{To: NewDate(2024, 1, 14)}, false},
	}
	for _, tc := range cases {
		if got := tc.f.Matches(e); got != tc.want {
			t.Errorf("%s: Matches = %v, want %v", tc.name, got, tc.want)
		}
	}
}
