package core

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	// DateLayout is the wire and storage format of an expense date.
	DateLayout = "2006-01-02"
	// MonthLayout keys the monthly dashboard totals.
	MonthLayout = "2006-01"
	// TimestampLayout is the wire format of created_at.
	TimestampLayout = "2006-01-02 15:04:05"

	// AllCategories is the category value that disables category filtering.
	AllCategories = "all"

	MaxCategoryLength    = 50
	MaxDescriptionLength = 200
)

type (
	Date struct {
		time.Time
	}

	// ExpenseFields are the mutable fields of an expense.
	ExpenseFields struct {
		Amount      float64
		Category    string
		Description string
		Date        Date
	}

	Expense struct {
		ID          int64
		Amount      float64
		Category    string
		Description string
		Date        Date
		CreatedAt   time.Time
	}

	// Filter narrows a scan. Zero fields impose no constraint.
	Filter struct {
		Category string
		From     Date
		To       Date
	}

	// ListQuery carries the raw list parameters as received from a client.
	ListQuery struct {
		Category  string
		StartDate string
		EndDate   string
	}
)

var (
	ErrNotFound = errors.New("expense not found")

	ErrMissingField       = errors.New("missing required field")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidDate        = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidDescription = errors.New("invalid description")
	ErrInvalidPayload     = errors.New("invalid payload")
)

// ValidationError reports a client input problem on a single field.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

const zeroDate = "0001-01-01"

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a strict YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// MonthKey returns the YYYY-MM bucket the date falls into.
func (d Date) MonthKey() string {
	return d.Format(MonthLayout)
}

// Validate rejects the zero date, which marks an unset bound in filters
// and cannot be stored.
func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: %s is not a supported date", ErrInvalidDate, zeroDate)
	}
	return nil
}

func (f ExpenseFields) Validate() error {
	if math.IsNaN(f.Amount) || math.IsInf(f.Amount, 0) {
		return invalid("amount", ErrInvalidAmount)
	}
	category := strings.TrimSpace(f.Category)
	if category == "" {
		return invalid("category", ErrMissingField)
	}
	if len([]rune(f.Category)) > MaxCategoryLength {
		return invalid("category", fmt.Errorf("%w: longer than %d characters", ErrInvalidCategory, MaxCategoryLength))
	}
	if len([]rune(f.Description)) > MaxDescriptionLength {
		return invalid("description", fmt.Errorf("%w: longer than %d characters", ErrInvalidDescription, MaxDescriptionLength))
	}
	if err := f.Date.Validate(); err != nil {
		return invalid("date", err)
	}
	return nil
}

// Fields returns the mutable part of the expense.
func (e Expense) Fields() ExpenseFields {
	return ExpenseFields{
		Amount:      e.Amount,
		Category:    e.Category,
		Description: e.Description,
		Date:        e.Date,
	}
}

// NewFilter builds a Filter from raw list parameters.
func NewFilter(q ListQuery) (Filter, error) {
	var f Filter
	if c := strings.TrimSpace(q.Category); c != "" && c != AllCategories {
		f.Category = q.Category
	}
	if q.StartDate != "" {
		d, err := ParseDate(q.StartDate)
		if err != nil {
			return Filter{}, invalid("start_date", err)
		}
		f.From = d
	}
	if q.EndDate != "" {
		d, err := ParseDate(q.EndDate)
		if err != nil {
			return Filter{}, invalid("end_date", err)
		}
		f.To = d
	}
	return f, nil
}

// HasCategory reports whether the category constraint is active.
func (f Filter) HasCategory() bool {
	return f.Category != "" && f.Category != AllCategories
}

// Matches reports whether e satisfies every active constraint.
func (f Filter) Matches(e Expense) bool {
	if f.HasCategory() && e.Category != f.Category {
		return false
	}
	if !f.From.IsZero() && e.Date.Before(f.From.Time) {
		return false
	}
	if !f.To.IsZero() && e.Date.After(f.To.Time) {
		return false
	}
	return true
}
