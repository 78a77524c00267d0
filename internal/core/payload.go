package core

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ExpensePayload is a decoded JSON object describing an expense to add or update.
type ExpensePayload map[string]any

// Fields coerces the payload into validated ExpenseFields.
//
// amount accepts a JSON number or a numeric string. category and date are
// required strings, description is optional and defaults to empty.
func (p ExpensePayload) Fields() (ExpenseFields, error) {
	var f ExpenseFields

	raw, ok := p["amount"]
	if !ok || raw == nil {
		return f, invalid("amount", ErrMissingField)
	}
	amount, err := coerceAmount(raw)
	if err != nil {
		return f, invalid("amount", err)
	}
	f.Amount = amount

	raw, ok = p["category"]
	if !ok || raw == nil {
		return f, invalid("category", ErrMissingField)
	}
	category, ok := raw.(string)
	if !ok {
		return f, invalid("category", fmt.Errorf("%w: must be a string", ErrInvalidCategory))
	}
	f.Category = category

	if raw, ok := p["description"]; ok && raw != nil {
		desc, ok := raw.(string)
		if !ok {
			return f, invalid("description", fmt.Errorf("%w: must be a string", ErrInvalidDescription))
		}
		f.Description = desc
	}

	raw, ok = p["date"]
	if !ok || raw == nil {
		return f, invalid("date", ErrMissingField)
	}
	s, ok := raw.(string)
	if !ok {
		return f, invalid("date", ErrInvalidDate)
	}
	d, err := ParseDate(strings.TrimSpace(s))
	if err != nil {
		return f, invalid("date", err)
	}
	f.Date = d

	if err := f.Validate(); err != nil {
		return ExpenseFields{}, err
	}
	return f, nil
}

func coerceAmount(v any) (float64, error) {
	var (
		f   float64
		err error
	)
	switch val := v.(type) {
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int64:
		f = float64(val)
	case json.Number:
		f, err = val.Float64()
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(val), 64)
	default:
		return 0, fmt.Errorf("%w: not a number", ErrInvalidAmount)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: not a number", ErrInvalidAmount)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: must be finite", ErrInvalidAmount)
	}
	return f, nil
}
