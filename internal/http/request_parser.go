package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"expensetracker/internal/core"
)

const maxBodyBytes = 1 << 20

// ParseListQuery extracts the list filters from the query string. Values
// are validated by the service.
func ParseListQuery(r *http.Request) core.ListQuery {
	q := r.URL.Query()
	return core.ListQuery{
		Category:  q.Get("category"),
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
	}
}

// parseExpenseID reads the {id} path segment. Anything that is not an
// integer cannot name an expense and is reported as not found.
func parseExpenseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, core.ErrNotFound
	}
	return id, nil
}

// DecodePayload reads a single JSON object from the request body. Numbers
// are kept as json.Number so amounts are coerced in one place.
func DecodePayload(w http.ResponseWriter, r *http.Request) (core.ExpensePayload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, &core.ValidationError{Err: fmt.Errorf("%w: malformed JSON", core.ErrInvalidPayload)}
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, &core.ValidationError{Err: fmt.Errorf("%w: body must be a JSON object", core.ErrInvalidPayload)}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, &core.ValidationError{Err: fmt.Errorf("%w: unexpected data after JSON object", core.ErrInvalidPayload)}
	}
	return core.ExpensePayload(obj), nil
}
