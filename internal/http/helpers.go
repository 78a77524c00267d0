package http

import (
	"errors"
	"net/http"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	if err := NewJSONResponse().Status(status).Body(v).Write(w); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message, field string) {
	writeJSON(w, r, status, errorResponse{Error: message, Field: field})
}

// writeServiceError maps service errors to HTTP responses. Validation
// problems are the client's fault, a missing record is 404, anything else
// is logged and reported as a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *core.ValidationError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &ve):
		writeError(w, r, http.StatusBadRequest, ve.Error(), ve.Field)
	case errors.Is(err, core.ErrNotFound):
		writeError(w, r, http.StatusNotFound, core.ErrNotFound.Error(), "")
	case errors.As(err, &tooLarge):
		writeError(w, r, http.StatusRequestEntityTooLarge, "request body too large", "")
	default:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			applog.NewFields().WithError(err).WithHTTPRequest(r.Method, r.URL.Path, "", "", "").ToSlice()...)
		writeError(w, r, http.StatusInternalServerError, "internal server error", "")
	}
}
