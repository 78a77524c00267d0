package http

import (
	"net/http"

	applog "expensetracker/internal/log"
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.svc.List(r.Context(), ParseListQuery(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newExpenseListResponse(expenses))
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	payload, err := DecodePayload(w, r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	e, err := s.svc.Add(r.Context(), payload)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	applog.FromContext(r.Context()).DebugContext(r.Context(), "Expense added via API",
		applog.NewFields().WithExpense(e.ID, e.Category, e.Amount).WithOperation(applog.OpCreate).ToSlice()...)

	writeJSON(w, r, http.StatusCreated, newExpenseResponse(e))
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := parseExpenseID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	e, err := s.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newExpenseResponse(e))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := parseExpenseID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	payload, decodeErr := DecodePayload(w, r)
	if decodeErr != nil {
		// An unknown id wins over a bad body.
		if _, err := s.svc.Get(r.Context(), id); err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeServiceError(w, r, decodeErr)
		return
	}

	e, err := s.svc.Update(r.Context(), id, payload)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newExpenseResponse(e))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := parseExpenseID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := s.svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
