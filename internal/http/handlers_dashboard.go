package http

import "net/http"

// handleDashboard reports totals over every stored expense. It is
// recomputed on each request.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.svc.Dashboard(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newDashboardResponse(d))
}
