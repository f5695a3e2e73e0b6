package api

import (
	"net/http"
	"strconv"
)

// handleListAttendance returns recent attendance records, newest first.
//
// Query parameters:
//   - limit: maximum records to return (default 100, capped)
func (s *Server) handleListAttendance(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeBadRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	records, err := s.attendance.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("listing attendance", "error", err)
		writeInternalError(w, "failed to list attendance")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"records": records, "count": len(records)})
}

// handleClearAttendance deletes all stored attendance records.
func (s *Server) handleClearAttendance(w http.ResponseWriter, r *http.Request) {
	count, err := s.attendance.Clear(r.Context())
	if err != nil {
		s.logger.Error("clearing attendance", "error", err)
		writeInternalError(w, "failed to clear attendance")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"deleted": count})
}
