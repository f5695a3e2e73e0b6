package api

import (
	"net/http"
)

// handleListCommands returns commands, optionally filtered by device.
//
// Query parameters:
//   - device_sn: restrict to one device
func (s *Server) handleListCommands(w http.ResponseWriter, r *http.Request) {
	cmds, err := s.commands.List(r.Context(), r.URL.Query().Get("device_sn"))
	if err != nil {
		s.logger.Error("listing commands", "error", err)
		writeInternalError(w, "failed to list commands")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"commands": cmds, "count": len(cmds)})
}

// handleClearQueued discards all commands still waiting for a poll.
// Commands already sent are untouched; the device may yet acknowledge them.
func (s *Server) handleClearQueued(w http.ResponseWriter, r *http.Request) {
	count, err := s.commands.ClearQueued(r.Context())
	if err != nil {
		s.logger.Error("clearing queued commands", "error", err)
		writeInternalError(w, "failed to clear queued commands")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"deleted": count})
}
