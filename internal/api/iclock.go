package api

import (
	"io"
	"net"
	"net/http"

	"github.com/tessara-dev/adms-core/internal/iclock"
)

// The /iclock handlers speak the terminals' plain-text dialect. Requests
// missing a serial number are rejected before any state changes; everything
// else goes through the protocol session, which absorbs internal failures so
// the device always gets a body it can parse.

// handleGetRequest serves the command poll.
func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	sn := r.URL.Query().Get("SN")
	if sn == "" {
		writePlainText(w, http.StatusBadRequest, "ERROR: SN is required")
		return
	}

	body := s.session.Poll(r.Context(), sn, remoteAddr(r))
	writePlainText(w, http.StatusOK, body)
}

// handleCData serves data pushes: option negotiation, attendance records and
// plain keep-alive pings all arrive here.
func (s *Server) handleCData(w http.ResponseWriter, r *http.Request) {
	sn := r.URL.Query().Get("SN")
	if sn == "" {
		writePlainText(w, http.StatusBadRequest, "ERROR: SN is required")
		return
	}

	model := optionalQuery(r, "model")
	firmware := optionalQuery(r, "pushver")

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		s.logger.Warn("reading push body", "device_sn", sn, "error", err)
		writePlainText(w, http.StatusOK, iclock.ResponseOK)
		return
	}

	body := s.session.PushData(r.Context(), sn, remoteAddr(r), model, firmware, string(payload))
	writePlainText(w, http.StatusOK, body)
}

// handleDeviceCmd serves command acknowledgments.
func (s *Server) handleDeviceCmd(w http.ResponseWriter, r *http.Request) {
	sn := r.URL.Query().Get("SN")
	if sn == "" {
		writePlainText(w, http.StatusBadRequest, "ERROR: SN is required")
		return
	}

	q := r.URL.Query()
	body := s.session.Acknowledge(r.Context(), sn, remoteAddr(r),
		q.Get("CMD"), q.Get("Response"), q.Get("CMDID"))
	writePlainText(w, http.StatusOK, body)
}

// handleFData serves fingerprint and face template pushes. The payload is
// drained and discarded; only the contact matters.
func (s *Server) handleFData(w http.ResponseWriter, r *http.Request) {
	sn := r.URL.Query().Get("SN")
	if sn == "" {
		writePlainText(w, http.StatusBadRequest, "ERROR: SN is required")
		return
	}

	//nolint:errcheck // Template payloads are intentionally discarded
	io.Copy(io.Discard, r.Body)

	body := s.session.PushTemplate(r.Context(), sn, remoteAddr(r))
	writePlainText(w, http.StatusOK, body)
}

// writePlainText writes a device-facing plain-text response. Cache-Control
// matters: some terminals sit behind caching proxies that would otherwise
// replay a stale command batch.
func writePlainText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	//nolint:errcheck // Best-effort write to response; connection may be closed
	w.Write([]byte(body))
}

// optionalQuery returns a pointer to the query value, or nil when absent.
// Absent values null the stored column, so last-report-wins holds.
func optionalQuery(r *http.Request, key string) *string {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil
	}
	return &v
}

// remoteAddr extracts the client IP without the ephemeral port.
func remoteAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
