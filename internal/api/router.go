package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// Device-facing push endpoints. Terminals use GET and POST
	// interchangeably depending on firmware, so both are routed.
	r.Route("/iclock", func(r chi.Router) {
		r.Get("/getrequest", s.handleGetRequest)
		r.Get("/cdata", s.handleCData)
		r.Post("/cdata", s.handleCData)
		r.Get("/devicecmd", s.handleDeviceCmd)
		r.Post("/devicecmd", s.handleDeviceCmd)
		r.Post("/fdata", s.handleFData)
	})

	// Operator API
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/devices", func(r chi.Router) {
			r.Get("/", s.handleListDevices)

			r.Route("/{sn}", func(r chi.Router) {
				r.Get("/", s.handleGetDevice)
				r.Delete("/", s.handleRemoveDevice)
				r.Post("/commands", s.handleEnqueueCommand)
			})
		})

		r.Route("/commands", func(r chi.Router) {
			r.Get("/", s.handleListCommands)
			r.Delete("/queued", s.handleClearQueued)
		})

		r.Route("/attendance", func(r chi.Router) {
			r.Get("/", s.handleListAttendance)
			r.Delete("/", s.handleClearAttendance)
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	mqttConnected := false
	if s.mqtt != nil {
		mqttConnected = s.mqtt.IsConnected()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"mqtt":    mqttConnected,
	})
}
