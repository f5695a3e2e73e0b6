package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tessara-dev/adms-core/internal/command"
	"github.com/tessara-dev/adms-core/internal/device"
	"github.com/tessara-dev/adms-core/internal/events"
)

// deviceView is a Device with its derived presence attached. Status is
// computed per response from last_seen; nothing in storage holds it.
type deviceView struct {
	device.Device
	Status device.Status `json:"status"`
}

func (s *Server) viewOf(d device.Device, now time.Time) deviceView {
	return deviceView{
		Device: d,
		Status: d.StatusAt(now, s.cfg.FreshnessWindow()),
	}
}

// handleListDevices returns all known devices with derived status.
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.devices.List(r.Context())
	if err != nil {
		s.logger.Error("listing devices", "error", err)
		writeInternalError(w, "failed to list devices")
		return
	}

	now := time.Now().UTC()
	views := make([]deviceView, 0, len(devices))
	for _, d := range devices {
		views = append(views, s.viewOf(d, now))
	}

	writeJSON(w, http.StatusOK, map[string]any{"devices": views, "count": len(views)})
}

// handleGetDevice returns a single device by serial number.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	sn := chi.URLParam(r, "sn")

	dev, err := s.devices.GetBySN(r.Context(), sn)
	if err != nil {
		if errors.Is(err, device.ErrNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		s.logger.Error("getting device", "device_sn", sn, "error", err)
		writeInternalError(w, "failed to get device")
		return
	}

	writeJSON(w, http.StatusOK, s.viewOf(*dev, time.Now().UTC()))
}

// handleRemoveDevice deletes a device and everything attached to it.
func (s *Server) handleRemoveDevice(w http.ResponseWriter, r *http.Request) {
	sn := chi.URLParam(r, "sn")

	counts, err := s.devices.Remove(r.Context(), sn)
	if err != nil {
		if errors.Is(err, device.ErrNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		s.logger.Error("removing device", "device_sn", sn, "error", err)
		writeInternalError(w, "failed to remove device")
		return
	}

	s.sink.Emit(r.Context(), events.New(events.TypeDeviceRemoved, sn, map[string]any{
		"commands_deleted":   counts.Commands,
		"attendance_deleted": counts.Attendance,
	}))

	writeJSON(w, http.StatusOK, map[string]any{
		"serial_number":      sn,
		"commands_deleted":   counts.Commands,
		"attendance_deleted": counts.Attendance,
	})
}

// enqueueCommandRequest is the body for POST /devices/{sn}/commands.
type enqueueCommandRequest struct {
	Command string `json:"command"`
}

// handleEnqueueCommand queues a command for a device's next poll.
func (s *Server) handleEnqueueCommand(w http.ResponseWriter, r *http.Request) {
	sn := chi.URLParam(r, "sn")

	var req enqueueCommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	cmd, err := s.commands.Enqueue(r.Context(), sn, req.Command)
	if err != nil {
		switch {
		case errors.Is(err, command.ErrEmptyText):
			writeBadRequest(w, "command text is required")
		case errors.Is(err, command.ErrDeviceNotFound):
			writeNotFound(w, "device not found")
		default:
			s.logger.Error("enqueueing command", "device_sn", sn, "error", err)
			writeInternalError(w, "failed to enqueue command")
		}
		return
	}

	s.sink.Emit(r.Context(), events.New(events.TypeCommandQueued, sn, map[string]any{
		"command_id": cmd.ID,
		"command":    cmd.Text,
	}))

	writeJSON(w, http.StatusCreated, cmd)
}
