package events

import (
	"time"

	"github.com/google/uuid"
)

// Type identifies what happened. Types are dot-separated, lowercase, and
// stable: external consumers key dashboards and alerts on them.
type Type string

// Fleet lifecycle event types.
const (
	// TypeDeviceSeen fires on every device contact (poll, push, ack).
	TypeDeviceSeen Type = "device.seen"

	// TypeDeviceRegistered fires once, on a device's first ever contact.
	TypeDeviceRegistered Type = "device.registered"

	// TypeDeviceRemoved fires when an operator deletes a device.
	TypeDeviceRemoved Type = "device.removed"

	// TypeCommandQueued fires when an operator enqueues a command.
	TypeCommandQueued Type = "command.queued"

	// TypeCommandSent fires when a command is handed to the device on a poll.
	TypeCommandSent Type = "command.sent"

	// TypeCommandCompleted fires when an acknowledgment resolves a command successfully.
	TypeCommandCompleted Type = "command.completed"

	// TypeCommandFailed fires when an acknowledgment resolves a command as failed.
	TypeCommandFailed Type = "command.failed"

	// TypeCorrelationMiss fires when an acknowledgment matches no sent command.
	TypeCorrelationMiss Type = "command.correlation_miss"

	// TypeAttendanceRecorded fires per stored attendance punch.
	TypeAttendanceRecorded Type = "attendance.recorded"

	// TypeAttendanceSkipped fires when a malformed transaction line is dropped.
	TypeAttendanceSkipped Type = "attendance.skipped"
)

// Event is one structured fleet occurrence.
type Event struct {
	ID       string         `json:"id"`
	Type     Type           `json:"type"`
	DeviceSN string         `json:"device_sn,omitempty"`
	At       time.Time      `json:"at"`
	Fields   map[string]any `json:"fields,omitempty"`
}

// New builds an event with a fresh ID and the current time.
func New(typ Type, deviceSN string, fields map[string]any) Event {
	return Event{
		ID:       uuid.NewString(),
		Type:     typ,
		DeviceSN: deviceSN,
		At:       time.Now().UTC(),
		Fields:   fields,
	}
}
