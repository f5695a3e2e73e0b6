package device

import "time"

// Status is the derived presence of a device.
//
// Status is never persisted. It is computed from last_seen at read time, so a
// terminal that stops polling drifts to offline without any background job.
type Status string

const (
	// StatusOnline means the device contacted the server within the freshness window.
	StatusOnline Status = "online"

	// StatusOffline means the device has been silent longer than the freshness window.
	StatusOffline Status = "offline"
)

// Device represents a terminal known to the server.
//
// A device row is created on first contact and refreshed on every subsequent
// contact. Model and firmware are only reported on data pushes, so they are
// nullable; whatever the device last reported wins.
type Device struct {
	ID              int64     `json:"id"`
	SerialNumber    string    `json:"serial_number"`
	IPAddress       string    `json:"ip_address"`
	Model           *string   `json:"model"`
	FirmwareVersion *string   `json:"firmware_version"`
	LastSeen        time.Time `json:"last_seen"`
	CreatedAt       time.Time `json:"created_at"`
}

// StatusAt derives the device presence at the given instant.
// A device is online iff now minus last_seen is strictly less than the window.
func (d *Device) StatusAt(now time.Time, window time.Duration) Status {
	if now.Sub(d.LastSeen) < window {
		return StatusOnline
	}
	return StatusOffline
}

// RemovalCounts reports the rows deleted by a cascade removal.
type RemovalCounts struct {
	Commands   int64 `json:"commands_deleted"`
	Attendance int64 `json:"attendance_deleted"`
}
