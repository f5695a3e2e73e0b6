package attendance

import "time"

// Record is one attendance punch reported by a terminal.
//
// Timestamp is stored exactly as the device sent it. Terminals disagree about
// formats and clock sanity, so the server treats it as opaque text and keeps
// its own created_at for ordering.
type Record struct {
	ID         int64     `json:"id"`
	DeviceSN   string    `json:"device_sn"`
	UserID     string    `json:"user_id"`
	Timestamp  string    `json:"timestamp"`
	VerifyMode int       `json:"verify_mode"`
	Status     int       `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}
