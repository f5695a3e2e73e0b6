package command

import "time"

// Status is the lifecycle state of a queued command.
//
// Transitions are one-way: queued -> sent -> completed | failed. There is no
// retry and no redelivery; a command the device never acknowledges stays sent
// forever, which is itself diagnostic (the operator can see it was delivered
// but never answered).
type Status string

const (
	// StatusQueued means the command is waiting for the device's next poll.
	StatusQueued Status = "queued"

	// StatusSent means the command was handed to the device on a poll.
	StatusSent Status = "sent"

	// StatusCompleted means the device acknowledged the command with a success token.
	StatusCompleted Status = "completed"

	// StatusFailed means the device acknowledged the command without a success token.
	StatusFailed Status = "failed"
)

// Command is an operator instruction addressed to one terminal.
//
// The text is upper-cased at submission so that queueing, wire serialisation
// and acknowledgment matching all operate on one canonical form.
type Command struct {
	ID         int64      `json:"id"`
	DeviceSN   string     `json:"device_sn"`
	Text       string     `json:"command"`
	Status     Status     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	ExecutedAt *time.Time `json:"executed_at"`
	Response   *string    `json:"response"`
}
