package command

import "errors"

// Domain errors for the command package.
var (
	// ErrNotFound is returned when a command ID does not exist.
	ErrNotFound = errors.New("command: not found")

	// ErrDeviceNotFound is returned when enqueueing for an unregistered serial.
	ErrDeviceNotFound = errors.New("command: device not found")

	// ErrEmptyText is returned when the command text is empty after trimming.
	ErrEmptyText = errors.New("command: empty command text")
)
