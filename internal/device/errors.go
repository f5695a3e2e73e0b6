package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrNotFound) {
//	    // handle not found case
//	}
var (
	// ErrNotFound is returned when a serial number is not registered.
	ErrNotFound = errors.New("device: not found")

	// ErrInvalidSerial is returned when a serial number is empty.
	ErrInvalidSerial = errors.New("device: invalid serial number")
)
