package attendance

import "errors"

// ErrBadLine is returned when a transaction line cannot be parsed.
// Callers skip the line and continue; one malformed record never fails a batch.
var ErrBadLine = errors.New("attendance: malformed transaction line")
