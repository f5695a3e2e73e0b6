package attendance

import (
	"fmt"
	"strconv"
	"strings"
)

// transTag marks a transaction line in a device data push.
const transTag = "TRANS"

// minFields is the minimum tab-separated field count of a transaction line:
// tag, user_id, timestamp, verify_mode, status. Devices may append more
// fields (work code, reserved); extras are ignored.
const minFields = 5

// parsed is an attendance punch extracted from one payload line,
// before it is bound to a device and persisted.
type parsed struct {
	UserID     string
	Timestamp  string
	VerifyMode int
	Status     int
}

// parsePayload extracts attendance punches from a raw device payload.
//
// Lines that do not start with the TRANS tag (headers, blanks, other record
// types) are ignored. Lines that carry the tag but cannot be parsed count as
// skipped; parsing never fails the whole payload.
func parsePayload(body string) (records []parsed, skipped int) {
	for _, line := range strings.Split(body, "\n") {
		if !strings.HasPrefix(line, transTag) {
			continue
		}
		rec, err := parseLine(line)
		if err != nil {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	return records, skipped
}

// parseLine parses a single TRANS-tagged line.
func parseLine(line string) (parsed, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < minFields {
		return parsed{}, fmt.Errorf("%w: %d fields", ErrBadLine, len(fields))
	}

	verifyMode, err := strconv.Atoi(strings.TrimSpace(fields[3]))
	if err != nil {
		return parsed{}, fmt.Errorf("%w: verify_mode %q", ErrBadLine, fields[3])
	}

	status, err := strconv.Atoi(strings.TrimSpace(fields[4]))
	if err != nil {
		return parsed{}, fmt.Errorf("%w: status %q", ErrBadLine, fields[4])
	}

	return parsed{
		UserID:     strings.TrimSpace(fields[1]),
		Timestamp:  strings.TrimSpace(fields[2]),
		VerifyMode: verifyMode,
		Status:     status,
	}, nil
}
