package iclock

import (
	"strings"

	"github.com/tessara-dev/adms-core/internal/command"
)

// Wire-format constants for the push protocol.
//
// Terminals are sensitive to the exact shape of these strings: the command
// prefix must be "C: " with a space, lines end with CRLF, and the idle reply
// is the bare word OK.
const (
	// ResponseOK is the no-op reply every terminal understands.
	ResponseOK = "OK"

	// commandPrefix marks a command line in a poll response.
	commandPrefix = "C:"

	// optionSentinel starts the body of an option-negotiation push.
	optionSentinel = "GET OPTION FROM:"

	// attendanceMarker appears in bodies carrying attendance records.
	attendanceMarker = "TRANS RECORDS"

	// successToken is the acknowledgment value meaning the command succeeded.
	successToken = "OK"
)

// SerializeCommands renders drained commands into a poll response body.
//
// Each command becomes one "C: <TEXT>\r\n" line. Text is upper-cased and any
// pre-existing "C:" prefix is stripped before re-prefixing, so a command
// stored as "C: REBOOT" and one stored as "REBOOT" serialize identically.
// An empty batch serializes to the OK sentinel.
func SerializeCommands(cmds []command.Command) string {
	if len(cmds) == 0 {
		return ResponseOK
	}

	var b strings.Builder
	for _, c := range cmds {
		text := strings.ToUpper(strings.TrimSpace(c.Text))
		if strings.HasPrefix(text, commandPrefix) {
			text = strings.TrimSpace(text[len(commandPrefix):])
		}
		b.WriteString(commandPrefix)
		b.WriteString(" ")
		b.WriteString(text)
		b.WriteString("\r\n")
	}
	return b.String()
}

// IsOptionRequest reports whether a data-push body is an option negotiation
// rather than record data.
func IsOptionRequest(body string) bool {
	return strings.HasPrefix(body, optionSentinel)
}

// HasAttendance reports whether a data-push body carries attendance records.
func HasAttendance(body string) bool {
	return strings.Contains(body, attendanceMarker)
}

// IsSuccessToken reports whether an acknowledgment response means success.
// The comparison is case-insensitive and whitespace-tolerant.
func IsSuccessToken(response string) bool {
	return strings.EqualFold(strings.TrimSpace(response), successToken)
}
