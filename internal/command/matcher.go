package command

import "strings"

// Match correlates a device acknowledgment back to one of the recently sent
// commands. The protocol carries no reliable command ID, so correlation is
// heuristic, over the text the device echoes back.
//
// Candidates must be ordered newest first (as returned by RecentSent). The
// match is deterministic:
//
//  1. Exact match: the normalised ack equals a candidate's normalised text.
//     The first (most recent) exact match wins, even if an older candidate
//     would also match exactly.
//  2. Loose match: only if no candidate matched exactly, the first candidate
//     whose text contains the ack, or whose text is contained in the ack,
//     wins. Devices often echo a truncated or decorated form of the command.
//
// Both sides are normalised by trimming whitespace and upper-casing. An empty
// ack never matches; a substring pass against "" would match everything.
func Match(ack string, candidates []Command) (*Command, bool) {
	norm := normalize(ack)
	if norm == "" {
		return nil, false
	}

	for i := range candidates {
		if normalize(candidates[i].Text) == norm {
			return &candidates[i], true
		}
	}

	for i := range candidates {
		text := normalize(candidates[i].Text)
		if strings.Contains(text, norm) || strings.Contains(norm, text) {
			return &candidates[i], true
		}
	}

	return nil, false
}

// normalize canonicalises command text for comparison.
func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
