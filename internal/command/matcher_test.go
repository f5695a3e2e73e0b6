package command

import "testing"

func cmds(texts ...string) []Command {
	out := make([]Command, len(texts))
	for i, t := range texts {
		out[i] = Command{ID: int64(len(texts) - i), Text: t}
	}
	return out
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name       string
		ack        string
		candidates []Command
		wantText   string
		wantOK     bool
	}{
		{
			name:       "exact match",
			ack:        "REBOOT",
			candidates: cmds("REBOOT"),
			wantText:   "REBOOT",
			wantOK:     true,
		},
		{
			name:       "exact match wins over recency order",
			ack:        "CHECK",
			candidates: cmds("REBOOT", "CHECK", "RESTART"),
			wantText:   "CHECK",
			wantOK:     true,
		},
		{
			name:       "most recent exact match wins",
			ack:        "REBOOT",
			candidates: cmds("REBOOT", "REBOOT"),
			wantOK:     true,
			wantText:   "REBOOT",
		},
		{
			name:       "case insensitive",
			ack:        "reboot",
			candidates: cmds("REBOOT"),
			wantText:   "REBOOT",
			wantOK:     true,
		},
		{
			name:       "whitespace trimmed",
			ack:        "  REBOOT \r\n",
			candidates: cmds("REBOOT"),
			wantText:   "REBOOT",
			wantOK:     true,
		},
		{
			name:       "ack is substring of candidate",
			ack:        "ATTLOG",
			candidates: cmds("DATA QUERY ATTLOG"),
			wantText:   "DATA QUERY ATTLOG",
			wantOK:     true,
		},
		{
			name:       "candidate is substring of ack",
			ack:        "C: DATA QUERY ATTLOG",
			candidates: cmds("DATA QUERY ATTLOG"),
			wantText:   "DATA QUERY ATTLOG",
			wantOK:     true,
		},
		{
			name:       "exact preferred over earlier loose",
			ack:        "ATTLOG",
			candidates: cmds("DATA QUERY ATTLOG", "ATTLOG"),
			wantText:   "ATTLOG",
			wantOK:     true,
		},
		{
			name:       "no match",
			ack:        "UNLOCK",
			candidates: cmds("REBOOT", "CHECK"),
			wantOK:     false,
		},
		{
			name:       "empty ack never matches",
			ack:        "   ",
			candidates: cmds("REBOOT"),
			wantOK:     false,
		},
		{
			name:       "empty window",
			ack:        "REBOOT",
			candidates: nil,
			wantOK:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Match(tt.ack, tt.candidates)
			if ok != tt.wantOK {
				t.Fatalf("Match() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got.Text != tt.wantText {
				t.Errorf("Match() text = %q, want %q", got.Text, tt.wantText)
			}
		})
	}
}

// The most recent exact duplicate must win so the oldest in-flight copy
// stays sent for the next identical ack.
func TestMatch_DuplicateTextPicksNewest(t *testing.T) {
	candidates := []Command{
		{ID: 9, Text: "REBOOT"}, // newest
		{ID: 3, Text: "REBOOT"},
	}

	got, ok := Match("REBOOT", candidates)
	if !ok {
		t.Fatal("expected a match")
	}
	if got.ID != 9 {
		t.Errorf("matched ID = %d, want 9 (newest)", got.ID)
	}
}
