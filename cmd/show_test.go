package cmd

import (
	"testing"

	"github.com/Tiliavir/daymark/internal/ledger"
)

func TestCsvEscape(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain", "plain"},
		{"with space", "with space"},
		{"with,comma", `"with,comma"`},
		{`with"quote`, `"with""quote"`},
		{"with\nnewline", "\"with\nnewline\""},
		{"with\rreturn", "\"with\rreturn\""},
		{"", ""},
	}
	for _, tt := range tests {
		got := csvEscape(tt.input)
		if got != tt.want {
			t.Errorf("csvEscape(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestDurationLabel(t *testing.T) {
	tests := []struct {
		d    ledger.EventDuration
		want string
	}{
		{ledger.EventDuration{}, "-"},
		{ledger.EventDuration{Timed: true}, "time error"},
		{ledger.EventDuration{Timed: true, Minutes: -15}, "time error"},
		{ledger.EventDuration{Timed: true, Valid: true, Minutes: 45}, "45 min"},
	}
	for _, tt := range tests {
		if got := durationLabel(tt.d); got != tt.want {
			t.Errorf("durationLabel(%+v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
