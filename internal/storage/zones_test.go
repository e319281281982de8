package storage

import (
	"math"
	"testing"
)

// TestFillZonePcts verifies band shares add up and an empty breakdown stays zero.
func TestFillZonePcts(t *testing.T) {
	zones := []ZoneBand{{Zone: "hard", Beats: 1}, {Zone: "light", Beats: 3}}
	if total := fillZonePcts(zones); total != 4 {
		t.Fatalf("total = %d, want 4", total)
	}
	if zones[0].Pct != 25 || zones[1].Pct != 75 {
		t.Errorf("pcts = %v, %v", zones[0].Pct, zones[1].Pct)
	}

	if total := fillZonePcts(nil); total != 0 {
		t.Errorf("empty total = %d", total)
	}
	none := []ZoneBand{{Zone: "rest"}}
	fillZonePcts(none)
	if math.IsNaN(none[0].Pct) || none[0].Pct != 0 {
		t.Errorf("zero-beat pct = %v", none[0].Pct)
	}
}

// TestTruncUnit covers accepted bucket spellings and the daily default.
func TestTruncUnit(t *testing.T) {
	tests := []struct{ in, want string }{
		{"day", "day"},
		{"week", "week"},
		{"1 week", "week"},
		{"month", "month"},
		{"1 month", "month"},
		{"", "day"},
		{"fortnight", "day"},
	}
	for _, tt := range tests {
		if got := truncUnit(tt.in); got != tt.want {
			t.Errorf("truncUnit(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
