package booking

import (
	"testing"
	"time"
)

func TestParseDay(t *testing.T) {
	d, err := ParseDay("2026-03-15")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.Year() != 2026 || d.Month() != time.March || d.DayOfMonth() != 15 {
		t.Fatalf("got %s", d)
	}
	if d.String() != "2026-03-15" {
		t.Fatalf("round trip: %s", d)
	}

	if _, err := ParseDay("15/03/2026"); err == nil {
		t.Fatal("expected error for non-ISO date")
	}
}

func TestAddMonthsClamping(t *testing.T) {
	tests := []struct {
		name       string
		start      string
		months     int
		dayOfMonth int
		want       string
	}{
		{"plain month step", "2026-01-10", 1, 10, "2026-02-10"},
		{"day 31 into 30-day month", "2026-03-31", 1, 31, "2026-04-30"},
		{"day 31 into february", "2026-01-31", 1, 31, "2026-02-28"},
		{"day 29 into leap february", "2028-01-29", 1, 29, "2028-02-29"},
		{"year rollover", "2026-11-15", 3, 15, "2027-02-15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, err := ParseDay(tt.start)
			if err != nil {
				t.Fatalf("parse start: %v", err)
			}
			got := start.AddMonths(tt.months, tt.dayOfMonth)
			if got.String() != tt.want {
				t.Errorf("AddMonths(%d, %d) = %s, want %s", tt.months, tt.dayOfMonth, got, tt.want)
			}
		})
	}
}

func TestFormatMinute(t *testing.T) {
	tests := []struct {
		minute int
		want   string
	}{
		{0, "00:00"},
		{480, "08:00"},
		{869, "14:29"},
		{1439, "23:59"},
	}
	for _, tt := range tests {
		if got := FormatMinute(tt.minute); got != tt.want {
			t.Errorf("FormatMinute(%d) = %s, want %s", tt.minute, got, tt.want)
		}
	}
}

func TestParseMinute(t *testing.T) {
	if m, err := ParseMinute("14:30"); err != nil || m != 870 {
		t.Fatalf("ParseMinute(14:30) = %d, %v", m, err)
	}
	for _, bad := range []string{"24:00", "12:60", "noon", ""} {
		if _, err := ParseMinute(bad); err == nil {
			t.Errorf("ParseMinute(%q): expected error", bad)
		}
	}
}

func TestWeekIndexMondayBoundary(t *testing.T) {
	sunday, _ := ParseDay("2026-03-15")
	monday, _ := ParseDay("2026-03-16")
	if sunday.Weekday() != time.Sunday || monday.Weekday() != time.Monday {
		t.Fatal("fixture dates moved")
	}
	if sunday.weekIndex()+1 != monday.weekIndex() {
		t.Fatalf("week index did not advance across Sunday/Monday: %d vs %d",
			sunday.weekIndex(), monday.weekIndex())
	}
}
