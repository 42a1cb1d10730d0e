package booking

import (
	"testing"
	"time"
)

func mustDay(t *testing.T, value string) Day {
	t.Helper()
	d, err := ParseDay(value)
	if err != nil {
		t.Fatalf("parse day %q: %v", value, err)
	}
	return d
}

func expandDates(occurrences []Occurrence) []string {
	out := make([]string, len(occurrences))
	for i, occ := range occurrences {
		out[i] = occ.Day.String()
	}
	return out
}

func assertDates(t *testing.T, got []Occurrence, want ...string) {
	t.Helper()
	dates := expandDates(got)
	if len(dates) != len(want) {
		t.Fatalf("got %d occurrences %v, want %d %v", len(dates), dates, len(want), want)
	}
	for i := range want {
		if dates[i] != want[i] {
			t.Fatalf("occurrence %d = %s, want %s (full: %v)", i, dates[i], want[i], dates)
		}
	}
}

func TestExpandDaily(t *testing.T) {
	start := Occurrence{Day: mustDay(t, "2026-03-02"), StartMinute: 600, DurationMinutes: 60}

	got := Expand(start, RecurrenceRule{Kind: RecurDaily, Interval: 1, MaxOccurrences: 3})
	assertDates(t, got, "2026-03-02", "2026-03-03", "2026-03-04")

	got = Expand(start, RecurrenceRule{Kind: RecurDaily, Interval: 3, MaxOccurrences: 3})
	assertDates(t, got, "2026-03-02", "2026-03-05", "2026-03-08")

	for _, occ := range got {
		if occ.StartMinute != 600 || occ.DurationMinutes != 60 {
			t.Fatalf("occurrence changed time-of-day: %+v", occ)
		}
	}
}

func TestExpandDailyEndDate(t *testing.T) {
	start := Occurrence{Day: mustDay(t, "2026-03-02"), StartMinute: 600, DurationMinutes: 60}
	rule := RecurrenceRule{Kind: RecurDaily, Interval: 2, EndDate: mustDay(t, "2026-03-06")}

	// 03-08 exceeds the end date and must not be appended; 03-06 is on the
	// end date and stays.
	got := Expand(start, rule)
	assertDates(t, got, "2026-03-02", "2026-03-04", "2026-03-06")
}

func TestExpandWeeklyWithWeekdaySet(t *testing.T) {
	// Scenario: start Monday, weekdays {Mon, Wed}, interval 1, max 4.
	start := Occurrence{Day: mustDay(t, "2026-03-02"), StartMinute: 540, DurationMinutes: 90}
	if start.Day.Weekday() != time.Monday {
		t.Fatal("fixture date is not a Monday")
	}
	rule := RecurrenceRule{
		Kind:           RecurWeekly,
		Interval:       1,
		MaxOccurrences: 4,
		Weekdays:       []time.Weekday{time.Monday, time.Wednesday},
	}

	got := Expand(start, rule)
	assertDates(t, got, "2026-03-02", "2026-03-04", "2026-03-09", "2026-03-11")
}

func TestExpandWeeklyIntervalSkipsWeeks(t *testing.T) {
	start := Occurrence{Day: mustDay(t, "2026-03-02"), StartMinute: 540, DurationMinutes: 60}
	rule := RecurrenceRule{
		Kind:           RecurWeekly,
		Interval:       2,
		MaxOccurrences: 4,
		Weekdays:       []time.Weekday{time.Monday, time.Wednesday},
	}

	// Wednesday of the start week still belongs to the allowed week; the
	// next allowed week is two weeks out.
	got := Expand(start, rule)
	assertDates(t, got, "2026-03-02", "2026-03-04", "2026-03-16", "2026-03-18")
}

func TestExpandWeeklyDefaultsToStartWeekday(t *testing.T) {
	start := Occurrence{Day: mustDay(t, "2026-03-05"), StartMinute: 540, DurationMinutes: 60}
	got := Expand(start, RecurrenceRule{Kind: RecurWeekly, Interval: 2, MaxOccurrences: 3})
	assertDates(t, got, "2026-03-05", "2026-03-19", "2026-04-02")
}

func TestExpandMonthlyClampsShortMonths(t *testing.T) {
	start := Occurrence{Day: mustDay(t, "2026-01-31"), StartMinute: 480, DurationMinutes: 60}
	got := Expand(start, RecurrenceRule{Kind: RecurMonthly, Interval: 1, MaxOccurrences: 4})

	// Day 31 clamps in February and April but snaps back in March: the
	// expansion anchors on the start date, so a short month does not drag
	// the rest of the series down.
	assertDates(t, got, "2026-01-31", "2026-02-28", "2026-03-31", "2026-04-30")
}

func TestExpandMonthlyFixedDay(t *testing.T) {
	start := Occurrence{Day: mustDay(t, "2026-01-15"), StartMinute: 480, DurationMinutes: 60}
	got := Expand(start, RecurrenceRule{Kind: RecurMonthly, Interval: 2, MaxOccurrences: 3, DayOfMonth: 10})
	assertDates(t, got, "2026-01-15", "2026-03-10", "2026-05-10")
}

func TestExpandDefaultCap(t *testing.T) {
	start := Occurrence{Day: mustDay(t, "2026-01-01"), StartMinute: 480, DurationMinutes: 60}
	got := Expand(start, RecurrenceRule{Kind: RecurDaily, Interval: 1})
	if len(got) != DefaultMaxOccurrences {
		t.Fatalf("got %d occurrences, want %d", len(got), DefaultMaxOccurrences)
	}
}

func TestExpandIsDeterministic(t *testing.T) {
	start := Occurrence{Day: mustDay(t, "2026-03-02"), StartMinute: 540, DurationMinutes: 60}
	rule := RecurrenceRule{
		Kind:           RecurWeekly,
		Interval:       1,
		MaxOccurrences: 10,
		Weekdays:       []time.Weekday{time.Monday, time.Friday},
	}

	first := expandDates(Expand(start, rule))
	second := expandDates(Expand(start, rule))
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("expansion differs at %d: %s vs %s", i, first[i], second[i])
		}
	}
}
