// internal/booking/recurrence.go
package booking

import "time"

// Occurrence is one candidate instant of a (possibly recurring) request.
// Every occurrence of a series keeps the original time-of-day and
// duration; only the date moves.
type Occurrence struct {
	Day             Day
	StartMinute     int
	DurationMinutes int
}

// Expand materializes the occurrence sequence for a rule, eagerly and in
// order. The start is always occurrence 1. Expansion stops when the rule's
// occurrence cap is reached or the next candidate date passes the rule's
// end date.
func Expand(start Occurrence, rule RecurrenceRule) []Occurrence {
	rule = rule.normalized(start.Day)

	out := make([]Occurrence, 0, rule.MaxOccurrences)
	out = append(out, start)

	withDay := func(d Day) Occurrence {
		return Occurrence{Day: d, StartMinute: start.StartMinute, DurationMinutes: start.DurationMinutes}
	}
	pastEnd := func(d Day) bool {
		return !rule.EndDate.IsZero() && d.After(rule.EndDate)
	}

	switch rule.Kind {
	case RecurDaily:
		d := start.Day
		for len(out) < rule.MaxOccurrences {
			d = d.AddDays(rule.Interval)
			if pastEnd(d) {
				break
			}
			out = append(out, withDay(d))
		}

	case RecurWeekly:
		if len(rule.Weekdays) == 1 && rule.Weekdays[0] == start.Day.Weekday() {
			// Single weekday matching the start: plain week jumps.
			d := start.Day
			for len(out) < rule.MaxOccurrences {
				d = d.AddDays(7 * rule.Interval)
				if pastEnd(d) {
					break
				}
				out = append(out, withDay(d))
			}
			break
		}
		allowed := make(map[time.Weekday]bool, len(rule.Weekdays))
		for _, wd := range rule.Weekdays {
			allowed[wd] = true
		}
		// Walk day by day keeping allowed weekdays inside allowed weeks.
		// Skipped weekdays never consume an interval step; only whole
		// Monday-based weeks count toward the interval.
		baseWeek := start.Day.weekIndex()
		d := start.Day
		for len(out) < rule.MaxOccurrences {
			d = d.AddDays(1)
			if pastEnd(d) {
				break
			}
			if !allowed[d.Weekday()] {
				continue
			}
			if (d.weekIndex()-baseWeek)%rule.Interval != 0 {
				continue
			}
			out = append(out, withDay(d))
		}

	case RecurMonthly:
		months := 0
		for len(out) < rule.MaxOccurrences {
			months += rule.Interval
			// Anchor on the start date so a clamped short month does not
			// drag later occurrences off the configured day.
			d := start.Day.AddMonths(months, rule.DayOfMonth)
			if pastEnd(d) {
				break
			}
			out = append(out, withDay(d))
		}
	}

	return out
}
