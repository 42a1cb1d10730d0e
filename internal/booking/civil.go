// internal/booking/civil.go
package booking

import (
	"encoding/json"
	"fmt"
	"time"
)

// The engine works on naive wall-clock values: a calendar date plus a
// minute-of-day, with no timezone attached. Stored times mean exactly what
// they say on the venue's wall. Day keeps an internal midnight-UTC time.Time
// purely for calendar arithmetic; it is never compared against real UTC
// instants.

const (
	dayLayout     = "2006-01-02"
	MinutesPerDay = 24 * 60
)

// Day is a calendar date with no timezone.
type Day struct {
	t time.Time
}

func NewDay(year int, month time.Month, day int) Day {
	return Day{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDay parses a date in YYYY-MM-DD form.
func ParseDay(value string) (Day, error) {
	t, err := time.Parse(dayLayout, value)
	if err != nil {
		return Day{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", value)
	}
	return Day{t: t}, nil
}

// DayOf truncates a wall-clock reading to its calendar date.
func DayOf(t time.Time) Day {
	return NewDay(t.Year(), t.Month(), t.Day())
}

func (d Day) String() string { return d.t.Format(dayLayout) }

func (d Day) IsZero() bool { return d.t.IsZero() }

func (d Day) Year() int { return d.t.Year() }

func (d Day) Month() time.Month { return d.t.Month() }

func (d Day) DayOfMonth() int { return d.t.Day() }

func (d Day) Weekday() time.Weekday { return d.t.Weekday() }

func (d Day) Before(other Day) bool { return d.t.Before(other.t) }

func (d Day) After(other Day) bool { return d.t.After(other.t) }

func (d Day) Equal(other Day) bool { return d.t.Equal(other.t) }

func (d Day) AddDays(n int) Day {
	return Day{t: d.t.AddDate(0, 0, n)}
}

// AddMonths advances by n months, landing on dayOfMonth clamped to the
// length of the target month (day 31 in a 30-day month becomes day 30).
func (d Day) AddMonths(n, dayOfMonth int) Day {
	year, month := d.Year(), d.Month()
	total := int(month) - 1 + n
	year += total / 12
	month = time.Month(total%12 + 1)
	if total < 0 {
		// Go's % keeps the sign of the dividend.
		year--
		month += 12
	}
	if max := daysInMonth(year, month); dayOfMonth > max {
		dayOfMonth = max
	}
	return NewDay(year, month, dayOfMonth)
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// At places a minute-of-day on the date, on the naive timeline.
func (d Day) At(minute int) time.Time {
	return d.t.Add(time.Duration(minute) * time.Minute)
}

// MarshalJSON renders the day as "YYYY-MM-DD"; the zero day becomes "".
func (d Day) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return json.Marshal("")
	}
	return json.Marshal(d.String())
}

func (d *Day) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Day{}
		return nil
	}
	parsed, err := ParseDay(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// weekIndex numbers Monday-based weeks so weekly recurrence can tell whether
// two dates fall in the same week region.
func (d Day) weekIndex() int {
	days := int(d.t.Unix() / 86400)
	// 1970-01-01 was a Thursday; shift so Mondays start a new index.
	return floorDiv(days+3, 7)
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// naiveNow strips the location off a clock reading, projecting it onto the
// same tz-free timeline that Day.At produces.
func naiveNow(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

// FormatMinute renders a minute-of-day as HH:MM.
func FormatMinute(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// ParseMinute parses an HH:MM time-of-day into minutes.
func ParseMinute(value string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(value, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", value)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", value)
	}
	return h*60 + m, nil
}
