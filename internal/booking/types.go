// internal/booking/types.go
package booking

import (
	"fmt"
	"time"
)

// Venue is a physical establishment containing courts. Only active
// subscriber venues are bookable by regular members.
type Venue struct {
	ID         int64
	Name       string
	Active     bool
	Subscriber bool
}

// Court is a bookable resource belonging to a venue.
type Court struct {
	ID      int64
	VenueID int64
	Name    string
	Type    string
	Active  bool
}

// PriceTableEntry maps a half-open [StartMinute, EndMinute) window of the
// day to an hourly rate. A nil rate means the window exists but has no
// usable price.
type PriceTableEntry struct {
	ID              int64
	CourtID         int64
	Active          bool
	StartMinute     int
	EndMinute       int
	HourlyRateCents *int64
}

// Contains reports whether the entry's window covers the minute.
func (e PriceTableEntry) Contains(minute int) bool {
	return minute >= e.StartMinute && minute < e.EndMinute
}

// BlackoutBlock marks a period during which some or all courts of a venue
// cannot be booked. A nil CourtIDs list means the whole venue; nil minute
// bounds mean the whole day is blocked for every covered date.
type BlackoutBlock struct {
	ID          int64
	VenueID     int64
	Title       string
	CourtIDs    []int64
	DateStart   Day
	DateEnd     Day
	MinuteStart *int
	MinuteEnd   *int
}

// CoversDay reports whether the block's inclusive date range contains day.
func (b BlackoutBlock) CoversDay(day Day) bool {
	return !day.Before(b.DateStart) && !day.After(b.DateEnd)
}

// AppliesTo reports whether the block's scope includes the court.
func (b BlackoutBlock) AppliesTo(courtID int64) bool {
	if b.CourtIDs == nil {
		return true
	}
	for _, id := range b.CourtIDs {
		if id == courtID {
			return true
		}
	}
	return false
}

// BlocksWholeDay reports whether the block has no minute bounds.
func (b BlackoutBlock) BlocksWholeDay() bool {
	return b.MinuteStart == nil || b.MinuteEnd == nil
}

// Status is the booking lifecycle state. Transitions are one-directional:
// CONFIRMED may become CANCELLED or COMPLETED, and both of those are
// terminal.
type Status string

const (
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

func (s Status) CanTransitionTo(to Status) bool {
	return s == StatusConfirmed && (to == StatusCancelled || to == StatusCompleted)
}

// AssigneeKind tags who a booking is held for.
type AssigneeKind string

const (
	AssigneeUser    AssigneeKind = "user"    // a registered platform user
	AssigneeAthlete AssigneeKind = "athlete" // a linked athlete profile
	AssigneeGuest   AssigneeKind = "guest"   // walk-in, identified by name and phone
)

// Assignee is a tagged union: exactly one kind's fields are set.
type Assignee struct {
	Kind       AssigneeKind
	UserID     int64
	AthleteID  int64
	GuestName  string
	GuestPhone string
}

func ForUser(userID int64) Assignee {
	return Assignee{Kind: AssigneeUser, UserID: userID}
}

func ForAthlete(athleteID int64) Assignee {
	return Assignee{Kind: AssigneeAthlete, AthleteID: athleteID}
}

func ForGuest(name, phone string) Assignee {
	return Assignee{Kind: AssigneeGuest, GuestName: name, GuestPhone: phone}
}

// Validate enforces the exactly-one-kind invariant.
func (a Assignee) Validate() error {
	switch a.Kind {
	case AssigneeUser:
		if a.UserID <= 0 {
			return ValidationError{Field: "assignee.user_id", Reason: "is required"}
		}
		if a.AthleteID != 0 || a.GuestName != "" || a.GuestPhone != "" {
			return ValidationError{Field: "assignee", Reason: "must set exactly one kind"}
		}
	case AssigneeAthlete:
		if a.AthleteID <= 0 {
			return ValidationError{Field: "assignee.athlete_id", Reason: "is required"}
		}
		if a.UserID != 0 || a.GuestName != "" || a.GuestPhone != "" {
			return ValidationError{Field: "assignee", Reason: "must set exactly one kind"}
		}
	case AssigneeGuest:
		if a.GuestName == "" {
			return ValidationError{Field: "assignee.guest_name", Reason: "is required"}
		}
		if a.GuestPhone == "" {
			return ValidationError{Field: "assignee.guest_phone", Reason: "is required"}
		}
		if a.UserID != 0 || a.AthleteID != 0 {
			return ValidationError{Field: "assignee", Reason: "must set exactly one kind"}
		}
	default:
		return ValidationError{Field: "assignee.kind", Reason: "must be user, athlete or guest"}
	}
	return nil
}

// Athlete is a participant profile resolvable by phone number.
type Athlete struct {
	ID    int64
	Name  string
	Phone string
}

// RecurrenceKind selects the calendar step of a recurrence rule.
type RecurrenceKind string

const (
	RecurDaily   RecurrenceKind = "DAILY"
	RecurWeekly  RecurrenceKind = "WEEKLY"
	RecurMonthly RecurrenceKind = "MONTHLY"
)

// DefaultMaxOccurrences caps expansion when a rule sets no end condition.
const DefaultMaxOccurrences = 365

// RecurrenceRule describes how a recurring request repeats.
type RecurrenceRule struct {
	Kind           RecurrenceKind `json:"kind"`
	Interval       int            `json:"interval"`
	MaxOccurrences int            `json:"maxOccurrences,omitempty"`
	EndDate        Day            `json:"endDate"`
	// Weekdays restricts WEEKLY rules to specific days. Empty defaults to
	// the weekday of the start date.
	Weekdays []time.Weekday `json:"weekdays,omitempty"`
	// DayOfMonth pins MONTHLY rules to a fixed day, clamped to shorter
	// months. Zero defaults to the day-of-month of the start date.
	DayOfMonth int `json:"dayOfMonth,omitempty"`
}

// Validate checks the rule's shape before expansion.
func (r RecurrenceRule) Validate() error {
	switch r.Kind {
	case RecurDaily, RecurWeekly, RecurMonthly:
	default:
		return ValidationError{Field: "recurrence.kind", Reason: "must be DAILY, WEEKLY or MONTHLY"}
	}
	if r.Interval < 0 {
		return ValidationError{Field: "recurrence.interval", Reason: "must be 1 or greater"}
	}
	if r.MaxOccurrences < 0 {
		return ValidationError{Field: "recurrence.max_occurrences", Reason: "must be 1 or greater"}
	}
	for _, wd := range r.Weekdays {
		if wd < time.Sunday || wd > time.Saturday {
			return ValidationError{Field: "recurrence.weekdays", Reason: "contains an invalid weekday"}
		}
	}
	if r.DayOfMonth < 0 || r.DayOfMonth > 31 {
		return ValidationError{Field: "recurrence.day_of_month", Reason: "must be between 1 and 31"}
	}
	return nil
}

// normalized fills rule defaults relative to the start date.
func (r RecurrenceRule) normalized(start Day) RecurrenceRule {
	out := r
	if out.Interval < 1 {
		out.Interval = 1
	}
	if out.MaxOccurrences < 1 {
		out.MaxOccurrences = DefaultMaxOccurrences
	}
	if out.Kind == RecurWeekly && len(out.Weekdays) == 0 {
		out.Weekdays = []time.Weekday{start.Weekday()}
	}
	if out.Kind == RecurMonthly && out.DayOfMonth == 0 {
		out.DayOfMonth = start.DayOfMonth()
	}
	return out
}

// Booking is a reservation of one court for one interval. Bookings are
// created and mutated only through the Manager and never deleted;
// cancellation is a status transition.
type Booking struct {
	ID              int64
	CourtID         int64
	Day             Day
	StartMinute     int
	DurationMinutes int
	Status          Status
	Assignee        Assignee
	ParticipantIDs  []int64
	// Price snapshot taken at booking time; never recomputed when the
	// price table changes later.
	HourlyRateCents      *int64
	TotalCents           *int64
	NegotiatedTotalCents *int64
	Notes                string
	RecurrenceGroupID    string
	RecurrenceRule       *RecurrenceRule
}

func (b Booking) EndMinute() int {
	return b.StartMinute + b.DurationMinutes
}

// TimeRange renders the booking interval as HH:MM–HH:MM.
func (b Booking) TimeRange() string {
	return fmt.Sprintf("%s–%s", FormatMinute(b.StartMinute), FormatMinute(b.EndMinute()))
}

// BillableCents returns the amount to charge. A negotiated override always
// wins over the computed total. The bool is false when no price is known.
func (b Booking) BillableCents() (int64, bool) {
	if b.NegotiatedTotalCents != nil {
		return *b.NegotiatedTotalCents, true
	}
	if b.TotalCents != nil {
		return *b.TotalCents, true
	}
	return 0, false
}
