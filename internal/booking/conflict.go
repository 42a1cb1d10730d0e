// internal/booking/conflict.go
package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

// ConflictResult is the outcome of an availability check. A zero value
// means available.
type ConflictResult struct {
	Blocked bool
	Reason  string
}

func available() ConflictResult {
	return ConflictResult{}
}

func blocked(format string, args ...any) ConflictResult {
	return ConflictResult{Blocked: true, Reason: fmt.Sprintf(format, args...)}
}

// Overlaps applies the half-open interval test: [aStart, aEnd) and
// [bStart, bEnd) conflict iff aStart < bEnd and aEnd > bStart. An interval
// ending exactly when another starts is never a conflict.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}

// ConflictChecker decides whether a candidate slot on a court is free.
type ConflictChecker struct {
	store Store
	clock clockwork.Clock
}

func NewConflictChecker(store Store, clock clockwork.Clock) *ConflictChecker {
	return &ConflictChecker{store: store, clock: clock}
}

// Check fetches the court's calendar for the day and evaluates the
// candidate slot. excludeBookingID skips one existing booking, used when
// rescheduling so a booking does not conflict with itself; pass 0 to skip
// nothing.
func (c *ConflictChecker) Check(ctx context.Context, courtID int64, day Day, startMinute, durationMinutes int, excludeBookingID int64) (ConflictResult, error) {
	court, err := c.store.CourtByID(ctx, courtID)
	if err != nil {
		return ConflictResult{}, err
	}
	blocks, err := c.store.ListBlocksForDay(ctx, court.VenueID, day)
	if err != nil {
		return ConflictResult{}, fmt.Errorf("list blackout blocks: %w", err)
	}
	existing, err := c.store.ListBookingsForDay(ctx, courtID, day)
	if err != nil {
		return ConflictResult{}, fmt.Errorf("list bookings: %w", err)
	}
	return CheckSlot(c.clock.Now(), courtID, day, startMinute, durationMinutes, blocks, existing, excludeBookingID), nil
}

// CheckSlot is the pure availability predicate over already-fetched data.
// Rules apply in order and the first match wins: past-time, blackout
// blocks, then confirmed booking overlap.
func CheckSlot(now time.Time, courtID int64, day Day, startMinute, durationMinutes int, blocks []BlackoutBlock, existing []Booking, excludeBookingID int64) ConflictResult {
	if day.At(startMinute).Before(naiveNow(now)) {
		return blocked("cannot book in the past")
	}

	endMinute := startMinute + durationMinutes
	for _, b := range blocks {
		if !b.CoversDay(day) || !b.AppliesTo(courtID) {
			continue
		}
		if b.BlocksWholeDay() {
			return blocked("%s (whole day)", b.Title)
		}
		if Overlaps(startMinute, endMinute, *b.MinuteStart, *b.MinuteEnd) {
			return blocked("%s (%s–%s)", b.Title, FormatMinute(*b.MinuteStart), FormatMinute(*b.MinuteEnd))
		}
	}

	for _, b := range existing {
		if b.Status != StatusConfirmed || b.ID == excludeBookingID {
			continue
		}
		if b.CourtID != courtID || !b.Day.Equal(day) {
			continue
		}
		if Overlaps(startMinute, endMinute, b.StartMinute, b.EndMinute()) {
			return blocked("overlaps existing booking %s", b.TimeRange())
		}
	}

	return available()
}
