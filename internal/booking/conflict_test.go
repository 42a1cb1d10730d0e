package booking

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd int
		want                       bool
	}{
		{"disjoint before", 480, 540, 600, 660, false},
		{"disjoint after", 600, 660, 480, 540, false},
		{"exact boundary is not a conflict", 480, 540, 540, 600, false},
		{"exact boundary reversed", 540, 600, 480, 540, false},
		{"partial overlap", 870, 930, 840, 900, true},
		{"partial overlap reversed", 840, 900, 870, 930, true},
		{"containment", 480, 600, 500, 520, true},
		{"identical", 480, 540, 480, 540, true},
		{"one minute shared", 480, 541, 540, 600, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd); got != tt.want {
				t.Errorf("Overlaps(%d,%d,%d,%d) = %v, want %v", tt.aStart, tt.aEnd, tt.bStart, tt.bEnd, got, tt.want)
			}
		})
	}
}

func conflictFixture(t *testing.T) (*memStore, *ConflictChecker, Court, Day) {
	t.Helper()
	store := newMemStore()
	venue := store.addVenue(Venue{Name: "Arena Central", Active: true, Subscriber: true})
	court := store.addCourt(Court{VenueID: venue.ID, Name: "Court 1", Type: "beach_tennis", Active: true})

	day := mustDay(t, "2026-03-10")
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC))
	return store, NewConflictChecker(store, clock), court, day
}

func TestCheckPastTime(t *testing.T) {
	_, checker, court, day := conflictFixture(t)

	// Clock is frozen at 08:00 on the target day.
	result, err := checker.Check(context.Background(), court.ID, day, 7*60, 60, 0)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !result.Blocked || result.Reason != "cannot book in the past" {
		t.Fatalf("got %+v, want past-time block", result)
	}

	result, err = checker.Check(context.Background(), court.ID, day, 8*60, 60, 0)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if result.Blocked {
		t.Fatalf("08:00 start at 08:00 sharp should be available, got %+v", result)
	}
}

func TestCheckBookingOverlap(t *testing.T) {
	store, checker, court, day := conflictFixture(t)

	// Scenario A: confirmed 14:00–15:00, candidate 14:30–15:30.
	_, err := store.CreateBookings(context.Background(), []Booking{{
		CourtID:         court.ID,
		Day:             day,
		StartMinute:     14 * 60,
		DurationMinutes: 60,
		Status:          StatusConfirmed,
		Assignee:        ForUser(1),
	}})
	if err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	result, err := checker.Check(context.Background(), court.ID, day, 14*60+30, 60, 0)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !result.Blocked {
		t.Fatal("expected overlap block")
	}
	if !strings.Contains(result.Reason, "14:00–15:00") {
		t.Fatalf("reason %q missing existing time range", result.Reason)
	}

	// Back-to-back at the exact boundary is never a conflict.
	result, err = checker.Check(context.Background(), court.ID, day, 15*60, 60, 0)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if result.Blocked {
		t.Fatalf("15:00 start against 14:00–15:00 should be available, got %q", result.Reason)
	}
}

func TestCheckIgnoresNonConfirmedAndExcluded(t *testing.T) {
	store, checker, court, day := conflictFixture(t)

	created, err := store.CreateBookings(context.Background(), []Booking{
		{CourtID: court.ID, Day: day, StartMinute: 14 * 60, DurationMinutes: 60, Status: StatusCancelled, Assignee: ForUser(1)},
		{CourtID: court.ID, Day: day, StartMinute: 16 * 60, DurationMinutes: 60, Status: StatusConfirmed, Assignee: ForUser(2)},
	})
	if err != nil {
		t.Fatalf("seed bookings: %v", err)
	}

	result, err := checker.Check(context.Background(), court.ID, day, 14*60, 60, 0)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if result.Blocked {
		t.Fatalf("cancelled booking should not block, got %q", result.Reason)
	}

	// A booking never conflicts with itself during reschedule.
	result, err = checker.Check(context.Background(), court.ID, day, 16*60+30, 60, created[1].ID)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if result.Blocked {
		t.Fatalf("excluded booking should not block, got %q", result.Reason)
	}
}

func TestCheckBlackoutWholeDay(t *testing.T) {
	store, checker, court, day := conflictFixture(t)

	// Scenario B: venue-wide block with no minute bounds.
	store.addBlock(BlackoutBlock{
		VenueID:   court.VenueID,
		Title:     "Maintenance",
		DateStart: day,
		DateEnd:   day,
	})

	result, err := checker.Check(context.Background(), court.ID, day, 18*60, 60, 0)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !result.Blocked || !strings.Contains(result.Reason, "whole day") {
		t.Fatalf("got %+v, want whole-day block", result)
	}
}

func TestCheckBlackoutMinuteRange(t *testing.T) {
	store, checker, court, day := conflictFixture(t)

	store.addBlock(BlackoutBlock{
		VenueID:     court.VenueID,
		Title:       "Tournament",
		CourtIDs:    []int64{court.ID},
		DateStart:   day,
		DateEnd:     day.AddDays(2),
		MinuteStart: ptrInt(10 * 60),
		MinuteEnd:   ptrInt(12 * 60),
	})

	result, err := checker.Check(context.Background(), court.ID, day, 11*60, 60, 0)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !result.Blocked {
		t.Fatal("expected blackout block")
	}
	if !strings.Contains(result.Reason, "Tournament") || !strings.Contains(result.Reason, "10:00–12:00") {
		t.Fatalf("reason %q missing title or range", result.Reason)
	}

	// [12:00, 13:00) against [10:00, 12:00) touches only at the boundary.
	result, err = checker.Check(context.Background(), court.ID, day, 12*60, 60, 0)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if result.Blocked {
		t.Fatalf("boundary start should be available, got %q", result.Reason)
	}
}

func TestCheckBlackoutScope(t *testing.T) {
	store, checker, court, day := conflictFixture(t)
	other := store.addCourt(Court{VenueID: court.VenueID, Name: "Court 2", Active: true})

	store.addBlock(BlackoutBlock{
		VenueID:     court.VenueID,
		Title:       "Private event",
		CourtIDs:    []int64{other.ID},
		DateStart:   day,
		DateEnd:     day,
		MinuteStart: ptrInt(9 * 60),
		MinuteEnd:   ptrInt(22 * 60),
	})

	result, err := checker.Check(context.Background(), court.ID, day, 10*60, 60, 0)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if result.Blocked {
		t.Fatalf("block scoped to another court should not apply, got %q", result.Reason)
	}
}

func TestCheckRuleOrder(t *testing.T) {
	store, checker, court, day := conflictFixture(t)

	// Past-time wins over an overlapping blackout: first match
	// short-circuits.
	store.addBlock(BlackoutBlock{
		VenueID:   court.VenueID,
		Title:     "Maintenance",
		DateStart: day,
		DateEnd:   day,
	})

	result, err := checker.Check(context.Background(), court.ID, day, 6*60, 60, 0)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if result.Reason != "cannot book in the past" {
		t.Fatalf("got %q, want past-time reason first", result.Reason)
	}
}
