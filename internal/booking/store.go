// internal/booking/store.go
package booking

import (
	"context"
	"fmt"
)

// Store is the persistence collaborator. The engine never talks to a
// storage medium directly; implementations are expected to return
// ErrNotFound (wrapped or not) for missing rows.
type Store interface {
	VenueByID(ctx context.Context, id int64) (Venue, error)
	CourtByID(ctx context.Context, id int64) (Court, error)
	ListCourts(ctx context.Context, venueID int64) ([]Court, error)

	BookingByID(ctx context.Context, id int64) (Booking, error)
	// ListBookingsForDay returns all bookings for one court on one date,
	// regardless of status.
	ListBookingsForDay(ctx context.Context, courtID int64, day Day) ([]Booking, error)
	ListBookings(ctx context.Context, params ListBookingsParams) ([]Booking, error)
	// ListConfirmedEndingBefore returns CONFIRMED bookings whose end falls
	// strictly before the given instant.
	ListConfirmedEndingBefore(ctx context.Context, day Day, minute int) ([]Booking, error)

	// ListBlocksForDay returns the venue's blackout blocks whose date range
	// covers the given day, court-scoped ones included.
	ListBlocksForDay(ctx context.Context, venueID int64, day Day) ([]BlackoutBlock, error)

	// ListPriceEntries returns the active price table entries for a court
	// in table order.
	ListPriceEntries(ctx context.Context, courtID int64) ([]PriceTableEntry, error)

	CreateBookings(ctx context.Context, bookings []Booking) ([]Booking, error)
	UpdateBooking(ctx context.Context, b Booking) (Booking, error)

	AthleteByID(ctx context.Context, id int64) (Athlete, error)
	AthleteByPhone(ctx context.Context, phoneE164 string) (Athlete, error)
}

// ListBookingsParams filters booking listings. Exactly one of CourtID or
// VenueID should be set.
type ListBookingsParams struct {
	CourtID  int64
	VenueID  int64
	DateFrom Day
	DateTo   Day
	Status   Status // empty means all statuses
}

// ErrAthleteNotFound is the typed outcome for a phone lookup that matches
// no athlete. It wraps ErrNotFound so both checks work.
var ErrAthleteNotFound = fmt.Errorf("athlete %w", ErrNotFound)
