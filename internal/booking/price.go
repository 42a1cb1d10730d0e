// internal/booking/price.go
package booking

import (
	"context"
	"fmt"
)

// FallbackPolicy names what the resolver does when active price entries
// exist but none covers the requested minute. The legacy behavior of the
// platform is to fall back to the first active entry with a rate; that is
// kept as an explicit policy rather than an implicit default so it can be
// turned off per deployment.
type FallbackPolicy string

const (
	// FallbackFirstActive returns the first active entry carrying a rate
	// when no entry's window matches.
	FallbackFirstActive FallbackPolicy = "first_active"
	// FallbackNone reports no price when no entry's window matches.
	FallbackNone FallbackPolicy = "none"
)

func (p FallbackPolicy) Valid() bool {
	return p == FallbackFirstActive || p == FallbackNone
}

// Quote is a resolved price for a court at a time of day.
type Quote struct {
	EntryID         int64
	HourlyRateCents int64
}

// PriceResolver looks up the hourly rate that applies to a court at a
// given minute of the day.
type PriceResolver struct {
	store    Store
	fallback FallbackPolicy
}

func NewPriceResolver(store Store, fallback FallbackPolicy) *PriceResolver {
	if !fallback.Valid() {
		fallback = FallbackFirstActive
	}
	return &PriceResolver{store: store, fallback: fallback}
}

// Resolve returns the quote for the court at minuteOfDay, or nil when the
// court has no usable price. An unknown price is not an error; callers
// persist the booking with empty price fields.
func (r *PriceResolver) Resolve(ctx context.Context, courtID int64, minuteOfDay int) (*Quote, error) {
	entries, err := r.store.ListPriceEntries(ctx, courtID)
	if err != nil {
		return nil, fmt.Errorf("list price entries: %w", err)
	}

	for _, e := range entries {
		if e.Contains(minuteOfDay) && e.HourlyRateCents != nil {
			return &Quote{EntryID: e.ID, HourlyRateCents: *e.HourlyRateCents}, nil
		}
	}

	if r.fallback == FallbackFirstActive {
		for _, e := range entries {
			if e.HourlyRateCents != nil {
				return &Quote{EntryID: e.ID, HourlyRateCents: *e.HourlyRateCents}, nil
			}
		}
	}
	return nil, nil
}

// TotalCents computes the price of a booking from its hourly rate and
// duration in minutes.
func TotalCents(hourlyRateCents int64, durationMinutes int) int64 {
	return hourlyRateCents * int64(durationMinutes) / 60
}
