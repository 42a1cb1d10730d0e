package apiutil

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/tsampaio/courtly/internal/booking"
)

const (
	venueIDQueryKey = "venue_id"
	courtIDQueryKey = "court_id"
	dateQueryKey    = "date"
)

func ParsePositiveInt64Field(raw string, field string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", field)
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", field)
	}
	return value, nil
}

func VenueIDFromQuery(r *http.Request) (int64, error) {
	return ParsePositiveInt64Field(r.URL.Query().Get(venueIDQueryKey), venueIDQueryKey)
}

func CourtIDFromQuery(r *http.Request) (int64, error) {
	return ParsePositiveInt64Field(r.URL.Query().Get(courtIDQueryKey), courtIDQueryKey)
}

// DayFromQuery parses the "date" query parameter as a calendar date.
func DayFromQuery(r *http.Request) (booking.Day, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(dateQueryKey))
	if raw == "" {
		return booking.Day{}, fmt.Errorf("%s is required", dateQueryKey)
	}
	day, err := booking.ParseDay(raw)
	if err != nil {
		return booking.Day{}, fmt.Errorf("%s must be a valid date (YYYY-MM-DD)", dateQueryKey)
	}
	return day, nil
}

// PathID parses the named path value of r as a positive integer ID.
func PathID(r *http.Request, name string) (int64, error) {
	return ParsePositiveInt64Field(r.PathValue(name), name)
}

func FormatPriceCents(cents int64) string {
	return fmt.Sprintf("$%.2f", float64(cents)/100)
}
