// internal/api/availability/handlers.go
package availability

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/tsampaio/courtly/internal/api/apiutil"
	"github.com/tsampaio/courtly/internal/booking"
)

var (
	store    booking.Store
	clock    clockwork.Clock
	initOnce sync.Once
)

const (
	availabilityQueryTimeout = 5 * time.Second
	defaultSlotMinutes       = 60
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(s booking.Store, c clockwork.Clock) {
	if s == nil {
		return
	}
	initOnce.Do(func() {
		store = s
		if c == nil {
			c = clockwork.NewRealClock()
		}
		clock = c
	})
}

type slotView struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

type courtGridView struct {
	CourtID   int64      `json:"courtId"`
	CourtName string     `json:"courtName"`
	Slots     []slotView `json:"slots"`
}

type gridResponse struct {
	VenueID     int64           `json:"venueId"`
	Date        booking.Day     `json:"date"`
	SlotMinutes int             `json:"slotMinutes"`
	Courts      []courtGridView `json:"courts"`
}

// GET /api/v1/availability?venue_id=...&date=...&slot_minutes=...
//
// Returns the full availability grid for a venue on a date: one row per
// active court, one cell per slot. Blackout blocks and the day's bookings
// are fetched once and evaluated in memory.
func HandleAvailabilityGrid(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if store == nil {
		logger.Error().Msg("Availability store not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if _, ok := apiutil.RequireActor(w, r); !ok {
		return
	}

	venueID, err := apiutil.VenueIDFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	day, err := apiutil.DayFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	slotMinutes := defaultSlotMinutes
	if raw := strings.TrimSpace(r.URL.Query().Get("slot_minutes")); raw != "" {
		parsed, err := apiutil.ParsePositiveInt64Field(raw, "slot_minutes")
		if err != nil || parsed > booking.MinutesPerDay {
			http.Error(w, "slot_minutes must be between 1 and 1440", http.StatusBadRequest)
			return
		}
		slotMinutes = int(parsed)
	}

	if !apiutil.RequireVenueAccess(w, r, venueID) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), availabilityQueryTimeout)
	defer cancel()

	if _, err := store.VenueByID(ctx, venueID); err != nil {
		apiutil.WriteEngineError(w, r, err)
		return
	}

	courts, err := store.ListCourts(ctx, venueID)
	if err != nil {
		logger.Error().Err(err).Int64("venue_id", venueID).Msg("Failed to list courts")
		http.Error(w, "Failed to list courts", http.StatusInternalServerError)
		return
	}
	blocks, err := store.ListBlocksForDay(ctx, venueID, day)
	if err != nil {
		logger.Error().Err(err).Int64("venue_id", venueID).Msg("Failed to list blackout blocks")
		http.Error(w, "Failed to list blackout blocks", http.StatusInternalServerError)
		return
	}

	now := clock.Now()
	resp := gridResponse{
		VenueID:     venueID,
		Date:        day,
		SlotMinutes: slotMinutes,
		Courts:      make([]courtGridView, 0, len(courts)),
	}

	for _, court := range courts {
		if !court.Active {
			continue
		}
		existing, err := store.ListBookingsForDay(ctx, court.ID, day)
		if err != nil {
			logger.Error().Err(err).Int64("court_id", court.ID).Msg("Failed to list bookings")
			http.Error(w, "Failed to list bookings", http.StatusInternalServerError)
			return
		}

		grid := courtGridView{
			CourtID:   court.ID,
			CourtName: court.Name,
			Slots:     make([]slotView, 0, booking.MinutesPerDay/slotMinutes),
		}
		for startMinute := 0; startMinute+slotMinutes <= booking.MinutesPerDay; startMinute += slotMinutes {
			result := booking.CheckSlot(now, court.ID, day, startMinute, slotMinutes, blocks, existing, 0)
			grid.Slots = append(grid.Slots, slotView{
				StartTime: booking.FormatMinute(startMinute),
				EndTime:   booking.FormatMinute(startMinute + slotMinutes),
				Available: !result.Blocked,
				Reason:    result.Reason,
			})
		}
		resp.Courts = append(resp.Courts, grid)
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, resp); err != nil {
		logger.Error().Err(err).Int64("venue_id", venueID).Msg("Failed to write availability response")
	}
}
