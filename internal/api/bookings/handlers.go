// internal/api/bookings/handlers.go
package bookings

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tsampaio/courtly/internal/api/apiutil"
	"github.com/tsampaio/courtly/internal/booking"
)

var (
	engine   *booking.Manager
	store    booking.Store
	initOnce sync.Once
)

const bookingQueryTimeout = 5 * time.Second

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(m *booking.Manager, s booking.Store) {
	if m == nil || s == nil {
		return
	}
	initOnce.Do(func() {
		engine = m
		store = s
	})
}

type assigneePayload struct {
	Kind       string `json:"kind"`
	UserID     int64  `json:"userId,omitempty"`
	AthleteID  int64  `json:"athleteId,omitempty"`
	GuestName  string `json:"guestName,omitempty"`
	GuestPhone string `json:"guestPhone,omitempty"`
}

type createRequestPayload struct {
	CourtID              int64                   `json:"courtId"`
	Date                 booking.Day             `json:"date"`
	StartTime            string                  `json:"startTime"`
	DurationMinutes      int                     `json:"durationMinutes"`
	Assignee             assigneePayload         `json:"assignee"`
	ParticipantIDs       []int64                 `json:"participantIds,omitempty"`
	Notes                string                  `json:"notes,omitempty"`
	NegotiatedTotalCents *int64                  `json:"negotiatedTotalCents,omitempty"`
	Recurrence           *booking.RecurrenceRule `json:"recurrence,omitempty"`
}

type updateRequestPayload struct {
	Date                 *booking.Day     `json:"date,omitempty"`
	StartTime            *string          `json:"startTime,omitempty"`
	DurationMinutes      *int             `json:"durationMinutes,omitempty"`
	Assignee             *assigneePayload `json:"assignee,omitempty"`
	Notes                *string          `json:"notes,omitempty"`
	ParticipantIDs       *[]int64         `json:"participantIds,omitempty"`
	NegotiatedTotalCents *int64           `json:"negotiatedTotalCents,omitempty"`
	ClearNegotiated      bool             `json:"clearNegotiated,omitempty"`
}

type bookingResponse struct {
	ID                   int64                   `json:"id"`
	CourtID              int64                   `json:"courtId"`
	Date                 booking.Day             `json:"date"`
	StartTime            string                  `json:"startTime"`
	EndTime              string                  `json:"endTime"`
	DurationMinutes      int                     `json:"durationMinutes"`
	Status               booking.Status          `json:"status"`
	Assignee             assigneePayload         `json:"assignee"`
	ParticipantIDs       []int64                 `json:"participantIds,omitempty"`
	HourlyRateCents      *int64                  `json:"hourlyRateCents,omitempty"`
	TotalCents           *int64                  `json:"totalCents,omitempty"`
	NegotiatedTotalCents *int64                  `json:"negotiatedTotalCents,omitempty"`
	BillableDisplay      string                  `json:"billableDisplay,omitempty"`
	Notes                string                  `json:"notes,omitempty"`
	RecurrenceGroupID    string                  `json:"recurrenceGroupId,omitempty"`
	RecurrenceRule       *booking.RecurrenceRule `json:"recurrenceRule,omitempty"`
}

type createResponse struct {
	Created  []bookingResponse            `json:"created"`
	Rejected []booking.RejectedOccurrence `json:"rejected"`
}

func toResponse(b booking.Booking) bookingResponse {
	resp := bookingResponse{
		ID:              b.ID,
		CourtID:         b.CourtID,
		Date:            b.Day,
		StartTime:       booking.FormatMinute(b.StartMinute),
		EndTime:         booking.FormatMinute(b.EndMinute()),
		DurationMinutes: b.DurationMinutes,
		Status:          b.Status,
		Assignee: assigneePayload{
			Kind:       string(b.Assignee.Kind),
			UserID:     b.Assignee.UserID,
			AthleteID:  b.Assignee.AthleteID,
			GuestName:  b.Assignee.GuestName,
			GuestPhone: b.Assignee.GuestPhone,
		},
		ParticipantIDs:       b.ParticipantIDs,
		HourlyRateCents:      b.HourlyRateCents,
		TotalCents:           b.TotalCents,
		NegotiatedTotalCents: b.NegotiatedTotalCents,
		Notes:                b.Notes,
		RecurrenceGroupID:    b.RecurrenceGroupID,
		RecurrenceRule:       b.RecurrenceRule,
	}
	if cents, ok := b.BillableCents(); ok {
		resp.BillableDisplay = apiutil.FormatPriceCents(cents)
	}
	return resp
}

func toAssignee(p assigneePayload) booking.Assignee {
	return booking.Assignee{
		Kind:       booking.AssigneeKind(p.Kind),
		UserID:     p.UserID,
		AthleteID:  p.AthleteID,
		GuestName:  strings.TrimSpace(p.GuestName),
		GuestPhone: strings.TrimSpace(p.GuestPhone),
	}
}

// POST /api/v1/bookings
func HandleBookingCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if engine == nil || store == nil {
		logger.Error().Msg("Booking engine not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	actor, ok := apiutil.RequireActor(w, r)
	if !ok {
		return
	}

	var payload createRequestPayload
	if err := apiutil.DecodeJSON(r, &payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	startMinute, err := booking.ParseMinute(payload.StartTime)
	if err != nil {
		http.Error(w, "startTime must be HH:MM", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingQueryTimeout)
	defer cancel()

	court, err := store.CourtByID(ctx, payload.CourtID)
	if err != nil {
		apiutil.WriteEngineError(w, r, err)
		return
	}
	if !apiutil.RequireVenueAccess(w, r, court.VenueID) {
		return
	}

	result, err := engine.Create(ctx, booking.CreateRequest{
		Actor:                *actor,
		CourtID:              payload.CourtID,
		Day:                  payload.Date,
		StartMinute:          startMinute,
		DurationMinutes:      payload.DurationMinutes,
		Assignee:             toAssignee(payload.Assignee),
		ParticipantIDs:       payload.ParticipantIDs,
		Notes:                payload.Notes,
		NegotiatedTotalCents: payload.NegotiatedTotalCents,
		Recurrence:           payload.Recurrence,
	})
	if err != nil {
		apiutil.WriteEngineError(w, r, err)
		return
	}

	resp := createResponse{
		Created:  make([]bookingResponse, 0, len(result.Created)),
		Rejected: result.Rejected,
	}
	for _, b := range result.Created {
		resp.Created = append(resp.Created, toResponse(b))
	}
	if resp.Rejected == nil {
		resp.Rejected = []booking.RejectedOccurrence{}
	}

	status := http.StatusCreated
	if len(resp.Created) == 0 {
		// Every requested occurrence was rejected.
		status = http.StatusConflict
	}
	if err := apiutil.WriteJSON(w, status, resp); err != nil {
		logger.Error().Err(err).Msg("Failed to write booking response")
	}
}

// GET /api/v1/bookings?venue_id=...&from=...&to=...&status=...
// GET /api/v1/bookings?court_id=...&date=...
func HandleBookingsList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if engine == nil || store == nil {
		logger.Error().Msg("Booking engine not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if _, ok := apiutil.RequireActor(w, r); !ok {
		return
	}

	params, venueID, err := listParamsFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingQueryTimeout)
	defer cancel()

	if venueID == 0 {
		court, err := store.CourtByID(ctx, params.CourtID)
		if err != nil {
			apiutil.WriteEngineError(w, r, err)
			return
		}
		venueID = court.VenueID
	}
	if !apiutil.RequireVenueAccess(w, r, venueID) {
		return
	}

	found, err := store.ListBookings(ctx, params)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list bookings")
		http.Error(w, "Failed to list bookings", http.StatusInternalServerError)
		return
	}

	resp := make([]bookingResponse, 0, len(found))
	for _, b := range found {
		resp = append(resp, toResponse(b))
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, resp); err != nil {
		logger.Error().Err(err).Msg("Failed to write bookings response")
	}
}

func listParamsFromQuery(r *http.Request) (booking.ListBookingsParams, int64, error) {
	var params booking.ListBookingsParams

	query := r.URL.Query()
	if query.Get("court_id") != "" {
		courtID, err := apiutil.CourtIDFromQuery(r)
		if err != nil {
			return params, 0, err
		}
		params.CourtID = courtID
	} else {
		venueID, err := apiutil.VenueIDFromQuery(r)
		if err != nil {
			return params, 0, err
		}
		params.VenueID = venueID
	}

	if raw := strings.TrimSpace(query.Get("date")); raw != "" {
		day, err := booking.ParseDay(raw)
		if err != nil {
			return params, 0, err
		}
		params.DateFrom = day
		params.DateTo = day
	} else {
		if raw := strings.TrimSpace(query.Get("from")); raw != "" {
			day, err := booking.ParseDay(raw)
			if err != nil {
				return params, 0, err
			}
			params.DateFrom = day
		}
		if raw := strings.TrimSpace(query.Get("to")); raw != "" {
			day, err := booking.ParseDay(raw)
			if err != nil {
				return params, 0, err
			}
			params.DateTo = day
		}
	}

	if raw := strings.TrimSpace(query.Get("status")); raw != "" {
		status := booking.Status(raw)
		if !status.Valid() {
			return params, 0, booking.ValidationError{Field: "status", Reason: "is not a valid status"}
		}
		params.Status = status
	}

	return params, params.VenueID, nil
}

// GET /api/v1/bookings/{id}
func HandleBookingGet(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if engine == nil || store == nil {
		logger.Error().Msg("Booking engine not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if _, ok := apiutil.RequireActor(w, r); !ok {
		return
	}

	id, err := apiutil.PathID(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingQueryTimeout)
	defer cancel()

	b, err := store.BookingByID(ctx, id)
	if err != nil {
		apiutil.WriteEngineError(w, r, err)
		return
	}

	court, err := store.CourtByID(ctx, b.CourtID)
	if err != nil {
		apiutil.WriteEngineError(w, r, err)
		return
	}
	if !apiutil.RequireVenueAccess(w, r, court.VenueID) {
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, toResponse(b)); err != nil {
		logger.Error().Err(err).Int64("booking_id", id).Msg("Failed to write booking response")
	}
}

// PATCH /api/v1/bookings/{id}
func HandleBookingUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if engine == nil || store == nil {
		logger.Error().Msg("Booking engine not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	actor, ok := apiutil.RequireActor(w, r)
	if !ok {
		return
	}

	id, err := apiutil.PathID(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var payload updateRequestPayload
	if err := apiutil.DecodeJSON(r, &payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	req := booking.UpdateRequest{
		Actor:           *actor,
		Day:             payload.Date,
		DurationMinutes: payload.DurationMinutes,
		Notes:           payload.Notes,
	}
	if payload.StartTime != nil {
		startMinute, err := booking.ParseMinute(*payload.StartTime)
		if err != nil {
			http.Error(w, "startTime must be HH:MM", http.StatusBadRequest)
			return
		}
		req.StartMinute = &startMinute
	}
	if payload.Assignee != nil {
		assignee := toAssignee(*payload.Assignee)
		req.Assignee = &assignee
	}
	if payload.ParticipantIDs != nil {
		req.ParticipantIDs = *payload.ParticipantIDs
		req.ParticipantIDsSet = true
	}
	if payload.NegotiatedTotalCents != nil || payload.ClearNegotiated {
		req.NegotiatedTotalCents = payload.NegotiatedTotalCents
		req.NegotiatedSet = true
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingQueryTimeout)
	defer cancel()

	existing, err := store.BookingByID(ctx, id)
	if err != nil {
		apiutil.WriteEngineError(w, r, err)
		return
	}
	court, err := store.CourtByID(ctx, existing.CourtID)
	if err != nil {
		apiutil.WriteEngineError(w, r, err)
		return
	}
	if !apiutil.RequireVenueAccess(w, r, court.VenueID) {
		return
	}

	updated, err := engine.Update(ctx, id, req)
	if err != nil {
		apiutil.WriteEngineError(w, r, err)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, toResponse(updated)); err != nil {
		logger.Error().Err(err).Int64("booking_id", id).Msg("Failed to write booking response")
	}
}

// POST /api/v1/bookings/{id}/cancel
func HandleBookingCancel(w http.ResponseWriter, r *http.Request) {
	handleTransition(w, r, func(ctx context.Context, id int64) (booking.Booking, error) {
		return engine.Cancel(ctx, id)
	})
}

// POST /api/v1/bookings/{id}/complete
func HandleBookingComplete(w http.ResponseWriter, r *http.Request) {
	handleTransition(w, r, func(ctx context.Context, id int64) (booking.Booking, error) {
		return engine.Complete(ctx, id)
	})
}

func handleTransition(w http.ResponseWriter, r *http.Request, apply func(context.Context, int64) (booking.Booking, error)) {
	logger := log.Ctx(r.Context())

	if engine == nil || store == nil {
		logger.Error().Msg("Booking engine not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if _, ok := apiutil.RequireActor(w, r); !ok {
		return
	}

	id, err := apiutil.PathID(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingQueryTimeout)
	defer cancel()

	existing, err := store.BookingByID(ctx, id)
	if err != nil {
		apiutil.WriteEngineError(w, r, err)
		return
	}
	court, err := store.CourtByID(ctx, existing.CourtID)
	if err != nil {
		apiutil.WriteEngineError(w, r, err)
		return
	}
	if !apiutil.RequireVenueAccess(w, r, court.VenueID) {
		return
	}

	updated, err := apply(ctx, id)
	if err != nil {
		apiutil.WriteEngineError(w, r, err)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, toResponse(updated)); err != nil {
		logger.Error().Err(err).Int64("booking_id", id).Msg("Failed to write booking response")
	}
}
