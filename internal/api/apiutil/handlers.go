package apiutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/tsampaio/courtly/internal/api/authz"
	"github.com/tsampaio/courtly/internal/booking"
)

type HandlerError struct {
	Status  int
	Message string
	Err     error
}

func (e HandlerError) Error() string {
	return e.Message
}

func (e HandlerError) Unwrap() error {
	return e.Err
}

func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return fmt.Errorf("missing request body")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

type errorPayload struct {
	Error string `json:"error"`
}

// WriteEngineError maps a scheduling engine error to an HTTP response.
// Validation problems become 400s, missing records 404s, and state or
// slot conflicts 409s. Anything unrecognized is logged and reported as
// a 500 without leaking the underlying error.
func WriteEngineError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr booking.ValidationError
		transitionErr booking.InvalidTransitionError
		conflictErr   booking.ConflictError
		handlerErr    HandlerError
	)

	switch {
	case errors.As(err, &handlerErr):
		_ = WriteJSON(w, handlerErr.Status, errorPayload{Error: handlerErr.Message})
	case errors.As(err, &validationErr):
		_ = WriteJSON(w, http.StatusBadRequest, errorPayload{Error: validationErr.Error()})
	case errors.Is(err, booking.ErrNotFound):
		_ = WriteJSON(w, http.StatusNotFound, errorPayload{Error: "not found"})
	case errors.Is(err, booking.ErrEditLocked),
		errors.Is(err, booking.ErrTerminalState),
		errors.As(err, &transitionErr),
		errors.As(err, &conflictErr):
		_ = WriteJSON(w, http.StatusConflict, errorPayload{Error: err.Error()})
	default:
		log.Ctx(r.Context()).Error().Err(err).Msg("Unhandled engine error")
		_ = WriteJSON(w, http.StatusInternalServerError, errorPayload{Error: "internal server error"})
	}
}

// RequireVenueAccess enforces venue-level authorization and writes the
// response itself on failure. It returns true when the request may proceed.
func RequireVenueAccess(w http.ResponseWriter, r *http.Request, venueID int64) bool {
	logger := log.Ctx(r.Context())
	actor := authz.ActorFromContext(r.Context())
	if err := authz.RequireVenueAccess(r.Context(), venueID); err != nil {
		switch {
		case errors.Is(err, authz.ErrUnauthenticated):
			logEvent := logger.Warn().Int64("venue_id", venueID)
			if actor != nil {
				logEvent = logEvent.Int64("user_id", actor.UserID)
			}
			logEvent.Msg("Venue access denied: unauthenticated")
			_ = WriteJSON(w, http.StatusUnauthorized, errorPayload{Error: "unauthorized"})
		case errors.Is(err, authz.ErrForbidden):
			logEvent := logger.Warn().Int64("venue_id", venueID)
			if actor != nil {
				logEvent = logEvent.Int64("user_id", actor.UserID)
			}
			logEvent.Msg("Venue access denied: forbidden")
			_ = WriteJSON(w, http.StatusForbidden, errorPayload{Error: "forbidden"})
		default:
			logger.Error().Int64("venue_id", venueID).Err(err).Msg("Venue access denied: error")
			_ = WriteJSON(w, http.StatusInternalServerError, errorPayload{Error: "failed to authorize request"})
		}
		return false
	}
	return true
}

// RequireActor returns the authenticated actor or writes a 401 and
// returns false.
func RequireActor(w http.ResponseWriter, r *http.Request) (*booking.Actor, bool) {
	actor, err := authz.RequireActor(r.Context())
	if err != nil {
		log.Ctx(r.Context()).Warn().Msg("Request rejected: unauthenticated")
		_ = WriteJSON(w, http.StatusUnauthorized, errorPayload{Error: "unauthorized"})
		return nil, false
	}
	return actor, true
}
