// internal/api/middleware.go
package api

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tsampaio/courtly/internal/api/authz"
	"github.com/tsampaio/courtly/internal/booking"
)

type Middleware func(http.Handler) http.Handler

func ChainMiddleware(h http.Handler, middleware ...Middleware) http.Handler {
	for _, m := range middleware {
		h = m(h)
	}
	return h
}

func WithLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create response wrapper to capture status code
		wrapped := wrapResponseWriter(w)

		next.ServeHTTP(wrapped, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapped.status).
			Dur("duration", time.Since(start)).
			Str("request_id", r.Context().Value("request_id").(string)).
			Msg("Request completed")
	})
}

func WithRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger := log.Ctx(r.Context())
				// Log the full stack trace
				stack := debug.Stack()
				logger.Error().
					Interface("error", err).
					Str("stack", string(stack)).
					Msg("Panic recovered")

				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func WithRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()

		// Create a logger with the request ID
		logger := log.With().Str("request_id", requestID).Logger()

		// Add both the request ID and logger to context
		ctx := context.WithValue(r.Context(), "request_id", requestID)
		ctx = logger.WithContext(ctx)

		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithIdentity reads the identity headers set by the edge proxy and stores
// the resulting actor in the request context. The headers are trusted; the
// proxy strips any client-supplied values before they reach this service.
//
//	X-User-ID      numeric user id
//	X-User-Role    member | staff | admin
//	X-User-Venues  comma-separated venue ids (staff only)
func WithIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromHeaders(r)
		if err != nil {
			log.Ctx(r.Context()).Warn().Err(err).Msg("Rejecting malformed identity headers")
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}

		if actor != nil {
			ctx := authz.ContextWithActor(r.Context(), actor)
			r = r.WithContext(ctx)
		}

		next.ServeHTTP(w, r)
	})
}

func actorFromHeaders(r *http.Request) (*booking.Actor, error) {
	rawID := strings.TrimSpace(r.Header.Get("X-User-ID"))
	if rawID == "" {
		return nil, nil
	}

	userID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || userID <= 0 {
		return nil, errors.New("invalid X-User-ID header")
	}

	role := booking.Role(strings.TrimSpace(r.Header.Get("X-User-Role")))
	switch role {
	case booking.RoleMember, booking.RoleStaff, booking.RoleAdmin:
	case "":
		role = booking.RoleMember
	default:
		return nil, errors.New("invalid X-User-Role header")
	}

	actor := &booking.Actor{UserID: userID, Role: role}

	if rawVenues := strings.TrimSpace(r.Header.Get("X-User-Venues")); rawVenues != "" {
		for _, part := range strings.Split(rawVenues, ",") {
			venueID, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil || venueID <= 0 {
				return nil, errors.New("invalid X-User-Venues header")
			}
			actor.VenueIDs = append(actor.VenueIDs, venueID)
		}
	}

	return actor, nil
}

// WithStaffAuth guards routes that only staff and admins may reach.
func WithStaffAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.Ctx(r.Context())
		actor := authz.ActorFromContext(r.Context())
		if err := authz.RequireStaff(r.Context()); err != nil {
			switch {
			case errors.Is(err, authz.ErrUnauthenticated):
				logEvent := logger.Warn()
				if actor != nil {
					logEvent = logEvent.Int64("user_id", actor.UserID)
				}
				logEvent.Msg("Staff access denied: unauthenticated")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
			case errors.Is(err, authz.ErrForbidden):
				logEvent := logger.Warn()
				if actor != nil {
					logEvent = logEvent.Int64("user_id", actor.UserID)
				}
				logEvent.Msg("Staff access denied: forbidden")
				http.Error(w, "Forbidden", http.StatusForbidden)
			default:
				logEvent := logger.Error().Err(err)
				if actor != nil {
					logEvent = logEvent.Int64("user_id", actor.UserID)
				}
				logEvent.Msg("Staff access denied: error")
				http.Error(w, "Failed to authorize request", http.StatusInternalServerError)
			}
			return
		}

		next.ServeHTTP(w, r)
	})
}

// responseWriter wrapper to capture status code
type responseWriter struct {
	http.ResponseWriter
	status int
}

func wrapResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
