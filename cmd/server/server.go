// cmd/server/server.go
package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/tsampaio/courtly/internal/api"
	athleteapi "github.com/tsampaio/courtly/internal/api/athletes"
	"github.com/tsampaio/courtly/internal/api/availability"
	"github.com/tsampaio/courtly/internal/api/bookings"
	"github.com/tsampaio/courtly/internal/athletes"
	"github.com/tsampaio/courtly/internal/booking"
	"github.com/tsampaio/courtly/internal/config"
)

func newServer(cfg *config.Config, engine *booking.Manager, engineStore booking.Store, clock clockwork.Clock) *http.Server {
	router := http.NewServeMux()

	// Setup middleware chain
	handler := api.ChainMiddleware(
		router,
		api.WithLogging,
		api.WithRecovery,
		api.WithIdentity,
		api.WithRequestID,
	)

	bookings.InitHandlers(engine, engineStore)
	availability.InitHandlers(engineStore, clock)
	athleteapi.InitHandlers(athletes.NewDirectory(engineStore, cfg.Phone.DefaultRegion))

	registerRoutes(router)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Booking routes
	mux.HandleFunc("POST /api/v1/bookings", bookings.HandleBookingCreate)
	mux.HandleFunc("GET /api/v1/bookings", bookings.HandleBookingsList)
	mux.HandleFunc("GET /api/v1/bookings/{id}", bookings.HandleBookingGet)
	mux.HandleFunc("PATCH /api/v1/bookings/{id}", bookings.HandleBookingUpdate)
	mux.HandleFunc("POST /api/v1/bookings/{id}/cancel", bookings.HandleBookingCancel)
	mux.Handle("POST /api/v1/bookings/{id}/complete", api.WithStaffAuth(http.HandlerFunc(bookings.HandleBookingComplete)))

	// Availability grid
	mux.HandleFunc("GET /api/v1/availability", availability.HandleAvailabilityGrid)

	// Athlete lookup
	mux.HandleFunc("GET /api/v1/athletes/by-phone", athleteapi.HandleAthleteByPhone)
}
