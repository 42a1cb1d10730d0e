// cmd/server/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/tsampaio/courtly/internal/booking"
	"github.com/tsampaio/courtly/internal/config"
	"github.com/tsampaio/courtly/internal/db"
	"github.com/tsampaio/courtly/internal/scheduler"
	"github.com/tsampaio/courtly/internal/store"
)

const shutdownTimeout = 30 * time.Second

func setupLogger(environment string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Warn().Str("path", path).Msg("No config file found, using defaults")
		return config.Default(), nil
	}
	return config.Load(path)
}

func main() {
	configPath := flag.String("config", "config/app.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogger(cfg.App.Environment)

	database, err := db.NewFromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer database.Close()

	clock := clockwork.NewRealClock()
	engineStore := store.New(database)
	engine := booking.NewManager(booking.ManagerConfig{
		Store:          engineStore,
		Prices:         booking.NewPriceResolver(engineStore, booking.FallbackPolicy(cfg.Pricing.Fallback)),
		Clock:          clock,
		Logger:         log.Logger,
		EditLockWindow: time.Duration(cfg.Booking.EditLockHours) * time.Hour,
		MaxOccurrences: cfg.Booking.MaxOccurrences,
	})

	sched, err := scheduler.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create scheduler")
	}
	if err := scheduler.RegisterCompletionSweep(sched, engine, cfg.Booking.CompletionSweepCron); err != nil {
		log.Fatal().Err(err).Msg("Failed to register completion sweep")
	}

	server := newServer(cfg, engine, engineStore, clock)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sched.Start()
		return nil
	})

	g.Go(func() error {
		log.Info().Int("port", cfg.App.Port).Msg("Starting server")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Wait for interrupt signal
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		log.Info().Msg("Shutting down server")
		if err := sched.Stop(); err != nil {
			log.Error().Err(err).Msg("Scheduler shutdown error")
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server terminated with error")
		os.Exit(1)
	}
}
