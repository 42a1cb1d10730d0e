package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"

	"github.com/tsampaio/courtly/internal/booking"
)

const completionSweepTimeout = 2 * time.Minute

// RegisterCompletionSweep registers the recurring job that marks elapsed
// CONFIRMED bookings COMPLETED. Bookings stay CONFIRMED until their end
// time has passed; this sweep moves them on.
func RegisterCompletionSweep(svc *Service, engine *booking.Manager, cronExpr string) error {
	if svc == nil || engine == nil {
		return fmt.Errorf("completion sweep requires scheduler and engine")
	}

	jobName := "booking_completion_sweep"
	jobLogger := log.With().
		Str("component", "booking_completion_sweep_job").
		Str("job_name", jobName).
		Str("cron", cronExpr).
		Logger()

	_, err := svc.AddJob(jobName, cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), completionSweepTimeout)
		defer cancel()
		ctx = jobLogger.WithContext(ctx)

		completed, err := engine.CompleteElapsed(ctx)
		if err != nil {
			jobLogger.Error().Err(err).Msg("Completion sweep failed")
			return
		}
		if completed > 0 {
			jobLogger.Info().Int("completed", completed).Msg("Completion sweep marked bookings completed")
		}
	}, gocron.WithSingletonMode(gocron.LimitModeWait))
	if err != nil {
		return fmt.Errorf("add booking completion sweep job: %w", err)
	}

	jobLogger.Info().Msg("Booking completion sweep job registered")
	return nil
}
