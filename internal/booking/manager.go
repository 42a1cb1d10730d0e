// internal/booking/manager.go
package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// Role is the caller's role as reported by the identity collaborator. The
// manager trusts it and performs no authentication of its own.
type Role string

const (
	RoleMember Role = "member"
	RoleStaff  Role = "staff"
	RoleAdmin  Role = "admin"
)

// Actor identifies who is performing a lifecycle operation. VenueIDs lists
// the venues a staff actor is assigned to; it is empty for members and
// admins.
type Actor struct {
	UserID   int64
	Role     Role
	VenueIDs []int64
}

// DefaultEditLockWindow is the minimum lead time before a booking's start
// during which its date, time and duration are frozen.
const DefaultEditLockWindow = 12 * time.Hour

// ManagerConfig wires a Manager. Zero values fall back to defaults.
type ManagerConfig struct {
	Store          Store
	Checker        *ConflictChecker
	Prices         *PriceResolver
	Clock          clockwork.Clock
	Logger         zerolog.Logger
	EditLockWindow time.Duration
	MaxOccurrences int
}

// Manager owns booking state transitions. All create, update, cancel and
// complete paths go through it; nothing else writes bookings.
type Manager struct {
	store          Store
	checker        *ConflictChecker
	prices         *PriceResolver
	clock          clockwork.Clock
	logger         zerolog.Logger
	locks          *slotLocks
	editLockWindow time.Duration
	maxOccurrences int
}

func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.EditLockWindow <= 0 {
		cfg.EditLockWindow = DefaultEditLockWindow
	}
	if cfg.MaxOccurrences <= 0 {
		cfg.MaxOccurrences = DefaultMaxOccurrences
	}
	if cfg.Checker == nil {
		cfg.Checker = NewConflictChecker(cfg.Store, cfg.Clock)
	}
	if cfg.Prices == nil {
		cfg.Prices = NewPriceResolver(cfg.Store, FallbackFirstActive)
	}
	return &Manager{
		store:          cfg.Store,
		checker:        cfg.Checker,
		prices:         cfg.Prices,
		clock:          cfg.Clock,
		logger:         cfg.Logger,
		locks:          newSlotLocks(),
		editLockWindow: cfg.EditLockWindow,
		maxOccurrences: cfg.MaxOccurrences,
	}
}

// CreateRequest describes a single or recurring booking request.
type CreateRequest struct {
	Actor                Actor
	CourtID              int64
	Day                  Day
	StartMinute          int
	DurationMinutes      int
	Assignee             Assignee
	ParticipantIDs       []int64
	Notes                string
	NegotiatedTotalCents *int64
	Recurrence           *RecurrenceRule
}

// RejectedOccurrence reports one occurrence of a request that could not be
// scheduled, with the human-readable reason.
type RejectedOccurrence struct {
	Day         Day    `json:"date"`
	StartMinute int    `json:"startMinute"`
	Reason      string `json:"reason"`
}

// CreateResult carries the partial-success outcome of a create request:
// occurrences that survived the conflict check alongside the ones that
// were rejected.
type CreateResult struct {
	Created  []Booking
	Rejected []RejectedOccurrence
}

// Create validates the request, expands recurrence, conflict-checks every
// occurrence and persists the survivors with a price snapshot. Blocked
// occurrences do not abort the batch; they come back in Rejected.
func (m *Manager) Create(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	if err := m.validateCreate(req); err != nil {
		return nil, err
	}

	court, err := m.store.CourtByID(ctx, req.CourtID)
	if err != nil {
		return nil, err
	}
	venue, err := m.store.VenueByID(ctx, court.VenueID)
	if err != nil {
		return nil, err
	}
	if err := bookableBy(req.Actor, court, venue); err != nil {
		return nil, err
	}

	start := Occurrence{Day: req.Day, StartMinute: req.StartMinute, DurationMinutes: req.DurationMinutes}
	occurrences := []Occurrence{start}
	groupID := ""
	var ruleSnapshot *RecurrenceRule
	if req.Recurrence != nil {
		rule := *req.Recurrence
		if rule.MaxOccurrences <= 0 || rule.MaxOccurrences > m.maxOccurrences {
			rule.MaxOccurrences = m.maxOccurrences
		}
		occurrences = Expand(start, rule)
		groupID = uuid.NewString()
		normalized := rule.normalized(req.Day)
		ruleSnapshot = &normalized
	}

	// Occurrences are expanded in chronological order, so concurrent
	// requests for the same court acquire day locks in the same order.
	var releases []func()
	defer func() {
		for _, release := range releases {
			release()
		}
	}()

	result := &CreateResult{}
	var toCreate []Booking
	for _, occ := range occurrences {
		release := m.locks.acquire(req.CourtID, occ.Day)
		releases = append(releases, release)

		check, err := m.checker.Check(ctx, req.CourtID, occ.Day, occ.StartMinute, occ.DurationMinutes, 0)
		if err != nil {
			return nil, err
		}
		if check.Blocked {
			result.Rejected = append(result.Rejected, RejectedOccurrence{
				Day:         occ.Day,
				StartMinute: occ.StartMinute,
				Reason:      check.Reason,
			})
			continue
		}

		b := Booking{
			CourtID:              req.CourtID,
			Day:                  occ.Day,
			StartMinute:          occ.StartMinute,
			DurationMinutes:      occ.DurationMinutes,
			Status:               StatusConfirmed,
			Assignee:             req.Assignee,
			ParticipantIDs:       req.ParticipantIDs,
			Notes:                req.Notes,
			NegotiatedTotalCents: req.NegotiatedTotalCents,
			RecurrenceGroupID:    groupID,
			RecurrenceRule:       ruleSnapshot,
		}
		if err := m.applyPrice(ctx, &b); err != nil {
			return nil, err
		}
		toCreate = append(toCreate, b)
	}

	if len(toCreate) > 0 {
		created, err := m.store.CreateBookings(ctx, toCreate)
		if err != nil {
			return nil, fmt.Errorf("persist bookings: %w", err)
		}
		result.Created = created
	}

	m.logger.Info().
		Int64("court_id", req.CourtID).
		Str("date", req.Day.String()).
		Int("created", len(result.Created)).
		Int("rejected", len(result.Rejected)).
		Msg("Booking request processed")
	return result, nil
}

// UpdateRequest describes a partial booking update. Nil fields stay
// unchanged; ParticipantIDsSet and NegotiatedSet distinguish "clear" from
// "leave alone".
type UpdateRequest struct {
	Actor                Actor
	Day                  *Day
	StartMinute          *int
	DurationMinutes      *int
	Assignee             *Assignee
	Notes                *string
	ParticipantIDs       []int64
	ParticipantIDsSet    bool
	NegotiatedTotalCents *int64
	NegotiatedSet        bool
}

func (r UpdateRequest) changesSchedule() bool {
	return r.Day != nil || r.StartMinute != nil || r.DurationMinutes != nil
}

func (r UpdateRequest) changesGuardedFields() bool {
	return r.Notes != nil || r.ParticipantIDsSet || r.Assignee != nil || r.NegotiatedSet
}

// Update applies a partial change to a booking, enforcing two independent
// gates: schedule fields are frozen inside the edit-lock window, and
// notes/participants (and other non-schedule fields) are frozen once the
// booking leaves CONFIRMED. Schedule changes re-run the conflict check
// against everything but the booking itself, and refresh the price
// snapshot.
func (m *Manager) Update(ctx context.Context, id int64, req UpdateRequest) (Booking, error) {
	current, err := m.store.BookingByID(ctx, id)
	if err != nil {
		return Booking{}, err
	}

	if current.Status != StatusConfirmed && (req.changesSchedule() || req.changesGuardedFields()) {
		return Booking{}, ErrTerminalState
	}

	updated := current
	if req.changesSchedule() {
		start := current.Day.At(current.StartMinute)
		if naiveNow(m.clock.Now()).Add(m.editLockWindow).After(start) {
			return Booking{}, ErrEditLocked
		}
		if req.Day != nil {
			updated.Day = *req.Day
		}
		if req.StartMinute != nil {
			updated.StartMinute = *req.StartMinute
		}
		if req.DurationMinutes != nil {
			updated.DurationMinutes = *req.DurationMinutes
		}
		if err := validateSlot(updated.Day, updated.StartMinute, updated.DurationMinutes); err != nil {
			return Booking{}, err
		}
	}

	if req.Assignee != nil {
		if err := req.Assignee.Validate(); err != nil {
			return Booking{}, err
		}
		updated.Assignee = *req.Assignee
	}
	if req.Notes != nil {
		updated.Notes = *req.Notes
	}
	if req.ParticipantIDsSet {
		updated.ParticipantIDs = req.ParticipantIDs
	}
	if req.NegotiatedSet {
		updated.NegotiatedTotalCents = req.NegotiatedTotalCents
	}

	if req.changesSchedule() {
		release := m.locks.acquire(updated.CourtID, updated.Day)
		defer release()

		check, err := m.checker.Check(ctx, updated.CourtID, updated.Day, updated.StartMinute, updated.DurationMinutes, updated.ID)
		if err != nil {
			return Booking{}, err
		}
		if check.Blocked {
			return Booking{}, ConflictError{Reason: check.Reason}
		}
		if err := m.applyPrice(ctx, &updated); err != nil {
			return Booking{}, err
		}
	}

	saved, err := m.store.UpdateBooking(ctx, updated)
	if err != nil {
		return Booking{}, fmt.Errorf("persist booking update: %w", err)
	}
	m.logger.Info().Int64("booking_id", id).Bool("rescheduled", req.changesSchedule()).Msg("Booking updated")
	return saved, nil
}

// Cancel transitions a CONFIRMED booking to CANCELLED. No other field
// changes; bookings are never physically deleted.
func (m *Manager) Cancel(ctx context.Context, id int64) (Booking, error) {
	return m.transition(ctx, id, StatusCancelled)
}

// Complete transitions a CONFIRMED booking to COMPLETED.
func (m *Manager) Complete(ctx context.Context, id int64) (Booking, error) {
	return m.transition(ctx, id, StatusCompleted)
}

func (m *Manager) transition(ctx context.Context, id int64, to Status) (Booking, error) {
	b, err := m.store.BookingByID(ctx, id)
	if err != nil {
		return Booking{}, err
	}
	if !b.Status.CanTransitionTo(to) {
		return Booking{}, InvalidTransitionError{From: b.Status, To: to}
	}
	b.Status = to
	saved, err := m.store.UpdateBooking(ctx, b)
	if err != nil {
		return Booking{}, fmt.Errorf("persist status change: %w", err)
	}
	m.logger.Info().Int64("booking_id", id).Str("status", string(to)).Msg("Booking status changed")
	return saved, nil
}

// CompleteElapsed marks every CONFIRMED booking whose end has passed as
// COMPLETED. Run periodically by the scheduler.
func (m *Manager) CompleteElapsed(ctx context.Context) (int, error) {
	now := naiveNow(m.clock.Now())
	elapsed, err := m.store.ListConfirmedEndingBefore(ctx, DayOf(now), now.Hour()*60+now.Minute())
	if err != nil {
		return 0, fmt.Errorf("list elapsed bookings: %w", err)
	}
	completed := 0
	for _, b := range elapsed {
		if _, err := m.Complete(ctx, b.ID); err != nil {
			m.logger.Error().Err(err).Int64("booking_id", b.ID).Msg("Failed to complete elapsed booking")
			continue
		}
		completed++
	}
	return completed, nil
}

func (m *Manager) applyPrice(ctx context.Context, b *Booking) error {
	quote, err := m.prices.Resolve(ctx, b.CourtID, b.StartMinute)
	if err != nil {
		return err
	}
	if quote == nil {
		b.HourlyRateCents = nil
		b.TotalCents = nil
		return nil
	}
	rate := quote.HourlyRateCents
	total := TotalCents(rate, b.DurationMinutes)
	b.HourlyRateCents = &rate
	b.TotalCents = &total
	return nil
}

func (m *Manager) validateCreate(req CreateRequest) error {
	if req.CourtID <= 0 {
		return ValidationError{Field: "court_id", Reason: "is required"}
	}
	if err := validateSlot(req.Day, req.StartMinute, req.DurationMinutes); err != nil {
		return err
	}
	if err := req.Assignee.Validate(); err != nil {
		return err
	}
	if req.Recurrence != nil {
		if err := req.Recurrence.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func validateSlot(day Day, startMinute, durationMinutes int) error {
	if day.IsZero() {
		return ValidationError{Field: "date", Reason: "is required"}
	}
	if startMinute < 0 || startMinute >= MinutesPerDay {
		return ValidationError{Field: "start_minute", Reason: "must be between 0 and 1439"}
	}
	if durationMinutes <= 0 {
		return ValidationError{Field: "duration_minutes", Reason: "must be greater than 0"}
	}
	return nil
}

// bookableBy enforces that regular members only book active courts at
// active subscriber venues. Venue staff and platform admins book anything
// that exists; authorization beyond that is the identity collaborator's
// problem.
func bookableBy(actor Actor, court Court, venue Venue) error {
	if actor.Role == RoleStaff || actor.Role == RoleAdmin {
		return nil
	}
	if !court.Active || !venue.Active || !venue.Subscriber {
		return ValidationError{Field: "court_id", Reason: "is not open for booking"}
	}
	return nil
}
