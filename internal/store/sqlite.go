// internal/store/sqlite.go

// Package store implements the engine's persistence contract on SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tsampaio/courtly/internal/booking"
	appdb "github.com/tsampaio/courtly/internal/db"
)

type Store struct {
	db *appdb.DB
}

func New(database *appdb.DB) *Store {
	return &Store{db: database}
}

const bookingColumns = `id, court_id, date, start_minute, duration_minutes, status,
	assignee_kind, user_id, athlete_id, guest_name, guest_phone,
	hourly_rate_cents, total_cents, negotiated_total_cents, notes,
	recurrence_group_id, recurrence_rule`

func (s *Store) VenueByID(ctx context.Context, id int64) (booking.Venue, error) {
	var v booking.Venue
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, active, subscriber FROM venues WHERE id = ?", id,
	).Scan(&v.ID, &v.Name, &v.Active, &v.Subscriber)
	if errors.Is(err, sql.ErrNoRows) {
		return booking.Venue{}, fmt.Errorf("venue %d: %w", id, booking.ErrNotFound)
	}
	if err != nil {
		return booking.Venue{}, fmt.Errorf("query venue: %w", err)
	}
	return v, nil
}

func (s *Store) CourtByID(ctx context.Context, id int64) (booking.Court, error) {
	var c booking.Court
	err := s.db.QueryRowContext(ctx,
		"SELECT id, venue_id, name, court_type, active FROM courts WHERE id = ?", id,
	).Scan(&c.ID, &c.VenueID, &c.Name, &c.Type, &c.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return booking.Court{}, fmt.Errorf("court %d: %w", id, booking.ErrNotFound)
	}
	if err != nil {
		return booking.Court{}, fmt.Errorf("query court: %w", err)
	}
	return c, nil
}

func (s *Store) ListCourts(ctx context.Context, venueID int64) ([]booking.Court, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, venue_id, name, court_type, active FROM courts WHERE venue_id = ? ORDER BY id", venueID,
	)
	if err != nil {
		return nil, fmt.Errorf("query courts: %w", err)
	}
	defer rows.Close()

	var out []booking.Court
	for rows.Next() {
		var c booking.Court
		if err := rows.Scan(&c.ID, &c.VenueID, &c.Name, &c.Type, &c.Active); err != nil {
			return nil, fmt.Errorf("scan court: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) BookingByID(ctx context.Context, id int64) (booking.Booking, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE id = ?", id,
	)
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return booking.Booking{}, fmt.Errorf("booking %d: %w", id, booking.ErrNotFound)
	}
	if err != nil {
		return booking.Booking{}, fmt.Errorf("query booking: %w", err)
	}

	participants, err := s.participantIDs(ctx, id)
	if err != nil {
		return booking.Booking{}, err
	}
	b.ParticipantIDs = participants
	return b, nil
}

// ListBookingsForDay returns a court's bookings on one date, any status.
// Participant lists are not loaded here; use BookingByID for the full row.
func (s *Store) ListBookingsForDay(ctx context.Context, courtID int64, day booking.Day) ([]booking.Booking, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE court_id = ? AND date = ? ORDER BY start_minute",
		courtID, day.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	defer rows.Close()
	return collectBookings(rows)
}

func (s *Store) ListBookings(ctx context.Context, params booking.ListBookingsParams) ([]booking.Booking, error) {
	query := "SELECT " + bookingColumns + " FROM bookings"
	var where []string
	var args []any

	switch {
	case params.CourtID != 0:
		where = append(where, "court_id = ?")
		args = append(args, params.CourtID)
	case params.VenueID != 0:
		where = append(where, "court_id IN (SELECT id FROM courts WHERE venue_id = ?)")
		args = append(args, params.VenueID)
	}
	if !params.DateFrom.IsZero() {
		where = append(where, "date >= ?")
		args = append(args, params.DateFrom.String())
	}
	if !params.DateTo.IsZero() {
		where = append(where, "date <= ?")
		args = append(args, params.DateTo.String())
	}
	if params.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(params.Status))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date, start_minute, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	defer rows.Close()
	return collectBookings(rows)
}

func (s *Store) ListConfirmedEndingBefore(ctx context.Context, day booking.Day, minute int) ([]booking.Booking, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+bookingColumns+` FROM bookings
		 WHERE status = 'CONFIRMED'
		   AND (date < ? OR (date = ? AND start_minute + duration_minutes <= ?))
		 ORDER BY date, start_minute`,
		day.String(), day.String(), minute,
	)
	if err != nil {
		return nil, fmt.Errorf("query elapsed bookings: %w", err)
	}
	defer rows.Close()
	return collectBookings(rows)
}

func (s *Store) ListBlocksForDay(ctx context.Context, venueID int64, day booking.Day) ([]booking.BlackoutBlock, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, venue_id, title, date_start, date_end, minute_start, minute_end
		 FROM blackout_blocks
		 WHERE venue_id = ? AND date_start <= ? AND date_end >= ?
		 ORDER BY id`,
		venueID, day.String(), day.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("query blackout blocks: %w", err)
	}
	defer rows.Close()

	var out []booking.BlackoutBlock
	for rows.Next() {
		var b booking.BlackoutBlock
		var dateStart, dateEnd string
		var minStart, minEnd sql.NullInt64
		if err := rows.Scan(&b.ID, &b.VenueID, &b.Title, &dateStart, &dateEnd, &minStart, &minEnd); err != nil {
			return nil, fmt.Errorf("scan blackout block: %w", err)
		}
		if b.DateStart, err = booking.ParseDay(dateStart); err != nil {
			return nil, fmt.Errorf("block %d: %w", b.ID, err)
		}
		if b.DateEnd, err = booking.ParseDay(dateEnd); err != nil {
			return nil, fmt.Errorf("block %d: %w", b.ID, err)
		}
		b.MinuteStart = nullableInt(minStart)
		b.MinuteEnd = nullableInt(minEnd)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		courtIDs, err := s.blockCourtIDs(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].CourtIDs = courtIDs
	}
	return out, nil
}

func (s *Store) blockCourtIDs(ctx context.Context, blockID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT court_id FROM blackout_block_courts WHERE block_id = ? ORDER BY court_id", blockID,
	)
	if err != nil {
		return nil, fmt.Errorf("query block courts: %w", err)
	}
	defer rows.Close()

	// nil means venue-wide; only a non-empty list narrows the scope.
	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan block court: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (s *Store) ListPriceEntries(ctx context.Context, courtID int64) ([]booking.PriceTableEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, court_id, active, start_minute, end_minute, hourly_rate_cents
		 FROM price_entries WHERE court_id = ? AND active = 1 ORDER BY id`,
		courtID,
	)
	if err != nil {
		return nil, fmt.Errorf("query price entries: %w", err)
	}
	defer rows.Close()

	var out []booking.PriceTableEntry
	for rows.Next() {
		var e booking.PriceTableEntry
		var rate sql.NullInt64
		if err := rows.Scan(&e.ID, &e.CourtID, &e.Active, &e.StartMinute, &e.EndMinute, &rate); err != nil {
			return nil, fmt.Errorf("scan price entry: %w", err)
		}
		e.HourlyRateCents = nullableInt64(rate)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) CreateBookings(ctx context.Context, bookings []booking.Booking) ([]booking.Booking, error) {
	out := make([]booking.Booking, 0, len(bookings))
	err := s.db.RunInTx(ctx, func(tx *sql.Tx) error {
		for _, b := range bookings {
			rule, err := marshalRule(b.RecurrenceRule)
			if err != nil {
				return err
			}
			result, err := tx.ExecContext(ctx,
				`INSERT INTO bookings (
					court_id, date, start_minute, duration_minutes, status,
					assignee_kind, user_id, athlete_id, guest_name, guest_phone,
					hourly_rate_cents, total_cents, negotiated_total_cents, notes,
					recurrence_group_id, recurrence_rule
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				b.CourtID, b.Day.String(), b.StartMinute, b.DurationMinutes, string(b.Status),
				string(b.Assignee.Kind), zeroNull(b.Assignee.UserID), zeroNull(b.Assignee.AthleteID),
				emptyNull(b.Assignee.GuestName), emptyNull(b.Assignee.GuestPhone),
				toNullInt64(b.HourlyRateCents), toNullInt64(b.TotalCents), toNullInt64(b.NegotiatedTotalCents),
				b.Notes, emptyNull(b.RecurrenceGroupID), rule,
			)
			if err != nil {
				return fmt.Errorf("insert booking: %w", err)
			}
			id, err := result.LastInsertId()
			if err != nil {
				return fmt.Errorf("booking id: %w", err)
			}
			b.ID = id
			if err := replaceParticipants(ctx, tx, id, b.ParticipantIDs); err != nil {
				return err
			}
			out = append(out, b)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) UpdateBooking(ctx context.Context, b booking.Booking) (booking.Booking, error) {
	err := s.db.RunInTx(ctx, func(tx *sql.Tx) error {
		rule, err := marshalRule(b.RecurrenceRule)
		if err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx,
			`UPDATE bookings SET
				court_id = ?, date = ?, start_minute = ?, duration_minutes = ?, status = ?,
				assignee_kind = ?, user_id = ?, athlete_id = ?, guest_name = ?, guest_phone = ?,
				hourly_rate_cents = ?, total_cents = ?, negotiated_total_cents = ?, notes = ?,
				recurrence_group_id = ?, recurrence_rule = ?,
				updated_at = datetime('now')
			 WHERE id = ?`,
			b.CourtID, b.Day.String(), b.StartMinute, b.DurationMinutes, string(b.Status),
			string(b.Assignee.Kind), zeroNull(b.Assignee.UserID), zeroNull(b.Assignee.AthleteID),
			emptyNull(b.Assignee.GuestName), emptyNull(b.Assignee.GuestPhone),
			toNullInt64(b.HourlyRateCents), toNullInt64(b.TotalCents), toNullInt64(b.NegotiatedTotalCents),
			b.Notes, emptyNull(b.RecurrenceGroupID), rule,
			b.ID,
		)
		if err != nil {
			return fmt.Errorf("update booking: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("update booking: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("booking %d: %w", b.ID, booking.ErrNotFound)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM booking_participants WHERE booking_id = ?", b.ID); err != nil {
			return fmt.Errorf("clear participants: %w", err)
		}
		return replaceParticipants(ctx, tx, b.ID, b.ParticipantIDs)
	})
	if err != nil {
		return booking.Booking{}, err
	}
	return b, nil
}

func (s *Store) AthleteByID(ctx context.Context, id int64) (booking.Athlete, error) {
	var a booking.Athlete
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, phone FROM athletes WHERE id = ?", id,
	).Scan(&a.ID, &a.Name, &a.Phone)
	if errors.Is(err, sql.ErrNoRows) {
		return booking.Athlete{}, booking.ErrAthleteNotFound
	}
	if err != nil {
		return booking.Athlete{}, fmt.Errorf("query athlete: %w", err)
	}
	return a, nil
}

func (s *Store) AthleteByPhone(ctx context.Context, phoneE164 string) (booking.Athlete, error) {
	var a booking.Athlete
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, phone FROM athletes WHERE phone = ?", phoneE164,
	).Scan(&a.ID, &a.Name, &a.Phone)
	if errors.Is(err, sql.ErrNoRows) {
		return booking.Athlete{}, booking.ErrAthleteNotFound
	}
	if err != nil {
		return booking.Athlete{}, fmt.Errorf("query athlete: %w", err)
	}
	return a, nil
}

func (s *Store) participantIDs(ctx context.Context, bookingID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT athlete_id FROM booking_participants WHERE booking_id = ? ORDER BY athlete_id", bookingID,
	)
	if err != nil {
		return nil, fmt.Errorf("query participants: %w", err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func replaceParticipants(ctx context.Context, tx *sql.Tx, bookingID int64, athleteIDs []int64) error {
	for _, athleteID := range athleteIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO booking_participants (booking_id, athlete_id) VALUES (?, ?)",
			bookingID, athleteID,
		); err != nil {
			return fmt.Errorf("insert participant: %w", err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (booking.Booking, error) {
	var b booking.Booking
	var date, status, assigneeKind string
	var userID, athleteID, rate, total, negotiated sql.NullInt64
	var guestName, guestPhone, groupID, rule sql.NullString

	err := row.Scan(
		&b.ID, &b.CourtID, &date, &b.StartMinute, &b.DurationMinutes, &status,
		&assigneeKind, &userID, &athleteID, &guestName, &guestPhone,
		&rate, &total, &negotiated, &b.Notes,
		&groupID, &rule,
	)
	if err != nil {
		return booking.Booking{}, err
	}

	if b.Day, err = booking.ParseDay(date); err != nil {
		return booking.Booking{}, fmt.Errorf("booking %d: %w", b.ID, err)
	}
	b.Status = booking.Status(status)
	b.Assignee = booking.Assignee{
		Kind:       booking.AssigneeKind(assigneeKind),
		UserID:     userID.Int64,
		AthleteID:  athleteID.Int64,
		GuestName:  guestName.String,
		GuestPhone: guestPhone.String,
	}
	b.HourlyRateCents = nullableInt64(rate)
	b.TotalCents = nullableInt64(total)
	b.NegotiatedTotalCents = nullableInt64(negotiated)
	b.RecurrenceGroupID = groupID.String

	if rule.Valid && rule.String != "" {
		var snapshot booking.RecurrenceRule
		if err := json.Unmarshal([]byte(rule.String), &snapshot); err != nil {
			return booking.Booking{}, fmt.Errorf("booking %d rule snapshot: %w", b.ID, err)
		}
		b.RecurrenceRule = &snapshot
	}
	return b, nil
}

func collectBookings(rows *sql.Rows) ([]booking.Booking, error) {
	var out []booking.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func marshalRule(rule *booking.RecurrenceRule) (sql.NullString, error) {
	if rule == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(rule)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal rule snapshot: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func toNullInt64(value *int64) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *value, Valid: true}
}

func nullableInt64(value sql.NullInt64) *int64 {
	if !value.Valid {
		return nil
	}
	v := value.Int64
	return &v
}

func nullableInt(value sql.NullInt64) *int {
	if !value.Valid {
		return nil
	}
	v := int(value.Int64)
	return &v
}

func zeroNull(value int64) sql.NullInt64 {
	if value == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: value, Valid: true}
}

func emptyNull(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
