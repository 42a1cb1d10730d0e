// internal/booking/errors.go
package booking

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks a missing venue, court, athlete or booking.
	ErrNotFound = errors.New("not found")
	// ErrEditLocked is returned for date/time/duration changes requested
	// inside the edit-lock window before the booking starts.
	ErrEditLocked = errors.New("booking schedule is locked this close to start time")
	// ErrTerminalState is returned for field changes on a cancelled or
	// completed booking.
	ErrTerminalState = errors.New("booking is cancelled or completed")
)

// ValidationError reports a rejected request field. Nothing is persisted
// when one is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// InvalidTransitionError reports an illegal status change.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition booking from %s to %s", e.From, e.To)
}

// ConflictError reports that a rescheduled booking would collide with a
// blackout block or another booking. For batch creation conflicts are not
// errors; they come back as rejected occurrences instead.
type ConflictError struct {
	Reason string
}

func (e ConflictError) Error() string {
	return e.Reason
}
