// internal/booking/lock.go
package booking

import (
	"fmt"
	"sync"
)

// slotLocks serializes check-then-write sequences per (court, day). Each
// court's calendar day is an independent resource; two requests touching
// the same court and date must not interleave between the availability
// read and the booking write.
type slotLocks struct {
	mu    sync.Mutex
	locks map[string]*slotLock
}

type slotLock struct {
	mu   sync.Mutex
	refs int
}

func newSlotLocks() *slotLocks {
	return &slotLocks{locks: make(map[string]*slotLock)}
}

// acquire blocks until the (court, day) lock is held and returns the
// release function.
func (s *slotLocks) acquire(courtID int64, day Day) func() {
	key := fmt.Sprintf("%d@%s", courtID, day)

	s.mu.Lock()
	e := s.locks[key]
	if e == nil {
		e = &slotLock{}
		s.locks[key] = e
	}
	e.refs++
	s.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		s.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(s.locks, key)
		}
		s.mu.Unlock()
	}
}
