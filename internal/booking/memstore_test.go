package booking

import (
	"context"
	"sync"
)

// memStore is an in-memory Store for exercising the engine without a
// database. The sqlite-backed store is covered in internal/store.
type memStore struct {
	mu       sync.Mutex
	venues   map[int64]Venue
	courts   map[int64]Court
	blocks   []BlackoutBlock
	entries  map[int64][]PriceTableEntry
	bookings map[int64]Booking
	athletes map[int64]Athlete
	nextID   int64
}

func newMemStore() *memStore {
	return &memStore{
		venues:   make(map[int64]Venue),
		courts:   make(map[int64]Court),
		entries:  make(map[int64][]PriceTableEntry),
		bookings: make(map[int64]Booking),
		athletes: make(map[int64]Athlete),
	}
}

func (s *memStore) addVenue(v Venue) Venue {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	v.ID = s.nextID
	s.venues[v.ID] = v
	return v
}

func (s *memStore) addCourt(c Court) Court {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	c.ID = s.nextID
	s.courts[c.ID] = c
	return c
}

func (s *memStore) addBlock(b BlackoutBlock) BlackoutBlock {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	b.ID = s.nextID
	s.blocks = append(s.blocks, b)
	return b
}

func (s *memStore) addPriceEntry(e PriceTableEntry) PriceTableEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	e.ID = s.nextID
	s.entries[e.CourtID] = append(s.entries[e.CourtID], e)
	return e
}

func (s *memStore) VenueByID(_ context.Context, id int64) (Venue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.venues[id]
	if !ok {
		return Venue{}, ErrNotFound
	}
	return v, nil
}

func (s *memStore) CourtByID(_ context.Context, id int64) (Court, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.courts[id]
	if !ok {
		return Court{}, ErrNotFound
	}
	return c, nil
}

func (s *memStore) ListCourts(_ context.Context, venueID int64) ([]Court, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Court
	for _, c := range s.courts {
		if c.VenueID == venueID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *memStore) BookingByID(_ context.Context, id int64) (Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return Booking{}, ErrNotFound
	}
	return b, nil
}

func (s *memStore) ListBookingsForDay(_ context.Context, courtID int64, day Day) ([]Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Booking
	for _, b := range s.bookings {
		if b.CourtID == courtID && b.Day.Equal(day) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *memStore) ListBookings(_ context.Context, params ListBookingsParams) ([]Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Booking
	for _, b := range s.bookings {
		if params.CourtID != 0 && b.CourtID != params.CourtID {
			continue
		}
		if params.Status != "" && b.Status != params.Status {
			continue
		}
		if !params.DateFrom.IsZero() && b.Day.Before(params.DateFrom) {
			continue
		}
		if !params.DateTo.IsZero() && b.Day.After(params.DateTo) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *memStore) ListConfirmedEndingBefore(_ context.Context, day Day, minute int) ([]Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Booking
	for _, b := range s.bookings {
		if b.Status != StatusConfirmed {
			continue
		}
		if b.Day.Before(day) || (b.Day.Equal(day) && b.EndMinute() <= minute) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *memStore) ListBlocksForDay(_ context.Context, venueID int64, day Day) ([]BlackoutBlock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []BlackoutBlock
	for _, b := range s.blocks {
		if b.VenueID == venueID && b.CoversDay(day) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *memStore) ListPriceEntries(_ context.Context, courtID int64) ([]PriceTableEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []PriceTableEntry
	for _, e := range s.entries[courtID] {
		if e.Active {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *memStore) CreateBookings(_ context.Context, bookings []Booking) ([]Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Booking, 0, len(bookings))
	for _, b := range bookings {
		s.nextID++
		b.ID = s.nextID
		s.bookings[b.ID] = b
		out = append(out, b)
	}
	return out, nil
}

func (s *memStore) UpdateBooking(_ context.Context, b Booking) (Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[b.ID]; !ok {
		return Booking{}, ErrNotFound
	}
	s.bookings[b.ID] = b
	return b, nil
}

func (s *memStore) AthleteByID(_ context.Context, id int64) (Athlete, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.athletes[id]
	if !ok {
		return Athlete{}, ErrAthleteNotFound
	}
	return a, nil
}

func (s *memStore) AthleteByPhone(_ context.Context, phone string) (Athlete, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.athletes {
		if a.Phone == phone {
			return a, nil
		}
	}
	return Athlete{}, ErrAthleteNotFound
}

func ptrInt64(v int64) *int64 { return &v }
func ptrInt(v int) *int       { return &v }
