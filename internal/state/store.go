// Package state owns the in-memory booking list shared by every consumer of
// the service. The list is mirrored to storage on each mutation: the write
// happens first and the in-memory copy is swapped only once it succeeded.
package state

import (
	"context"
	"fmt"
	"sync"

	"github.com/avstrong/spotscape/internal/booking"
	"github.com/avstrong/spotscape/internal/events"
	"github.com/avstrong/spotscape/internal/logger"
)

type accessor interface {
	LoadAll(ctx context.Context) ([]booking.Booking, error)
	SaveAll(ctx context.Context, bookings []booking.Booking) error
}

type Config struct {
	L       *logger.Logger
	Storage accessor
	Bus     *events.Bus
}

type Store struct {
	mu       sync.RWMutex
	l        *logger.Logger
	storage  accessor
	bus      *events.Bus
	bookings []booking.Booking
}

func New(conf Config) *Store {
	s := &Store{
		l:       conf.L,
		storage: conf.Storage,
		bus:     conf.Bus,
	}

	if s.l == nil {
		s.l = logger.Nop()
	}

	if s.bus == nil {
		s.bus = events.NewBus()
	}

	return s
}

// Hydrate replaces the in-memory list with what storage holds.
func (s *Store) Hydrate(ctx context.Context) error {
	s.mu.Lock()

	bookings, err := s.storage.LoadAll(ctx)
	if err != nil {
		s.mu.Unlock()

		return fmt.Errorf("load bookings: %w", err)
	}

	s.bookings = bookings
	count := len(bookings)
	s.mu.Unlock()

	s.l.LogInfo("Hydrated %d bookings from storage", count)
	s.bus.Publish(events.Event{Type: events.TypeStateHydrated, Count: count})

	return nil
}

func (s *Store) Subscribe(handler events.Handler) func() {
	return s.bus.Subscribe(handler)
}

func (s *Store) Bookings() []booking.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return clone(s.bookings)
}

func (s *Store) Get(id int64) (*booking.Booking, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, false
	}

	b := s.bookings[idx]

	return &b, true
}

func (s *Store) Upcoming() []booking.Booking {
	return s.filter(func(b booking.Booking) bool { return b.Status == booking.StatusUpcoming })
}

// Past holds every booking that reached a terminal status.
func (s *Store) Past() []booking.Booking {
	return s.filter(func(b booking.Booking) bool { return b.Status.Terminal() })
}

func (s *Store) CountByStatus() map[booking.Status]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := map[booking.Status]int{
		booking.StatusUpcoming:  0,
		booking.StatusCompleted: 0,
		booking.StatusCancelled: 0,
	}

	for _, b := range s.bookings {
		counts[b.Status]++
	}

	return counts
}

// MaxID is the highest id currently held, 0 for an empty list.
func (s *Store) MaxID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var maxID int64

	for _, b := range s.bookings {
		maxID = max(maxID, b.ID)
	}

	return maxID
}

func (s *Store) Add(ctx context.Context, b booking.Booking) error {
	s.mu.Lock()

	next := append(clone(s.bookings), b)

	if err := s.storage.SaveAll(ctx, next); err != nil {
		s.mu.Unlock()

		return fmt.Errorf("save bookings: %w", err)
	}

	s.bookings = next
	s.mu.Unlock()

	s.bus.Publish(events.Event{Type: events.TypeBookingCreated, Booking: b, Count: len(next)})

	return nil
}

// Update applies mutate to a copy of booking id. Only the status it sets is
// kept; every other field is immutable after creation.
func (s *Store) Update(ctx context.Context, id int64, mutate func(b *booking.Booking) error) (*booking.Booking, error) {
	s.mu.Lock()

	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()

		return nil, fmt.Errorf("booking %d: %w", id, booking.ErrRecordNotFound)
	}

	candidate := s.bookings[idx]
	if err := mutate(&candidate); err != nil {
		s.mu.Unlock()

		return nil, err
	}

	if !candidate.Status.Valid() {
		s.mu.Unlock()

		return nil, fmt.Errorf("booking %d: status %q: %w", id, candidate.Status, booking.ErrInvalidTransition)
	}

	next := clone(s.bookings)
	next[idx].Status = candidate.Status

	if err := s.storage.SaveAll(ctx, next); err != nil {
		s.mu.Unlock()

		return nil, fmt.Errorf("save bookings: %w", err)
	}

	s.bookings = next
	updated := next[idx]
	count := len(next)
	s.mu.Unlock()

	s.bus.Publish(events.Event{Type: events.TypeBookingUpdated, Booking: updated, Count: count})

	return &updated, nil
}

func (s *Store) filter(keep func(b booking.Booking) bool) []booking.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]booking.Booking, 0, len(s.bookings))

	for _, b := range s.bookings {
		if keep(b) {
			result = append(result, b)
		}
	}

	return result
}

func (s *Store) indexOf(id int64) int {
	for i := range s.bookings {
		if s.bookings[i].ID == id {
			return i
		}
	}

	return -1
}

func clone(bookings []booking.Booking) []booking.Booking {
	dup := make([]booking.Booking, len(bookings))
	copy(dup, bookings)

	return dup
}
