package events

import (
	"sync"
	"time"

	"github.com/avstrong/spotscape/internal/booking"
)

const (
	TypeBookingCreated = "booking.created"
	TypeBookingUpdated = "booking.updated"
	TypeStateHydrated  = "state.hydrated"
)

// Event describes one change of the booking list.
type Event struct {
	Type      string
	Booking   booking.Booking
	Count     int
	CreatedAt time.Time
}

// Handler reacts to an event.
type Handler func(event Event)

// Bus provides in-process pub/sub for booking events.
type Bus struct {
	mu          sync.RWMutex
	subscribers []Handler
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers handler for every event and returns a function that
// removes it again.
func (b *Bus) Subscribe(handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subscribers = append(b.subscribers, handler)
	idx := len(b.subscribers) - 1

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		if idx < len(b.subscribers) {
			b.subscribers[idx] = nil
		}
	}
}

// Publish runs handlers synchronously in subscription order.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.subscribers...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	for _, handler := range handlers {
		if handler != nil {
			handler(event)
		}
	}
}
