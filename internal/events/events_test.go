package events

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/avstrong/spotscape/internal/booking"
)

func TestBusPublishesInOrder(t *testing.T) {
	bus := NewBus()

	var got []string

	bus.Subscribe(func(e Event) { got = append(got, "first:"+e.Type) })
	bus.Subscribe(func(e Event) { got = append(got, "second:"+e.Type) })

	bus.Publish(Event{Type: TypeBookingCreated, Booking: booking.Booking{ID: 1}})

	assert.Equal(t, []string{"first:booking.created", "second:booking.created"}, got)
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus()

	var calls int

	unsubscribe := bus.Subscribe(func(Event) { calls++ })
	bus.Publish(Event{Type: TypeBookingUpdated})
	unsubscribe()
	bus.Publish(Event{Type: TypeBookingUpdated})

	assert.Equal(t, 1, calls)
}

func TestBusStampsCreatedAt(t *testing.T) {
	bus := NewBus()

	var seen Event

	bus.Subscribe(func(e Event) { seen = e })
	bus.Publish(Event{Type: TypeStateHydrated, Count: 3})

	assert.False(t, seen.CreatedAt.IsZero())
	assert.Equal(t, 3, seen.Count)
}
