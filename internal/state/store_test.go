package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avstrong/spotscape/internal/booking"
	"github.com/avstrong/spotscape/internal/events"
	"github.com/avstrong/spotscape/internal/storage"
	"github.com/avstrong/spotscape/internal/storage/memory"
)

type failingAccessor struct {
	bookings []booking.Booking
	saveErr  error
}

func (f *failingAccessor) LoadAll(context.Context) ([]booking.Booking, error) {
	return f.bookings, nil
}

func (f *failingAccessor) SaveAll(context.Context, []booking.Booking) error {
	return f.saveErr
}

func upcoming(id int64) booking.Booking {
	return booking.Booking{
		ID: id, SpotID: 1, SpotName: "Delhi Central Park", Date: "2025-06-15", Time: "14:00",
		Duration: 2, Price: "200", TotalPrice: 400, Status: booking.StatusUpcoming,
		BookedAt: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC), PaymentMethod: "card",
	}
}

func newStore(t *testing.T, seed ...booking.Booking) (*Store, *storage.Accessor) {
	t.Helper()

	ctx := context.Background()
	acc := storage.New(storage.Config{KV: memory.New()})

	if len(seed) > 0 {
		require.NoError(t, acc.SaveAll(ctx, seed))
	}

	s := New(Config{Storage: acc})
	require.NoError(t, s.Hydrate(ctx))

	return s, acc
}

func TestStoreHydrate(t *testing.T) {
	s, _ := newStore(t, upcoming(1), upcoming(5))

	assert.Len(t, s.Bookings(), 2)
	assert.EqualValues(t, 5, s.MaxID())
}

func TestStoreHydrateSkipsUnknownStatuses(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	require.NoError(t, kv.Set(ctx, storage.DefaultKey, []byte(`[{"id":1,"status":"pending"},{"id":2},{"id":3,"status":"completed"}]`)))

	s := New(Config{Storage: storage.New(storage.Config{KV: kv})})
	require.NoError(t, s.Hydrate(ctx))

	require.Len(t, s.Bookings(), 1)
	assert.EqualValues(t, 3, s.Bookings()[0].ID)
	assert.Len(t, s.Past(), 1)
	assert.Empty(t, s.Upcoming())
	assert.Equal(t, map[booking.Status]int{
		booking.StatusUpcoming:  0,
		booking.StatusCompleted: 1,
		booking.StatusCancelled: 0,
	}, s.CountByStatus())
}

func TestStoreAddMirrorsStorage(t *testing.T) {
	ctx := context.Background()
	s, acc := newStore(t, upcoming(1))

	require.NoError(t, s.Add(ctx, upcoming(2)))

	stored, err := acc.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, s.Bookings(), stored)
	assert.Len(t, stored, 2)
	assert.Equal(t, upcoming(1), stored[0])
}

func TestStoreUpdateKeepsOnlyStatus(t *testing.T) {
	ctx := context.Background()
	s, acc := newStore(t, upcoming(42))

	updated, err := s.Update(ctx, 42, func(b *booking.Booking) error {
		b.Status = booking.StatusCancelled
		b.TotalPrice = 1
		b.SpotName = "changed"

		return nil
	})
	require.NoError(t, err)

	want := upcoming(42)
	want.Status = booking.StatusCancelled
	assert.Equal(t, want, *updated)

	stored, err := acc.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []booking.Booking{want}, stored)
}

func TestStoreUpdateNotFound(t *testing.T) {
	s, _ := newStore(t, upcoming(42))

	_, err := s.Update(context.Background(), 999, func(*booking.Booking) error { return nil })
	assert.ErrorIs(t, err, booking.ErrRecordNotFound)
	assert.Equal(t, []booking.Booking{upcoming(42)}, s.Bookings())
}

func TestStoreRejectsUnknownStatus(t *testing.T) {
	s, _ := newStore(t, upcoming(42))

	_, err := s.Update(context.Background(), 42, func(b *booking.Booking) error {
		b.Status = "archived"

		return nil
	})
	assert.ErrorIs(t, err, booking.ErrInvalidTransition)
	assert.Equal(t, booking.StatusUpcoming, s.Bookings()[0].Status)
}

func TestStoreFailedWriteLeavesMemoryUntouched(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk full")
	acc := &failingAccessor{bookings: []booking.Booking{upcoming(1)}, saveErr: boom}

	s := New(Config{Storage: acc})
	require.NoError(t, s.Hydrate(ctx))

	err := s.Add(ctx, upcoming(2))
	assert.ErrorIs(t, err, boom)

	_, err = s.Update(ctx, 1, func(b *booking.Booking) error {
		b.Status = booking.StatusCancelled

		return nil
	})
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, []booking.Booking{upcoming(1)}, s.Bookings())
}

func TestStoreFiltersAndCounts(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t, upcoming(1), upcoming(2), upcoming(3))

	_, err := s.Update(ctx, 2, func(b *booking.Booking) error {
		b.Status = booking.StatusCompleted

		return nil
	})
	require.NoError(t, err)

	_, err = s.Update(ctx, 3, func(b *booking.Booking) error {
		b.Status = booking.StatusCancelled

		return nil
	})
	require.NoError(t, err)

	assert.Len(t, s.Upcoming(), 1)
	assert.Len(t, s.Past(), 2)
	assert.Equal(t, map[booking.Status]int{
		booking.StatusUpcoming:  1,
		booking.StatusCompleted: 1,
		booking.StatusCancelled: 1,
	}, s.CountByStatus())
}

func TestStoreNotifiesSubscribers(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	var seen []events.Event

	s.Subscribe(func(e events.Event) { seen = append(seen, e) })

	require.NoError(t, s.Add(ctx, upcoming(1)))

	_, err := s.Update(ctx, 1, func(b *booking.Booking) error {
		b.Status = booking.StatusCancelled

		return nil
	})
	require.NoError(t, err)

	require.Len(t, seen, 2)
	assert.Equal(t, events.TypeBookingCreated, seen[0].Type)
	assert.Equal(t, events.TypeBookingUpdated, seen[1].Type)
	assert.Equal(t, booking.StatusCancelled, seen[1].Booking.Status)
	assert.Equal(t, 1, seen[1].Count)
}

func TestStoreReturnsCopies(t *testing.T) {
	s, _ := newStore(t, upcoming(1))

	list := s.Bookings()
	list[0].Status = booking.StatusCancelled

	got, ok := s.Get(1)
	require.True(t, ok)
	assert.Equal(t, booking.StatusUpcoming, got.Status)
}
