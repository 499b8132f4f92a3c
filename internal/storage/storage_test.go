package storage

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/avstrong/spotscape/internal/booking"
	"github.com/avstrong/spotscape/internal/logger"
	"github.com/avstrong/spotscape/internal/storage/memory"
)

type mockKV struct {
	mock.Mock
}

func (m *mockKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}

	return args.Get(0).([]byte), args.Bool(1), args.Error(2)
}

func (m *mockKV) Set(ctx context.Context, key string, value []byte) error {
	return m.Called(ctx, key, value).Error(0)
}

func sample() []booking.Booking {
	bookedAt := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)

	return []booking.Booking{
		{
			ID: 1, SpotID: 1, SpotName: "Delhi Central Park", Date: "2025-06-15", Time: "14:00",
			Duration: 2, Price: "200", TotalPrice: 400, Status: booking.StatusUpcoming,
			BookedAt: bookedAt, PaymentMethod: "card",
		},
		{
			ID: 2, SpotID: 2, SpotName: "Mumbai Marine Drive", Date: "2025-06-10", Time: "10:00",
			Duration: 3, Price: "₹350", TotalPrice: 1050, Status: booking.StatusCancelled,
			BookedAt: bookedAt,
		},
	}
}

func TestAccessorRoundTrip(t *testing.T) {
	ctx := context.Background()
	a := New(Config{KV: memory.New()})

	require.NoError(t, a.SaveAll(ctx, sample()))

	got, err := a.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, sample(), got)
}

func TestAccessorAbsentKeyIsEmpty(t *testing.T) {
	a := New(Config{KV: memory.New()})

	got, err := a.LoadAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, DefaultKey, a.Key())
}

func TestAccessorCorruptValueFallsBackToEmpty(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	require.NoError(t, kv.Set(ctx, "bookings", []byte("{not json")))

	var buf bytes.Buffer

	a := New(Config{KV: kv, Key: "bookings", L: logger.New(logger.Conf{Out: &buf, Format: "json"})})

	got, err := a.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Contains(t, buf.String(), "corrupt")

	raw, ok, err := kv.Get(ctx, "bookings")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "{not json", string(raw))
}

func TestAccessorDropsRecordsOutsideLifecycle(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	raw := `[{"id":1,"status":"pending"},{"id":2},{"id":3,"status":"upcoming"},{"id":3,"status":"cancelled"},{"status":"completed"}]`
	require.NoError(t, kv.Set(ctx, DefaultKey, []byte(raw)))

	var buf bytes.Buffer

	a := New(Config{KV: kv, L: logger.New(logger.Conf{Out: &buf, Format: "json"})})

	got, err := a.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.EqualValues(t, 3, got[0].ID)
	assert.Equal(t, booking.StatusUpcoming, got[0].Status)
	assert.Contains(t, buf.String(), `unknown status \"pending\"`)
}

func TestAccessorSaveNilWritesEmptyArray(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	a := New(Config{KV: kv})

	require.NoError(t, a.SaveAll(ctx, nil))

	raw, ok, err := kv.Get(ctx, DefaultKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", string(raw))
}

func TestAccessorPropagatesBackendErrors(t *testing.T) {
	ctx := context.Background()
	kv := new(mockKV)
	a := New(Config{KV: kv, Key: "k"})
	boom := errors.New("backend down")

	kv.On("Get", ctx, "k").Return(nil, false, boom).Once()
	kv.On("Set", ctx, "k", mock.Anything).Return(boom).Once()

	_, err := a.LoadAll(ctx)
	assert.ErrorIs(t, err, boom)

	err = a.SaveAll(ctx, sample())
	assert.ErrorIs(t, err, boom)

	kv.AssertExpectations(t)
}
