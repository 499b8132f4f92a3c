package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreGetSet(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	s := New(Config{Address: mr.Addr(), Prefix: "spotscape:"})
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.PingContext(ctx))

	_, ok, err := s.Get(ctx, "parkingBookings")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "parkingBookings", []byte(`[{"id":1}]`)))

	got, ok, err := s.Get(ctx, "parkingBookings")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `[{"id":1}]`, string(got))

	raw, err := mr.Get("spotscape:parkingBookings")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1}]`, raw)
}

func TestStoreReportsConnectionErrors(t *testing.T) {
	mr := miniredis.RunT(t)
	s := New(Config{Address: mr.Addr()})
	t.Cleanup(func() { _ = s.Close() })

	mr.Close()

	_, _, err := s.Get(context.Background(), "k")
	assert.Error(t, err)
}
