package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDBGetSet(t *testing.T) {
	ctx := context.Background()
	db := New()

	_, ok, err := db.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	value := []byte("[1]")
	require.NoError(t, db.Set(ctx, "k", value))

	value[1] = '2'

	got, ok, err := db.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[1]", string(got))

	_, ok, err = db.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDBHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	db := New()

	assert.ErrorIs(t, db.Set(ctx, "k", nil), context.Canceled)

	_, _, err := db.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}
