// Package storage persists the booking list as a single JSON array stored
// under one key of a key/value backend.
package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/avstrong/spotscape/internal/booking"
	"github.com/avstrong/spotscape/internal/logger"
)

const DefaultKey = "parkingBookings"

// KV is the minimal contract every backend satisfies.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

type Config struct {
	L   *logger.Logger
	KV  KV
	Key string
}

type Accessor struct {
	l   *logger.Logger
	kv  KV
	key string
}

func New(conf Config) *Accessor {
	key := conf.Key
	if key == "" {
		key = DefaultKey
	}

	l := conf.L
	if l == nil {
		l = logger.Nop()
	}

	return &Accessor{l: l, kv: conf.KV, key: key}
}

func (a *Accessor) Key() string {
	return a.key
}

// LoadAll returns an empty list when the key is absent. A value that is not a
// valid booking list is logged and treated as empty; it stays in the backend
// until the next SaveAll replaces it.
func (a *Accessor) LoadAll(ctx context.Context) ([]booking.Booking, error) {
	raw, ok, err := a.kv.Get(ctx, a.key)
	if err != nil {
		return nil, fmt.Errorf("read key %q: %w", a.key, err)
	}

	if !ok || len(raw) == 0 {
		return []booking.Booking{}, nil
	}

	var bookings []booking.Booking

	if err := json.Unmarshal(raw, &bookings); err != nil {
		a.l.LogWarnf("Stored bookings under %q are corrupt, starting empty: %v", a.key, err.Error())

		return []booking.Booking{}, nil
	}

	return a.keepValid(bookings), nil
}

// keepValid drops records that could never be read back through the
// lifecycle: non-positive or repeated ids and unknown statuses.
func (a *Accessor) keepValid(bookings []booking.Booking) []booking.Booking {
	valid := make([]booking.Booking, 0, len(bookings))
	seen := make(map[int64]struct{}, len(bookings))

	for _, b := range bookings {
		_, dup := seen[b.ID]

		switch {
		case b.ID <= 0 || dup:
			a.l.LogWarnf("Dropping stored booking under %q with id %v: id is missing or repeated", a.key, b.ID)
		case !b.Status.Valid():
			a.l.LogWarnf("Dropping stored booking %v under %q: unknown status %q", b.ID, a.key, b.Status)
		default:
			seen[b.ID] = struct{}{}
			valid = append(valid, b)
		}
	}

	return valid
}

func (a *Accessor) SaveAll(ctx context.Context, bookings []booking.Booking) error {
	if bookings == nil {
		bookings = []booking.Booking{}
	}

	raw, err := json.Marshal(bookings)
	if err != nil {
		return fmt.Errorf("encode bookings: %w", err)
	}

	if err := a.kv.Set(ctx, a.key, raw); err != nil {
		return fmt.Errorf("write key %q: %w", a.key, err)
	}

	return nil
}
