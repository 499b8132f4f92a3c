package memory

import (
	"context"
	"sync"
)

// DB is an in-process key/value store. Values are copied on the way in and
// out so callers never share a buffer with the store.
type DB struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func New() *DB {
	return &DB{values: make(map[string][]byte)}
}

func (db *DB) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	db.mu.RLock()
	defer db.mu.RUnlock()

	v, ok := db.values[key]
	if !ok {
		return nil, false, nil
	}

	return append([]byte(nil), v...), true, nil
}

func (db *DB) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	db.values[key] = append([]byte(nil), value...)

	return nil
}
