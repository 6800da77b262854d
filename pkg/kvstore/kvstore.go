package kvstore

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned when a slot has no value.
var ErrKeyNotFound = errors.New("kvstore: key not found")

// Store is a string-keyed slot store. Each slot holds one opaque JSON
// document written as a whole; there is no partial update.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
