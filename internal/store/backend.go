// Package store persists scan history. A SessionStore keeps the ordered
// history in memory and writes through to a pluggable key-value Backend;
// backend failures degrade the store to memory-only instead of surfacing.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Backend.Get when no record exists for the key.
var ErrNotFound = errors.New("record not found")

// Backend provides an abstraction for storing and retrieving history records.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
