// Package storage defines durable key-value helpers. Unlike the cache
// package, entries carry no TTL: a value lives until it is removed or the
// store is cleared.
package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("storage: key not found")

// Store mirrors the cache surface (set/get/remove/clear) over a durable or
// session-scoped backend.
type Store interface {
	Set(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Remove(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
