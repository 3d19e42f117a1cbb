package memory

import (
	"context"
	"time"

	"github.com/adeilh/go-fetchkit/cache"
)

// Store adapts Cache[[]byte] to the cache.Store contract so byte-oriented
// callers can swap the in-memory backend for Redis without code changes.
type Store struct {
	c *Cache[[]byte]
}

var _ cache.Store = (*Store)(nil)

func NewStore(opts ...Option) *Store {
	return &Store{c: New[[]byte](opts...)}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	value, ok := s.c.Get(key)
	if !ok {
		return nil, cache.ErrNotFound
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.c.PutTTL(key, append([]byte(nil), value...), ttl)
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.c.Delete(key)
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.c.Clear()
	return nil
}
