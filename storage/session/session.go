// Package session provides the transient variant of storage.Store: values
// live in process memory and vanish with the owning process.
package session

import (
	"context"
	"sync"

	"github.com/adeilh/go-fetchkit/storage"
)

type Store struct {
	mu     sync.RWMutex
	values map[string][]byte
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{values: make(map[string][]byte)}
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.values[key] = append([]byte(nil), value...)
	s.mu.Unlock()
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	value, ok := s.values[key]
	s.mu.RUnlock()
	if !ok {
		return nil, storage.ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.values = make(map[string][]byte)
	s.mu.Unlock()
	return nil
}
