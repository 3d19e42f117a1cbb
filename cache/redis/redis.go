// Package redis implements cache.Store over the Redis RESP protocol so the
// expiring cache can be shared across processes. Expiry is delegated to the
// server via SET PX; Clear issues FLUSHDB, which assumes the store owns its
// logical database.
package redis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/adeilh/go-fetchkit/cache"
)

// Store implements cache.Store against a Redis server.
type Store struct {
	opts   Options
	dialFn dialFunc
	pool   chan *clientConn
}

var _ cache.Store = (*Store)(nil)

type dialFunc func(context.Context, Options) (net.Conn, error)

// NewStore builds a Redis-backed cache store.
func NewStore(opts Options) *Store {
	cfg := opts.withDefaults()
	return &Store{opts: cfg, dialFn: defaultDial, pool: make(chan *clientConn, cfg.PoolSize)}
}

// WithDial allows overriding the dialer (useful for tests/mocks).
func (s *Store) WithDial(fn dialFunc) {
	if fn != nil {
		s.dialFn = fn
	}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}

	var payload []byte
	err := s.withConn(ctx, func(conn *clientConn) error {
		resp, err := s.roundTrip(conn, "GET", key)
		if err != nil {
			return err
		}
		switch v := resp.(type) {
		case nil:
			return cache.ErrNotFound
		case []byte:
			payload = append([]byte(nil), v...)
			return nil
		default:
			return fmt.Errorf("redis: unexpected GET response %T", resp)
		}
	})

	return payload, err
}

func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}

	return s.withConn(ctx, func(conn *clientConn) error {
		args := []string{"SET", key, string(value)}
		if ttl > 0 {
			ms := ttl.Milliseconds()
			if ms == 0 {
				ms = 1
			}
			args = append(args, "PX", strconv.FormatInt(ms, 10))
		}
		resp, err := s.roundTrip(conn, args...)
		if err != nil {
			return err
		}
		if msg, ok := resp.(string); ok && strings.EqualFold(msg, "OK") {
			return nil
		}
		return fmt.Errorf("redis: SET failed: %v", resp)
	})
}

// Delete removes key. Deleting an absent key is a no-op, mirroring the
// in-memory store.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}

	return s.withConn(ctx, func(conn *clientConn) error {
		resp, err := s.roundTrip(conn, "DEL", key)
		if err != nil {
			return err
		}
		if _, ok := resp.(int64); ok {
			return nil
		}
		return fmt.Errorf("redis: DEL failed: %v", resp)
	})
}

// Clear drops every key in the store's logical database.
func (s *Store) Clear(ctx context.Context) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}

	return s.withConn(ctx, func(conn *clientConn) error {
		resp, err := s.roundTrip(conn, "FLUSHDB")
		if err != nil {
			return err
		}
		if msg, ok := resp.(string); ok && strings.EqualFold(msg, "OK") {
			return nil
		}
		return fmt.Errorf("redis: FLUSHDB failed: %v", resp)
	})
}

func (s *Store) roundTrip(conn *clientConn, parts ...string) (any, error) {
	if err := s.send(conn, parts...); err != nil {
		return nil, err
	}
	return s.read(conn)
}

func (s *Store) withConn(ctx context.Context, fn func(*clientConn) error) error {
	conn, err := s.acquireConn(ctx)
	if err != nil {
		return err
	}
	broken := false
	defer func() {
		s.releaseConn(conn, broken)
	}()
	if err := fn(conn); err != nil {
		if errors.Is(err, net.ErrClosed) || errors.Is(err, io.EOF) {
			broken = true
		}
		return err
	}
	return nil
}

func ctxErr(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
