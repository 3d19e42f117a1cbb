// Package postgres implements the durable storage.Store over PostgreSQL.
// Keys are scoped by namespace so independent consumers can share a table.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/adeilh/go-fetchkit/storage"
)

var ErrMissingDSN = errors.New("postgres: DSN is required")

const schema = `CREATE TABLE IF NOT EXISTS kv_entries (
	namespace  TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (namespace, key)
)`

// Store persists key-value pairs in a kv_entries table.
type Store struct {
	db        *sql.DB
	namespace string
}

var _ storage.Store = (*Store)(nil)

// Open connects to PostgreSQL, applies pool settings, ensures the schema,
// and returns a namespaced store.
func Open(ctx context.Context, opts ...Option) (*Store, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.DSN == "" {
		return nil, ErrMissingDSN
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns >= 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return &Store{db: db, namespace: cfg.Namespace}, nil
}

// NewStore wraps an existing connection without touching the schema.
func NewStore(db *sql.DB, namespace string) *Store {
	if namespace == "" {
		namespace = defaultOptions().Namespace
	}
	return &Store{db: db, namespace: namespace}
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	const query = `INSERT INTO kv_entries (namespace, key, value, updated_at)
	               VALUES ($1, $2, $3, now())
	               ON CONFLICT (namespace, key)
	               DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	if _, err := s.db.ExecContext(ctx, query, s.namespace, key, value); err != nil {
		return fmt.Errorf("postgres: set %q: %w", key, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	const query = `SELECT value FROM kv_entries WHERE namespace = $1 AND key = $2`
	var value []byte
	err := s.db.QueryRowContext(ctx, query, s.namespace, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get %q: %w", key, err)
	}
	return value, nil
}

// Remove deletes the entry for key; removing an absent key is a no-op.
func (s *Store) Remove(ctx context.Context, key string) error {
	const query = `DELETE FROM kv_entries WHERE namespace = $1 AND key = $2`
	if _, err := s.db.ExecContext(ctx, query, s.namespace, key); err != nil {
		return fmt.Errorf("postgres: remove %q: %w", key, err)
	}
	return nil
}

// Clear removes every entry in the store's namespace, leaving other
// namespaces untouched.
func (s *Store) Clear(ctx context.Context) error {
	const query = `DELETE FROM kv_entries WHERE namespace = $1`
	if _, err := s.db.ExecContext(ctx, query, s.namespace); err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
