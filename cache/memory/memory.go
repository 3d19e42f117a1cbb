// Package memory provides an in-process expiring cache. Entries carry an
// absolute expiry instant and are evicted lazily: an expired entry is removed
// when it is next read or overwritten, never by a background sweep. There is
// no capacity bound and no LRU; the cache grows with its key set.
package memory

import (
	"sync"
	"time"
)

// DefaultTTL is applied by Put when the cache was built without an explicit
// default and by any PutTTL call with a non-positive ttl.
const DefaultTTL = 5 * time.Minute

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

func (e entry[V]) expired(now time.Time) bool {
	return !e.expiresAt.After(now)
}

// Cache maps string keys to values of type V with per-entry expiry.
// The zero value is not usable; construct with New.
type Cache[V any] struct {
	mu         sync.RWMutex
	entries    map[string]entry[V]
	defaultTTL time.Duration
	now        func() time.Time
}

func New[V any](opts ...Option) *Cache[V] {
	cfg := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Cache[V]{
		entries:    make(map[string]entry[V]),
		defaultTTL: cfg.DefaultTTL,
		now:        cfg.Now,
	}
}

// Put stores value under key using the cache's default TTL, replacing any
// existing entry unconditionally.
func (c *Cache[V]) Put(key string, value V) {
	c.PutTTL(key, value, 0)
}

// PutTTL stores value under key with expiry now+ttl. A non-positive ttl
// falls back to the cache's default.
func (c *Cache[V]) PutTTL(key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
}

// Get returns the value stored under key. The second return is false when
// the key is absent or its entry has expired; an expired entry is removed
// on the way out, so a miss also reclaims the slot.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	var zero V
	if !ok {
		return zero, false
	}
	if e.expired(c.now()) {
		c.mu.Lock()
		// Re-check under the write lock: a concurrent Put may have
		// replaced the entry with a live one since the read above.
		if cur, ok := c.entries[key]; ok && cur.expired(c.now()) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return zero, false
	}
	return e.value, true
}

// Delete removes the entry for key; removing an absent key is a no-op.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Clear removes all entries.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry[V])
	c.mu.Unlock()
}

// Len reports the number of entries currently held, expired-but-untouched
// ones included.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
