package cache

// TTL-bounded report cache keyed by (kind, token identifier). An LRU
// backing store bounds memory; entries past the TTL are treated as
// absent on read and evicted lazily. No request coalescing: concurrent
// cold misses may each recompute, Put simply overwrites.

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Kind distinguishes report flavors sharing one cache.
type Kind string

const (
	KindDetail Kind = "detail"
)

const (
	DefaultMaxEntries = 1000
	DefaultTTL        = 300 * time.Second
)

type entry[V any] struct {
	value    V
	storedAt time.Time
}

type Cache[V any] struct {
	ttl   time.Duration
	mu    sync.Mutex
	store *lru.Cache[string, entry[V]]
	now   func() time.Time
}

func New[V any](maxEntries int, ttl time.Duration) *Cache[V] {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	store, _ := lru.New[string, entry[V]](maxEntries)
	return &Cache[V]{
		ttl:   ttl,
		store: store,
		now:   time.Now,
	}
}

func key(kind Kind, token string) string {
	return string(kind) + ":" + token
}

// Get returns the cached value if present and not past the TTL.
// The lock covers only the map access, never a recomputation.
func (c *Cache[V]) Get(kind Kind, token string) (V, bool) {
	var zero V
	if c == nil || token == "" {
		return zero, false
	}
	k := key(kind, token)

	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.store.Get(k)
	if !ok {
		return zero, false
	}
	if c.now().Sub(e.storedAt) > c.ttl {
		c.store.Remove(k)
		return zero, false
	}
	return e.value, true
}

// Put stores the value, overwriting any existing entry.
func (c *Cache[V]) Put(kind Kind, token string, value V) {
	if c == nil || token == "" {
		return
	}
	c.mu.Lock()
	c.store.Add(key(kind, token), entry[V]{value: value, storedAt: c.now()})
	c.mu.Unlock()
}

// Purge drops all entries. Used at shutdown.
func (c *Cache[V]) Purge() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.store.Purge()
	c.mu.Unlock()
}
