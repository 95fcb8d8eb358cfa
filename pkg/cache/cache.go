package cache

import (
	"container/list"
	"fmt"
	"strings"
	"sync"
	"time"
)

// CorruptionError reports a violated size or recency accounting invariant.
// It is fatal only to the cache instance, which resets itself; the calling
// operation proceeds uncached.
type CorruptionError struct {
	Detail string
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("cache accounting corrupted: %s", e.Detail)
}

// Config controls a cache instance's budgets and expiry.
type Config[V any] struct {
	MaxEntries     int
	MaxMemoryBytes int64
	TTL            time.Duration

	// EstimateSize returns the approximate in-memory cost of a value. When
	// nil a conservative default is used.
	EstimateSize func(V) int64
}

// DefaultConfig returns budgets suitable for index-entry caching.
func DefaultConfig[V any]() Config[V] {
	return Config[V]{
		MaxEntries:     500,
		MaxMemoryBytes: 16 << 20,
		TTL:            5 * time.Minute,
	}
}

type entry[V any] struct {
	key            string
	value          V
	insertedAt     time.Time
	lastAccessedAt time.Time
	size           int64
}

// Cache is a bounded, time-expiring key-to-value store shared by the search
// coordinator and the backend indexers. Expired entries are purged lazily on
// access rather than by a background sweep. All accounting happens inside a
// single mutex; no I/O is ever performed while holding it.
type Cache[V any] struct {
	mu sync.Mutex

	cfg     Config[V]
	entries map[string]*list.Element
	recency *list.List // front = most recently accessed
	memory  int64

	hits   uint64
	misses uint64

	now func() time.Time
}

// New creates a cache with the given configuration.
func New[V any](cfg Config[V]) *Cache[V] {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultConfig[V]().MaxEntries
	}
	if cfg.MaxMemoryBytes <= 0 {
		cfg.MaxMemoryBytes = DefaultConfig[V]().MaxMemoryBytes
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultConfig[V]().TTL
	}
	if cfg.EstimateSize == nil {
		cfg.EstimateSize = defaultSize[V]
	}
	return &Cache[V]{
		cfg:     cfg,
		entries: make(map[string]*list.Element),
		recency: list.New(),
		now:     time.Now,
	}
}

func defaultSize[V any](v V) int64 {
	switch val := any(v).(type) {
	case string:
		return int64(len(val)) + 16
	case []byte:
		return int64(len(val)) + 24
	default:
		return 512
	}
}

// Get returns the value for key if present and unexpired, refreshing its
// recency. An expired entry is removed and stops counting toward the
// memory budget before the miss is reported.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.entries[key]
	if !ok {
		c.misses++
		return zero, false
	}

	ent := el.Value.(*entry[V])
	if c.now().Sub(ent.insertedAt) >= c.cfg.TTL {
		c.removeElement(el)
		c.misses++
		return zero, false
	}

	ent.lastAccessedAt = c.now()
	c.recency.MoveToFront(el)
	c.hits++
	return ent.value, true
}

// Set estimates the value's size, evicts least-recently-accessed entries
// until both the entry-count and memory budgets are satisfied, then inserts.
// A value whose size alone exceeds the memory budget is not stored.
func (c *Cache[V]) Set(key string, value V) error {
	size := c.cfg.EstimateSize(value)
	if size > c.cfg.MaxMemoryBytes {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		c.removeElement(el)
	}

	for len(c.entries) >= c.cfg.MaxEntries || c.memory+size > c.cfg.MaxMemoryBytes {
		if err := c.evictOldest(); err != nil {
			c.reset()
			return err
		}
	}

	now := c.now()
	ent := &entry[V]{
		key:            key,
		value:          value,
		insertedAt:     now,
		lastAccessedAt: now,
		size:           size,
	}
	c.entries[key] = c.recency.PushFront(ent)
	c.memory += size

	return c.checkAccounting()
}

// Invalidate removes a single entry if present.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		c.removeElement(el)
	}
}

// InvalidatePrefix removes every entry whose key starts with prefix. Sync
// writes use this to drop all cached listings for an affected backend.
func (c *Cache[V]) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, el := range c.entries {
		if strings.HasPrefix(key, prefix) {
			c.removeElement(el)
		}
	}
}

// Clear drops every entry. Statistics are preserved.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

// Len returns the current entry count.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache[V]) evictOldest() error {
	el := c.recency.Back()
	if el == nil {
		return &CorruptionError{Detail: "eviction requested with empty recency list"}
	}
	c.removeElement(el)
	return nil
}

func (c *Cache[V]) removeElement(el *list.Element) {
	ent := el.Value.(*entry[V])
	c.recency.Remove(el)
	delete(c.entries, ent.key)
	c.memory -= ent.size
}

func (c *Cache[V]) checkAccounting() error {
	if c.memory < 0 || len(c.entries) != c.recency.Len() {
		err := &CorruptionError{
			Detail: fmt.Sprintf("%d mapped entries, %d recency nodes, %d bytes accounted",
				len(c.entries), c.recency.Len(), c.memory),
		}
		c.reset()
		return err
	}
	return nil
}

func (c *Cache[V]) reset() {
	c.entries = make(map[string]*list.Element)
	c.recency.Init()
	c.memory = 0
}
