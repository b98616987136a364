package tagtable

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// DefaultCapacity is the capacity of the process-wide cache.
const DefaultCapacity = 100

type cacheKey struct {
	def  *Definition
	mode Mode
}

// Cache memoizes compiled tables by (definition, mode).
//
// Thread safety: all methods are safe for concurrent access. Lookups take
// a read lock; the hit/miss counters are atomics kept on their own cache
// line so parallel lookups do not contend on the lock's line.
//
// Memory management:
//   - Tables are never evicted individually (no LRU overhead)
//   - Inserting into a full cache clears it entirely first
//   - A capacity of 0 disables caching
type Cache struct {
	// mu protects tables and clears.
	mu       sync.RWMutex
	tables   map[cacheKey]*Table
	capacity int
	clears   int

	_      cpu.CacheLinePad
	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewCache creates a cache holding at most capacity tables.
func NewCache(capacity int) *Cache {
	if capacity < 0 {
		capacity = 0
	}
	return &Cache{
		tables:   make(map[cacheKey]*Table, capacity),
		capacity: capacity,
	}
}

var defaultCache = NewCache(DefaultCapacity)

// DefaultCache returns the process-wide cache used by Compile.
func DefaultCache() *Cache {
	return defaultCache
}

// Get returns the table compiled from def in mode, if cached.
func (c *Cache) Get(def *Definition, mode Mode) (*Table, bool) {
	c.mu.RLock()
	t, ok := c.tables[cacheKey{def, mode}]
	c.mu.RUnlock()

	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return t, ok
}

// Put stores t under its definition and mode. A full cache is cleared
// first. An existing entry is kept and returned instead of t, so every
// caller sees the same table instance.
func (c *Cache) Put(t *Table) *Table {
	if c.capacity == 0 || t.def == nil {
		return t
	}
	key := cacheKey{t.def, t.mode}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.tables[key]; ok {
		return existing
	}
	if len(c.tables) >= c.capacity {
		clear(c.tables)
		c.clears++
	}
	c.tables[key] = t
	return t
}

// Size returns the number of cached tables.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tables)
}

// Capacity returns the maximum number of cached tables.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Stats returns cache hit/miss statistics.
// Returns (hits, misses, hitRate).
//
// Hit rate = hits / (hits + misses)
func (c *Cache) Stats() (hits, misses uint64, hitRate float64) {
	hits = c.hits.Load()
	misses = c.misses.Load()
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	return hits, misses, hitRate
}

// ResetStats resets hit/miss counters (useful for benchmarking)
func (c *Cache) ResetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
}

// ClearCount returns how many times a full cache has been cleared.
func (c *Cache) ClearCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.clears
}

// Clear removes all tables and resets the statistics.
func (c *Cache) Clear() {
	c.mu.Lock()
	clear(c.tables)
	c.clears = 0
	c.mu.Unlock()
	c.ResetStats()
}
