// Package session provides the process-wide cache of execution contexts
// keyed by session identifier. Caching an agent or team across jobs preserves
// its accumulated conversation state; reuse is only permitted when the cached
// context's kind matches the requested kind.
package session

import "sync"

// Kind distinguishes the two execution context shapes a session may hold.
type Kind string

// Cacheable context kinds.
const (
	KindAgent Kind = "agent"
	KindTeam  Kind = "team"
)

type entry struct {
	kind  Kind
	value any
}

// Cache is a keyed store of execution contexts. It is safe for concurrent
// access and holds at most one context per session identifier. A capacity of
// zero means unbounded; otherwise the oldest-inserted entry is evicted once
// the capacity is exceeded.
type Cache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]entry
	order    []string
}

// NewCache constructs an empty cache with the given capacity (0 = unbounded).
func NewCache(capacity int) *Cache {
	return &Cache{capacity: capacity, entries: make(map[string]entry)}
}

// Lookup returns the cached context for sessionID only if one is present and
// of the expected kind.
func (c *Cache) Lookup(sessionID string, kind Kind) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[sessionID]
	if !ok || e.kind != kind {
		return nil, false
	}
	return e.value, true
}

// Store caches value under sessionID, overwriting any existing entry
// unconditionally.
func (c *Cache) Store(sessionID string, kind Kind, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[sessionID]; !exists {
		c.order = append(c.order, sessionID)
	}
	c.entries[sessionID] = entry{kind: kind, value: value}

	for c.capacity > 0 && len(c.entries) > c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

// Len reports the number of cached contexts.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
