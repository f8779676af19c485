package cache

import (
	"sync"
	"time"
)

// ChampionCache holds the champion id to name table refreshed from Data
// Dragon. The clock is injected so staleness is testable.
type ChampionCache struct {
	mu        sync.RWMutex
	names     map[int]string
	fetchedAt time.Time
	ttl       time.Duration
	now       func() time.Time
}

// NewChampionCache builds an empty table. A nil clock uses time.Now.
func NewChampionCache(ttl time.Duration, now func() time.Time) *ChampionCache {
	if now == nil {
		now = time.Now
	}
	return &ChampionCache{
		names: make(map[int]string),
		ttl:   ttl,
		now:   now,
	}
}

// Name resolves a champion id. ok is false for unknown ids or an unfilled
// table.
func (c *ChampionCache) Name(id int) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	name, ok := c.names[id]
	return name, ok
}

// Stale reports whether the table needs a refresh.
func (c *ChampionCache) Stale() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.names) == 0 || c.now().Sub(c.fetchedAt) > c.ttl
}

// Replace swaps in a freshly fetched table.
func (c *ChampionCache) Replace(names map[int]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names = names
	c.fetchedAt = c.now()
}

// Size reports the number of known champions.
func (c *ChampionCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.names)
}
