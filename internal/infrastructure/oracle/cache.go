package oracle

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/doeshing/qrshield/internal/ports"
)

// Cache remembers successful lookups for a while. Failures are never stored, so a
// transient API error does not stick to a URL.
type Cache struct {
	next       ports.ThreatOracle
	ttl        time.Duration
	maxEntries int
	now        func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	matched   bool
	createdAt time.Time
}

// NewCache wraps next. maxEntries <= 0 means unbounded.
func NewCache(next ports.ThreatOracle, ttl time.Duration, maxEntries int) *Cache {
	return &Cache{
		next:       next,
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
		entries:    make(map[string]cacheEntry),
	}
}

// Name reports the wrapped oracle.
func (c *Cache) Name() string {
	return c.next.Name()
}

// Lookup serves fresh entries from memory and asks the wrapped oracle otherwise.
func (c *Cache) Lookup(ctx context.Context, target string) (bool, error) {
	if matched, ok := c.get(target); ok {
		return matched, nil
	}
	matched, err := c.next.Lookup(ctx, target)
	if err != nil {
		return false, err
	}
	c.set(target, matched)
	return matched, nil
}

// Len returns the number of cached URLs, fresh or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) get(target string) (bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[target]
	if !ok {
		return false, false
	}
	if c.ttl > 0 && c.now().Sub(entry.createdAt) > c.ttl {
		delete(c.entries, target)
		return false, false
	}
	return entry.matched, true
}

func (c *Cache) set(target string, matched bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[target] = cacheEntry{matched: matched, createdAt: c.now()}
	c.evictIfNeeded()
}

// evictIfNeeded drops the oldest entries beyond maxEntries. Callers hold mu.
func (c *Cache) evictIfNeeded() {
	if c.maxEntries <= 0 || len(c.entries) <= c.maxEntries {
		return
	}
	type aged struct {
		key     string
		created time.Time
	}
	infos := make([]aged, 0, len(c.entries))
	for key, entry := range c.entries {
		infos = append(infos, aged{key: key, created: entry.createdAt})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].created.Before(infos[j].created) })
	for len(infos) > c.maxEntries {
		delete(c.entries, infos[0].key)
		infos = infos[1:]
	}
}

var _ ports.ThreatOracle = (*Cache)(nil)
