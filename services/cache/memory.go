package cachesvc

import (
	"context"
	"sync"
	"time"

	"github.com/trezcool/darasa/core/report"
)

type memEntry struct {
	value     []byte
	expiresAt time.Time // zero: never
}

// MemoryCache is a process-local report.Cache, used when no Redis server is configured.
// It only holds entries of the current generation.
type MemoryCache struct {
	sync.RWMutex
	gen     int64
	entries map[string]memEntry
	now     func() time.Time
}

var _ report.Cache = (*MemoryCache)(nil)

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memEntry), now: time.Now}
}

func (c *MemoryCache) Generation(context.Context) (int64, error) {
	c.RLock()
	defer c.RUnlock()
	return c.gen, nil
}

func (c *MemoryCache) Get(_ context.Context, gen int64, key string) ([]byte, bool, error) {
	c.RLock()
	e, ok := c.entries[key]
	stale := gen != c.gen
	c.RUnlock()
	if !ok || stale {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt) {
		c.Lock()
		if cur, ok := c.entries[key]; ok && cur.expiresAt.Equal(e.expiresAt) {
			delete(c.entries, key)
		}
		c.Unlock()
		return nil, false, nil
	}
	return append([]byte(nil), e.value...), true, nil
}

// Set drops values computed for an older generation.
func (c *MemoryCache) Set(_ context.Context, gen int64, key string, value []byte, ttl time.Duration) error {
	e := memEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.Lock()
	if gen == c.gen {
		c.entries[key] = e
	}
	c.Unlock()
	return nil
}

func (c *MemoryCache) Invalidate(context.Context) error {
	c.Lock()
	c.gen++
	c.entries = make(map[string]memEntry)
	c.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.RLock()
	defer c.RUnlock()
	return len(c.entries)
}
