package attendance

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SettingsCache holds operator cutoffs for a short time. Entries expire after
// their TTL and are dropped explicitly when the operator replaces settings.
type SettingsCache interface {
	Get(ctx context.Context, operatorID primitive.ObjectID) (string, bool)
	Set(ctx context.Context, operatorID primitive.ObjectID, cutoff string)
	Invalidate(ctx context.Context, operatorID primitive.ObjectID)
}

type cachedCutoff struct {
	cutoff  string
	expires time.Time
}

// MemoryCache is a process-local SettingsCache.
type MemoryCache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[primitive.ObjectID]cachedCutoff
}

func NewMemoryCache(ttl time.Duration, now func() time.Time) *MemoryCache {
	if now == nil {
		now = time.Now
	}
	return &MemoryCache{ttl: ttl, now: now, entries: make(map[primitive.ObjectID]cachedCutoff)}
}

func (c *MemoryCache) Get(_ context.Context, operatorID primitive.ObjectID) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[operatorID]
	if !ok {
		return "", false
	}
	if !c.now().Before(e.expires) {
		delete(c.entries, operatorID)
		return "", false
	}
	return e.cutoff, true
}

func (c *MemoryCache) Set(_ context.Context, operatorID primitive.ObjectID, cutoff string) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[operatorID] = cachedCutoff{cutoff: cutoff, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *MemoryCache) Invalidate(_ context.Context, operatorID primitive.ObjectID) {
	c.mu.Lock()
	delete(c.entries, operatorID)
	c.mu.Unlock()
}
