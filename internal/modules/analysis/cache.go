package analysis

import (
	"sync"
	"time"

	"github.com/sahamlab/signal-engine/internal/modules/analysis/domain"
)

// PicksCache holds the last computed top-picks result. Ranking a whole
// universe is the engine's only expensive pass, so the result is cached with
// a TTL and refreshed by the background job.
type PicksCache struct {
	mu         sync.RWMutex
	picks      domain.TopPicks
	computedAt time.Time
	ttl        time.Duration
}

// NewPicksCache creates a cache with the given TTL.
func NewPicksCache(ttl time.Duration) *PicksCache {
	return &PicksCache{ttl: ttl}
}

// Get returns the cached picks and whether they are still fresh.
func (c *PicksCache) Get() (domain.TopPicks, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.computedAt.IsZero() || time.Since(c.computedAt) > c.ttl {
		return domain.TopPicks{}, false
	}
	return c.picks, true
}

// Set stores a freshly computed result.
func (c *PicksCache) Set(picks domain.TopPicks) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.picks = picks
	c.computedAt = time.Now()
}
