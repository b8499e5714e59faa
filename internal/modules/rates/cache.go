package rates

import (
	"sync"
	"time"
)

// rateCache is the in-process rate cache keyed by ordered pair ("FROM/TO").
// Entries expire after ttl and are overwritten, never refreshed in place.
// Concurrent lookups for the same pair may both miss and both fetch upstream;
// the second write wins with an equally valid fresher entry.
type rateCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]ExchangeRate
}

// newRateCache creates a cache with the given freshness window and clock.
// The clock is injectable so tests can control expiry deterministically.
func newRateCache(ttl time.Duration, now func() time.Time) *rateCache {
	if now == nil {
		now = time.Now
	}
	return &rateCache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]ExchangeRate),
	}
}

// Get returns the cached rate for pair if it is still within the freshness
// window.
func (c *rateCache) Get(pair string) (ExchangeRate, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[pair]
	if !ok {
		return ExchangeRate{}, false
	}
	if c.now().Sub(entry.Timestamp) >= c.ttl {
		return ExchangeRate{}, false
	}
	return entry, true
}

// Put stores a rate for pair, overwriting any previous entry.
func (c *rateCache) Put(pair string, entry ExchangeRate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[pair] = entry
}

// Len returns the number of entries, fresh or stale.
func (c *rateCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
