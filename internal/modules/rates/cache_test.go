package rates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateCache_GetPut(t *testing.T) {
	clock := &fakeClock{current: time.Unix(1700000000, 0)}
	cache := newRateCache(60*time.Second, clock.Now)

	_, ok := cache.Get("USD/COP")
	assert.False(t, ok)

	entry := ExchangeRate{Rate: 4000, Timestamp: clock.current, Source: "primary"}
	cache.Put("USD/COP", entry)

	got, ok := cache.Get("USD/COP")
	assert.True(t, ok)
	assert.Equal(t, entry, got)
	assert.Equal(t, 1, cache.Len())
}

func TestRateCache_Expiry(t *testing.T) {
	clock := &fakeClock{current: time.Unix(1700000000, 0)}
	cache := newRateCache(60*time.Second, clock.Now)

	cache.Put("USD/COP", ExchangeRate{Rate: 4000, Timestamp: clock.current, Source: "primary"})

	clock.Advance(59 * time.Second)
	_, ok := cache.Get("USD/COP")
	assert.True(t, ok)

	clock.Advance(time.Second)
	_, ok = cache.Get("USD/COP")
	assert.False(t, ok)

	// Stale entries stay in the map until overwritten.
	assert.Equal(t, 1, cache.Len())
}

func TestRateCache_Overwrite(t *testing.T) {
	clock := &fakeClock{current: time.Unix(1700000000, 0)}
	cache := newRateCache(60*time.Second, clock.Now)

	cache.Put("USD/COP", ExchangeRate{Rate: 4000, Timestamp: clock.current, Source: "primary"})
	cache.Put("USD/COP", ExchangeRate{Rate: 4200, Timestamp: clock.current, Source: "secondary"})

	got, ok := cache.Get("USD/COP")
	assert.True(t, ok)
	assert.Equal(t, 4200.0, got.Rate)
	assert.Equal(t, "secondary", got.Source)
	assert.Equal(t, 1, cache.Len())
}
