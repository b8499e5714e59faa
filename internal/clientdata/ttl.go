package clientdata

import "time"

// TTL constants for different data types.
// These are added to time.Now() when storing to calculate expires_at.
const (
	// TTLExchangeRate bounds how long a persisted rate counts as fresh.
	// Stale entries remain readable as a fallback until cleanup removes them.
	TTLExchangeRate = time.Hour

	// TTLProviderHealth tracks recent provider failure observations.
	TTLProviderHealth = 24 * time.Hour
)
