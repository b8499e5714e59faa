// Package rates implements exchange rate resolution and funding quote calculation.
//
// Rate resolution walks a fixed waterfall: in-memory cache, optional shared
// Redis cache, primary API, secondary API, stale persisted rate, static
// fallback table, and finally a last-resort rate of 1. The caller always
// receives a usable number; Success reports whether the number came from a
// live source or a fallback tier.
package rates

import (
	"time"

	"github.com/Convexo-finance/fund-convexo-sub001/internal/domain"
)

// Source identifiers reported in RateResult and stored alongside cached rates.
const (
	SourceIdentity       = "identity"        // same-asset pair
	SourcePeg            = "peg"             // stablecoin normalized onto its peg currency
	SourceStaleCache     = "cache-stale"     // expired persisted rate, better than nothing
	SourceStaticFallback = "static-fallback" // hardcoded rate table
	SourceDefault        = "default"         // last resort, rate 1
)

// ExchangeRate is a resolved point-in-time rate. Entries are cached per
// ordered pair and recomputed, never mutated, once stale.
type ExchangeRate struct {
	Rate      float64   `json:"rate"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
}

// RateResult is the outcome of a rate lookup. Success is false whenever the
// rate came from a fallback tier (stale cache, static table, default) so the
// UI can flag degraded pricing; Rate is always usable.
type RateResult struct {
	Success   bool      `json:"success"`
	Rate      float64   `json:"rate"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversion breaks down an amount converted at a margin-adjusted rate.
// The fee is always charged in the destination asset.
type Conversion struct {
	AdjustedRate  float64 `json:"adjusted_rate"`
	GrossAmount   float64 `json:"gross_amount"`
	Fee           float64 `json:"fee"`
	FeePercentage float64 `json:"fee_percentage"`
	TotalReceived float64 `json:"total_received"`
}

// FundingQuote is an ephemeral, signed-off conversion offer. A quote is never
// reused past ValidUntil; consumers must re-request.
type FundingQuote struct {
	ID            string                 `json:"id"`
	Type          domain.TransactionType `json:"type"`
	FromAsset     string                 `json:"from_asset"`
	ToAsset       string                 `json:"to_asset"`
	AmountIn      float64                `json:"amount_in"`
	AmountOut     float64                `json:"amount_out"`
	Rate          float64                `json:"rate"`
	AdjustedRate  float64                `json:"adjusted_rate"`
	Fee           float64                `json:"fee"`
	FeePercentage float64                `json:"fee_percentage"`
	RateSource    string                 `json:"rate_source"`
	UsingFallback bool                   `json:"using_fallback"`
	CreatedAt     time.Time              `json:"created_at"`
	ValidUntil    time.Time              `json:"valid_until"`
}

// Expired reports whether the quote is past its validity window at t.
func (q FundingQuote) Expired(t time.Time) bool {
	return t.After(q.ValidUntil)
}

// ProviderHealth is the last observed state of an external rate provider.
type ProviderHealth struct {
	Status    string    `json:"status"` // "up" or "down"
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// SourceInfo describes one tier of the resolution waterfall.
type SourceInfo struct {
	Name        string `json:"name"`
	Priority    int    `json:"priority"`
	Description string `json:"description"`
}

// liveSource reports whether a source string represents a live (non-fallback)
// resolution. Cached entries keep their originating source, so a cache hit on
// a static-fallback entry still reports Success=false.
func liveSource(source string) bool {
	switch source {
	case SourceStaleCache, SourceStaticFallback, SourceDefault:
		return false
	}
	return true
}
