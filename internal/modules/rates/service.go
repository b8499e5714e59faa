package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Convexo-finance/fund-convexo-sub001/internal/clientdata"
	"github.com/Convexo-finance/fund-convexo-sub001/internal/domain"
)

const (
	// cashOutMarginFactor is the flat unfavorable adjustment applied to
	// cash-out quotes. Policy constant, not user-configurable.
	cashOutMarginFactor = 0.98

	// cashOutFeePercent is charged on the converted (destination) amount
	// for cash-out transactions only.
	cashOutFeePercent = 2.0

	// quoteValidity bounds how long a FundingQuote may be honored.
	quoteValidity = 5 * time.Minute

	// defaultCacheTTL is the freshness window for resolved rates.
	defaultCacheTTL = 60 * time.Second

	redisKeyPrefix = "fund:rate:"
)

// fallbackRates is the static last-resort table. Only the USD/COP corridor is
// tabulated; other pairs derive a reciprocal where possible.
var fallbackRates = map[string]float64{
	"USD/COP": 4100,
	"COP/USD": 1.0 / 4100,
}

// Config holds the dependencies for a rate Service. Primary and Secondary are
// consulted in order; Redis and CacheRepo are optional tiers and may be nil.
type Config struct {
	Primary   domain.RateSource
	Secondary domain.RateSource
	Redis     *redis.Client
	CacheRepo *clientdata.Repository
	CacheTTL  time.Duration
	Clock     func() time.Time
	Log       zerolog.Logger
}

// Service resolves exchange rates with caching and multi-source fallback, and
// derives margin-adjusted funding quotes from them.
type Service struct {
	primary   domain.RateSource
	secondary domain.RateSource
	redis     *redis.Client
	cacheRepo *clientdata.Repository
	cache     *rateCache
	now       func() time.Time
	log       zerolog.Logger
}

// NewService creates a rate service.
func NewService(cfg Config) *Service {
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Service{
		primary:   cfg.Primary,
		secondary: cfg.Secondary,
		redis:     cfg.Redis,
		cacheRepo: cfg.CacheRepo,
		cache:     newRateCache(ttl, now),
		now:       now,
		log:       cfg.Log.With().Str("service", "rates").Logger(),
	}
}

// GetExchangeRate resolves the rate for an ordered asset pair.
//
// Resolution order:
//  1. fresh in-memory cache entry
//  2. shared Redis cache (when configured)
//  3. primary API (fiat pairs; USD-pegged stablecoins normalized to USD)
//  4. secondary API (same restriction)
//  5. stale persisted rate (when a cache repository is configured)
//  6. static fallback table, with reciprocal derivation
//  7. rate 1 with a logged warning
//
// Source failures in tiers 3-4 are recovered locally and never surface as
// errors. Tiers 5-7 report Success=false so callers can flag degraded pricing.
func (s *Service) GetExchangeRate(ctx context.Context, from, to string) RateResult {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)
	pair := from + "/" + to

	if from == to {
		return RateResult{Success: true, Rate: 1.0, Source: SourceIdentity, Timestamp: s.now()}
	}

	// Tier 1: in-memory cache
	if entry, ok := s.cache.Get(pair); ok {
		s.log.Debug().Str("pair", pair).Float64("rate", entry.Rate).Str("source", entry.Source).Msg("Cache hit")
		return RateResult{Success: liveSource(entry.Source), Rate: entry.Rate, Source: entry.Source, Timestamp: entry.Timestamp}
	}

	// Tier 2: shared Redis cache
	if entry, ok := s.getFromRedis(ctx, pair); ok {
		s.cache.Put(pair, entry)
		s.log.Debug().Str("pair", pair).Float64("rate", entry.Rate).Str("source", entry.Source).Msg("Redis cache hit")
		return RateResult{Success: liveSource(entry.Source), Rate: entry.Rate, Source: entry.Source, Timestamp: entry.Timestamp}
	}

	// External providers only quote fiat; stablecoins ride their peg.
	fiatFrom, fromOK := domain.NormalizeFiat(from)
	fiatTo, toOK := domain.NormalizeFiat(to)

	if fromOK && toOK {
		if fiatFrom == fiatTo {
			entry := s.store(ctx, pair, 1.0, SourcePeg)
			return RateResult{Success: true, Rate: entry.Rate, Source: entry.Source, Timestamp: entry.Timestamp}
		}

		// Tiers 3-4: live providers in order
		for _, source := range []domain.RateSource{s.primary, s.secondary} {
			if source == nil {
				continue
			}
			rate, err := source.GetRate(ctx, fiatFrom, fiatTo)
			if err == nil && rate <= 0 {
				err = fmt.Errorf("non-positive rate %f for %s", rate, pair)
			}
			s.recordProviderHealth(source.Name(), err)
			if err != nil {
				s.log.Warn().Err(err).Str("source", source.Name()).Str("pair", pair).Msg("Rate source unavailable, falling through")
				continue
			}
			entry := s.store(ctx, pair, rate, source.Name())
			return RateResult{Success: true, Rate: entry.Rate, Source: entry.Source, Timestamp: entry.Timestamp}
		}
	}

	// Tier 5: stale persisted rate
	if rate, ok := s.getStaleFromRepo(pair); ok {
		s.log.Warn().Str("pair", pair).Float64("rate", rate).Msg("All sources failed, using stale persisted rate")
		entry := ExchangeRate{Rate: rate, Timestamp: s.now(), Source: SourceStaleCache}
		s.cache.Put(pair, entry)
		return RateResult{Success: false, Rate: entry.Rate, Source: entry.Source, Timestamp: entry.Timestamp}
	}

	// Tier 6: static fallback table (reciprocal when only the inverse is tabulated)
	lookup := pair
	if fromOK && toOK {
		lookup = fiatFrom + "/" + fiatTo
	}
	if rate, ok := fallbackRates[lookup]; ok {
		s.log.Warn().Str("pair", pair).Float64("rate", rate).Msg("Using static fallback rate")
		entry := ExchangeRate{Rate: rate, Timestamp: s.now(), Source: SourceStaticFallback}
		s.cache.Put(pair, entry)
		return RateResult{Success: false, Rate: entry.Rate, Source: entry.Source, Timestamp: entry.Timestamp}
	}
	if inverse, ok := fallbackRates[inversePair(lookup)]; ok && inverse > 0 {
		rate := 1.0 / inverse
		s.log.Warn().Str("pair", pair).Float64("rate", rate).Msg("Using reciprocal of static fallback rate")
		entry := ExchangeRate{Rate: rate, Timestamp: s.now(), Source: SourceStaticFallback}
		s.cache.Put(pair, entry)
		return RateResult{Success: false, Rate: entry.Rate, Source: entry.Source, Timestamp: entry.Timestamp}
	}

	// Tier 7: last resort. The caller still gets a number.
	s.log.Warn().Str("pair", pair).Msg("No rate available from any source, defaulting to 1")
	return RateResult{Success: false, Rate: 1.0, Source: SourceDefault, Timestamp: s.now()}
}

// ApplyMargin applies the transaction-type margin policy to a market rate.
// Cash-out quotes take a flat 2% unfavorable adjustment; cash-in uses the raw
// rate.
func (s *Service) ApplyMargin(rate float64, txType domain.TransactionType) float64 {
	if txType == domain.TransactionCashOut {
		return rate * cashOutMarginFactor
	}
	return rate
}

// CalculateConversion converts amount at the margin-adjusted rate and applies
// the cash-out fee. The fee is a percentage of the destination amount, never
// the source amount.
func (s *Service) CalculateConversion(amount, rate float64, txType domain.TransactionType) Conversion {
	adjusted := s.ApplyMargin(rate, txType)
	gross := amount * adjusted

	feePct := 0.0
	if txType == domain.TransactionCashOut {
		feePct = cashOutFeePercent
	}
	fee := gross * feePct / 100

	return Conversion{
		AdjustedRate:  adjusted,
		GrossAmount:   gross,
		Fee:           fee,
		FeePercentage: feePct,
		TotalReceived: gross - fee,
	}
}

// NewQuote resolves a rate and produces a funding quote valid for five
// minutes.
func (s *Service) NewQuote(ctx context.Context, txType domain.TransactionType, from, to string, amount float64) (*FundingQuote, error) {
	if !txType.Valid() {
		return nil, fmt.Errorf("invalid transaction type: %s", txType)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be greater than 0")
	}
	fromAsset, err := domain.GetAsset(from)
	if err != nil {
		return nil, err
	}
	toAsset, err := domain.GetAsset(to)
	if err != nil {
		return nil, err
	}

	result := s.GetExchangeRate(ctx, fromAsset.Code, toAsset.Code)
	conv := s.CalculateConversion(amount, result.Rate, txType)

	createdAt := s.now()
	quote := &FundingQuote{
		ID:            uuid.NewString(),
		Type:          txType,
		FromAsset:     fromAsset.Code,
		ToAsset:       toAsset.Code,
		AmountIn:      amount,
		AmountOut:     conv.TotalReceived,
		Rate:          result.Rate,
		AdjustedRate:  conv.AdjustedRate,
		Fee:           conv.Fee,
		FeePercentage: conv.FeePercentage,
		RateSource:    result.Source,
		UsingFallback: !result.Success,
		CreatedAt:     createdAt,
		ValidUntil:    createdAt.Add(quoteValidity),
	}

	s.log.Info().
		Str("quote_id", quote.ID).
		Str("type", string(txType)).
		Str("pair", fromAsset.Code+"/"+toAsset.Code).
		Float64("amount_in", amount).
		Float64("amount_out", quote.AmountOut).
		Bool("using_fallback", quote.UsingFallback).
		Msg("Quote created")

	return quote, nil
}

// GetAssetInfo returns static metadata for a supported asset.
func (s *Service) GetAssetInfo(code string) (domain.Asset, error) {
	return domain.GetAsset(code)
}

// SyncRates warms the caches for all supported asset pairs. Partial success
// is OK and logged as warnings; an error is returned only when every pair
// resolved through a fallback tier.
func (s *Service) SyncRates(ctx context.Context) error {
	// Crypto assets have no live source; only fiat-resolvable pairs are warmed.
	codes := make([]string, 0, len(domain.SupportedAssets))
	for code := range domain.SupportedAssets {
		if _, ok := domain.NormalizeFiat(code); ok {
			codes = append(codes, code)
		}
	}

	liveCount := 0
	fallbackCount := 0

	for _, from := range codes {
		for _, to := range codes {
			if from == to {
				continue
			}

			result := s.GetExchangeRate(ctx, from, to)
			if result.Success {
				liveCount++
			} else {
				fallbackCount++
				s.log.Warn().
					Str("pair", from+"/"+to).
					Str("source", result.Source).
					Msg("Pair synced from fallback tier")
			}
		}
	}

	s.log.Info().
		Int("live", liveCount).
		Int("fallback", fallbackCount).
		Msg("Rate sync completed")

	if liveCount == 0 {
		return fmt.Errorf("all rate fetches resolved through fallbacks")
	}

	return nil
}

// Sources describes the resolution waterfall for diagnostics endpoints.
func (s *Service) Sources() []SourceInfo {
	sources := []SourceInfo{
		{Name: "memory-cache", Priority: 1, Description: "In-process cache within the freshness window"},
	}
	priority := 2
	if s.redis != nil {
		sources = append(sources, SourceInfo{Name: "redis", Priority: priority, Description: "Shared Redis rate cache"})
		priority++
	}
	if s.primary != nil {
		sources = append(sources, SourceInfo{Name: s.primary.Name(), Priority: priority, Description: "Primary exchange rate API"})
		priority++
	}
	if s.secondary != nil {
		sources = append(sources, SourceInfo{Name: s.secondary.Name(), Priority: priority, Description: "Secondary exchange rate API"})
		priority++
	}
	if s.cacheRepo != nil {
		sources = append(sources, SourceInfo{Name: SourceStaleCache, Priority: priority, Description: "Stale persisted rates"})
		priority++
	}
	sources = append(sources,
		SourceInfo{Name: SourceStaticFallback, Priority: priority, Description: "Hardcoded fallback rates"},
		SourceInfo{Name: SourceDefault, Priority: priority + 1, Description: "Last-resort rate of 1"},
	)
	return sources
}

// recordProviderHealth persists the latest observation for a provider so the
// sources endpoint can report which tiers are actually reachable.
func (s *Service) recordProviderHealth(name string, err error) {
	if s.cacheRepo == nil {
		return
	}

	health := ProviderHealth{Status: "up", CheckedAt: s.now()}
	if err != nil {
		health.Status = "down"
		health.Error = err.Error()
	}

	if storeErr := s.cacheRepo.Store("provider_health", name, health, clientdata.TTLProviderHealth); storeErr != nil {
		s.log.Debug().Err(storeErr).Str("provider", name).Msg("Failed to record provider health")
	}
}

// ProviderHealth returns the last recorded observation per configured
// provider. Providers with no recorded observation yet are omitted.
func (s *Service) ProviderHealth() map[string]ProviderHealth {
	health := make(map[string]ProviderHealth)
	if s.cacheRepo == nil {
		return health
	}

	for _, source := range []domain.RateSource{s.primary, s.secondary} {
		if source == nil {
			continue
		}
		data, err := s.cacheRepo.Get("provider_health", source.Name())
		if err != nil || data == nil {
			continue
		}
		var h ProviderHealth
		if err := json.Unmarshal(data, &h); err != nil {
			continue
		}
		health[source.Name()] = h
	}

	return health
}

// store records a successfully resolved rate in every configured cache tier
// and returns the cached entry.
func (s *Service) store(ctx context.Context, pair string, rate float64, source string) ExchangeRate {
	entry := ExchangeRate{Rate: rate, Timestamp: s.now(), Source: source}
	s.cache.Put(pair, entry)
	s.putRedis(ctx, pair, entry)

	if s.cacheRepo != nil {
		if err := s.cacheRepo.Store("exchangerate", pair, entry, clientdata.TTLExchangeRate); err != nil {
			s.log.Warn().Err(err).Str("pair", pair).Msg("Failed to persist exchange rate")
		}
	}

	return entry
}

// getStaleFromRepo retrieves a persisted rate even if expired.
func (s *Service) getStaleFromRepo(pair string) (float64, bool) {
	if s.cacheRepo == nil {
		return 0, false
	}

	data, err := s.cacheRepo.Get("exchangerate", pair)
	if err != nil || data == nil {
		return 0, false
	}

	var entry ExchangeRate
	if err := json.Unmarshal(data, &entry); err != nil {
		return 0, false
	}
	if entry.Rate <= 0 {
		return 0, false
	}

	return entry.Rate, true
}

func (s *Service) getFromRedis(ctx context.Context, pair string) (ExchangeRate, bool) {
	if s.redis == nil {
		return ExchangeRate{}, false
	}

	data, err := s.redis.Get(ctx, redisKeyPrefix+pair).Result()
	if err != nil {
		return ExchangeRate{}, false
	}

	var entry ExchangeRate
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		return ExchangeRate{}, false
	}

	return entry, true
}

func (s *Service) putRedis(ctx context.Context, pair string, entry ExchangeRate) {
	if s.redis == nil {
		return
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	// Key TTL equals the freshness window, so existence implies freshness.
	if err := s.redis.Set(ctx, redisKeyPrefix+pair, data, s.cache.ttl).Err(); err != nil {
		s.log.Debug().Err(err).Str("pair", pair).Msg("Failed to write rate to Redis")
	}
}

func inversePair(pair string) string {
	parts := strings.SplitN(pair, "/", 2)
	if len(parts) != 2 {
		return pair
	}
	return parts[1] + "/" + parts[0]
}
