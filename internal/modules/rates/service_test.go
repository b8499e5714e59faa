package rates

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Convexo-finance/fund-convexo-sub001/internal/domain"
	"github.com/Convexo-finance/fund-convexo-sub001/pkg/logger"
)

// stubSource is a scriptable rate source that counts its calls.
type stubSource struct {
	name  string
	rate  float64
	err   error
	calls int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) GetRate(ctx context.Context, from, to string) (float64, error) {
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	return s.rate, nil
}

// fakeClock is an advanceable clock for deterministic cache tests.
type fakeClock struct {
	current time.Time
}

func (c *fakeClock) Now() time.Time { return c.current }

func (c *fakeClock) Advance(d time.Duration) { c.current = c.current.Add(d) }

func newTestService(cfg Config) *Service {
	cfg.Log = logger.New(logger.Config{Level: "error", Pretty: false})
	return NewService(cfg)
}

func TestGetExchangeRate_SamePair(t *testing.T) {
	primary := &stubSource{name: "primary", rate: 4000}
	service := newTestService(Config{Primary: primary})

	result := service.GetExchangeRate(context.Background(), "usd", "USD")

	assert.True(t, result.Success)
	assert.Equal(t, 1.0, result.Rate)
	assert.Equal(t, SourceIdentity, result.Source)
	assert.Zero(t, primary.calls)
}

func TestGetExchangeRate_PrimarySource(t *testing.T) {
	primary := &stubSource{name: "primary", rate: 4000}
	secondary := &stubSource{name: "secondary", rate: 9999}
	service := newTestService(Config{Primary: primary, Secondary: secondary})

	result := service.GetExchangeRate(context.Background(), "USD", "COP")

	assert.True(t, result.Success)
	assert.Equal(t, 4000.0, result.Rate)
	assert.Equal(t, "primary", result.Source)
	assert.Equal(t, 1, primary.calls)
	assert.Zero(t, secondary.calls)
}

func TestGetExchangeRate_FallsBackToSecondary(t *testing.T) {
	primary := &stubSource{name: "primary", err: errors.New("connection refused")}
	secondary := &stubSource{name: "secondary", rate: 4050}
	service := newTestService(Config{Primary: primary, Secondary: secondary})

	result := service.GetExchangeRate(context.Background(), "USD", "COP")

	assert.True(t, result.Success)
	assert.Equal(t, 4050.0, result.Rate)
	assert.Equal(t, "secondary", result.Source)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
}

func TestGetExchangeRate_CacheIdempotence(t *testing.T) {
	clock := &fakeClock{current: time.Unix(1700000000, 0)}
	primary := &stubSource{name: "primary", rate: 4000}
	service := newTestService(Config{Primary: primary, Clock: clock.Now})

	first := service.GetExchangeRate(context.Background(), "USD", "COP")
	clock.Advance(10 * time.Second)
	second := service.GetExchangeRate(context.Background(), "USD", "COP")

	// Within the freshness window the second lookup must be served from the
	// cache: same rate, same timestamp, no second source call.
	assert.Equal(t, first.Rate, second.Rate)
	assert.Equal(t, first.Timestamp, second.Timestamp)
	assert.Equal(t, first.Source, second.Source)
	assert.Equal(t, 1, primary.calls)
}

func TestGetExchangeRate_CacheExpiry(t *testing.T) {
	clock := &fakeClock{current: time.Unix(1700000000, 0)}
	primary := &stubSource{name: "primary", rate: 4000}
	service := newTestService(Config{Primary: primary, CacheTTL: 60 * time.Second, Clock: clock.Now})

	service.GetExchangeRate(context.Background(), "USD", "COP")
	clock.Advance(61 * time.Second)
	primary.rate = 4200
	result := service.GetExchangeRate(context.Background(), "USD", "COP")

	assert.Equal(t, 4200.0, result.Rate)
	assert.Equal(t, 2, primary.calls)
}

func TestGetExchangeRate_StaticFallback(t *testing.T) {
	primary := &stubSource{name: "primary", err: errors.New("timeout")}
	secondary := &stubSource{name: "secondary", err: errors.New("timeout")}
	service := newTestService(Config{Primary: primary, Secondary: secondary})

	result := service.GetExchangeRate(context.Background(), "USD", "COP")

	assert.False(t, result.Success)
	assert.Equal(t, 4100.0, result.Rate)
	assert.Equal(t, SourceStaticFallback, result.Source)

	inverse := service.GetExchangeRate(context.Background(), "COP", "USD")
	assert.False(t, inverse.Success)
	assert.InDelta(t, 1.0/4100, inverse.Rate, 1e-12)
}

func TestGetExchangeRate_StaticFallbackNormalizesStablecoin(t *testing.T) {
	primary := &stubSource{name: "primary", err: errors.New("timeout")}
	service := newTestService(Config{Primary: primary})

	// USDC rides the USD peg, so the USD/COP table entry applies.
	result := service.GetExchangeRate(context.Background(), "USDC", "COP")

	assert.False(t, result.Success)
	assert.Equal(t, 4100.0, result.Rate)
	assert.Equal(t, SourceStaticFallback, result.Source)
}

func TestGetExchangeRate_CachedFallbackStaysUnsuccessful(t *testing.T) {
	primary := &stubSource{name: "primary", err: errors.New("timeout")}
	service := newTestService(Config{Primary: primary})

	service.GetExchangeRate(context.Background(), "USD", "COP")
	cached := service.GetExchangeRate(context.Background(), "USD", "COP")

	// The second lookup hits the cache; the entry keeps its fallback source,
	// so the degraded flag must survive caching.
	assert.False(t, cached.Success)
	assert.Equal(t, SourceStaticFallback, cached.Source)
	assert.Equal(t, 1, primary.calls)
}

func TestGetExchangeRate_PeggedPair(t *testing.T) {
	primary := &stubSource{name: "primary", rate: 4000}
	service := newTestService(Config{Primary: primary})

	result := service.GetExchangeRate(context.Background(), "USDC", "USD")

	assert.True(t, result.Success)
	assert.Equal(t, 1.0, result.Rate)
	assert.Equal(t, SourcePeg, result.Source)
	assert.Zero(t, primary.calls)
}

func TestGetExchangeRate_DefaultForUnknownPair(t *testing.T) {
	primary := &stubSource{name: "primary", rate: 4000}
	service := newTestService(Config{Primary: primary})

	result := service.GetExchangeRate(context.Background(), "ETH", "BTC")

	assert.False(t, result.Success)
	assert.Equal(t, 1.0, result.Rate)
	assert.Equal(t, SourceDefault, result.Source)
	assert.Zero(t, primary.calls)
}

func TestApplyMargin(t *testing.T) {
	service := newTestService(Config{})

	assert.InDelta(t, 3920.0, service.ApplyMargin(4000, domain.TransactionCashOut), 1e-9)
	assert.Equal(t, 4000.0, service.ApplyMargin(4000, domain.TransactionCashIn))
}

func TestCalculateConversion_CashOut(t *testing.T) {
	service := newTestService(Config{})

	conv := service.CalculateConversion(100, 4000, domain.TransactionCashOut)

	assert.InDelta(t, 3920.0, conv.AdjustedRate, 1e-9)
	assert.InDelta(t, 392000.0, conv.GrossAmount, 1e-9)
	assert.Equal(t, 2.0, conv.FeePercentage)
	// Fee is 2% of the destination amount.
	assert.InDelta(t, conv.GrossAmount*0.02, conv.Fee, 1e-9)
	assert.InDelta(t, conv.GrossAmount, conv.TotalReceived+conv.Fee, 1e-9)
}

func TestCalculateConversion_CashInHasNoFee(t *testing.T) {
	service := newTestService(Config{})

	conv := service.CalculateConversion(100, 4000, domain.TransactionCashIn)

	assert.Equal(t, 4000.0, conv.AdjustedRate)
	assert.Zero(t, conv.Fee)
	assert.Zero(t, conv.FeePercentage)
	assert.InDelta(t, 400000.0, conv.TotalReceived, 1e-9)
}

func TestNewQuote(t *testing.T) {
	clock := &fakeClock{current: time.Unix(1700000000, 0)}
	primary := &stubSource{name: "primary", rate: 4000}
	service := newTestService(Config{Primary: primary, Clock: clock.Now})

	quote, err := service.NewQuote(context.Background(), domain.TransactionCashOut, "usd", "cop", 100)
	require.NoError(t, err)

	assert.NotEmpty(t, quote.ID)
	assert.Equal(t, "USD", quote.FromAsset)
	assert.Equal(t, "COP", quote.ToAsset)
	assert.Equal(t, 100.0, quote.AmountIn)
	assert.InDelta(t, 384160.0, quote.AmountOut, 1e-6)
	assert.Equal(t, "primary", quote.RateSource)
	assert.False(t, quote.UsingFallback)
	assert.Equal(t, clock.current, quote.CreatedAt)
	assert.Equal(t, clock.current.Add(5*time.Minute), quote.ValidUntil)

	assert.False(t, quote.Expired(clock.current.Add(5*time.Minute)))
	assert.True(t, quote.Expired(clock.current.Add(5*time.Minute+time.Second)))
}

func TestNewQuote_FlagsFallbackPricing(t *testing.T) {
	primary := &stubSource{name: "primary", err: errors.New("timeout")}
	service := newTestService(Config{Primary: primary})

	quote, err := service.NewQuote(context.Background(), domain.TransactionCashIn, "USD", "COP", 50)
	require.NoError(t, err)

	assert.True(t, quote.UsingFallback)
	assert.Equal(t, SourceStaticFallback, quote.RateSource)
	assert.Equal(t, 4100.0, quote.Rate)
}

func TestNewQuote_Validation(t *testing.T) {
	service := newTestService(Config{Primary: &stubSource{name: "primary", rate: 4000}})
	ctx := context.Background()

	_, err := service.NewQuote(ctx, "transfer", "USD", "COP", 100)
	assert.Error(t, err)

	_, err = service.NewQuote(ctx, domain.TransactionCashIn, "USD", "COP", 0)
	assert.Error(t, err)

	_, err = service.NewQuote(ctx, domain.TransactionCashIn, "USD", "COP", -5)
	assert.Error(t, err)

	_, err = service.NewQuote(ctx, domain.TransactionCashIn, "XYZ", "COP", 100)
	assert.Error(t, err)

	_, err = service.NewQuote(ctx, domain.TransactionCashIn, "USD", "XYZ", 100)
	assert.Error(t, err)
}

func TestSyncRates(t *testing.T) {
	primary := &stubSource{name: "primary", rate: 4000}
	service := newTestService(Config{Primary: primary})

	err := service.SyncRates(context.Background())
	require.NoError(t, err)

	// The sync warmed the cache; subsequent lookups make no further calls.
	before := primary.calls
	result := service.GetExchangeRate(context.Background(), "USD", "COP")
	assert.True(t, result.Success)
	assert.Equal(t, before, primary.calls)
}

func TestSources_Waterfall(t *testing.T) {
	primary := &stubSource{name: "primary", rate: 4000}
	secondary := &stubSource{name: "secondary", rate: 4000}
	service := newTestService(Config{Primary: primary, Secondary: secondary})

	sources := service.Sources()

	require.NotEmpty(t, sources)
	assert.Equal(t, "memory-cache", sources[0].Name)
	assert.Equal(t, SourceDefault, sources[len(sources)-1].Name)
	for i := 1; i < len(sources); i++ {
		assert.Greater(t, sources[i].Priority, sources[i-1].Priority)
	}
}

func TestInversePair(t *testing.T) {
	assert.Equal(t, "COP/USD", inversePair("USD/COP"))
	assert.Equal(t, "USD", inversePair("USD"))
}
