package rates

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Convexo-finance/fund-convexo-sub001/internal/clientdata"
)

func setupTestRepo(t *testing.T) (*clientdata.Repository, *sql.DB) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, clientdata.EnsureSchema(db))

	return clientdata.NewRepository(db), db
}

func TestGetExchangeRate_StalePersistedTier(t *testing.T) {
	repo, _ := setupTestRepo(t)

	clock := &fakeClock{current: time.Unix(1700000000, 0)}
	primary := &stubSource{name: "primary", rate: 4000}
	service := newTestService(Config{
		Primary:   primary,
		CacheRepo: repo,
		CacheTTL:  60 * time.Second,
		Clock:     clock.Now,
	})

	// First resolution persists the rate.
	first := service.GetExchangeRate(context.Background(), "USD", "COP")
	require.True(t, first.Success)

	// Memory cache expires and the provider goes down; the persisted rate
	// keeps pricing alive, flagged as degraded.
	clock.Advance(2 * time.Minute)
	primary.err = errors.New("connection refused")

	second := service.GetExchangeRate(context.Background(), "USD", "COP")
	assert.False(t, second.Success)
	assert.Equal(t, SourceStaleCache, second.Source)
	assert.Equal(t, 4000.0, second.Rate)
}

func TestProviderHealth(t *testing.T) {
	repo, _ := setupTestRepo(t)

	primary := &stubSource{name: "primary", rate: 4000}
	secondary := &stubSource{name: "secondary", err: errors.New("dns failure")}
	service := newTestService(Config{
		Primary:   primary,
		Secondary: secondary,
		CacheRepo: repo,
	})

	// No observations before any live fetch.
	assert.Empty(t, service.ProviderHealth())

	service.GetExchangeRate(context.Background(), "USD", "COP")

	health := service.ProviderHealth()
	require.Contains(t, health, "primary")
	assert.Equal(t, "up", health["primary"].Status)
	assert.Empty(t, health["primary"].Error)

	// The secondary was never consulted: the primary answered first.
	assert.NotContains(t, health, "secondary")
}

func TestProviderHealth_RecordsFailures(t *testing.T) {
	repo, _ := setupTestRepo(t)

	primary := &stubSource{name: "primary", err: errors.New("timeout")}
	secondary := &stubSource{name: "secondary", rate: 4050}
	service := newTestService(Config{
		Primary:   primary,
		Secondary: secondary,
		CacheRepo: repo,
	})

	result := service.GetExchangeRate(context.Background(), "USD", "COP")
	require.True(t, result.Success)

	health := service.ProviderHealth()
	require.Contains(t, health, "primary")
	assert.Equal(t, "down", health["primary"].Status)
	assert.Contains(t, health["primary"].Error, "timeout")

	require.Contains(t, health, "secondary")
	assert.Equal(t, "up", health["secondary"].Status)
}
