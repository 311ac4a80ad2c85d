package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/swingscan/pkg/config"
)

func disabledClient(t *testing.T) *Client {
	t.Helper()

	client, err := New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	require.NoError(t, err)
	return client
}

func TestNewClient_Disabled(t *testing.T) {
	client := disabledClient(t)
	assert.False(t, client.Enabled())
	assert.NoError(t, client.Ping(context.Background()))
	assert.NoError(t, client.Close())

	var nilClient *Client
	assert.NoError(t, nilClient.Ping(context.Background()))
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter := NewRateLimiter(disabledClient(t), "test")
	cfg := AlphaVantageRateLimit(5)

	allowed, remaining, err := limiter.Allow(context.Background(), cfg)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 5, remaining)

	// Bound limiter never blocks when Redis is off
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.NoError(t, limiter.For(cfg).Wait(ctx))
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(disabledClient(t), "test")
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, QuoteKey("aapl"), map[string]string{"05. price": "1"}, TTLQuote))

	var result map[string]string
	found, err := cache.Get(ctx, QuoteKey("aapl"), &result)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, cache.Delete(ctx, QuoteKey("aapl")))
}

func TestCache_NilReceiver(t *testing.T) {
	var cache *Cache

	var result string
	found, err := cache.Get(context.Background(), "key", &result)
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "quote:AAPL", QuoteKey("aapl"))
	assert.Equal(t, "overview:NVDA", OverviewKey("NVDA"))
	assert.Equal(t, "indicator:AAPL:RSI:daily:14", IndicatorKey("aapl", "rsi", "daily", 14))
	assert.Equal(t, "news:TSLA", NewsKey("tsla"))
	assert.Equal(t, "alphavantage", AlphaVantageRateLimit(5).Key)
	assert.Equal(t, time.Minute, AlphaVantageRateLimit(5).Window)
}
