package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache provides typed JSON caching utilities
// ⭐ SSOT: 캐시 헬퍼는 여기서만
type Cache struct {
	client *Client
	prefix string
}

// NewCache creates a new cache helper
func NewCache(client *Client, prefix string) *Cache {
	return &Cache{
		client: client,
		prefix: prefix,
	}
}

func (c *Cache) fullKey(key string) string {
	return fmt.Sprintf("%s:cache:%s", c.prefix, key)
}

// Get retrieves a cached value; (false, nil) on miss or when disabled
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if c == nil || !c.client.Enabled() {
		return false, nil
	}

	data, err := c.client.Redis().Get(ctx, c.fullKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get failed: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal failed: %w", err)
	}

	return true, nil
}

// Set stores a value in cache with TTL
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c == nil || !c.client.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}

	return c.client.Redis().Set(ctx, c.fullKey(key), data, ttl).Err()
}

// Delete removes a cached value
func (c *Cache) Delete(ctx context.Context, key string) error {
	if c == nil || !c.client.Enabled() {
		return nil
	}

	return c.client.Redis().Del(ctx, c.fullKey(key)).Err()
}

// Predefined TTLs
const (
	TTLQuote     = 1 * time.Minute  // 시세
	TTLOverview  = 24 * time.Hour   // 펀더멘털 (일 단위 갱신)
	TTLIndicator = 1 * time.Hour    // 기술적 지표 (일봉)
	TTLNews      = 15 * time.Minute // 뉴스 감성
)

// QuoteKey is the cache key for a GLOBAL_QUOTE payload
func QuoteKey(symbol string) string {
	return fmt.Sprintf("quote:%s", strings.ToUpper(symbol))
}

// OverviewKey is the cache key for an OVERVIEW payload
func OverviewKey(symbol string) string {
	return fmt.Sprintf("overview:%s", strings.ToUpper(symbol))
}

// IndicatorKey is the cache key for one technical indicator series
func IndicatorKey(symbol, function, interval string, period int) string {
	return fmt.Sprintf("indicator:%s:%s:%s:%d",
		strings.ToUpper(symbol), strings.ToUpper(function), interval, period)
}

// NewsKey is the cache key for a NEWS_SENTIMENT feed
func NewsKey(symbol string) string {
	return fmt.Sprintf("news:%s", strings.ToUpper(symbol))
}
