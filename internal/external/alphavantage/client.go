// Package alphavantage fetches quotes and company overviews from Alpha Vantage.
package alphavantage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/wonny/swingscan/internal/normalize"
	"github.com/wonny/swingscan/pkg/config"
	"github.com/wonny/swingscan/pkg/httputil"
	"github.com/wonny/swingscan/pkg/logger"
	"github.com/wonny/swingscan/pkg/redis"
)

// Query functions
const (
	FunctionGlobalQuote   = "GLOBAL_QUOTE"
	FunctionOverview      = "OVERVIEW"
	FunctionRSI           = "RSI"
	FunctionMACD          = "MACD"
	FunctionEMA           = "EMA"
	FunctionNewsSentiment = "NEWS_SENTIMENT"
)

// Response body markers
const (
	errorMessageKey = "Error Message"
	noteKey         = "Note"        // legacy throttle notice
	informationKey  = "Information" // current throttle / premium notice
	globalQuoteKey  = "Global Quote"
)

var (
	// ErrInvalidRequest: upstream answered with an "Error Message"
	ErrInvalidRequest = errors.New("alpha vantage rejected request")
	// ErrRateLimited: upstream answered with a throttle notice
	ErrRateLimited = errors.New("alpha vantage rate limit reached")
	// ErrNoData: the symbol is unknown or the payload is empty
	ErrNoData = errors.New("alpha vantage returned no data")
)

// APIError carries the upstream message alongside its kind
type APIError struct {
	Kind    error
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Kind
}

// Client handles communication with Alpha Vantage
// ⭐ SSOT: Alpha Vantage API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	cache      *redis.Cache
	logger     *logger.Logger
	baseURL    string
	apiKey     string
}

// NewClient creates a new Alpha Vantage client. cache may be nil.
func NewClient(httpClient *httputil.Client, cfg config.AlphaVantageConfig, cache *redis.Cache, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		cache:      cache,
		logger:     log.WithComponent("alphavantage"),
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
	}
}

// Query calls one API function for symbol and returns the raw JSON body
// after checking it for upstream error and throttle markers.
func (c *Client) Query(ctx context.Context, function, symbol string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("symbol", strings.ToUpper(symbol))
	return c.query(ctx, function, symbol, params)
}

// query sends function with params; symbol is only used for errors and logs
func (c *Client) query(ctx context.Context, function, symbol string, params url.Values) (json.RawMessage, error) {
	params.Set("function", function)
	params.Set("apikey", c.apiKey)

	body, err := c.httpClient.GetBody(ctx, fmt.Sprintf("%s?%s", c.baseURL, params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", function, symbol, err)
	}

	if err := checkBody(body); err != nil {
		c.logger.WithFields(map[string]interface{}{
			"function": function,
			"symbol":   symbol,
			"error":    err.Error(),
		}).Warn("Alpha Vantage returned an error body")
		return nil, err
	}

	return body, nil
}

// cachedRaw serves key from cache or runs fetch and caches its body
func (c *Client) cachedRaw(ctx context.Context, key string, ttl time.Duration, fetch func() (json.RawMessage, error)) (json.RawMessage, error) {
	var body json.RawMessage
	if hit, _ := c.cache.Get(ctx, key, &body); hit {
		return body, nil
	}

	body, err := fetch()
	if err != nil {
		return nil, err
	}

	c.store(ctx, key, body, ttl)
	return body, nil
}

// GlobalQuote returns the "Global Quote" object for symbol
func (c *Client) GlobalQuote(ctx context.Context, symbol string) (map[string]string, error) {
	var quote map[string]string
	if hit, _ := c.cache.Get(ctx, redis.QuoteKey(symbol), &quote); hit {
		return quote, nil
	}

	body, err := c.Query(ctx, FunctionGlobalQuote, symbol)
	if err != nil {
		return nil, err
	}

	var envelope map[string]map[string]string
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode %s: %w", FunctionGlobalQuote, err)
	}

	quote = envelope[globalQuoteKey]
	if len(quote) == 0 {
		return nil, &APIError{Kind: ErrNoData, Message: symbol}
	}

	c.store(ctx, redis.QuoteKey(symbol), quote, redis.TTLQuote)
	return quote, nil
}

// Overview returns the company overview (fundamentals) for symbol
func (c *Client) Overview(ctx context.Context, symbol string) (map[string]string, error) {
	var overview map[string]string
	if hit, _ := c.cache.Get(ctx, redis.OverviewKey(symbol), &overview); hit {
		return overview, nil
	}

	body, err := c.Query(ctx, FunctionOverview, symbol)
	if err != nil {
		return nil, err
	}

	overview, err = decodeFlat(body)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", FunctionOverview, err)
	}
	if len(overview) == 0 {
		return nil, &APIError{Kind: ErrNoData, Message: symbol}
	}

	c.store(ctx, redis.OverviewKey(symbol), overview, redis.TTLOverview)
	return overview, nil
}

// Payload fetches quote and fundamentals for symbol
func (c *Client) Payload(ctx context.Context, symbol string) (normalize.Payload, error) {
	quote, err := c.GlobalQuote(ctx, symbol)
	if err != nil {
		return normalize.Payload{}, err
	}

	overview, err := c.Overview(ctx, symbol)
	if err != nil {
		return normalize.Payload{}, err
	}

	return normalize.Payload{
		Symbol:       strings.ToUpper(symbol),
		Quote:        quote,
		Fundamentals: overview,
	}, nil
}

// store caches value; cache failures never fail the request
func (c *Client) store(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if err := c.cache.Set(ctx, key, value, ttl); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Failed to cache Alpha Vantage response")
	}
}

// checkBody maps in-band error markers onto APIError
func checkBody(body []byte) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if msg, ok := stringField(top, errorMessageKey); ok {
		return &APIError{Kind: ErrInvalidRequest, Message: msg}
	}
	for _, key := range []string{noteKey, informationKey} {
		if msg, ok := stringField(top, key); ok && len(top) == 1 {
			return &APIError{Kind: ErrRateLimited, Message: msg}
		}
	}

	return nil
}

func stringField(m map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := m[key]
	if !ok {
		return "", false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// decodeFlat decodes an object of scalar values into strings
func decodeFlat(body []byte) (map[string]string, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			out[k] = val
		case float64:
			out[k] = fmt.Sprintf("%v", val)
		case nil:
			out[k] = "None"
		}
	}
	return out, nil
}
