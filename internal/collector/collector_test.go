package collector

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/swingscan/internal/contracts"
	"github.com/wonny/swingscan/internal/normalize"
	"github.com/wonny/swingscan/pkg/logger"
)

type fakeSource struct {
	mu       sync.Mutex
	payloads map[string]normalize.Payload
	calls    []string
}

func (f *fakeSource) Payload(ctx context.Context, symbol string) (normalize.Payload, error) {
	f.mu.Lock()
	f.calls = append(f.calls, symbol)
	f.mu.Unlock()

	p, ok := f.payloads[symbol]
	if !ok {
		return normalize.Payload{}, errors.New("unknown symbol")
	}
	return p, nil
}

type fakeStore struct {
	saved []contracts.FetchResult
	err   error
}

func (s *fakeStore) SaveSnapshots(ctx context.Context, results []contracts.FetchResult) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	n := 0
	for _, r := range results {
		if r.OK() {
			s.saved = append(s.saved, r)
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) LatestAttributes(ctx context.Context, symbols []string) ([]contracts.StockAttributes, error) {
	return nil, nil
}

func payload(symbol, price string) normalize.Payload {
	return normalize.Payload{
		Symbol:       symbol,
		Quote:        map[string]string{"05. price": price, "06. volume": "1000000"},
		Fundamentals: map[string]string{"Sector": "Energy", "MarketCapitalization": "500B"},
	}
}

func newSource() *fakeSource {
	return &fakeSource{payloads: map[string]normalize.Payload{
		"XOM": payload("XOM", "110.5"),
		"CVX": payload("CVX", "150.25"),
		"SLB": payload("SLB", "45.00"),
	}}
}

func TestFetchBatch_PreservesOrderAndReportsFailures(t *testing.T) {
	c := NewCollector(newSource(), nil, Config{Workers: 3}, logger.Nop())

	results := c.FetchBatch(context.Background(), []string{"SLB", "NOPE", "XOM", "CVX"})
	require.Len(t, results, 4)

	assert.Equal(t, "SLB", results[0].Symbol)
	assert.True(t, results[0].OK())
	assert.Equal(t, 45.0, results[0].Attributes.Price)
	assert.Equal(t, contracts.SectorEnergy, results[0].Attributes.Sector)
	assert.Equal(t, 500_000.0, results[0].Attributes.MarketCap)

	assert.Equal(t, "NOPE", results[1].Symbol)
	assert.Error(t, results[1].Err)

	assert.Equal(t, "XOM", results[2].Symbol)
	assert.Equal(t, "CVX", results[3].Symbol)

	attrs := Attributes(results)
	require.Len(t, attrs, 3)
	assert.Equal(t, []string{"SLB", "XOM", "CVX"}, []string{attrs[0].Ticker, attrs[1].Ticker, attrs[2].Ticker})
}

// enrichingSource adds indicator values on top of fakeSource
type enrichingSource struct {
	*fakeSource
	mu     sync.Mutex
	prices map[string]float64
}

func (e *enrichingSource) Enrich(ctx context.Context, symbol string, price float64) normalize.Overrides {
	e.mu.Lock()
	e.prices[symbol] = price
	e.mu.Unlock()

	rsi := 72.5
	macd := contracts.MacdBullishCrossover
	return normalize.Overrides{RSI: &rsi, MacdSignal: &macd}
}

func TestFetchBatch_Enrichment(t *testing.T) {
	src := &enrichingSource{fakeSource: newSource(), prices: map[string]float64{}}

	c := NewCollector(src, nil, Config{Workers: 2, Enrich: true}, logger.Nop())
	results := c.FetchBatch(context.Background(), []string{"XOM", "SLB"})

	for _, r := range results {
		require.True(t, r.OK())
		assert.Equal(t, 72.5, r.Attributes.RSI)
		assert.Equal(t, contracts.MacdBullishCrossover, r.Attributes.MacdSignal)
		assert.False(t, r.Attributes.IsSynthetic(contracts.FieldRSI))
		assert.True(t, r.Attributes.IsSynthetic(contracts.FieldNewsScore))
	}
	assert.Equal(t, map[string]float64{"XOM": 110.5, "SLB": 45.0}, src.prices)
}

func TestFetchBatch_EnrichmentDisabled(t *testing.T) {
	src := &enrichingSource{fakeSource: newSource(), prices: map[string]float64{}}

	c := NewCollector(src, nil, Config{Workers: 1}, logger.Nop())
	results := c.FetchBatch(context.Background(), []string{"XOM"})

	require.True(t, results[0].OK())
	assert.Equal(t, normalize.DefaultRSI, results[0].Attributes.RSI)
	assert.True(t, results[0].Attributes.IsSynthetic(contracts.FieldRSI))
	assert.Empty(t, src.prices)
}

func TestFetchBatch_CancelledContext(t *testing.T) {
	src := newSource()
	c := NewCollector(src, nil, Config{Workers: 2}, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := c.FetchBatch(ctx, []string{"XOM", "CVX", "SLB"})
	require.Len(t, results, 3)
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
	assert.Empty(t, src.calls)
}

func TestFetchBatch_Empty(t *testing.T) {
	c := NewCollector(newSource(), nil, Config{}, logger.Nop())
	assert.Empty(t, c.FetchBatch(context.Background(), nil))
}

func TestCollect_SavesSnapshots(t *testing.T) {
	store := &fakeStore{}
	c := NewCollector(newSource(), store, Config{Workers: 2}, logger.Nop())

	summary, err := c.Collect(context.Background(), []string{"XOM", "BAD", "CVX"})
	require.NoError(t, err)

	assert.Equal(t, Summary{Requested: 3, Fetched: 2, Failed: 1, Saved: 2}, summary)
	assert.Len(t, store.saved, 2)
}

func TestCollect_StoreError(t *testing.T) {
	store := &fakeStore{err: errors.New("db down")}
	c := NewCollector(newSource(), store, Config{}, logger.Nop())

	summary, err := c.Collect(context.Background(), []string{"XOM"})
	assert.Error(t, err)
	assert.Equal(t, 1, summary.Fetched)
	assert.Equal(t, 0, summary.Saved)
}

func TestCleanSymbols(t *testing.T) {
	got := CleanSymbols([]string{" aapl", "MSFT", "", "aapl", "nvda", "amd", "tsla", "googl", "meta"}, 6)
	assert.Equal(t, []string{"AAPL", "MSFT", "NVDA", "AMD", "TSLA", "GOOGL"}, got)

	assert.Equal(t, []string{"A", "B"}, CleanSymbols([]string{"a", "b"}, 0))
	assert.Empty(t, CleanSymbols(nil, 6))
}
