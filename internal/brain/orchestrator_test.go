package brain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/swingscan/internal/contracts"
	"github.com/wonny/swingscan/internal/normalize"
	"github.com/wonny/swingscan/internal/selection"
	"github.com/wonny/swingscan/pkg/logger"
)

type fakeFetcher struct {
	attrs map[string]contracts.StockAttributes
	calls int
}

func (f *fakeFetcher) FetchBatch(ctx context.Context, symbols []string) []contracts.FetchResult {
	f.calls++
	out := make([]contracts.FetchResult, len(symbols))
	for i, s := range symbols {
		out[i].Symbol = s
		if err := ctx.Err(); err != nil {
			out[i].Err = err
			continue
		}
		a, ok := f.attrs[s]
		if !ok {
			out[i].Err = errors.New("rate limited")
			continue
		}
		out[i].Attributes = a
	}
	return out
}

type fakeStore struct {
	snapshots map[string]contracts.StockAttributes
	err       error
}

func (s *fakeStore) SaveSnapshots(ctx context.Context, results []contracts.FetchResult) (int, error) {
	return 0, nil
}

func (s *fakeStore) LatestAttributes(ctx context.Context, symbols []string) ([]contracts.StockAttributes, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []contracts.StockAttributes
	for _, sym := range symbols {
		if a, ok := s.snapshots[sym]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func demoByTicker() map[string]contracts.StockAttributes {
	m := make(map[string]contracts.StockAttributes)
	for _, a := range normalize.DemoAttributes() {
		m[a.Ticker] = a
	}
	return m
}

func newOrchestrator(f contracts.Fetcher, s contracts.AttributeStore, demo bool) *Orchestrator {
	ranker := selection.NewRanker(selection.DefaultParams(), 2, logger.Nop())
	return NewOrchestrator(f, s, ranker, Options{DemoFallback: demo}, logger.Nop())
}

func baseConfig(symbols ...string) RunConfig {
	return RunConfig{
		Symbols: symbols,
		Profile: contracts.RiskModerate,
		Capital: 10000,
		Limit:   5,
	}
}

func TestRun_Live(t *testing.T) {
	f := &fakeFetcher{attrs: demoByTicker()}
	o := newOrchestrator(f, nil, false)

	result, err := o.Run(context.Background(), baseConfig("AAPL", "MSFT", "NVDA", "AMD"))
	require.NoError(t, err)

	assert.NotEmpty(t, result.ScanID)
	assert.Equal(t, SourceLive, result.Source)
	require.Len(t, result.Stocks, 3)
	assert.Equal(t, "NVDA", result.Stocks[0].Ticker)
	require.Len(t, result.FetchFailures, 1)
	assert.Equal(t, "AMD", result.FetchFailures[0].Ticker)
	assert.Equal(t, []string{"Fetch", "Quality", "Rank"}, result.CompletedStages)
	require.NotNil(t, result.Quality)
	assert.True(t, result.Quality.Passed)
}

func TestRun_SnapshotFallback(t *testing.T) {
	demo := demoByTicker()
	f := &fakeFetcher{attrs: map[string]contracts.StockAttributes{"AAPL": demo["AAPL"]}}
	s := &fakeStore{snapshots: map[string]contracts.StockAttributes{"NVDA": demo["NVDA"]}}
	o := newOrchestrator(f, s, false)

	result, err := o.Run(context.Background(), baseConfig("NVDA", "AAPL", "MSFT"))
	require.NoError(t, err)

	assert.Equal(t, []string{"NVDA"}, result.Stale)
	require.Len(t, result.Stocks, 2)
	assert.Len(t, result.FetchFailures, 2)
	assert.Contains(t, result.CompletedStages, "Snapshot")
}

func TestRun_StoreErrorIgnored(t *testing.T) {
	f := &fakeFetcher{attrs: map[string]contracts.StockAttributes{}}
	o := newOrchestrator(f, &fakeStore{err: errors.New("db down")}, false)

	result, err := o.Run(context.Background(), baseConfig("AAPL"))
	require.NoError(t, err)
	assert.Empty(t, result.Stocks)
	assert.Empty(t, result.Stale)
}

func TestRun_DemoFallbackWhenNothingFetched(t *testing.T) {
	f := &fakeFetcher{attrs: map[string]contracts.StockAttributes{}}
	o := newOrchestrator(f, nil, true)

	result, err := o.Run(context.Background(), baseConfig("AAPL", "MSFT"))
	require.NoError(t, err)

	assert.Equal(t, SourceDemo, result.Source)
	require.Len(t, result.Stocks, 3)
	assert.Equal(t, "NVDA", result.Stocks[0].Ticker)
	assert.Len(t, result.FetchFailures, 2)
}

func TestRun_ForcedDemoSkipsFetch(t *testing.T) {
	f := &fakeFetcher{}
	o := newOrchestrator(f, nil, false)

	cfg := baseConfig("AAPL")
	cfg.Demo = true
	cfg.ScanID = "fixed"
	result, err := o.Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, 0, f.calls)
	assert.Equal(t, "fixed", result.ScanID)
	assert.Equal(t, SourceDemo, result.Source)
	assert.Len(t, result.Stocks, 3)
	assert.Nil(t, result.Quality)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := newOrchestrator(&fakeFetcher{attrs: demoByTicker()}, nil, true)
	_, err := o.Run(ctx, baseConfig("AAPL"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMergeInOrder(t *testing.T) {
	live := []contracts.StockAttributes{{Ticker: "B"}}
	stale := []contracts.StockAttributes{{Ticker: "C"}, {Ticker: "A"}}

	merged := mergeInOrder([]string{"A", "B", "C"}, live, stale)
	require.Len(t, merged, 3)
	assert.Equal(t, "A", merged[0].Ticker)
	assert.Equal(t, "B", merged[1].Ticker)
	assert.Equal(t, "C", merged[2].Ticker)
}
