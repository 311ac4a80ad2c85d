package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/swingscan/internal/contracts"
	"github.com/wonny/swingscan/internal/normalize"
	"github.com/wonny/swingscan/pkg/config"
	"github.com/wonny/swingscan/pkg/database"
)

func TestOrderBySymbols(t *testing.T) {
	by := map[string]contracts.StockAttributes{
		"MSFT": {Ticker: "MSFT"},
		"AAPL": {Ticker: "AAPL"},
	}

	got := orderBySymbols([]string{"AAPL", "NVDA", "MSFT"}, by)
	require.Len(t, got, 2)
	assert.Equal(t, "AAPL", got[0].Ticker)
	assert.Equal(t, "MSFT", got[1].Ticker)
}

func TestRepository_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.New(ctx, config.DatabaseConfig{URL: url, MaxConns: 2})
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db.Pool)
	require.NoError(t, repo.EnsureSchema(ctx))

	demo := normalize.DemoAttributes()
	now := time.Now().UTC().Truncate(time.Microsecond)
	results := []contracts.FetchResult{
		{Symbol: "AAPL", Attributes: demo[0], FetchedAt: now},
		{Symbol: "FAIL", Err: assert.AnError, FetchedAt: now},
		{Symbol: "NVDA", Attributes: demo[2], FetchedAt: now},
	}

	saved, err := repo.SaveSnapshots(ctx, results)
	require.NoError(t, err)
	assert.Equal(t, 2, saved)

	latest, err := repo.LatestAttributes(ctx, []string{"nvda", "aapl", "fail"})
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, demo[2], latest[0])
	assert.Equal(t, demo[0], latest[1])
}
