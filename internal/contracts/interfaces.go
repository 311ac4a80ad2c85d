package contracts

import (
	"context"
	"time"
)

// FetchResult is the outcome for one symbol of a batch fetch
type FetchResult struct {
	Symbol     string
	Attributes StockAttributes
	FetchedAt  time.Time
	Err        error
}

// OK reports whether the symbol was fetched and normalized
func (r FetchResult) OK() bool {
	return r.Err == nil
}

// Fetcher produces normalized attributes from an upstream provider
// ⭐ SSOT: 외부 데이터 수집 인터페이스
type Fetcher interface {
	FetchBatch(ctx context.Context, symbols []string) []FetchResult
}

// AttributeStore persists normalized attribute snapshots (never scores)
type AttributeStore interface {
	SaveSnapshots(ctx context.Context, results []FetchResult) (int, error)
	LatestAttributes(ctx context.Context, symbols []string) ([]StockAttributes, error)
}
