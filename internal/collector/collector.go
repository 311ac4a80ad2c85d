// Package collector fetches and normalizes upstream data for a batch of symbols.
package collector

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wonny/swingscan/internal/contracts"
	"github.com/wonny/swingscan/internal/normalize"
	"github.com/wonny/swingscan/pkg/logger"
)

// Source returns the raw payload for one symbol
type Source interface {
	Payload(ctx context.Context, symbol string) (normalize.Payload, error)
}

// Enricher supplies indicator and news inputs the payload lacks.
// Missing values stay nil and take their documented defaults.
type Enricher interface {
	Enrich(ctx context.Context, symbol string, price float64) normalize.Overrides
}

// Collector orchestrates batch fetches over a Source
// ⭐ SSOT: 데이터 수집 오케스트레이션은 이 패키지에서만
type Collector struct {
	source   Source
	enricher Enricher                 // nil when enrichment is off
	store    contracts.AttributeStore // optional
	workers  int
	logger  *logger.Logger
	now     func() time.Time
}

// Config holds collector configuration
type Config struct {
	Workers int  // Number of concurrent workers
	Enrich  bool // query indicators and news when source implements Enricher
}

// NewCollector creates a new Collector; store may be nil
func NewCollector(source Source, store contracts.AttributeStore, cfg Config, log *logger.Logger) *Collector {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	c := &Collector{
		source:  source,
		store:   store,
		workers: cfg.Workers,
		logger:  log.WithComponent("collector"),
		now:     time.Now,
	}
	if e, ok := source.(Enricher); ok && cfg.Enrich {
		c.enricher = e
	}

	return c
}

type job struct {
	index  int
	symbol string
}

// FetchBatch fetches and normalizes every symbol. results[i] belongs to
// symbols[i]; a failed symbol carries Err and never aborts the batch.
func (c *Collector) FetchBatch(ctx context.Context, symbols []string) []contracts.FetchResult {
	results := make([]contracts.FetchResult, len(symbols))
	if len(symbols) == 0 {
		return results
	}

	c.logger.WithFields(map[string]interface{}{
		"symbols": len(symbols),
		"workers": c.workers,
	}).Info("Starting batch fetch")

	jobCh := make(chan job, len(symbols))
	for i, s := range symbols {
		jobCh <- job{index: i, symbol: s}
	}
	close(jobCh)

	var wg sync.WaitGroup
	for w := 0; w < c.workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for j := range jobCh {
				results[j.index] = c.fetchOne(ctx, workerID, j.symbol)
			}
		}(w)
	}
	wg.Wait()

	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"success": len(results) - failed,
		"failed":  failed,
		"total":   len(results),
	}).Info("Batch fetch completed")

	return results
}

func (c *Collector) fetchOne(ctx context.Context, workerID int, symbol string) contracts.FetchResult {
	result := contracts.FetchResult{Symbol: symbol, FetchedAt: c.now()}

	if err := ctx.Err(); err != nil {
		result.Err = err
		return result
	}

	payload, err := c.source.Payload(ctx, symbol)
	if err != nil {
		c.logger.WithError(err).WithFields(map[string]interface{}{
			"worker": workerID,
			"symbol": symbol,
		}).Warn("Failed to fetch symbol")
		result.Err = fmt.Errorf("fetch %s: %w", symbol, err)
		return result
	}

	var overrides normalize.Overrides
	if c.enricher != nil {
		price, _ := normalize.QuotePrice(payload.Quote)
		overrides = c.enricher.Enrich(ctx, symbol, price)
	}

	attrs, fallbacks := normalize.Normalize(payload, overrides)
	if fallbacks != nil {
		c.logger.WithFields(map[string]interface{}{
			"symbol":    symbol,
			"fallbacks": fallbacks.Error(),
		}).Debug("Normalized with defaults")
	}

	result.Attributes = attrs
	return result
}

// Summary reports one Collect run
type Summary struct {
	Requested int `json:"requested"`
	Fetched   int `json:"fetched"`
	Failed    int `json:"failed"`
	Saved     int `json:"saved"`
}

// Collect fetches symbols and persists the successful snapshots
func (c *Collector) Collect(ctx context.Context, symbols []string) (Summary, error) {
	results := c.FetchBatch(ctx, symbols)

	summary := Summary{Requested: len(symbols)}
	for _, r := range results {
		if r.OK() {
			summary.Fetched++
		} else {
			summary.Failed++
		}
	}

	if c.store == nil || summary.Fetched == 0 {
		return summary, nil
	}

	saved, err := c.store.SaveSnapshots(ctx, results)
	summary.Saved = saved
	if err != nil {
		return summary, fmt.Errorf("save snapshots: %w", err)
	}

	return summary, nil
}

// Attributes returns the successfully fetched attributes in input order
func Attributes(results []contracts.FetchResult) []contracts.StockAttributes {
	attrs := make([]contracts.StockAttributes, 0, len(results))
	for _, r := range results {
		if r.OK() {
			attrs = append(attrs, r.Attributes)
		}
	}
	return attrs
}

// CleanSymbols upper-cases, trims and de-duplicates symbols, keeping at most max
// (max <= 0 means no cap).
func CleanSymbols(symbols []string, max int) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))

	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)

		if max > 0 && len(out) == max {
			break
		}
	}
	return out
}
