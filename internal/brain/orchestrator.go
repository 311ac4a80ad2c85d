// Package brain coordinates one scan: fetch, snapshot fallback, demo fallback, rank.
package brain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/swingscan/internal/contracts"
	"github.com/wonny/swingscan/internal/normalize"
	"github.com/wonny/swingscan/internal/quality"
	"github.com/wonny/swingscan/internal/selection"
	"github.com/wonny/swingscan/pkg/logger"
)

// Data sources reported on a RunResult
const (
	SourceLive = "live"
	SourceDemo = "demo"
)

// Orchestrator coordinates the scan stages
// ⭐ SSOT: 스캔 파이프라인 조율은 여기서만
type Orchestrator struct {
	fetcher contracts.Fetcher
	store   contracts.AttributeStore // optional: stale snapshots for failed fetches
	ranker  *selection.Ranker
	gate    *quality.QualityGate

	demoFallback bool
	logger       *logger.Logger
	now          func() time.Time
}

// Options configure an Orchestrator
type Options struct {
	// DemoFallback ranks the built-in fixture when nothing could be fetched
	DemoFallback bool
	// QualityGate checks live batches; nil uses quality.DefaultConfig
	QualityGate *quality.QualityGate
}

// RunConfig holds one scan request
type RunConfig struct {
	ScanID   string // generated when empty
	Symbols  []string
	Profile  contracts.RiskProfile
	Sector   string
	Capital  float64
	Limit    int
	MinScore float64
	Demo     bool // skip fetching and rank the fixture
}

// RunResult holds the outcome of a scan
type RunResult struct {
	ScanID          string                  `json:"scanId"`
	GeneratedAt     time.Time               `json:"generatedAt"`
	Source          string                  `json:"source"`
	Profile         contracts.RiskProfile   `json:"riskProfile"`
	Sector          string                  `json:"sector"`
	Capital         float64                 `json:"capital"`
	Stocks          []contracts.ScoredStock `json:"stocks"`
	Failures        []contracts.ItemFailure `json:"failures,omitempty"`
	FetchFailures   []contracts.ItemFailure `json:"fetchFailures,omitempty"`
	Stale           []string                `json:"stale,omitempty"` // served from stored snapshots
	Quality         *quality.Snapshot       `json:"quality,omitempty"`
	CompletedStages []string                `json:"-"`
	Duration        time.Duration           `json:"-"`
}

// NewOrchestrator creates a new orchestrator; store may be nil
func NewOrchestrator(fetcher contracts.Fetcher, store contracts.AttributeStore, ranker *selection.Ranker, opts Options, log *logger.Logger) *Orchestrator {
	gate := opts.QualityGate
	if gate == nil {
		gate = quality.NewQualityGate(quality.DefaultConfig())
	}

	return &Orchestrator{
		fetcher:      fetcher,
		store:        store,
		ranker:       ranker,
		gate:         gate,
		demoFallback: opts.DemoFallback,
		logger:       log.WithComponent("brain"),
		now:          time.Now,
	}
}

// Run executes one scan. Per-symbol fetch failures and per-stock risk
// failures are reported on the result; only cancellation is an error.
func (o *Orchestrator) Run(ctx context.Context, config RunConfig) (*RunResult, error) {
	startTime := o.now()

	if config.ScanID == "" {
		config.ScanID = uuid.New().String()
	}

	result := &RunResult{
		ScanID:          config.ScanID,
		GeneratedAt:     startTime.UTC(),
		Source:          SourceLive,
		Profile:         config.Profile,
		Sector:          config.Sector,
		Capital:         config.Capital,
		CompletedStages: make([]string, 0, 3),
	}

	o.logger.WithFields(map[string]interface{}{
		"scan_id": config.ScanID,
		"symbols": len(config.Symbols),
		"profile": string(config.Profile),
		"sector":  config.Sector,
		"capital": config.Capital,
		"demo":    config.Demo,
	}).Info("Starting scan")

	var attrs []contracts.StockAttributes
	if !config.Demo {
		// Fetch
		fetched, failed := o.fetch(ctx, config.Symbols)
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("fetch: %w", err)
		}
		attrs = fetched
		result.FetchFailures = failed
		result.CompletedStages = append(result.CompletedStages, "Fetch")

		// Snapshot fallback for symbols the live fetch missed
		if len(failed) > 0 && o.store != nil {
			stale := o.fallback(ctx, failed)
			for _, a := range stale {
				result.Stale = append(result.Stale, a.Ticker)
			}
			attrs = mergeInOrder(config.Symbols, attrs, stale)
			result.CompletedStages = append(result.CompletedStages, "Snapshot")
		}

		// Quality (advisory: defaults keep a thin batch rankable)
		if len(attrs) > 0 {
			snapshot := o.gate.Check(attrs)
			result.Quality = &snapshot
			if !snapshot.Passed {
				o.logger.WithFields(map[string]interface{}{
					"scan_id":       config.ScanID,
					"quality_score": snapshot.QualityScore,
					"violations":    snapshot.Violations,
				}).Warn("Batch below quality thresholds")
			}
			result.CompletedStages = append(result.CompletedStages, "Quality")
		}
	}

	if config.Demo || (len(attrs) == 0 && o.demoFallback) {
		if !config.Demo {
			o.logger.WithField("scan_id", config.ScanID).Warn("No live data, ranking demo fixture")
		}
		attrs = normalize.DemoAttributes()
		result.Source = SourceDemo
	}

	// Rank
	ranked := o.ranker.Rank(selection.Request{
		Attributes: attrs,
		Profile:    config.Profile,
		Sector:     config.Sector,
		Capital:    config.Capital,
		Limit:      config.Limit,
		MinScore:   config.MinScore,
	})
	result.Stocks = ranked.Stocks
	result.Failures = ranked.Failures
	result.CompletedStages = append(result.CompletedStages, "Rank")

	result.Duration = o.now().Sub(startTime)

	o.logger.WithFields(map[string]interface{}{
		"scan_id":        config.ScanID,
		"source":         result.Source,
		"ranked":         len(result.Stocks),
		"failures":       len(result.Failures),
		"fetch_failures": len(result.FetchFailures),
		"stale":          len(result.Stale),
		"duration":       result.Duration.Seconds(),
	}).Info("Scan completed")

	return result, nil
}

func (o *Orchestrator) fetch(ctx context.Context, symbols []string) ([]contracts.StockAttributes, []contracts.ItemFailure) {
	if len(symbols) == 0 {
		return nil, nil
	}

	results := o.fetcher.FetchBatch(ctx, symbols)

	attrs := make([]contracts.StockAttributes, 0, len(results))
	var failed []contracts.ItemFailure
	for _, r := range results {
		if r.OK() {
			attrs = append(attrs, r.Attributes)
			continue
		}
		failed = append(failed, contracts.NewItemFailure(r.Symbol, r.Err))
	}
	return attrs, failed
}

func (o *Orchestrator) fallback(ctx context.Context, failed []contracts.ItemFailure) []contracts.StockAttributes {
	symbols := make([]string, len(failed))
	for i, f := range failed {
		symbols[i] = f.Ticker
	}

	stale, err := o.store.LatestAttributes(ctx, symbols)
	if err != nil {
		o.logger.WithError(err).Warn("Failed to load stored snapshots")
		return nil
	}
	return stale
}

// mergeInOrder combines live and stale attributes following symbols' order
func mergeInOrder(symbols []string, live, stale []contracts.StockAttributes) []contracts.StockAttributes {
	if len(stale) == 0 {
		return live
	}

	byTicker := make(map[string]contracts.StockAttributes, len(live)+len(stale))
	for _, a := range stale {
		byTicker[a.Ticker] = a
	}
	for _, a := range live {
		byTicker[a.Ticker] = a
	}

	merged := make([]contracts.StockAttributes, 0, len(byTicker))
	for _, s := range symbols {
		if a, ok := byTicker[s]; ok {
			merged = append(merged, a)
			delete(byTicker, s)
		}
	}
	return merged
}
