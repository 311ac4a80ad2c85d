// Package selection ranks a batch of stocks into trade candidates.
package selection

import (
	"errors"
	"sort"
	"sync"

	"github.com/wonny/swingscan/internal/contracts"
	"github.com/wonny/swingscan/internal/risk"
	"github.com/wonny/swingscan/internal/scoring"
	"github.com/wonny/swingscan/pkg/logger"
)

// DefaultLimit is used when a request asks for limit <= 0
const DefaultLimit = 5

// Params are the scoring and risk tables used by a Ranker
type Params struct {
	Weights scoring.WeightSet
	Risk    risk.Params
}

// DefaultParams returns the built-in tables
func DefaultParams() Params {
	return Params{
		Weights: scoring.DefaultWeightSet(),
		Risk:    risk.DefaultParams(),
	}
}

// Request is one ranking pass
type Request struct {
	Attributes []contracts.StockAttributes
	Profile    contracts.RiskProfile
	Sector     string // "" or "all" = no filter
	Capital    float64
	Limit      int     // <= 0 → DefaultLimit
	MinScore   float64 // <= 0 disables
}

// Ranker scores, sizes, filters and orders stocks
// ⭐ SSOT: 랭킹 파이프라인은 여기서만
type Ranker struct {
	params  Params
	workers int
	logger  *logger.Logger
}

// NewRanker creates a new ranker; workers < 1 runs single threaded
func NewRanker(params Params, workers int, log *logger.Logger) *Ranker {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = logger.Nop()
	}

	return &Ranker{
		params:  params,
		workers: workers,
		logger:  log.WithComponent("ranker"),
	}
}

type outcome struct {
	stock contracts.ScoredStock
	err   error
}

// Rank runs the pipeline. Stocks without a price are ranked with RiskError
// set; stocks whose risk computation fails are left out of Stocks and
// reported in Failures. An empty result is not an error.
func (r *Ranker) Rank(req Request) contracts.RankResult {
	outcomes := r.evaluate(req)

	scored := make([]contracts.ScoredStock, 0, len(outcomes))
	var failures []contracts.ItemFailure
	for i, o := range outcomes {
		if o.err != nil {
			failures = append(failures, contracts.NewItemFailure(req.Attributes[i].Ticker, o.err))
			r.logger.WithFields(map[string]interface{}{
				"ticker": req.Attributes[i].Ticker,
				"error":  o.err.Error(),
			}).Debug("Stock dropped from ranking")
			continue
		}
		scored = append(scored, o.stock)
	}

	scored = FilterSector(scored, req.Sector)
	scored = FilterMinScore(scored, req.MinScore)

	// Equal scores keep input order
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].FinalScore > scored[j].FinalScore
	})

	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(scored) > limit {
		scored = scored[:limit]
	}

	for i := range scored {
		scored[i].Rank = i + 1
		scored[i].SetupType = SetupType(scored[i].StockAttributes)
		scored[i].Catalyst = CatalystLabel(scored[i].StockAttributes)
	}

	fields := map[string]interface{}{
		"input":    len(req.Attributes),
		"returned": len(scored),
		"failed":   len(failures),
		"profile":  req.Profile,
		"sector":   req.Sector,
	}
	if len(scored) > 0 {
		fields["top_ticker"] = scored[0].Ticker
		fields["top_score"] = scored[0].FinalScore
	}
	r.logger.WithFields(fields).Info("Ranking completed")

	return contracts.RankResult{Stocks: scored, Failures: failures}
}

// evaluate scores and sizes every stock; outcomes[i] belongs to Attributes[i]
func (r *Ranker) evaluate(req Request) []outcome {
	outcomes := make([]outcome, len(req.Attributes))
	if len(req.Attributes) == 0 {
		return outcomes
	}

	indexCh := make(chan int)
	var wg sync.WaitGroup

	workers := r.workers
	if workers > len(req.Attributes) {
		workers = len(req.Attributes)
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexCh {
				outcomes[i] = r.evaluateOne(req.Attributes[i], req)
			}
		}()
	}

	for i := range req.Attributes {
		indexCh <- i
	}
	close(indexCh)
	wg.Wait()

	return outcomes
}

func (r *Ranker) evaluateOne(a contracts.StockAttributes, req Request) outcome {
	final, sub := r.params.Weights.Score(a, req.Profile)

	scored := contracts.ScoredStock{
		StockAttributes: a,
		FinalScore:      final,
		Scores:          sub,
	}

	targets, position, err := r.params.Risk.Evaluate(a, req.Capital, req.Profile)
	switch {
	case errors.Is(err, contracts.ErrPriceUnavailable):
		scored.RiskError = contracts.ErrPriceUnavailable.Error()
		return outcome{stock: scored}
	case err != nil:
		return outcome{err: err}
	}

	scored.Targets = targets
	scored.Position = position
	return outcome{stock: scored}
}

// Rank runs a pass with the built-in tables
func Rank(attrs []contracts.StockAttributes, profile contracts.RiskProfile, sector string, capital float64, limit int) contracts.RankResult {
	return NewRanker(DefaultParams(), 1, logger.Nop()).Rank(Request{
		Attributes: attrs,
		Profile:    profile,
		Sector:     sector,
		Capital:    capital,
		Limit:      limit,
	})
}
