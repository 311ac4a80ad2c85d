package alphavantage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/wonny/swingscan/internal/normalize"
	"github.com/wonny/swingscan/pkg/ratelimit"
	"github.com/wonny/swingscan/pkg/redis"
)

// Indicator query defaults
const (
	DefaultInterval   = "daily"
	DefaultTimePeriod = 14

	seriesType        = "close"
	technicalKeyLabel = "Technical Analysis: "
)

// EMA periods behind EMADistance20 / EMADistance50
const (
	shortEMAPeriod = 20
	longEMAPeriod  = 50
)

var errNoPrice = errors.New("no quote price for EMA distance")

// IndicatorQuery selects one technical indicator series
type IndicatorQuery struct {
	Function   string // RSI, MACD, EMA, ...
	Interval   string // empty → daily
	TimePeriod int    // <= 0 → 14
}

func (q IndicatorQuery) withDefaults() IndicatorQuery {
	q.Function = strings.ToUpper(q.Function)
	if q.Interval == "" {
		q.Interval = DefaultInterval
	}
	if q.TimePeriod <= 0 {
		q.TimePeriod = DefaultTimePeriod
	}
	return q
}

// Indicator returns the raw indicator response for symbol
func (c *Client) Indicator(ctx context.Context, symbol string, q IndicatorQuery) (json.RawMessage, error) {
	q = q.withDefaults()
	key := redis.IndicatorKey(symbol, q.Function, q.Interval, q.TimePeriod)

	return c.cachedRaw(ctx, key, redis.TTLIndicator, func() (json.RawMessage, error) {
		params := url.Values{}
		params.Set("symbol", strings.ToUpper(symbol))
		params.Set("interval", q.Interval)
		params.Set("time_period", strconv.Itoa(q.TimePeriod))
		params.Set("series_type", seriesType)
		return c.query(ctx, q.Function, symbol, params)
	})
}

// NewsSentiment returns the raw NEWS_SENTIMENT feed for symbol
func (c *Client) NewsSentiment(ctx context.Context, symbol string) (json.RawMessage, error) {
	return c.cachedRaw(ctx, redis.NewsKey(symbol), redis.TTLNews, func() (json.RawMessage, error) {
		params := url.Values{}
		params.Set("tickers", strings.ToUpper(symbol))
		return c.query(ctx, FunctionNewsSentiment, symbol, params)
	})
}

// SeriesPoint is one dated row of an indicator series
type SeriesPoint struct {
	Date   string
	Values map[string]float64
}

// Series decodes the "Technical Analysis: <FUNCTION>" block, newest first.
// Unparseable values are skipped.
func Series(body json.RawMessage, function string) ([]SeriesPoint, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode %s: %w", function, err)
	}

	raw, ok := envelope[technicalKeyLabel+strings.ToUpper(function)]
	if !ok {
		return nil, &APIError{Kind: ErrNoData, Message: function}
	}

	var byDate map[string]map[string]string
	if err := json.Unmarshal(raw, &byDate); err != nil {
		return nil, fmt.Errorf("decode %s series: %w", function, err)
	}
	if len(byDate) == 0 {
		return nil, &APIError{Kind: ErrNoData, Message: function}
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	// ISO dates sort lexically
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	points := make([]SeriesPoint, 0, len(dates))
	for _, d := range dates {
		values := make(map[string]float64, len(byDate[d]))
		for k, v := range byDate[d] {
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				values[k] = f
			}
		}
		points = append(points, SeriesPoint{Date: d, Values: values})
	}
	return points, nil
}

// column extracts up to n values of key, newest first
func column(points []SeriesPoint, key string, n int) []float64 {
	out := make([]float64, 0, n)
	for _, p := range points {
		if len(out) == n {
			break
		}
		if v, ok := p.Values[key]; ok {
			out = append(out, v)
		}
	}
	return out
}

type newsFeed struct {
	Feed []struct {
		TickerSentiment []struct {
			Ticker    string `json:"ticker"`
			Relevance string `json:"relevance_score"`
			Score     string `json:"ticker_sentiment_score"`
		} `json:"ticker_sentiment"`
	} `json:"feed"`
}

// Sentiment extracts every article's sentiment towards symbol
func Sentiment(body json.RawMessage, symbol string) ([]normalize.SentimentPoint, error) {
	var feed newsFeed
	if err := json.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("decode %s: %w", FunctionNewsSentiment, err)
	}

	symbol = strings.ToUpper(symbol)
	var points []normalize.SentimentPoint
	for _, article := range feed.Feed {
		for _, ts := range article.TickerSentiment {
			if strings.ToUpper(ts.Ticker) != symbol {
				continue
			}
			relevance, err1 := strconv.ParseFloat(ts.Relevance, 64)
			score, err2 := strconv.ParseFloat(ts.Score, 64)
			if err1 != nil || err2 != nil {
				continue
			}
			points = append(points, normalize.SentimentPoint{Relevance: relevance, Score: score})
		}
	}
	return points, nil
}

// Enrich derives RSI, MACD crossover, EMA distances and news score for
// symbol. Each source is best effort: a missing one stays nil so Normalize
// applies its default. No further calls are made once the rate budget is
// exhausted.
func (c *Client) Enrich(ctx context.Context, symbol string, price float64) normalize.Overrides {
	var o normalize.Overrides
	log := c.logger.WithField("symbol", strings.ToUpper(symbol))

	steps := []struct {
		source string
		run    func() error
	}{
		{FunctionRSI, func() error { return c.enrichRSI(ctx, symbol, &o) }},
		{FunctionMACD, func() error { return c.enrichMACD(ctx, symbol, &o) }},
		{"EMA20", func() error { return c.enrichEMA(ctx, symbol, price, shortEMAPeriod, &o.EMADistance20) }},
		{"EMA50", func() error { return c.enrichEMA(ctx, symbol, price, longEMAPeriod, &o.EMADistance50) }},
		{FunctionNewsSentiment, func() error { return c.enrichNews(ctx, symbol, &o) }},
	}

	for _, step := range steps {
		err := step.run()
		if err == nil {
			continue
		}

		log.WithError(err).WithField("source", step.source).Debug("Enrichment unavailable, keeping default")
		if budgetExhausted(ctx, err) {
			break
		}
	}

	return o
}

func (c *Client) enrichRSI(ctx context.Context, symbol string, o *normalize.Overrides) error {
	body, err := c.Indicator(ctx, symbol, IndicatorQuery{Function: FunctionRSI})
	if err != nil {
		return err
	}
	points, err := Series(body, FunctionRSI)
	if err != nil {
		return err
	}

	values := column(points, "RSI", 1)
	if len(values) == 0 {
		return &APIError{Kind: ErrNoData, Message: FunctionRSI}
	}
	o.RSI = &values[0]
	return nil
}

func (c *Client) enrichMACD(ctx context.Context, symbol string, o *normalize.Overrides) error {
	body, err := c.Indicator(ctx, symbol, IndicatorQuery{Function: FunctionMACD})
	if err != nil {
		return err
	}
	points, err := Series(body, FunctionMACD)
	if err != nil {
		return err
	}

	// keep rows aligned: only points carrying both lines
	var macd, signal []float64
	for _, p := range points {
		m, okM := p.Values["MACD"]
		s, okS := p.Values["MACD_Signal"]
		if okM && okS {
			macd = append(macd, m)
			signal = append(signal, s)
		}
		if len(macd) == 2 {
			break
		}
	}

	sig, ok := normalize.MacdCrossover(macd, signal)
	if !ok {
		return &APIError{Kind: ErrNoData, Message: FunctionMACD}
	}
	o.MacdSignal = &sig
	return nil
}

func (c *Client) enrichEMA(ctx context.Context, symbol string, price float64, period int, dst **float64) error {
	if price <= 0 {
		return errNoPrice
	}

	body, err := c.Indicator(ctx, symbol, IndicatorQuery{Function: FunctionEMA, TimePeriod: period})
	if err != nil {
		return err
	}
	points, err := Series(body, FunctionEMA)
	if err != nil {
		return err
	}

	values := column(points, "EMA", 1)
	if len(values) == 0 {
		return &APIError{Kind: ErrNoData, Message: FunctionEMA}
	}
	dist, ok := normalize.EMADistance(price, values[0])
	if !ok {
		return &APIError{Kind: ErrNoData, Message: FunctionEMA}
	}
	*dst = &dist
	return nil
}

func (c *Client) enrichNews(ctx context.Context, symbol string, o *normalize.Overrides) error {
	body, err := c.NewsSentiment(ctx, symbol)
	if err != nil {
		return err
	}
	points, err := Sentiment(body, symbol)
	if err != nil {
		return err
	}

	score, ok := normalize.NewsScoreFromSentiment(points)
	if !ok {
		return &APIError{Kind: ErrNoData, Message: FunctionNewsSentiment}
	}
	o.NewsScore = &score
	return nil
}

// budgetExhausted reports whether further upstream calls are pointless
func budgetExhausted(ctx context.Context, err error) bool {
	return ctx.Err() != nil ||
		errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ratelimit.ErrLimited)
}
