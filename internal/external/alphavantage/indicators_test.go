package alphavantage

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/swingscan/internal/contracts"
)

const rsiBody = `{
    "Meta Data": {"1: Symbol": "IBM", "2: Indicator": "Relative Strength Index (RSI)"},
    "Technical Analysis: RSI": {
        "2024-03-07": {"RSI": "61.4200"},
        "2024-03-08": {"RSI": "64.1000"},
        "2024-03-06": {"RSI": "58.0000"}
    }
}`

const macdBody = `{
    "Meta Data": {"1: Symbol": "IBM"},
    "Technical Analysis: MACD": {
        "2024-03-08": {"MACD": "1.2000", "MACD_Signal": "1.0000", "MACD_Hist": "0.2000"},
        "2024-03-07": {"MACD": "0.8000", "MACD_Signal": "0.9000", "MACD_Hist": "-0.1000"}
    }
}`

const ema20Body = `{"Technical Analysis: EMA": {"2024-03-08": {"EMA": "160.0000"}}}`
const ema50Body = `{"Technical Analysis: EMA": {"2024-03-08": {"EMA": "250.0000"}}}`

const newsBody = `{
    "items": "2",
    "feed": [
        {"title": "a", "ticker_sentiment": [
            {"ticker": "IBM", "relevance_score": "0.9", "ticker_sentiment_score": "0.3"},
            {"ticker": "MSFT", "relevance_score": "0.5", "ticker_sentiment_score": "-0.9"}
        ]},
        {"title": "b", "ticker_sentiment": [
            {"ticker": "IBM", "relevance_score": "0.1", "ticker_sentiment_score": "-0.3"}
        ]}
    ]
}`

// indicatorServer answers by function, and by time_period for EMA
func indicatorServer(calls *int32, overrides map[string]string) http.HandlerFunc {
	bodies := map[string]string{
		FunctionRSI:           rsiBody,
		FunctionMACD:          macdBody,
		"EMA:20":              ema20Body,
		"EMA:50":              ema50Body,
		FunctionNewsSentiment: newsBody,
	}
	for k, v := range overrides {
		bodies[k] = v
	}

	return func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		q := r.URL.Query()
		key := q.Get("function")
		if key == FunctionEMA {
			key += ":" + q.Get("time_period")
		}
		w.Write([]byte(bodies[key]))
	}
}

func TestIndicator_SendsParameters(t *testing.T) {
	var got map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		got = map[string]string{
			"function":    q.Get("function"),
			"symbol":      q.Get("symbol"),
			"interval":    q.Get("interval"),
			"time_period": q.Get("time_period"),
			"series_type": q.Get("series_type"),
		}
		w.Write([]byte(rsiBody))
	})

	_, err := client.Indicator(context.Background(), "ibm", IndicatorQuery{Function: "rsi"})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"function":    "RSI",
		"symbol":      "IBM",
		"interval":    "daily",
		"time_period": "14",
		"series_type": "close",
	}, got)
}

func TestNewsSentiment_SendsTickers(t *testing.T) {
	var tickers string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		tickers = r.URL.Query().Get("tickers")
		w.Write([]byte(newsBody))
	})

	body, err := client.NewsSentiment(context.Background(), "ibm")
	require.NoError(t, err)
	assert.Equal(t, "IBM", tickers)
	assert.Contains(t, string(body), "ticker_sentiment")
}

func TestSeries_NewestFirst(t *testing.T) {
	points, err := Series([]byte(rsiBody), "rsi")
	require.NoError(t, err)
	require.Len(t, points, 3)

	assert.Equal(t, "2024-03-08", points[0].Date)
	assert.Equal(t, 64.1, points[0].Values["RSI"])
	assert.Equal(t, "2024-03-06", points[2].Date)
}

func TestSeries_MissingBlockIsNoData(t *testing.T) {
	_, err := Series([]byte(`{"Meta Data": {}}`), FunctionRSI)
	assert.ErrorIs(t, err, ErrNoData)

	_, err = Series([]byte(`{"Technical Analysis: RSI": {}}`), FunctionRSI)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestSentiment_FiltersTicker(t *testing.T) {
	points, err := Sentiment([]byte(newsBody), "ibm")
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, 0.9, points[0].Relevance)
	assert.Equal(t, -0.3, points[1].Score)
}

func TestEnrich_AllSources(t *testing.T) {
	var calls int32
	client := newTestClient(t, indicatorServer(&calls, nil))

	o := client.Enrich(context.Background(), "IBM", 200)

	require.NotNil(t, o.RSI)
	assert.Equal(t, 64.1, *o.RSI)
	require.NotNil(t, o.MacdSignal)
	assert.Equal(t, contracts.MacdBullishCrossover, *o.MacdSignal)
	require.NotNil(t, o.EMADistance20)
	assert.InDelta(t, 25.0, *o.EMADistance20, 1e-9)
	require.NotNil(t, o.EMADistance50)
	assert.InDelta(t, -20.0, *o.EMADistance50, 1e-9)
	require.NotNil(t, o.NewsScore)
	assert.InDelta(t, 7.4, *o.NewsScore, 1e-9)

	assert.Nil(t, o.SalesGrowthQ)
	assert.Equal(t, int32(5), atomic.LoadInt32(&calls))
}

func TestEnrich_MissingSourceKeepsDefault(t *testing.T) {
	var calls int32
	client := newTestClient(t, indicatorServer(&calls, map[string]string{FunctionMACD: `{}`}))

	o := client.Enrich(context.Background(), "IBM", 0)

	assert.NotNil(t, o.RSI)
	assert.Nil(t, o.MacdSignal)
	assert.Nil(t, o.EMADistance20) // no price
	assert.Nil(t, o.EMADistance50)
	assert.NotNil(t, o.NewsScore)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestEnrich_StopsWhenThrottled(t *testing.T) {
	var calls int32
	client := newTestClient(t, indicatorServer(&calls, map[string]string{
		FunctionRSI: `{"Note": "Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute."}`,
	}))

	o := client.Enrich(context.Background(), "IBM", 200)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Nil(t, o.RSI)
	assert.Nil(t, o.MacdSignal)
	assert.Nil(t, o.NewsScore)
}
