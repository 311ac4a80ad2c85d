package alphavantage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/swingscan/pkg/config"
	"github.com/wonny/swingscan/pkg/httputil"
	"github.com/wonny/swingscan/pkg/logger"
)

const quoteBody = `{
    "Global Quote": {
        "01. symbol": "IBM",
        "05. price": "185.4200",
        "06. volume": "3512345"
    }
}`

const overviewBody = `{
    "Symbol": "IBM",
    "Sector": "Technology",
    "MarketCapitalization": "170000000000",
    "AnalystTargetPrice": "200.5",
    "50DayMovingAverage": "180.1",
    "Beta": 0.71,
    "DividendDate": null
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	httpClient := httputil.New(logger.Nop(), time.Second).DisableRetry()
	cfg := config.AlphaVantageConfig{BaseURL: server.URL + "/query", APIKey: "demo-key"}

	return NewClient(httpClient, cfg, nil, logger.Nop())
}

func routeByFunction(bodies map[string]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := bodies[r.URL.Query().Get("function")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}
}

func TestQuery_SendsParameters(t *testing.T) {
	var got map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		got = map[string]string{
			"path":     r.URL.Path,
			"function": q.Get("function"),
			"symbol":   q.Get("symbol"),
			"apikey":   q.Get("apikey"),
		}
		w.Write([]byte(quoteBody))
	})

	_, err := client.Query(context.Background(), FunctionGlobalQuote, "ibm")
	require.NoError(t, err)

	assert.Equal(t, "/query", got["path"])
	assert.Equal(t, "GLOBAL_QUOTE", got["function"])
	assert.Equal(t, "IBM", got["symbol"])
	assert.Equal(t, "demo-key", got["apikey"])
}

func TestGlobalQuote(t *testing.T) {
	client := newTestClient(t, routeByFunction(map[string]string{FunctionGlobalQuote: quoteBody}))

	quote, err := client.GlobalQuote(context.Background(), "IBM")
	require.NoError(t, err)

	assert.Equal(t, "185.4200", quote["05. price"])
	assert.Equal(t, "3512345", quote["06. volume"])
}

func TestGlobalQuote_EmptyIsNoData(t *testing.T) {
	client := newTestClient(t, routeByFunction(map[string]string{FunctionGlobalQuote: `{"Global Quote": {}}`}))

	_, err := client.GlobalQuote(context.Background(), "ZZZZ")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestOverview_FlattensScalars(t *testing.T) {
	client := newTestClient(t, routeByFunction(map[string]string{FunctionOverview: overviewBody}))

	overview, err := client.Overview(context.Background(), "IBM")
	require.NoError(t, err)

	assert.Equal(t, "Technology", overview["Sector"])
	assert.Equal(t, "0.71", overview["Beta"])
	assert.Equal(t, "None", overview["DividendDate"])
}

func TestOverview_EmptyIsNoData(t *testing.T) {
	client := newTestClient(t, routeByFunction(map[string]string{FunctionOverview: `{}`}))

	_, err := client.Overview(context.Background(), "ZZZZ")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestQuery_InBandErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{
			name: "error message",
			body: `{"Error Message": "Invalid API call. Please retry or visit the documentation."}`,
			want: ErrInvalidRequest,
		},
		{
			name: "legacy note",
			body: `{"Note": "Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute."}`,
			want: ErrRateLimited,
		},
		{
			name: "information",
			body: `{"Information": "We have detected your API key and our standard API rate limit is 25 requests per day."}`,
			want: ErrRateLimited,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})

			_, err := client.Query(context.Background(), FunctionOverview, "IBM")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.NotEmpty(t, apiErr.Message)
		})
	}
}

func TestQuery_HTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Query(context.Background(), FunctionGlobalQuote, "IBM")

	var statusErr *httputil.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
}

func TestPayload(t *testing.T) {
	client := newTestClient(t, routeByFunction(map[string]string{
		FunctionGlobalQuote: quoteBody,
		FunctionOverview:    overviewBody,
	}))

	p, err := client.Payload(context.Background(), "ibm")
	require.NoError(t, err)

	assert.Equal(t, "IBM", p.Symbol)
	assert.Equal(t, "185.4200", p.Quote["05. price"])
	assert.Equal(t, "170000000000", p.Fundamentals["MarketCapitalization"])
}
