package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/wonny/swingscan/internal/external/alphavantage"
	"github.com/wonny/swingscan/pkg/logger"
	"github.com/wonny/swingscan/pkg/ratelimit"
)

// MarketData is the upstream used by the passthrough endpoints
type MarketData interface {
	GlobalQuote(ctx context.Context, symbol string) (map[string]string, error)
	Overview(ctx context.Context, symbol string) (map[string]string, error)
	Indicator(ctx context.Context, symbol string, q alphavantage.IndicatorQuery) (json.RawMessage, error)
	NewsSentiment(ctx context.Context, symbol string) (json.RawMessage, error)
}

// IndicatorRequest is the validated form of a technical indicator lookup
type IndicatorRequest struct {
	Indicator  string `validate:"required,oneof=RSI MACD EMA SMA WMA ADX CCI AROON BBANDS STOCH OBV"`
	Interval   string `validate:"oneof=1min 5min 15min 30min 60min daily weekly monthly"`
	TimePeriod int    `validate:"min=1,max=200"`
}

type upstreamFetch func(ctx context.Context, symbol string) (interface{}, error)

// MarketHandler proxies single-symbol upstream lookups
// ⭐ SSOT: 시세/재무 패스스루 API는 이 구조체에서만
type MarketHandler struct {
	upstream MarketData
	wait     time.Duration // longest a request may queue for a rate slot
	validate *validator.Validate
	logger   *logger.Logger
}

// NewMarketHandler creates a new market handler
func NewMarketHandler(upstream MarketData, wait time.Duration, log *logger.Logger) *MarketHandler {
	return &MarketHandler{
		upstream: upstream,
		wait:     wait,
		validate: newValidator(),
		logger:   log,
	}
}

// GetQuote returns the raw "Global Quote" object
// GET /api/quote/{symbol}
func (h *MarketHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	h.passthrough(w, r, func(ctx context.Context, symbol string) (interface{}, error) {
		return h.upstream.GlobalQuote(ctx, symbol)
	})
}

// GetFundamentals returns the raw company overview
// GET /api/fundamentals/{symbol}
func (h *MarketHandler) GetFundamentals(w http.ResponseWriter, r *http.Request) {
	h.passthrough(w, r, func(ctx context.Context, symbol string) (interface{}, error) {
		return h.upstream.Overview(ctx, symbol)
	})
}

// GetTechnical returns the raw indicator series
// GET /api/technical/{symbol}/{indicator}?interval=daily&time_period=14
func (h *MarketHandler) GetTechnical(w http.ResponseWriter, r *http.Request) {
	req := IndicatorRequest{
		Indicator:  strings.ToUpper(mux.Vars(r)["indicator"]),
		Interval:   alphavantage.DefaultInterval,
		TimePeriod: alphavantage.DefaultTimePeriod,
	}
	if v := r.URL.Query().Get("interval"); v != "" {
		req.Interval = v
	}
	if v := r.URL.Query().Get("time_period"); v != "" {
		period, err := strconv.Atoi(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "time_period must be an integer")
			return
		}
		req.TimePeriod = period
	}

	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, describeValidation(err))
		return
	}

	h.passthrough(w, r, func(ctx context.Context, symbol string) (interface{}, error) {
		return h.upstream.Indicator(ctx, symbol, alphavantage.IndicatorQuery{
			Function:   req.Indicator,
			Interval:   req.Interval,
			TimePeriod: req.TimePeriod,
		})
	})
}

// GetNews returns the raw news sentiment feed
// GET /api/news/{symbol}
func (h *MarketHandler) GetNews(w http.ResponseWriter, r *http.Request) {
	h.passthrough(w, r, func(ctx context.Context, symbol string) (interface{}, error) {
		return h.upstream.NewsSentiment(ctx, symbol)
	})
}

func (h *MarketHandler) passthrough(w http.ResponseWriter, r *http.Request, fetch upstreamFetch) {
	symbol := strings.ToUpper(strings.TrimSpace(mux.Vars(r)["symbol"]))
	if err := h.validate.Var(symbol, "required,ticker"); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid symbol")
		return
	}

	ctx := r.Context()
	if h.wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.wait)
		defer cancel()
	}

	data, err := fetch(ctx, symbol)
	if err != nil {
		status := upstreamStatus(err)
		logger.FromContext(ctx, h.logger).WithError(err).WithFields(map[string]interface{}{
			"symbol": symbol,
			"path":   r.URL.Path,
			"status": status,
		}).Warn("Upstream lookup failed")
		respondError(w, status, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, data)
}

// upstreamStatus maps an upstream failure to the response status
func upstreamStatus(err error) int {
	switch {
	case errors.Is(err, alphavantage.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, alphavantage.ErrNoData):
		return http.StatusNotFound
	case errors.Is(err, alphavantage.ErrRateLimited),
		errors.Is(err, ratelimit.ErrLimited),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusTooManyRequests
	default:
		return http.StatusBadGateway
	}
}
