package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/wonny/swingscan/internal/brain"
	"github.com/wonny/swingscan/internal/collector"
	"github.com/wonny/swingscan/internal/contracts"
	"github.com/wonny/swingscan/internal/quality"
	"github.com/wonny/swingscan/pkg/logger"
)

// ScanDefaults fill fields a request leaves unset
type ScanDefaults struct {
	Symbols    []string
	MaxSymbols int
	Capital    float64
	Limit      int
	MinScore   float64
	Profile    contracts.RiskProfile
	Sector     string
	Demo       bool // serve the fixture instead of live data
}

// ScanHandler runs ranking passes on demand
// ⭐ SSOT: 스캔 API 핸들러는 이 구조체에서만
type ScanHandler struct {
	orchestrator *brain.Orchestrator
	defaults     ScanDefaults
	validate     *validator.Validate
	logger       *logger.Logger
}

// NewScanHandler creates a new scan handler
func NewScanHandler(orchestrator *brain.Orchestrator, defaults ScanDefaults, log *logger.Logger) *ScanHandler {
	return &ScanHandler{
		orchestrator: orchestrator,
		defaults:     defaults,
		validate:     newValidator(),
		logger:       log,
	}
}

// ScanRequest represents a scan request; every field is optional
type ScanRequest struct {
	Symbols     []string `json:"symbols" validate:"omitempty,max=20,dive,ticker"`
	RiskProfile string   `json:"riskProfile" validate:"omitempty,oneof=conservative moderate aggressive"`
	Sector      string   `json:"sector" validate:"omitempty,oneof=all technology healthcare financials consumer industrials energy"`
	Capital     float64  `json:"capital" validate:"omitempty,gt=0"`
	Limit       int      `json:"limit" validate:"omitempty,max=50"`
	MinScore    *float64 `json:"minScore" validate:"omitempty,min=0,max=10"`
	Demo        bool     `json:"demo"`
}

// normalize upper-cases symbols and lower-cases enum fields before validation
func (req *ScanRequest) normalize() {
	for i, s := range req.Symbols {
		req.Symbols[i] = strings.ToUpper(strings.TrimSpace(s))
	}
	req.RiskProfile = strings.ToLower(strings.TrimSpace(req.RiskProfile))
	req.Sector = strings.ToLower(strings.TrimSpace(req.Sector))
}

// StockView is a ranked stock plus display labels
type StockView struct {
	contracts.ScoredStock
	PriceLabel     string `json:"priceLabel"`
	MarketCapLabel string `json:"marketCapLabel"`
}

// ScanResponse represents a scan response
type ScanResponse struct {
	ScanID        string                  `json:"scanId"`
	GeneratedAt   time.Time               `json:"generatedAt"`
	Source        string                  `json:"source"`
	RiskProfile   contracts.RiskProfile   `json:"riskProfile"`
	Sector        string                  `json:"sector"`
	Capital       float64                 `json:"capital"`
	Stocks        []StockView             `json:"stocks"`
	Failures      []contracts.ItemFailure `json:"failures,omitempty"`
	FetchFailures []contracts.ItemFailure `json:"fetchFailures,omitempty"`
	Stale         []string                `json:"stale,omitempty"`
	Quality       *quality.Snapshot       `json:"quality,omitempty"`
}

// Scan fetches, scores and ranks symbols
// POST /api/scan
func (h *ScanHandler) Scan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Parse request (empty body = all defaults)
	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.normalize()
	if err := h.validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, describeValidation(err))
		return
	}

	config := h.runConfig(req)
	log := logger.FromContext(ctx, h.logger)

	log.WithFields(map[string]interface{}{
		"scan_id": config.ScanID,
		"symbols": config.Symbols,
		"profile": string(config.Profile),
		"sector":  config.Sector,
	}).Info("Scan triggered")

	result, err := h.orchestrator.Run(ctx, config)
	if err != nil {
		log.WithError(err).WithField("scan_id", config.ScanID).Error("Scan failed")
		respondError(w, http.StatusServiceUnavailable, "Scan aborted")
		return
	}

	respondJSON(w, http.StatusOK, newScanResponse(result))
}

// runConfig merges the request over the defaults
func (h *ScanHandler) runConfig(req ScanRequest) brain.RunConfig {
	d := h.defaults

	symbols := req.Symbols
	if len(symbols) == 0 {
		symbols = d.Symbols
	}

	profile := d.Profile
	if req.RiskProfile != "" {
		profile, _ = contracts.ParseRiskProfile(req.RiskProfile)
	}

	sector := d.Sector
	if req.Sector != "" {
		sector = req.Sector
	}

	capital := d.Capital
	if req.Capital > 0 {
		capital = req.Capital
	}

	limit := d.Limit
	if req.Limit != 0 {
		limit = req.Limit
	}

	minScore := d.MinScore
	if req.MinScore != nil {
		minScore = *req.MinScore
	}

	return brain.RunConfig{
		ScanID:   uuid.New().String(),
		Symbols:  collector.CleanSymbols(symbols, d.MaxSymbols),
		Profile:  profile,
		Sector:   sector,
		Capital:  capital,
		Limit:    limit,
		MinScore: minScore,
		Demo:     req.Demo || d.Demo,
	}
}

func newScanResponse(result *brain.RunResult) ScanResponse {
	stocks := make([]StockView, len(result.Stocks))
	for i, s := range result.Stocks {
		stocks[i] = StockView{
			ScoredStock:    s,
			PriceLabel:     s.PriceLabel(),
			MarketCapLabel: s.MarketCapLabel(),
		}
	}

	return ScanResponse{
		ScanID:        result.ScanID,
		GeneratedAt:   result.GeneratedAt,
		Source:        result.Source,
		RiskProfile:   result.Profile,
		Sector:        result.Sector,
		Capital:       result.Capital,
		Stocks:        stocks,
		Failures:      result.Failures,
		FetchFailures: result.FetchFailures,
		Stale:         result.Stale,
		Quality:       result.Quality,
	}
}
