// Package normalize maps raw Alpha Vantage payloads onto StockAttributes.
//
// Every field resolves to a value: malformed or missing inputs are replaced
// by a documented default and the field name is recorded in
// StockAttributes.Synthetic. No randomness is involved here; see
// SyntheticFiller for demo data.
package normalize

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/wonny/swingscan/internal/contracts"
)

// Upstream field names (GLOBAL_QUOTE and OVERVIEW)
const (
	QuotePriceKey  = "05. price"
	QuoteVolumeKey = "06. volume"

	OverviewMarketCapKey = "MarketCapitalization"
	OverviewSectorKey    = "Sector"
	OverviewTargetKey    = "AnalystTargetPrice"
	OverviewMA50Key      = "50DayMovingAverage"
)

// Documented defaults
const (
	DefaultMarketCap      = 1000.0 // millions
	DefaultEPSGrowth      = 20.0   // midpoint of the legacy 15-25 placeholder
	DefaultSalesGrowthQ   = 0.0
	DefaultDebtToEquity   = 1.0
	DefaultRSI            = 50.0
	DefaultMacdSignal     = contracts.MacdNeutral
	DefaultEMADistance20  = 0.0
	DefaultEMADistance50  = 0.0
	DefaultNextEarnings   = 30
	DefaultNewsScore      = 5.0
	DefaultSectorMomentum = 5.0

	VolumeMultiplier = 20

	MinEPSGrowth = 5.0
	MaxEPSGrowth = 40.0
)

// Payload is the raw per-symbol upstream response
type Payload struct {
	Symbol       string            `json:"symbol"`
	Quote        map[string]string `json:"quote"`
	Fundamentals map[string]string `json:"fundamentals"`
}

// Overrides supplies attributes the upstream payload has no source for.
// nil fields take the documented default and are tagged synthetic.
type Overrides struct {
	SalesGrowthQ   *float64
	DebtToEquity   *float64
	RSI            *float64
	MacdSignal     *contracts.MacdSignal
	EMADistance20  *float64
	EMADistance50  *float64
	NextEarnings   *int
	NewsScore      *float64
	SectorMomentum *float64
}

// Normalize converts one payload into StockAttributes.
// The returned error joins every fallback that was taken (ErrMalformedAttribute,
// ErrUnknownSector); attrs is always usable.
func Normalize(p Payload, o Overrides) (contracts.StockAttributes, error) {
	var errs []error
	a := contracts.StockAttributes{Ticker: strings.ToUpper(strings.TrimSpace(p.Symbol))}

	tag := func(field string) {
		a.Synthetic = append(a.Synthetic, field)
	}

	// price
	price, ok, err := parseFloatField(p.Quote, QuotePriceKey)
	if err != nil {
		errs = append(errs, err)
	}
	if ok && price > 0 {
		a.Price = price
	} else {
		tag(contracts.FieldPrice)
	}

	// marketCap
	raw, present := p.Fundamentals[OverviewMarketCapKey]
	mcap, err := ParseMarketCap(raw)
	if err != nil {
		errs = append(errs, err)
	}
	a.MarketCap = mcap
	if !present || err != nil || isNone(raw) {
		tag(contracts.FieldMarketCap)
	}

	// avgVolume
	a.AvgVolume, err = parseVolume(p.Quote)
	if err != nil {
		errs = append(errs, err)
	}
	if a.AvgVolume == 0 {
		tag(contracts.FieldAvgVolume)
	}

	// epsGrowthNext
	growth, derived := EstimateGrowth(p.Fundamentals)
	a.EPSGrowthNext = growth
	if !derived {
		tag(contracts.FieldEPSGrowthNext)
	}

	// sector
	sector, err := NormalizeSector(p.Fundamentals[OverviewSectorKey])
	a.Sector = sector
	if err != nil {
		if p.Fundamentals[OverviewSectorKey] != "" {
			errs = append(errs, err)
		}
		tag(contracts.FieldSector)
	}

	a.SalesGrowthQ = floatOr(o.SalesGrowthQ, DefaultSalesGrowthQ, contracts.FieldSalesGrowthQ, tag)
	a.DebtToEquity = floatOr(o.DebtToEquity, DefaultDebtToEquity, contracts.FieldDebtToEquity, tag)
	a.RSI = clamp(floatOr(o.RSI, DefaultRSI, contracts.FieldRSI, tag), 0, 100)
	a.EMADistance20 = floatOr(o.EMADistance20, DefaultEMADistance20, contracts.FieldEMADistance20, tag)
	a.EMADistance50 = floatOr(o.EMADistance50, DefaultEMADistance50, contracts.FieldEMADistance50, tag)
	a.NewsScore = clamp(floatOr(o.NewsScore, DefaultNewsScore, contracts.FieldNewsScore, tag), 0, 10)
	a.SectorMomentum = clamp(floatOr(o.SectorMomentum, DefaultSectorMomentum, contracts.FieldSectorMomentum, tag), 0, 10)

	if o.MacdSignal != nil {
		sig, err := contracts.ParseMacdSignal(string(*o.MacdSignal))
		if err != nil {
			errs = append(errs, err)
			tag(contracts.FieldMacdSignal)
		}
		a.MacdSignal = sig
	} else {
		a.MacdSignal = DefaultMacdSignal
		tag(contracts.FieldMacdSignal)
	}

	if o.NextEarnings != nil && *o.NextEarnings >= 0 {
		a.NextEarnings = *o.NextEarnings
	} else {
		a.NextEarnings = DefaultNextEarnings
		tag(contracts.FieldNextEarnings)
	}

	if a.DebtToEquity < 0 {
		a.DebtToEquity = DefaultDebtToEquity
	}

	return a, errors.Join(errs...)
}

// ParseMarketCap converts a T/B/M-tagged or bare string into millions.
// Missing or "None" yields DefaultMarketCap without error.
func ParseMarketCap(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || isNone(s) {
		return DefaultMarketCap, nil
	}

	multiplier := 1.0 / 1_000_000
	number := s
	switch strings.ToUpper(s[len(s)-1:]) {
	case "T":
		multiplier, number = 1_000_000, s[:len(s)-1]
	case "B":
		multiplier, number = 1_000, s[:len(s)-1]
	case "M":
		multiplier, number = 1, s[:len(s)-1]
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(number), 64)
	if err != nil || !finite(value) {
		return DefaultMarketCap, fmt.Errorf("%w: %s=%q", contracts.ErrMalformedAttribute, OverviewMarketCapKey, s)
	}

	return value * multiplier, nil
}

// EstimateGrowth derives next-period EPS growth from the analyst target
// relative to the 50-day moving average, clamped to [5, 40].
// Returns (DefaultEPSGrowth, false) when either input is missing or non-positive.
func EstimateGrowth(fundamentals map[string]string) (float64, bool) {
	target, okTarget, _ := parseFloatField(fundamentals, OverviewTargetKey)
	current, okCurrent, _ := parseFloatField(fundamentals, OverviewMA50Key)

	if !okTarget || !okCurrent || target <= 0 || current <= 0 {
		return DefaultEPSGrowth, false
	}

	return clamp(((target-current)/current)*100, MinEPSGrowth, MaxEPSGrowth), true
}

// upstream sector names → canonical sector
var sectorMap = map[string]contracts.Sector{
	"Technology":             contracts.SectorTechnology,
	"Health Care":            contracts.SectorHealthcare,
	"Financials":             contracts.SectorFinancials,
	"Consumer Discretionary": contracts.SectorConsumer,
	"Industrials":            contracts.SectorIndustrials,
	"Energy":                 contracts.SectorEnergy,
}

// NormalizeSector looks up the exact upstream sector name.
// Unmatched names map to technology with ErrUnknownSector.
func NormalizeSector(upstream string) (contracts.Sector, error) {
	if s, ok := sectorMap[upstream]; ok {
		return s, nil
	}
	return contracts.SectorTechnology, fmt.Errorf("%w: %q", contracts.ErrUnknownSector, upstream)
}

// ===== helpers =====

func isNone(s string) bool {
	return strings.TrimSpace(s) == "None"
}

// parseFloatField returns (value, present-and-parsed, malformed error)
func parseFloatField(m map[string]string, key string) (float64, bool, error) {
	raw, ok := m[key]
	if !ok || strings.TrimSpace(raw) == "" || isNone(raw) {
		return 0, false, nil
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || !finite(v) {
		return 0, false, fmt.Errorf("%w: %s=%q", contracts.ErrMalformedAttribute, key, raw)
	}
	return v, true, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// parseVolume truncates decimal volumes ("123.0" → 123) before scaling
func parseVolume(quote map[string]string) (int64, error) {
	raw, ok := quote[QuoteVolumeKey]
	if !ok || strings.TrimSpace(raw) == "" {
		return 0, nil
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || !finite(v) || v < 0 {
		return 0, fmt.Errorf("%w: %s=%q", contracts.ErrMalformedAttribute, QuoteVolumeKey, raw)
	}
	return int64(v) * VolumeMultiplier, nil
}

func floatOr(v *float64, def float64, field string, tag func(string)) float64 {
	if v != nil {
		return *v
	}
	tag(field)
	return def
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
