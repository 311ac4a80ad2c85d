package normalize

import (
	"math/rand"
	"sync"

	"github.com/wonny/swingscan/internal/contracts"
)

// SyntheticFiller replaces defaulted fields with seeded pseudo-random values
// in the legacy demo ranges. Demo mode only; scoring never calls it.
// The Synthetic tags are kept so consumers can still tell the data apart.
type SyntheticFiller struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSyntheticFiller creates a filler; equal seeds give equal output
func NewSyntheticFiller(seed int64) *SyntheticFiller {
	return &SyntheticFiller{rng: rand.New(rand.NewSource(seed))}
}

// Fill returns a copy of a with every synthetic-tagged field regenerated
func (f *SyntheticFiller) Fill(a contracts.StockAttributes) contracts.StockAttributes {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := a
	out.Synthetic = append([]string(nil), a.Synthetic...)

	for _, field := range a.Synthetic {
		switch field {
		case contracts.FieldEPSGrowthNext:
			out.EPSGrowthNext = f.between(15, 25)
		case contracts.FieldSalesGrowthQ:
			out.SalesGrowthQ = f.between(12, 20)
		case contracts.FieldDebtToEquity:
			out.DebtToEquity = f.between(0.2, 0.6)
		case contracts.FieldRSI:
			out.RSI = f.between(30, 70)
		case contracts.FieldMacdSignal:
			if f.rng.Float64() > 0.5 {
				out.MacdSignal = contracts.MacdBullishCrossover
			} else {
				out.MacdSignal = contracts.MacdNeutral
			}
		case contracts.FieldEMADistance20:
			out.EMADistance20 = f.between(-4, 4)
		case contracts.FieldEMADistance50:
			out.EMADistance50 = f.between(0, 10)
		case contracts.FieldNextEarnings:
			out.NextEarnings = f.rng.Intn(20) + 1
		case contracts.FieldNewsScore:
			out.NewsScore = f.between(5, 9)
		case contracts.FieldSectorMomentum:
			out.SectorMomentum = f.between(6, 8)
		}
	}

	return out
}

// FillAll applies Fill to every element in order
func (f *SyntheticFiller) FillAll(attrs []contracts.StockAttributes) []contracts.StockAttributes {
	out := make([]contracts.StockAttributes, len(attrs))
	for i, a := range attrs {
		out[i] = f.Fill(a)
	}
	return out
}

func (f *SyntheticFiller) between(lo, hi float64) float64 {
	return lo + f.rng.Float64()*(hi-lo)
}

// DemoAttributes is the fixed fallback batch served when live data is unavailable
func DemoAttributes() []contracts.StockAttributes {
	return []contracts.StockAttributes{
		{
			Ticker:         "AAPL",
			Price:          178.25,
			MarketCap:      2800,
			AvgVolume:      58_000_000,
			EPSGrowthNext:  12.5,
			SalesGrowthQ:   8.7,
			DebtToEquity:   0.31,
			RSI:            42.3,
			MacdSignal:     contracts.MacdBullishCrossover,
			EMADistance20:  2.1,
			EMADistance50:  8.4,
			Sector:         contracts.SectorTechnology,
			NextEarnings:   8,
			NewsScore:      7.2,
			SectorMomentum: 6.8,
		},
		{
			Ticker:         "MSFT",
			Price:          338.11,
			MarketCap:      2500,
			AvgVolume:      28_000_000,
			EPSGrowthNext:  15.2,
			SalesGrowthQ:   11.3,
			DebtToEquity:   0.19,
			RSI:            48.7,
			MacdSignal:     contracts.MacdBullishCrossover,
			EMADistance20:  1.8,
			EMADistance50:  4.2,
			Sector:         contracts.SectorTechnology,
			NextEarnings:   12,
			NewsScore:      8.1,
			SectorMomentum: 6.8,
		},
		{
			Ticker:         "NVDA",
			Price:          421.33,
			MarketCap:      1040,
			AvgVolume:      42_000_000,
			EPSGrowthNext:  28.7,
			SalesGrowthQ:   22.1,
			DebtToEquity:   0.09,
			RSI:            38.2,
			MacdSignal:     contracts.MacdBullishCrossover,
			EMADistance20:  -1.2,
			EMADistance50:  3.8,
			Sector:         contracts.SectorTechnology,
			NextEarnings:   6,
			NewsScore:      9.2,
			SectorMomentum: 8.1,
		},
	}
}
