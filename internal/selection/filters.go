package selection

import "github.com/wonny/swingscan/internal/contracts"

// AllSectors disables the sector filter
const AllSectors = "all"

// FilterSector keeps stocks whose sector equals sector exactly.
// "" and "all" keep everything.
func FilterSector(stocks []contracts.ScoredStock, sector string) []contracts.ScoredStock {
	if sector == "" || sector == AllSectors {
		return stocks
	}

	kept := make([]contracts.ScoredStock, 0, len(stocks))
	for _, s := range stocks {
		if string(s.Sector) == sector {
			kept = append(kept, s)
		}
	}
	return kept
}

// FilterMinScore keeps stocks scoring at least min; min <= 0 keeps everything
func FilterMinScore(stocks []contracts.ScoredStock, min float64) []contracts.ScoredStock {
	if min <= 0 {
		return stocks
	}

	kept := make([]contracts.ScoredStock, 0, len(stocks))
	for _, s := range stocks {
		if s.FinalScore >= min {
			kept = append(kept, s)
		}
	}
	return kept
}
