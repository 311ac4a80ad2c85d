package contracts

import "fmt"

// Targets holds suggested trade levels
type Targets struct {
	Entry    float64 `json:"entry"`
	StopLoss float64 `json:"stopLoss"`
	Target   float64 `json:"target"`
}

// Position holds sizing derived from capital and stop distance
type Position struct {
	Shares        int64   `json:"shares"`
	PositionValue float64 `json:"positionValue"`
	RiskAmount    float64 `json:"riskAmount"`
}

// SubScores contains the breakdown behind FinalScore
type SubScores struct {
	Technical   float64 `json:"technical"`
	Fundamental float64 `json:"fundamental"`
	Catalyst    float64 `json:"catalyst"`
}

// ScoredStock is one ranked candidate
// ⭐ SSOT: selection → API / CLI 응답 레코드
type ScoredStock struct {
	StockAttributes

	Rank       int       `json:"rank"`       // 1-based
	FinalScore float64   `json:"finalScore"` // 0-10, one decimal
	Scores     SubScores `json:"scores"`
	Targets    Targets   `json:"targets"`
	Position   Position  `json:"position"`
	SetupType  string    `json:"setupType"`
	Catalyst   string    `json:"catalyst"`

	// RiskError is set when levels and sizing could not be derived;
	// Targets and Position are zero then.
	RiskError string `json:"riskError,omitempty"`
}

// PriceLabel renders the price, "N/A" when unknown
func (s ScoredStock) PriceLabel() string {
	if !s.HasPrice() {
		return "N/A"
	}
	return fmt.Sprintf("$%.2f", s.Price)
}

// MarketCapLabel renders market cap in billions
func (s ScoredStock) MarketCapLabel() string {
	return fmt.Sprintf("$%.1fB", s.MarketCap/1000)
}

// HasTradeLevels reports whether Targets and Position were computed
func (s ScoredStock) HasTradeLevels() bool {
	return s.RiskError == ""
}

// IsTopRanked checks if the stock is in top N ranks
func (s ScoredStock) IsTopRanked(n int) bool {
	return s.Rank > 0 && s.Rank <= n
}

// RankResult is the output of one ranking pass.
// Stocks with an unknown price stay in Stocks with RiskError set; stocks
// whose stop distance is unusable are absent and listed in Failures.
type RankResult struct {
	Stocks   []ScoredStock `json:"stocks"`
	Failures []ItemFailure `json:"failures,omitempty"`
}
