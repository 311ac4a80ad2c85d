package contracts

import "errors"

// Categorical gaps: always resolved by a fallback value, never fatal
var (
	ErrMalformedAttribute = errors.New("malformed attribute")
	ErrUnknownSector      = errors.New("unknown sector")
	ErrUnknownRiskProfile = errors.New("unknown risk profile")
	ErrUnknownMacdSignal  = errors.New("unknown macd signal")
)

// ErrInvalidRiskParameters fails a single stock's risk computation
var ErrInvalidRiskParameters = errors.New("invalid risk parameters")

// ErrPriceUnavailable marks a stock ranked without trade levels (price "N/A")
var ErrPriceUnavailable = errors.New("price unavailable")

// ItemFailure reports one stock dropped from a ranking pass
type ItemFailure struct {
	Ticker string `json:"ticker"`
	Err    error  `json:"-"`
	Reason string `json:"reason"`
}

// NewItemFailure records err against ticker
func NewItemFailure(ticker string, err error) ItemFailure {
	return ItemFailure{Ticker: ticker, Err: err, Reason: err.Error()}
}

func (f ItemFailure) Error() string {
	return f.Ticker + ": " + f.Reason
}

func (f ItemFailure) Unwrap() error {
	return f.Err
}
