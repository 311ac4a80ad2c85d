package selection

import (
	"fmt"

	"github.com/wonny/swingscan/internal/contracts"
)

// earningsCatalystDays is the horizon for an earnings-driven catalyst label
const earningsCatalystDays = 7

// SetupType describes the technical setup of a
func SetupType(a contracts.StockAttributes) string {
	if a.MacdSignal == contracts.MacdBullishCrossover {
		return "MACD Bullish + RSI Oversold"
	}
	return "Technical Setup"
}

// CatalystLabel describes the nearest catalyst of a
func CatalystLabel(a contracts.StockAttributes) string {
	if a.NextEarnings <= earningsCatalystDays {
		return fmt.Sprintf("Earnings in %d days", a.NextEarnings)
	}
	return "Technical momentum"
}
