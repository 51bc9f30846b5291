package formulas

import (
	"github.com/markcheno/go-talib"
)

// CalculateSMA calculates the simple moving average of the most recent
// `period` closes.
//
// Args:
//   closes: Array of closing prices, chronological order
//   period: Lookback window (e.g. 5 or 20)
//
// Returns:
//   Current SMA value or nil if insufficient data
func CalculateSMA(closes []float64, period int) *float64 {
	if period <= 0 || len(closes) < period {
		return nil
	}

	sma := talib.Sma(closes, period)

	if len(sma) > 0 && !isNaN(sma[len(sma)-1]) {
		result := sma[len(sma)-1]
		return &result
	}

	return nil
}

// isNaN checks if a float64 is NaN
func isNaN(f float64) bool {
	return f != f
}
