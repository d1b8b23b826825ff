package formulas

import (
	"github.com/markcheno/go-talib"
)

// MovingAverage calculates a simple moving average over a series of
// daily totals and returns the most recent value.
//
// Args:
//
//	values: Array of daily totals (oldest first)
//	length: Window size in days (e.g. 7 for a weekly trend)
//
// Returns:
//
//	The latest SMA value or nil if insufficient data
func MovingAverage(values []float64, length int) *float64 {
	if len(values) < length {
		return nil
	}

	sma := talib.Sma(values, length)

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
