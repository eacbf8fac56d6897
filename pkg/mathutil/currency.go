// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/emi-calculator/pkg/constants"
	"github.com/shopspring/decimal"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Halves round away from zero on the shortest decimal form of the value, so
// 1.005 becomes 1.01 rather than the 1.00 a binary multiply-and-round gives.
// Non-finite values are returned unchanged.
func Round(val float64) float64 {
	if !IsFinite(val) {
		return val
	}
	return decimal.NewFromFloat(val).Round(constants.DecimalPlaces).InexactFloat64()
}

// IsFinite reports whether val is neither NaN nor an infinity.
func IsFinite(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0)
}

// IsZero checks if a value is effectively zero (within tolerance)
func IsZero(val float64) bool {
	return math.Abs(val) <= constants.CurrencyTolerance
}

// ClampNonNegative returns zero for negative values.
func ClampNonNegative(val float64) float64 {
	if val < 0 {
		return 0
	}
	return val
}

// ApplyPercentage applies a percentage to a value
func ApplyPercentage(value, percentage float64) float64 {
	return value * (percentage / constants.PercentageMultiplier)
}

// AddPercentage grows value by percentage, e.g. 100 + 18% = 118.
func AddPercentage(value, percentage float64) float64 {
	return value * (1 + percentage/constants.PercentageMultiplier)
}

// SubtractPercentage reduces value by percentage, e.g. 100 - 10% = 90.
func SubtractPercentage(value, percentage float64) float64 {
	return value * (1 - percentage/constants.PercentageMultiplier)
}
