// Package format renders amounts and rates for display.
package format

import (
	"math"

	"github.com/iwvelando/emi-calculator/pkg/constants"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Currency returns a currency string with a rupee sign and thousands separators (e.g., "-₹1,234.56").
func Currency(amount float64) string {
	formatted := NumericCurrency(math.Abs(amount))
	if amount < 0 {
		return "-" + constants.CurrencySymbol + formatted
	}
	return constants.CurrencySymbol + formatted
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234.56").
func NumericCurrency(amount float64) string {
	return printer.Sprintf("%.2f", amount)
}

// Percent formats a percentage value with two decimals (e.g., "12.68%").
func Percent(value float64) string {
	return printer.Sprintf("%.2f%%", value)
}
