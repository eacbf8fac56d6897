package format

import "testing"

func TestCurrency(t *testing.T) {
	tests := []struct {
		amount   float64
		expected string
	}{
		{8884.88, "₹8,884.88"},
		{0, "₹0.00"},
		{1234567.891, "₹1,234,567.89"},
		{-1000, "-₹1,000.00"},
		{999.5, "₹999.50"},
	}

	for _, tt := range tests {
		if got := Currency(tt.amount); got != tt.expected {
			t.Errorf("Currency(%v) = %q, expected %q", tt.amount, got, tt.expected)
		}
	}
}

func TestNumericCurrency(t *testing.T) {
	if got := NumericCurrency(-50416.67); got != "-50,416.67" {
		t.Errorf("NumericCurrency(-50416.67) = %q", got)
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(12.682503); got != "12.68%" {
		t.Errorf("Percent(12.682503) = %q, expected 12.68%%", got)
	}
}
