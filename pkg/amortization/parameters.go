// Package amortization builds EMI, lease, bullet and equal-principal payment
// schedules together with the lender's signed cash-flow series.
package amortization

import (
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/emi-calculator/pkg/constants"
	"github.com/iwvelando/emi-calculator/pkg/mathutil"
)

// Frequency is the payment frequency of a schedule.
type Frequency string

// Supported payment frequencies.
const (
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
)

// ParseFrequency normalizes a user supplied frequency name.
func ParseFrequency(value string) (Frequency, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "monthly", "month", "m":
		return FrequencyMonthly, nil
	case "quarterly", "quarter", "q":
		return FrequencyQuarterly, nil
	default:
		return "", &ValidationError{Field: "frequency", Reason: fmt.Sprintf("unsupported payment frequency %q", value)}
	}
}

// Factor returns the number of months covered by one payment period.
func (f Frequency) Factor() int {
	switch f {
	case FrequencyQuarterly:
		return constants.QuarterlyFrequencyFactor
	default:
		return constants.MonthlyFrequencyFactor
	}
}

// PeriodsPerYear returns how many payment periods fall in a year.
func (f Frequency) PeriodsPerYear() int {
	return constants.MonthsPerYear / f.Factor()
}

// Variant is the product type of a schedule.
type Variant string

// Supported product variants.
const (
	VariantStandard       Variant = "standard"
	VariantBullet         Variant = "bullet"
	VariantEqualPrincipal Variant = "equal_principal"
	VariantLease          Variant = "lease"
)

// ParseVariant normalizes a user supplied product variant.
func ParseVariant(value string) (Variant, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)
	switch normalized {
	case "standard", "standard_loan", "loan", "emi":
		return VariantStandard, nil
	case "bullet":
		return VariantBullet, nil
	case "equal_principal", "equalprincipal":
		return VariantEqualPrincipal, nil
	case "lease":
		return VariantLease, nil
	default:
		return "", &ValidationError{Field: "variant", Reason: fmt.Sprintf("unsupported product variant %q", value)}
	}
}

// Label is the human readable name used in summaries.
func (v Variant) Label() string {
	switch v {
	case VariantBullet:
		return "Bullet payment"
	case VariantEqualPrincipal:
		return "Equal principal"
	case VariantLease:
		return "Lease"
	default:
		return "Loan"
	}
}

// Parameters describes one schedule request. Percentages are expressed as
// percent values (18 for 18%). MoratoriumPeriods and AdvanceRentals count
// payment periods, TenureMonths counts months.
type Parameters struct {
	Principal               float64   `json:"principal" yaml:"principal"`
	AnnualRate              float64   `json:"annualRate" yaml:"annualRate"`
	TenureMonths            int       `json:"tenureMonths" yaml:"tenureMonths"`
	Frequency               Frequency `json:"frequency" yaml:"frequency"`
	Variant                 Variant   `json:"variant" yaml:"variant"`
	ResidualValue           float64   `json:"residualValue,omitempty" yaml:"residualValue,omitempty"`
	ResidualPercent         float64   `json:"residualPercent,omitempty" yaml:"residualPercent,omitempty"`
	GSTPercent              float64   `json:"gstPercent,omitempty" yaml:"gstPercent,omitempty"`
	UpfrontFeePercent       float64   `json:"upfrontFeePercent,omitempty" yaml:"upfrontFeePercent,omitempty"`
	SupplierDiscountPercent float64   `json:"supplierDiscountPercent,omitempty" yaml:"supplierDiscountPercent,omitempty"`
	SecurityDepositPercent  float64   `json:"securityDepositPercent,omitempty" yaml:"securityDepositPercent,omitempty"`
	MoratoriumPeriods       int       `json:"moratoriumPeriods,omitempty" yaml:"moratoriumPeriods,omitempty"`
	AdvanceRentals          int       `json:"advanceRentals,omitempty" yaml:"advanceRentals,omitempty"`
}

// Periods returns the number of payment periods in the tenure.
func (p Parameters) Periods() int {
	return p.TenureMonths / p.Frequency.Factor()
}

// PeriodicRate converts the nominal annual percentage into a per-period rate.
func (p Parameters) PeriodicRate() float64 {
	return p.AnnualRate / constants.PercentageMultiplier * float64(p.Frequency.Factor()) / constants.MonthsPerYear
}

// Validate reports the first invalid field as a *ValidationError.
func (p Parameters) Validate() error {
	if !mathutil.IsFinite(p.Principal) || p.Principal <= 0 {
		return invalid("principal", "principal must be a positive amount")
	}
	if !mathutil.IsFinite(p.AnnualRate) || p.AnnualRate < 0 {
		return invalid("annualRate", "interest rate cannot be negative")
	}
	if p.TenureMonths <= 0 {
		return invalid("tenureMonths", "tenure must be a positive number of months")
	}
	if p.TenureMonths > constants.MaxTenureMonths {
		return invalid("tenureMonths", fmt.Sprintf("tenure cannot exceed %d months", constants.MaxTenureMonths))
	}
	if p.Frequency != FrequencyMonthly && p.Frequency != FrequencyQuarterly {
		return invalid("frequency", fmt.Sprintf("unsupported payment frequency %q", p.Frequency))
	}
	switch p.Variant {
	case VariantStandard, VariantBullet, VariantEqualPrincipal, VariantLease:
	default:
		return invalid("variant", fmt.Sprintf("unsupported product variant %q", p.Variant))
	}
	if p.Periods() < 1 {
		return invalid("tenureMonths", "tenure is shorter than one payment period")
	}

	percentages := []struct {
		field string
		value float64
	}{
		{"gstPercent", p.GSTPercent},
		{"upfrontFeePercent", p.UpfrontFeePercent},
		{"supplierDiscountPercent", p.SupplierDiscountPercent},
		{"securityDepositPercent", p.SecurityDepositPercent},
		{"residualPercent", p.ResidualPercent},
	}
	for _, pct := range percentages {
		if !mathutil.IsFinite(pct.value) || pct.value < 0 {
			return invalid(pct.field, "percentage cannot be negative")
		}
	}
	if p.SupplierDiscountPercent >= constants.PercentageMultiplier {
		return invalid("supplierDiscountPercent", "supplier discount must be below 100%")
	}
	if p.SecurityDepositPercent >= constants.PercentageMultiplier {
		return invalid("securityDepositPercent", "security deposit must be below 100%")
	}

	if !mathutil.IsFinite(p.ResidualValue) || p.ResidualValue < 0 {
		return invalid("residualValue", "residual value cannot be negative")
	}
	if p.ResidualValue > 0 && p.ResidualPercent > 0 {
		return invalid("residualValue", "residual value and residual percentage are mutually exclusive")
	}

	if p.MoratoriumPeriods < 0 {
		return invalid("moratoriumPeriods", "moratorium cannot be negative")
	}
	if p.MoratoriumPeriods > p.Periods() {
		return invalid("moratoriumPeriods", "moratorium cannot exceed total periods")
	}
	if p.AdvanceRentals < 0 {
		return invalid("advanceRentals", "advance rentals cannot be negative")
	}
	if p.AdvanceRentals >= p.Periods() {
		return invalid("advanceRentals", "advance rentals exceed total periods")
	}
	return nil
}

// NetFinancedAmount applies, in order, the supplier discount, GST, security
// deposit and upfront fee to the principal. Each step scales the running
// amount.
func NetFinancedAmount(p Parameters) float64 {
	amount := mathutil.SubtractPercentage(p.Principal, p.SupplierDiscountPercent)
	amount = mathutil.AddPercentage(amount, p.GSTPercent)
	amount = mathutil.SubtractPercentage(amount, p.SecurityDepositPercent)
	amount = mathutil.AddPercentage(amount, p.UpfrontFeePercent)
	return mathutil.Round(amount)
}

// ResidualAmount resolves the balloon due with the final installment. A
// residual percentage is taken of the asset cost after supplier discount.
func ResidualAmount(p Parameters) float64 {
	if p.ResidualValue > 0 {
		return mathutil.Round(p.ResidualValue)
	}
	if p.ResidualPercent > 0 {
		cost := mathutil.SubtractPercentage(p.Principal, p.SupplierDiscountPercent)
		return mathutil.Round(mathutil.ApplyPercentage(cost, p.ResidualPercent))
	}
	return 0
}

// CapitalizeMoratorium compounds interest into the principal for the given
// number of periods.
func CapitalizeMoratorium(principal, periodicRate float64, periods int) float64 {
	if periods <= 0 || periodicRate == 0 {
		return principal
	}
	return mathutil.Round(principal * math.Pow(1+periodicRate, float64(periods)))
}

// CalculateEMI returns the equated installment that amortizes principal over
// periods while leaving residual to be paid as a balloon after the last one.
func CalculateEMI(principal, periodicRate float64, periods int, residual float64) float64 {
	n := float64(periods)
	// Log1p and Expm1 keep rates too small to change 1+r from collapsing the
	// denominator to zero.
	logGrowth := n * math.Log1p(periodicRate)
	denominator := -math.Expm1(-logGrowth)
	if periodicRate == 0 || denominator == 0 {
		return (principal - residual) / n
	}
	return periodicRate * (principal - residual*math.Exp(-logGrowth)) / denominator
}
