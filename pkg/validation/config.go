package validation

import (
	"fmt"

	"github.com/iwvelando/emi-calculator/pkg/amortization"
	"github.com/iwvelando/emi-calculator/pkg/format"
)

// ValidateTenure warns when the tenure does not divide evenly into payment
// periods; the remainder months are never scheduled.
func ValidateTenure(tenureMonths int, frequency amortization.Frequency) string {
	factor := frequency.Factor()
	if factor <= 1 || tenureMonths%factor == 0 {
		return ""
	}
	return fmt.Sprintf("Tenure of %d months is not a whole number of %s periods - the last %d month(s) are not scheduled",
		tenureMonths, frequency, tenureMonths%factor)
}

// ValidateResidual warns when the balloon is not below the financed amount,
// which leaves nothing for the regular installments to amortize.
func ValidateResidual(residual, financed float64) string {
	if residual <= 0 || residual < financed {
		return ""
	}
	return fmt.Sprintf("Residual of %s is not below the financed amount of %s - installments will be zero or negative",
		format.Currency(residual), format.Currency(financed))
}

// ValidateMoratorium warns when a moratorium is requested on an interest-free schedule.
func ValidateMoratorium(moratoriumPeriods int, annualRate float64) string {
	if moratoriumPeriods <= 0 || annualRate != 0 {
		return ""
	}
	return fmt.Sprintf("Moratorium of %d period(s) accrues no interest at a zero rate", moratoriumPeriods)
}

// ValidateAdvanceRentals warns about advance rentals on products whose
// installment is not an annuity.
func ValidateAdvanceRentals(advanceRentals int, variant amortization.Variant) string {
	if advanceRentals <= 0 {
		return ""
	}
	switch variant {
	case amortization.VariantBullet:
		return fmt.Sprintf("Advance rentals on a bullet loan are charged at the interest-only payment (%d period(s))", advanceRentals)
	case amortization.VariantEqualPrincipal:
		return fmt.Sprintf("Advance rentals on an equal principal loan are charged at the first payment (%d period(s))", advanceRentals)
	}
	return ""
}

// ScheduleValidator collects non-fatal warnings about a set of parameters
// that already passed Parameters.Validate.
type ScheduleValidator struct {
	Parameters amortization.Parameters
}

// ValidateAll runs every check and returns the warnings in a stable order.
func (sv *ScheduleValidator) ValidateAll() []string {
	var warnings []string
	p := sv.Parameters

	if warning := ValidateTenure(p.TenureMonths, p.Frequency); warning != "" {
		warnings = append(warnings, warning)
	}

	financed := amortization.NetFinancedAmount(p)
	if warning := ValidateResidual(amortization.ResidualAmount(p), financed); warning != "" {
		warnings = append(warnings, warning)
	}

	if warning := ValidateMoratorium(p.MoratoriumPeriods, p.AnnualRate); warning != "" {
		warnings = append(warnings, warning)
	}

	if warning := ValidateAdvanceRentals(p.AdvanceRentals, p.Variant); warning != "" {
		warnings = append(warnings, warning)
	}

	return warnings
}
