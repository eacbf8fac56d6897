package config

import (
	"github.com/iwvelando/emi-calculator/pkg/amortization"
	"github.com/iwvelando/emi-calculator/pkg/irr"
)

// ToParameters converts the loan section into schedule parameters. An empty
// frequency means monthly and an empty variant means a standard loan.
func (c *Configuration) ToParameters() (amortization.Parameters, error) {
	loan := c.Loan

	frequency := amortization.FrequencyMonthly
	if loan.Frequency != "" {
		parsed, err := amortization.ParseFrequency(loan.Frequency)
		if err != nil {
			return amortization.Parameters{}, err
		}
		frequency = parsed
	}

	variant := amortization.VariantStandard
	if loan.Variant != "" {
		parsed, err := amortization.ParseVariant(loan.Variant)
		if err != nil {
			return amortization.Parameters{}, err
		}
		variant = parsed
	}

	return amortization.Parameters{
		Principal:               loan.Principal,
		AnnualRate:              loan.AnnualRate,
		TenureMonths:            loan.TenureMonths,
		Frequency:               frequency,
		Variant:                 variant,
		ResidualValue:           loan.ResidualValue,
		ResidualPercent:         loan.ResidualPercent,
		GSTPercent:              loan.GSTPercent,
		UpfrontFeePercent:       loan.UpfrontFeePercent,
		SupplierDiscountPercent: loan.SupplierDiscountPercent,
		SecurityDepositPercent:  loan.SecurityDepositPercent,
		MoratoriumPeriods:       loan.MoratoriumPeriods,
		AdvanceRentals:          loan.AdvanceRentals,
	}, nil
}

// FromParameters builds a configuration that reproduces params when loaded
// back with LoadConfiguration.
func FromParameters(params amortization.Parameters, solver irr.Solver) Configuration {
	return Configuration{
		Loan: Loan{
			Principal:               params.Principal,
			AnnualRate:              params.AnnualRate,
			TenureMonths:            params.TenureMonths,
			Frequency:               string(params.Frequency),
			Variant:                 string(params.Variant),
			ResidualValue:           params.ResidualValue,
			ResidualPercent:         params.ResidualPercent,
			GSTPercent:              params.GSTPercent,
			UpfrontFeePercent:       params.UpfrontFeePercent,
			SupplierDiscountPercent: params.SupplierDiscountPercent,
			SecurityDepositPercent:  params.SecurityDepositPercent,
			MoratoriumPeriods:       params.MoratoriumPeriods,
			AdvanceRentals:          params.AdvanceRentals,
		},
		Solver: solver,
	}
}
