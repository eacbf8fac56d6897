package config

import (
	"testing"

	"github.com/iwvelando/emi-calculator/pkg/amortization"
	"github.com/iwvelando/emi-calculator/pkg/irr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToParameters(t *testing.T) {
	tests := []struct {
		name      string
		loan      Loan
		expected  amortization.Parameters
		wantError string
	}{
		{
			name: "Defaults for frequency and variant",
			loan: Loan{Principal: 100000, AnnualRate: 12, TenureMonths: 12},
			expected: amortization.Parameters{
				Principal:    100000,
				AnnualRate:   12,
				TenureMonths: 12,
				Frequency:    amortization.FrequencyMonthly,
				Variant:      amortization.VariantStandard,
			},
		},
		{
			name: "Aliases are normalized",
			loan: Loan{Principal: 1000, TenureMonths: 6, Frequency: "Quarterly", Variant: "equal-principal"},
			expected: amortization.Parameters{
				Principal:    1000,
				TenureMonths: 6,
				Frequency:    amortization.FrequencyQuarterly,
				Variant:      amortization.VariantEqualPrincipal,
			},
		},
		{
			name:      "Unknown frequency",
			loan:      Loan{Principal: 1000, TenureMonths: 6, Frequency: "weekly"},
			wantError: "frequency",
		},
		{
			name:      "Unknown variant",
			loan:      Loan{Principal: 1000, TenureMonths: 6, Variant: "balloon"},
			wantError: "variant",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := Configuration{Loan: tt.loan}
			params, err := conf.ToParameters()
			if tt.wantError != "" {
				var validationErr *amortization.ValidationError
				require.ErrorAs(t, err, &validationErr)
				assert.Equal(t, tt.wantError, validationErr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, params)
		})
	}
}

func TestFromParametersRoundTrip(t *testing.T) {
	params := amortization.Parameters{
		Principal:               750000,
		AnnualRate:              9.25,
		TenureMonths:            60,
		Frequency:               amortization.FrequencyQuarterly,
		Variant:                 amortization.VariantLease,
		ResidualPercent:         15,
		GSTPercent:              18,
		UpfrontFeePercent:       0.5,
		SupplierDiscountPercent: 2,
		SecurityDepositPercent:  5,
		MoratoriumPeriods:       1,
		AdvanceRentals:          1,
	}

	conf := FromParameters(params, irr.DefaultSolver())
	assert.Equal(t, irr.DefaultSolver(), conf.Solver)

	back, err := conf.ToParameters()
	require.NoError(t, err)
	assert.Equal(t, params, back)
}
