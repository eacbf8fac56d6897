package irr

import (
	"math"
	"testing"

	"github.com/iwvelando/emi-calculator/pkg/amortization"
	"github.com/iwvelando/emi-calculator/pkg/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNPV(t *testing.T) {
	tests := []struct {
		name      string
		rate      float64
		cashflows []float64
		expected  float64
	}{
		{"undiscounted first flow", 0.1, []float64{-1000}, -1000},
		{"one period at the root", 0.1, []float64{-1000, 1100}, 0},
		{"zero rate sums", 0, []float64{-100, 30, 30, 40}, 0},
		{"two periods", 0.1, []float64{0, 0, 121}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, NPV(tt.rate, tt.cashflows), 1e-9)
		})
	}
}

func TestNPVDerivative(t *testing.T) {
	cashflows := []float64{-1000, 300, 400, 500}
	rate := 0.07
	h := 1e-6
	numeric := (NPV(rate+h, cashflows) - NPV(rate-h, cashflows)) / (2 * h)
	assert.InDelta(t, numeric, NPVDerivative(rate, cashflows), 1e-4)
}

func TestSolveSinglePeriod(t *testing.T) {
	rate, err := Solve([]float64{-1000, 1100})
	require.NoError(t, err)
	assert.InDelta(t, 0.10, rate, 1e-9)

	newton := Solver{Method: constants.SolverMethodNewton}
	require.NoError(t, newton.Normalize())
	rate, err = newton.Solve([]float64{-1000, 1100})
	require.NoError(t, err)
	assert.InDelta(t, 0.10, rate, 1e-6)
}

func TestSolveUnevenSeries(t *testing.T) {
	cashflows := []float64{-1000, 500, 400, 300}
	rate, err := Solve(cashflows)
	require.NoError(t, err)
	assert.InDelta(t, 0.1065168, rate, 1e-6)
	assert.InDelta(t, 0, NPV(rate, cashflows), 1e-4)
}

func TestSolveNoSignChange(t *testing.T) {
	tests := []struct {
		name      string
		cashflows []float64
	}{
		{"all zero", []float64{0, 0, 0, 0}},
		{"only inflows", []float64{100, 100, 100}},
		{"only outflows", []float64{-100, -10, -10}},
		{"root below the bracket", []float64{-100000, 10000, 10000, 10000, 10000, 10000, 10000, 10000, 10000, 10000, 10000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Solve(tt.cashflows)
			assert.ErrorIs(t, err, ErrNoSignChange)
		})
	}
}

func TestSolveEmptySeries(t *testing.T) {
	_, err := Solve([]float64{-100})
	assert.ErrorIs(t, err, ErrEmptySeries)
}

func TestSolveBrentIterationBudget(t *testing.T) {
	_, err := SolveBrent([]float64{-1000, 500, 400, 300}, 0.00001, 1, 1e-15, 1)
	assert.ErrorIs(t, err, ErrNoConvergence)
}

func TestSolveNewtonZeroDerivative(t *testing.T) {
	// A single flow at t=0 has no rate sensitivity.
	_, err := SolveNewton([]float64{-1000, 0}, 0.1, 1e-6, 100)
	assert.ErrorIs(t, err, ErrZeroDerivative)
}

func TestSolveNewtonIterationBudget(t *testing.T) {
	_, err := SolveNewton([]float64{-1000, 500, 400, 300}, 0.9, 1e-15, 1)
	assert.ErrorIs(t, err, ErrNoConvergence)
}

func TestSolveNewtonZeroRateLoan(t *testing.T) {
	cashflows := []float64{-1000, 250, 250, 250, 250}
	rate, err := SolveNewton(cashflows, constants.NewtonGuess, constants.NewtonTolerance, constants.NewtonMaxIterations)
	require.NoError(t, err)
	assert.InDelta(t, 0, rate, 1e-6)
}

func TestSolveScheduleRoundTrip(t *testing.T) {
	variants := []amortization.Variant{
		amortization.VariantStandard,
		amortization.VariantLease,
		amortization.VariantBullet,
		amortization.VariantEqualPrincipal,
	}
	solvers := []Solver{DefaultSolver(), {Method: constants.SolverMethodNewton}}
	builder := amortization.NewBuilder(nil)

	for _, variant := range variants {
		for _, frequency := range []amortization.Frequency{amortization.FrequencyMonthly, amortization.FrequencyQuarterly} {
			params := amortization.Parameters{
				Principal:         500000,
				AnnualRate:        10.5,
				TenureMonths:      48,
				Frequency:         frequency,
				Variant:           variant,
				ResidualPercent:   5,
				GSTPercent:        18,
				UpfrontFeePercent: 1,
				MoratoriumPeriods: 1,
				AdvanceRentals:    1,
			}
			schedule, err := builder.Build(params)
			require.NoError(t, err)

			for _, solver := range solvers {
				require.NoError(t, solver.Normalize())
				rate, err := solver.Solve(schedule.Cashflows)
				require.NoError(t, err, "%s %s %s", variant, frequency, solver.Method)
				assert.InDelta(t, 0, NPV(rate, schedule.Cashflows), 1e-4,
					"%s %s %s", variant, frequency, solver.Method)
			}
		}
	}
}

func TestSolveStandardLoanMatchesRate(t *testing.T) {
	schedule, err := amortization.NewBuilder(nil).Build(amortization.Parameters{
		Principal:    100000,
		AnnualRate:   12,
		TenureMonths: 12,
		Frequency:    amortization.FrequencyMonthly,
		Variant:      amortization.VariantStandard,
	})
	require.NoError(t, err)

	rate, err := Solve(schedule.Cashflows)
	require.NoError(t, err)
	assert.InDelta(t, 0.01, rate, 1e-5)
	assert.InDelta(t, 0.126825, Annualize(rate, 12), 1e-4)
}

func TestAnnualize(t *testing.T) {
	assert.InDelta(t, 0.12682503, Annualize(0.01, 12), 1e-8)
	assert.InDelta(t, 0.12550881, Annualize(0.03, 4), 1e-8)
	assert.Equal(t, 0.0, Annualize(0, 12))
	assert.InDelta(t, 0.1, Annualize(0.1, 1), 1e-12)
}

func TestSolverNormalize(t *testing.T) {
	var s Solver
	require.NoError(t, s.Normalize())
	assert.Equal(t, DefaultSolver(), s)

	newton := Solver{Method: " Newton "}
	require.NoError(t, newton.Normalize())
	assert.Equal(t, constants.SolverMethodNewton, newton.Method)
	require.NotNil(t, newton.Guess)
	assert.Equal(t, constants.NewtonGuess, *newton.Guess)
	assert.Equal(t, constants.NewtonTolerance, newton.Tolerance)
	assert.Equal(t, constants.NewtonMaxIterations, newton.MaxIterations)

	bad := Solver{Method: "secant"}
	assert.Error(t, bad.Normalize())

	inverted := Solver{Method: constants.SolverMethodBrent, LowerBound: 0.5, UpperBound: 0.1}
	assert.Error(t, inverted.Normalize())
}

func TestSolverKeepsExplicitZeroGuess(t *testing.T) {
	zero := 0.0
	newton := Solver{Method: constants.SolverMethodNewton, Guess: &zero}
	require.NoError(t, newton.Normalize())
	require.NotNil(t, newton.Guess)
	assert.Equal(t, 0.0, *newton.Guess)

	rate, err := newton.Solve([]float64{-1000, 250, 250, 250, 250})
	require.NoError(t, err)
	assert.InDelta(t, 0, rate, 1e-9)

	rate, err = newton.Solve([]float64{-1000, 1100})
	require.NoError(t, err)
	assert.InDelta(t, 0.10, rate, 1e-6)
}

func TestSolveNeverPanicsOnExtremeFlows(t *testing.T) {
	cashflows := make([]float64, 2000)
	cashflows[0] = -math.MaxFloat64 / 2
	for i := 1; i < len(cashflows); i++ {
		cashflows[i] = math.MaxFloat64 / 4
	}
	assert.NotPanics(t, func() {
		_, _ = Solve(cashflows)
		newton := Solver{Method: constants.SolverMethodNewton}
		_ = newton.Normalize()
		_, _ = newton.Solve(cashflows)
	})
}
