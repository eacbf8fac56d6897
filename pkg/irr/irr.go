// Package irr solves for the periodic internal rate of return of a cash-flow
// series and converts it to an annual rate.
package irr

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/emi-calculator/pkg/constants"
)

// Errors returned when no rate can be reported. None of them are fatal to the
// caller: an IRR is legitimately undefined for some cash-flow shapes.
var (
	ErrNoSignChange   = errors.New("irr: net present value does not change sign on the bracket")
	ErrNoConvergence  = errors.New("irr: solver did not converge within its iteration budget")
	ErrZeroDerivative = errors.New("irr: net present value derivative is zero")
	ErrNumeric        = errors.New("irr: net present value is not finite")
	ErrEmptySeries    = errors.New("irr: cash-flow series needs at least two entries")
)

// NPV discounts cash flow t by (1+rate)^t and sums the result. Index 0 is
// not discounted.
func NPV(rate float64, cashflows []float64) float64 {
	var total float64
	discount := 1.0
	for _, cf := range cashflows {
		total += cf / discount
		discount *= 1 + rate
	}
	return total
}

// NPVDerivative is d NPV / d rate = sum(-t * cf_t / (1+rate)^(t+1)).
func NPVDerivative(rate float64, cashflows []float64) float64 {
	var total float64
	discount := 1 + rate
	for t, cf := range cashflows {
		total -= float64(t) * cf / discount
		discount *= 1 + rate
	}
	return total
}

// Solver finds the periodic IRR with either a bracketed Brent search or
// Newton-Raphson. The zero value is not usable; start from DefaultSolver or
// call Normalize. A nil Guess takes the Newton default; an explicit 0 is kept.
type Solver struct {
	Method        string   `yaml:"method,omitempty" mapstructure:"method"`
	LowerBound    float64  `yaml:"lowerBound,omitempty" mapstructure:"lowerBound"`
	UpperBound    float64  `yaml:"upperBound,omitempty" mapstructure:"upperBound"`
	Guess         *float64 `yaml:"guess,omitempty" mapstructure:"guess"`
	Tolerance     float64  `yaml:"tolerance,omitempty" mapstructure:"tolerance"`
	MaxIterations int      `yaml:"maxIterations,omitempty" mapstructure:"maxIterations"`
}

// DefaultSolver returns the bracketed solver on [0.00001, 1].
func DefaultSolver() Solver {
	return Solver{
		Method:        constants.SolverMethodBrent,
		LowerBound:    constants.IRRLowerBound,
		UpperBound:    constants.IRRUpperBound,
		Tolerance:     constants.BrentTolerance,
		MaxIterations: constants.BrentMaxIterations,
	}
}

// Normalize fills unset fields with the defaults of the selected method and
// rejects unknown methods or inverted brackets.
func (s *Solver) Normalize() error {
	s.Method = strings.ToLower(strings.TrimSpace(s.Method))
	if s.Method == "" {
		s.Method = constants.SolverMethodBrent
	}

	switch s.Method {
	case constants.SolverMethodBrent:
		if s.LowerBound == 0 && s.UpperBound == 0 {
			s.LowerBound = constants.IRRLowerBound
			s.UpperBound = constants.IRRUpperBound
		}
		if s.LowerBound >= s.UpperBound {
			return fmt.Errorf("invalid IRR bracket [%g, %g]", s.LowerBound, s.UpperBound)
		}
		if s.LowerBound <= -1 {
			return fmt.Errorf("IRR lower bound must be above -1, got %g", s.LowerBound)
		}
		if s.Tolerance <= 0 {
			s.Tolerance = constants.BrentTolerance
		}
		if s.MaxIterations <= 0 {
			s.MaxIterations = constants.BrentMaxIterations
		}
	case constants.SolverMethodNewton:
		if s.Guess == nil {
			guess := constants.NewtonGuess
			s.Guess = &guess
		}
		if s.Tolerance <= 0 {
			s.Tolerance = constants.NewtonTolerance
		}
		if s.MaxIterations <= 0 {
			s.MaxIterations = constants.NewtonMaxIterations
		}
	default:
		return fmt.Errorf("unsupported IRR method %q, expected %s or %s",
			s.Method, constants.SolverMethodBrent, constants.SolverMethodNewton)
	}
	return nil
}

// Solve returns the periodic rate that zeroes the NPV of cashflows.
func (s Solver) Solve(cashflows []float64) (float64, error) {
	if len(cashflows) < 2 {
		return 0, ErrEmptySeries
	}
	if !changesSign(cashflows) {
		return 0, ErrNoSignChange
	}
	if s.Method == constants.SolverMethodNewton {
		guess := constants.NewtonGuess
		if s.Guess != nil {
			guess = *s.Guess
		}
		return SolveNewton(cashflows, guess, s.Tolerance, s.MaxIterations)
	}
	return SolveBrent(cashflows, s.LowerBound, s.UpperBound, s.Tolerance, s.MaxIterations)
}

// Solve runs the default bracketed solver.
func Solve(cashflows []float64) (float64, error) {
	return DefaultSolver().Solve(cashflows)
}

// changesSign reports whether the series has both an inflow and an outflow;
// without one the NPV has no root.
func changesSign(cashflows []float64) bool {
	var positive, negative bool
	for _, cf := range cashflows {
		positive = positive || cf > 0
		negative = negative || cf < 0
	}
	return positive && negative
}

// Annualize compounds a periodic rate over a year: (1+p)^n - 1.
func Annualize(periodic float64, periodsPerYear int) float64 {
	return math.Pow(1+periodic, float64(periodsPerYear)) - 1
}
