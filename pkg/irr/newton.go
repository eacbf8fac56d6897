package irr

import "math"

// SolveNewton iterates rate -= NPV(rate)/NPV'(rate) from guess until the step
// falls below tolerance. A zero derivative or a non-finite step aborts.
func SolveNewton(cashflows []float64, guess, tolerance float64, maxIterations int) (float64, error) {
	rate := guess
	for i := 0; i < maxIterations; i++ {
		value := NPV(rate, cashflows)
		slope := NPVDerivative(rate, cashflows)
		if !finite(value) || !finite(slope) {
			return 0, ErrNumeric
		}
		if slope == 0 {
			return 0, ErrZeroDerivative
		}

		next := rate - value/slope
		if !finite(next) || next <= -1 {
			return 0, ErrNumeric
		}
		if math.Abs(next-rate) < tolerance {
			return next, nil
		}
		rate = next
	}
	return 0, ErrNoConvergence
}
