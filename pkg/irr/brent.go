package irr

import (
	"math"
)

// relativeTolerance scales the stopping tolerance with the magnitude of the
// current estimate.
const relativeTolerance = 4 * 2.220446049250313e-16

// SolveBrent finds a root of NPV on [lower, upper] with Brent's method:
// inverse quadratic interpolation or secant steps guarded by bisection, so
// the bracket always shrinks. It needs NPV to change sign on the bracket.
func SolveBrent(cashflows []float64, lower, upper, tolerance float64, maxIterations int) (float64, error) {
	f := func(rate float64) float64 { return NPV(rate, cashflows) }

	xpre, xcur := lower, upper
	fpre, fcur := f(xpre), f(xcur)
	if !finite(fpre) || !finite(fcur) {
		return 0, ErrNumeric
	}
	if fpre == 0 {
		return xpre, nil
	}
	if fcur == 0 {
		return xcur, nil
	}
	if math.Signbit(fpre) == math.Signbit(fcur) {
		return 0, ErrNoSignChange
	}

	var xblk, fblk, spre, scur float64
	for i := 0; i < maxIterations; i++ {
		if fpre != 0 && fcur != 0 && math.Signbit(fpre) != math.Signbit(fcur) {
			xblk, fblk = xpre, fpre
			spre = xcur - xpre
			scur = spre
		}
		// Keep xcur as the best estimate, with xblk on the other side of the root.
		if math.Abs(fblk) < math.Abs(fcur) {
			xpre, xcur, xblk = xcur, xblk, xcur
			fpre, fcur, fblk = fcur, fblk, fcur
		}

		delta := (tolerance + relativeTolerance*math.Abs(xcur)) / 2
		sbis := (xblk - xcur) / 2
		if fcur == 0 || math.Abs(sbis) < delta {
			return xcur, nil
		}

		if math.Abs(spre) > delta && math.Abs(fcur) < math.Abs(fpre) {
			var stry float64
			if xpre == xblk {
				stry = -fcur * (xcur - xpre) / (fcur - fpre)
			} else {
				dpre := (fpre - fcur) / (xpre - xcur)
				dblk := (fblk - fcur) / (xblk - xcur)
				stry = -fcur * (fblk*dblk - fpre*dpre) / (dblk * dpre * (fblk - fpre))
			}
			if 2*math.Abs(stry) < math.Min(math.Abs(spre), 3*math.Abs(sbis)-delta) {
				spre, scur = scur, stry
			} else {
				spre, scur = sbis, sbis
			}
		} else {
			spre, scur = sbis, sbis
		}

		xpre, fpre = xcur, fcur
		if math.Abs(scur) > delta {
			xcur += scur
		} else if sbis > 0 {
			xcur += delta
		} else {
			xcur -= delta
		}

		fcur = f(xcur)
		if !finite(fcur) {
			return 0, ErrNumeric
		}
	}
	return 0, ErrNoConvergence
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
