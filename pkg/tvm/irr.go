package tvm

import (
	"math"
)

const (
	irrNewtonStart   = 0.1
	irrMaxIterations = 100
	irrBisectionMax  = 200
	irrTolerance     = 1e-9
	irrLowerBound    = -0.9999 // just above total loss; the discount factor blows up at -1
	irrUpperBound    = 10.0    // 1000% annualized, beyond any realistic deal
)

// IRR solves for the annualized rate r such that the present value of the
// series discounted at r is zero. Discounting uses actual elapsed time from
// the first flow's date, so irregular spacing is handled correctly.
//
// Returns nil when the IRR is undefined rather than failing:
//   - the series is empty
//   - all amounts share one sign (no investment-and-return pattern)
//   - the root finder does not converge within the bracket
//
// Callers treat nil as "undefined", a normal case (e.g. a partner with no
// distributions yet). The solver is deterministic: Newton's method from a
// fixed starting point, falling back to bisection on a fixed bracket.
func IRR(flows []CashFlow) *float64 {
	if len(flows) == 0 {
		return nil
	}
	if !hasSignChange(flows) {
		return nil
	}

	origin := flows[0].Date
	// Present value and its derivative with respect to the rate.
	eval := func(rate float64) (float64, float64) {
		var value, derivative float64
		for _, f := range flows {
			t := yearsBetween(origin, f.Date)
			df := math.Pow(1.0+rate, t)
			value += f.Amount / df
			derivative += -t * f.Amount / (df * (1.0 + rate))
		}
		return value, derivative
	}

	// Newton's method from a fixed start.
	rate := irrNewtonStart
	for i := 0; i < irrMaxIterations; i++ {
		value, derivative := eval(rate)
		if math.Abs(value) < irrTolerance {
			return &rate
		}
		if derivative == 0 || math.IsNaN(derivative) || math.IsInf(derivative, 0) {
			break
		}
		next := rate - value/derivative
		if math.IsNaN(next) || next <= irrLowerBound || next >= irrUpperBound {
			break
		}
		rate = next
	}
	if value, _ := eval(rate); math.Abs(value) < irrTolerance {
		return &rate
	}

	// Bisection fallback on a fixed bracket.
	lo, hi := irrLowerBound, irrUpperBound
	vLo, _ := eval(lo)
	vHi, _ := eval(hi)
	if math.IsNaN(vLo) || math.IsNaN(vHi) || vLo*vHi > 0 {
		return nil
	}
	for i := 0; i < irrBisectionMax; i++ {
		mid := (lo + hi) / 2.0
		vMid, _ := eval(mid)
		if math.Abs(vMid) < irrTolerance {
			return &mid
		}
		if vLo*vMid < 0 {
			hi = mid
		} else {
			lo = mid
			vLo = vMid
		}
	}
	result := (lo + hi) / 2.0
	return &result
}
