package tvm

import (
	"fmt"
	"math"
)

// NPV calculates the net present value of the series at an annual discount
// rate, discounting each flow by actual elapsed time from the first flow's
// date. Returns nil for an empty series or a discount rate at or below -100%.
func NPV(flows []CashFlow, discountRate float64) *float64 {
	if len(flows) == 0 {
		return nil
	}
	if discountRate <= -1.0 {
		return nil
	}

	origin := flows[0].Date
	var value float64
	for _, f := range flows {
		t := yearsBetween(origin, f.Date)
		value += f.Amount / math.Pow(1.0+discountRate, t)
	}
	return &value
}

// TerminalValue compounds an amount forward at an annual rate over a number
// of years. Used to size waterfall hurdle tiers: the terminal payout needed
// for an invested dollar to achieve a hurdle IRR.
//
// Overflow is an explicit error, not an undefined value - a tier threshold
// that cannot be represented means the calculation cannot be trusted.
func TerminalValue(amount, rate, years float64) (float64, error) {
	value := amount * math.Pow(1.0+rate, years)
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("terminal value overflow: amount=%g rate=%g years=%g", amount, rate, years)
	}
	return value, nil
}
