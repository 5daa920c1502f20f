package tvm

import (
	"gonum.org/v1/gonum/floats"
)

// NoDebtServiceDSCR is the sentinel returned when a period carries positive
// NOI and no debt service. It is a reporting convention meaning "no coverage
// constraint", not an error.
const NoDebtServiceDSCR = 100.0

// EquityMultiple calculates total distributions over total invested capital:
// sum(positive amounts) / |sum(negative amounts)|.
//
// Returns nil when the series contains no investments (the ratio is
// undefined). A series with investments but zero distributions yields 0.0 -
// a total loss is a meaningful value and is distinct from undefined.
func EquityMultiple(flows []CashFlow) *float64 {
	var invested, distributed []float64
	for _, f := range flows {
		if f.Amount < 0 {
			invested = append(invested, -f.Amount)
		} else if f.Amount > 0 {
			distributed = append(distributed, f.Amount)
		}
	}
	if len(invested) == 0 {
		return nil
	}
	multiple := floats.Sum(distributed) / floats.Sum(invested)
	return &multiple
}

// DSCR calculates the single-period debt service coverage ratio:
// NOI / |debt service|.
//
// When debt service is zero the ratio is the NoDebtServiceDSCR sentinel for
// positive NOI, and nil otherwise.
func DSCR(noi, debtService float64) *float64 {
	if debtService == 0 {
		if noi > 0 {
			sentinel := NoDebtServiceDSCR
			return &sentinel
		}
		return nil
	}
	ratio := noi / abs(debtService)
	return &ratio
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
