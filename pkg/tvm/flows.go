package tvm

import "time"

// CashFlow is a single dated cash movement.
// Negative amounts are capital outflows (investments) from the holder's
// perspective, positive amounts are distributions back to the holder.
type CashFlow struct {
	Date   time.Time `json:"date"`
	Amount float64   `json:"amount"`
}

// yearsBetween returns the elapsed time between two dates in years,
// using an actual/365.25 day count. Irregular spacing between flows is
// supported - nothing here assumes a fixed cadence.
func yearsBetween(from, to time.Time) float64 {
	return to.Sub(from).Hours() / 24.0 / 365.25
}

// hasSignChange reports whether the series contains at least one strictly
// negative and one strictly positive amount. Zero-valued flows are neutral
// and never count toward either side.
func hasSignChange(flows []CashFlow) bool {
	hasNegative := false
	hasPositive := false
	for _, f := range flows {
		if f.Amount < 0 {
			hasNegative = true
		}
		if f.Amount > 0 {
			hasPositive = true
		}
	}
	return hasNegative && hasPositive
}
