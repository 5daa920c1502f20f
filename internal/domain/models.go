package domain

import (
	"fmt"
	"time"

	"github.com/aristath/dealflow/pkg/tvm"
)

// MonthsPerYear is the cadence of every CashFlowSeries in the system.
const MonthsPerYear = 12

// CashFlowSeries is an ordered, gap-free monthly sequence of amounts.
// Period i falls on StartDate plus i months, so the series is contiguous by
// construction and cannot contain duplicate periods.
//
// Sign convention: negative = capital outflow (investment), positive =
// inflow (distribution), always from the holder's perspective.
type CashFlowSeries struct {
	StartDate time.Time `json:"start_date"`
	Amounts   []float64 `json:"amounts"`
}

// NewCashFlowSeries creates a series starting at the given date.
func NewCashFlowSeries(startDate time.Time, amounts []float64) CashFlowSeries {
	return CashFlowSeries{StartDate: startDate, Amounts: amounts}
}

// Len returns the number of periods.
func (s CashFlowSeries) Len() int {
	return len(s.Amounts)
}

// Date returns the calendar date of period i.
func (s CashFlowSeries) Date(i int) time.Time {
	return s.StartDate.AddDate(0, i, 0)
}

// Years returns the elapsed time from the first period to the last, in
// years at the monthly cadence. A 13-period series spans exactly one year.
func (s CashFlowSeries) Years() float64 {
	if len(s.Amounts) < 2 {
		return 0
	}
	return float64(len(s.Amounts)-1) / MonthsPerYear
}

// Dated expands the series into dated flows for the TVM kernel.
func (s CashFlowSeries) Dated() []tvm.CashFlow {
	flows := make([]tvm.CashFlow, len(s.Amounts))
	for i, amount := range s.Amounts {
		flows[i] = tvm.CashFlow{Date: s.Date(i), Amount: amount}
	}
	return flows
}

// TotalInvested returns the sum of all investments as a positive number.
func (s CashFlowSeries) TotalInvested() float64 {
	var total float64
	for _, amount := range s.Amounts {
		if amount < 0 {
			total += -amount
		}
	}
	return total
}

// TotalDistributed returns the sum of all distributions.
func (s CashFlowSeries) TotalDistributed() float64 {
	var total float64
	for _, amount := range s.Amounts {
		if amount > 0 {
			total += amount
		}
	}
	return total
}

// EmptyCopy returns a zero-valued series on the same period index. The
// allocator uses this to build per-partner output series aligned with the
// aggregate input.
func (s CashFlowSeries) EmptyCopy() CashFlowSeries {
	return CashFlowSeries{
		StartDate: s.StartDate,
		Amounts:   make([]float64, len(s.Amounts)),
	}
}

// Validate checks that the series is usable: a start date is set and at
// least one period exists.
func (s CashFlowSeries) Validate() error {
	if s.StartDate.IsZero() {
		return fmt.Errorf("cash flow series has no start date")
	}
	if len(s.Amounts) == 0 {
		return fmt.Errorf("cash flow series has no periods")
	}
	return nil
}
