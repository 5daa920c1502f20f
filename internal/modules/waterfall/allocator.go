package waterfall

import (
	"github.com/aristath/dealflow/internal/domain"
	"github.com/aristath/dealflow/internal/modules/partnership"
)

// allocator accumulates per-partner, per-period amounts during one
// distribution pass. It is built fresh for every call and discarded with it.
type allocator struct {
	structure partnership.Structure
	series    domain.CashFlowSeries
	// amounts[p][t] is partner p's allocated amount in period t.
	amounts [][]float64
	// gpIndexes are positions of GP-kind partners in declaration order.
	gpIndexes    []int
	totalGPShare float64
}

func newAllocator(structure partnership.Structure, series domain.CashFlowSeries) *allocator {
	a := &allocator{
		structure: structure,
		series:    series,
		amounts:   make([][]float64, len(structure.Partners)),
	}
	for i, p := range structure.Partners {
		a.amounts[i] = make([]float64, series.Len())
		if p.Kind == partnership.KindGP {
			a.gpIndexes = append(a.gpIndexes, i)
			a.totalGPShare += p.Share
		}
	}
	return a
}

// splitProRata splits an amount (any sign) across all partners by ownership
// share. The last partner receives the remainder rather than its rounded
// slice, so the partner amounts always sum back to the input exactly.
func (a *allocator) splitProRata(period int, amount float64) {
	if amount == 0 {
		return
	}
	var allocated float64
	last := len(a.structure.Partners) - 1
	for i, p := range a.structure.Partners {
		if i == last {
			a.amounts[i][period] += amount - allocated
			break
		}
		slice := amount * p.Share
		a.amounts[i][period] += slice
		allocated += slice
	}
}

// splitPromote splits a promote amount among GP-kind partners by their
// relative share among GPs, remainder to the last GP. When every GP holds a
// zero share the promote is split equally - relative share is undefined and
// the split must still be deterministic.
func (a *allocator) splitPromote(period int, amount float64) {
	if amount == 0 || len(a.gpIndexes) == 0 {
		return
	}
	var allocated float64
	last := len(a.gpIndexes) - 1
	for n, i := range a.gpIndexes {
		if n == last {
			a.amounts[i][period] += amount - allocated
			break
		}
		var slice float64
		if a.totalGPShare > 0 {
			slice = amount * a.structure.Partners[i].Share / a.totalGPShare
		} else {
			slice = amount / float64(len(a.gpIndexes))
		}
		a.amounts[i][period] += slice
		allocated += slice
	}
}

// splitWithPromote splits a distribution slice inside one tier: the promote
// portion goes to GPs only, the rest pro-rata across all partners.
func (a *allocator) splitWithPromote(period int, amount, promoteRate float64) {
	promote := amount * promoteRate
	a.splitPromote(period, promote)
	a.splitProRata(period, amount-promote)
}

// result assembles the final AllocationResult with per-partner and
// aggregate metrics.
func (a *allocator) result() *AllocationResult {
	result := &AllocationResult{
		Partners:  make([]PartnerAllocation, len(a.structure.Partners)),
		Aggregate: computeMetrics(a.series, 1.0),
	}
	for i, p := range a.structure.Partners {
		flows := domain.CashFlowSeries{
			StartDate: a.series.StartDate,
			Amounts:   a.amounts[i],
		}
		result.Partners[i] = PartnerAllocation{
			Partner: p,
			Flows:   flows,
			Metrics: computeMetrics(flows, p.Share),
		}
	}
	return result
}
