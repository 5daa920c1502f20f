package waterfall

import (
	"github.com/aristath/dealflow/internal/domain"
	"github.com/aristath/dealflow/internal/modules/partnership"
)

// allocatePariPassu splits every period's amount - investment or
// distribution, any sign - by each partner's static ownership share. No tier
// logic is involved; the TVM kernel is only used afterward for metrics.
// Always succeeds given a valid partnership structure.
func allocatePariPassu(structure partnership.Structure, series domain.CashFlowSeries) *AllocationResult {
	a := newAllocator(structure, series)
	for period, amount := range series.Amounts {
		a.splitProRata(period, amount)
	}
	return a.result()
}
