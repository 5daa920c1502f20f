package waterfall

import (
	"fmt"
	"math"

	"github.com/aristath/dealflow/internal/domain"
	"github.com/aristath/dealflow/internal/modules/partnership"
	"github.com/aristath/dealflow/pkg/tvm"
)

// tierCapacityEpsilon treats a tier whose remaining capacity is below this
// as full, so float residue from slice subtraction cannot stall the walk on
// sub-cent slivers.
const tierCapacityEpsilon = 1e-9

// tier is one step of the distribution ladder. Threshold is the cumulative
// distributed amount at which the tier is full; the final tier is uncapped.
type tier struct {
	threshold float64
	promote   float64
}

// buildIRRTiers sizes the ladder for an IRR-hurdle waterfall:
//
//	tier 0: return of capital - total invested, 0% promote
//	one tier per hurdle: the cumulative terminal payout needed to bring
//	  every invested dollar up to the hurdle IRR, compounded from its
//	  investment period to the final period of the series
//	final tier: uncapped, at the configured final promote rate
//
// The preferred-return rate is the first hurdle, carrying no promote.
func buildIRRTiers(series domain.CashFlowSeries, promote partnership.Promote) ([]tier, error) {
	totalInvested := series.TotalInvested()
	tiers := []tier{{threshold: totalInvested, promote: 0}}

	lastPeriod := series.Len() - 1
	hurdles := make([]partnership.Tier, 0, len(promote.Tiers)+1)
	hurdles = append(hurdles, partnership.Tier{Hurdle: promote.PreferredRate, Promote: 0})
	hurdles = append(hurdles, promote.Tiers...)

	for _, h := range hurdles {
		var required float64
		for period, amount := range series.Amounts {
			if amount >= 0 {
				continue
			}
			years := float64(lastPeriod-period) / domain.MonthsPerYear
			terminal, err := tvm.TerminalValue(-amount, h.Hurdle, years)
			if err != nil {
				return nil, fmt.Errorf("%w: sizing %.4f hurdle tier: %v", ErrNumerical, h.Hurdle, err)
			}
			required += terminal
		}
		tiers = append(tiers, tier{threshold: required, promote: h.Promote})
	}

	tiers = append(tiers, tier{threshold: math.Inf(1), promote: promote.FinalPromote})
	return tiers, nil
}

// buildEMTiers sizes the ladder for an equity-multiple waterfall. Thresholds
// are direct multiples of invested capital - no compounding involved.
func buildEMTiers(series domain.CashFlowSeries, promote partnership.Promote) []tier {
	totalInvested := series.TotalInvested()
	tiers := []tier{{threshold: totalInvested, promote: 0}}
	for _, t := range promote.Tiers {
		tiers = append(tiers, tier{threshold: totalInvested * t.Hurdle, promote: t.Promote})
	}
	tiers = append(tiers, tier{threshold: math.Inf(1), promote: promote.FinalPromote})
	return tiers
}

// allocateTiered runs the European tier walk: investments go in pro-rata
// (tiers only govern distributions), then distribution periods are consumed
// chronologically, filling each tier to its threshold before spilling into
// the next. A single period's amount may span several tiers.
//
// The walk is an explicit accumulator - cumulative distributed amount plus
// current tier index - threaded through one pass, which keeps the
// period-spans-tiers case tractable.
func allocateTiered(structure partnership.Structure, series domain.CashFlowSeries, tiers []tier) *AllocationResult {
	a := newAllocator(structure, series)

	cumulative := 0.0
	current := 0
	for period, amount := range series.Amounts {
		if amount < 0 {
			a.splitProRata(period, amount)
			continue
		}
		if amount == 0 {
			continue
		}

		remaining := amount
		for remaining > 0 {
			// Advance past tiers already filled. Later tiers never start
			// before an earlier tier's threshold is fully satisfied.
			for current < len(tiers)-1 && tiers[current].threshold-cumulative <= tierCapacityEpsilon {
				current++
			}

			slice := remaining
			if capacity := tiers[current].threshold - cumulative; slice > capacity {
				slice = capacity
			}
			a.splitWithPromote(period, slice, tiers[current].promote)
			cumulative += slice
			remaining -= slice
		}
	}

	return a.result()
}

// allocateIRRWaterfall is the §IRR-hurdle entry: validates the series has
// invested capital, sizes the tiers, and walks them.
func allocateIRRWaterfall(structure partnership.Structure, series domain.CashFlowSeries, promote partnership.Promote) (*AllocationResult, error) {
	if series.TotalInvested() <= 0 {
		return nil, ErrZeroInvestment
	}
	tiers, err := buildIRRTiers(series, promote)
	if err != nil {
		return nil, err
	}
	return allocateTiered(structure, series, tiers), nil
}

// allocateEMWaterfall is the equity-multiple-hurdle entry.
func allocateEMWaterfall(structure partnership.Structure, series domain.CashFlowSeries, promote partnership.Promote) (*AllocationResult, error) {
	if series.TotalInvested() <= 0 {
		return nil, ErrZeroInvestment
	}
	return allocateTiered(structure, series, buildEMTiers(series, promote)), nil
}
