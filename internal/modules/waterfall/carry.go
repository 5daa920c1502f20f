package waterfall

import (
	"fmt"

	"github.com/aristath/dealflow/internal/domain"
	"github.com/aristath/dealflow/internal/modules/partnership"
	"github.com/aristath/dealflow/pkg/tvm"
)

// allocateCarry implements the traditional preferred-return-plus-carry
// structure. Unlike the tiered waterfalls this is holding-period
// compounding, not tier-by-tier sizing:
//
//  1. If total distributions never exceed invested capital, everything is a
//     pro-rata return of capital and no carry exists.
//  2. Otherwise the preferred amount is LP-side capital compounded at the
//     preferred rate over the series length in years; carry is the flat
//     carry rate applied to profit above that amount.
//  3. One pass over the periods splits each distribution into a capital
//     portion (pro-rata until capital is returned) and a profit portion;
//     carry is spread across profit portions proportionally and paid to
//     GP-kind partners only.
func allocateCarry(structure partnership.Structure, series domain.CashFlowSeries, promote partnership.Promote) (*AllocationResult, error) {
	totalInvested := series.TotalInvested()
	if totalInvested <= 0 {
		return nil, ErrZeroInvestment
	}
	totalDistributed := series.TotalDistributed()
	totalProfit := totalDistributed - totalInvested

	a := newAllocator(structure, series)

	// No profit: every distribution is a return of capital.
	if totalProfit <= 0 {
		for period, amount := range series.Amounts {
			a.splitProRata(period, amount)
		}
		return a.result(), nil
	}

	lpInvested := totalInvested * structure.TotalShare(partnership.KindLP)
	terminal, err := tvm.TerminalValue(lpInvested, promote.PreferredRate, series.Years())
	if err != nil {
		return nil, fmt.Errorf("%w: compounding preferred return: %v", ErrNumerical, err)
	}
	preferredAmount := terminal - lpInvested

	profitAbovePref := totalProfit - preferredAmount
	if profitAbovePref < 0 {
		profitAbovePref = 0
	}
	carry := profitAbovePref * promote.CarryRate

	capitalRemaining := totalInvested
	for period, amount := range series.Amounts {
		if amount <= 0 {
			a.splitProRata(period, amount)
			continue
		}

		capitalPortion := amount
		if capitalPortion > capitalRemaining {
			capitalPortion = capitalRemaining
		}
		capitalRemaining -= capitalPortion
		a.splitProRata(period, capitalPortion)

		profitPortion := amount - capitalPortion
		if profitPortion <= 0 {
			continue
		}
		periodCarry := carry * (profitPortion / totalProfit)
		a.splitPromote(period, periodCarry)
		a.splitProRata(period, profitPortion-periodCarry)
	}

	return a.result(), nil
}
