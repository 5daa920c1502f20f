package waterfall

import (
	"github.com/aristath/dealflow/internal/domain"
	"github.com/aristath/dealflow/internal/modules/partnership"
)

// allocateHybrid runs the IRR and EM waterfalls independently on the same
// input and keeps exactly one of the two complete candidates:
//
//	min: the candidate paying LP-kind partners more wins (the LP floor)
//	max: the candidate paying GP-kind partners more wins
//
// This is an all-or-nothing selection between two fully computed outcomes,
// never a per-period blend. Ties keep the IRR candidate, deterministically.
func allocateHybrid(structure partnership.Structure, series domain.CashFlowSeries, promote partnership.Promote) (*AllocationResult, error) {
	irrCandidate, err := allocateIRRWaterfall(structure, series, *promote.IRR)
	if err != nil {
		return nil, err
	}
	emCandidate, err := allocateEMWaterfall(structure, series, *promote.EM)
	if err != nil {
		return nil, err
	}

	kind := partnership.KindLP
	if promote.Combine == partnership.CombineMax {
		kind = partnership.KindGP
	}

	if emCandidate.TotalDistributedTo(kind) > irrCandidate.TotalDistributedTo(kind) {
		return emCandidate, nil
	}
	return irrCandidate, nil
}
