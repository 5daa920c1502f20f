package waterfall

import (
	"errors"

	"github.com/aristath/dealflow/internal/domain"
	"github.com/aristath/dealflow/internal/modules/partnership"
	"github.com/aristath/dealflow/pkg/tvm"
)

// Engine errors. Configuration and numerical errors abort the entire
// distribution with no partial result; an audit tool must never present a
// partially computed waterfall as complete.
var (
	// ErrZeroInvestment means the aggregate series contains no invested
	// capital, so tiered and carry allocations are undefined.
	ErrZeroInvestment = errors.New("waterfall requires invested capital in the aggregate series")
	// ErrNumerical wraps root-finding and compounding failures - the
	// calculation could not be trusted, as opposed to a metric that is
	// legitimately inapplicable.
	ErrNumerical = errors.New("numerical failure during waterfall computation")
)

// PartnerMetrics summarizes one partner's realized outcome. IRR and
// EquityMultiple are nil when undefined (e.g. no distributions yet, no sign
// change); undefined is a normal state, distinct from zero.
type PartnerMetrics struct {
	TotalInvested    float64  `json:"total_invested"`
	TotalDistributed float64  `json:"total_distributed"`
	NetProfit        float64  `json:"net_profit"`
	IRR              *float64 `json:"irr"`
	EquityMultiple   *float64 `json:"equity_multiple"`
	OwnershipShare   float64  `json:"ownership_share"`
}

// PartnerAllocation is one partner's slice of the deal: a cash-flow series
// on the same period index as the aggregate input, plus summary metrics.
type PartnerAllocation struct {
	Partner partnership.Partner   `json:"partner"`
	Flows   domain.CashFlowSeries `json:"flows"`
	Metrics PartnerMetrics        `json:"metrics"`
}

// AllocationResult is the complete outcome of one distribution: partner
// allocations in declaration order plus deal-level aggregate metrics.
// Computed from immutable inputs and never mutated afterward, so it is safe
// to cache keyed by the (structure, series) pair.
type AllocationResult struct {
	Partners  []PartnerAllocation `json:"partners"`
	Aggregate PartnerMetrics      `json:"aggregate"`
}

// TotalDistributedTo sums total distributions across partners of a kind.
// The hybrid combination rule compares candidates with this.
func (r *AllocationResult) TotalDistributedTo(kind partnership.PartnerKind) float64 {
	var total float64
	for _, pa := range r.Partners {
		if pa.Partner.Kind == kind {
			total += pa.Metrics.TotalDistributed
		}
	}
	return total
}

// PartnerByName returns the allocation for a named partner, or nil.
func (r *AllocationResult) PartnerByName(name string) *PartnerAllocation {
	for i := range r.Partners {
		if r.Partners[i].Partner.Name == name {
			return &r.Partners[i]
		}
	}
	return nil
}

// computeMetrics derives the summary metrics for a cash-flow series.
func computeMetrics(flows domain.CashFlowSeries, ownershipShare float64) PartnerMetrics {
	dated := flows.Dated()
	invested := flows.TotalInvested()
	distributed := flows.TotalDistributed()

	return PartnerMetrics{
		TotalInvested:    invested,
		TotalDistributed: distributed,
		NetProfit:        distributed - invested,
		IRR:              tvm.IRR(dated),
		EquityMultiple:   tvm.EquityMultiple(dated),
		OwnershipShare:   ownershipShare,
	}
}
