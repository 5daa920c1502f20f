package waterfall

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/dealflow/internal/modules/partnership"
)

func TestPariPassu_SplitsByStaticShare(t *testing.T) {
	structure := gpLpStructure(0.10, 0.90, partnership.MethodPariPassu, nil)
	input := series(-1000, 0, 1300)

	result, err := Distribute(structure, input)
	require.NoError(t, err)

	gp := result.PartnerByName("Sponsor")
	lp := result.PartnerByName("Anchor Fund")
	require.NotNil(t, gp)
	require.NotNil(t, lp)

	assert.InDeltaSlice(t, []float64{-100, 0, 130}, gp.Flows.Amounts, 1e-9)
	assert.InDeltaSlice(t, []float64{-900, 0, 1170}, lp.Flows.Amounts, 1e-9)

	require.NotNil(t, gp.Metrics.EquityMultiple)
	require.NotNil(t, lp.Metrics.EquityMultiple)
	assert.InDelta(t, 1.30, *gp.Metrics.EquityMultiple, 1e-9)
	assert.InDelta(t, 1.30, *lp.Metrics.EquityMultiple, 1e-9)

	assertConservation(t, result, input)
}

func TestPariPassu_ShareConsistencyEveryPeriod(t *testing.T) {
	structure := partnership.Structure{
		Name:   "three way",
		Method: partnership.MethodPariPassu,
		Partners: []partnership.Partner{
			{Name: "Sponsor", Kind: partnership.KindGP, Share: 0.05},
			{Name: "Fund A", Kind: partnership.KindLP, Share: 0.60},
			{Name: "Fund B", Kind: partnership.KindLP, Share: 0.35},
		},
	}
	input := series(-500, -250, 40, 0, -10, 900, 120)

	result, err := Distribute(structure, input)
	require.NoError(t, err)

	for _, pa := range result.Partners {
		for period, aggregate := range input.Amounts {
			assert.InDelta(t, aggregate*pa.Partner.Share, pa.Flows.Amounts[period], 1e-9,
				"partner %s period %d", pa.Partner.Name, period)
		}
		assert.InDelta(t, pa.Partner.Share, pa.Metrics.OwnershipShare, 1e-12)
	}
}

func TestPariPassu_ZeroInvestmentPartnerHasUndefinedMetrics(t *testing.T) {
	structure := gpLpStructure(0.0, 1.0, partnership.MethodPariPassu, nil)
	input := series(-1000, 1200)

	result, err := Distribute(structure, input)
	require.NoError(t, err)

	gp := result.PartnerByName("Sponsor")
	require.NotNil(t, gp)
	// The allocation completes; only the specific metrics are undefined.
	assert.Nil(t, gp.Metrics.IRR)
	assert.Nil(t, gp.Metrics.EquityMultiple)
	assert.InDelta(t, 0.0, gp.Metrics.TotalDistributed, 1e-9)

	lp := result.PartnerByName("Anchor Fund")
	require.NotNil(t, lp)
	require.NotNil(t, lp.Metrics.IRR)
	require.NotNil(t, lp.Metrics.EquityMultiple)
}

func TestPariPassu_AggregateMetrics(t *testing.T) {
	structure := gpLpStructure(0.10, 0.90, partnership.MethodPariPassu, nil)
	input := series(-1000, 0, 1300)

	result, err := Distribute(structure, input)
	require.NoError(t, err)

	assert.InDelta(t, 1000.0, result.Aggregate.TotalInvested, 1e-9)
	assert.InDelta(t, 1300.0, result.Aggregate.TotalDistributed, 1e-9)
	assert.InDelta(t, 300.0, result.Aggregate.NetProfit, 1e-9)
	require.NotNil(t, result.Aggregate.EquityMultiple)
	assert.InDelta(t, 1.30, *result.Aggregate.EquityMultiple, 1e-9)
}
