package waterfall

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/dealflow/internal/modules/partnership"
)

func TestIRRWaterfall_DistributionsExactlyFillPrefTier(t *testing.T) {
	// Single 8% pref tier, final 20% promote, no intermediate tiers. With a
	// one-year hold the pref tier threshold is 1000 * 1.08 = 1080; a payout
	// of exactly 1080 never reaches the promote tier, so the GP receives
	// only its pro-rata share.
	structure := gpLpStructure(0.10, 0.90, partnership.MethodWaterfall, &partnership.Promote{
		Type:          partnership.PromoteIRRWaterfall,
		PreferredRate: 0.08,
		FinalPromote:  0.20,
	})
	input := monthsSeries(1000, 1080, 12)

	result, err := Distribute(structure, input)
	require.NoError(t, err)

	gp := result.PartnerByName("Sponsor")
	require.NotNil(t, gp)
	assert.InDelta(t, 108.0, gp.Metrics.TotalDistributed, 1e-6)
	assertConservation(t, result, input)
}

func TestIRRWaterfall_PromoteAbovePref(t *testing.T) {
	// Same deal, payout 1500: 1080 clears capital + pref at 0% promote, the
	// remaining 420 carries a 20% promote.
	//   GP: 1080*0.10 + 420*0.20 + 420*0.80*0.10 = 108 + 84 + 33.6 = 225.6
	structure := gpLpStructure(0.10, 0.90, partnership.MethodWaterfall, &partnership.Promote{
		Type:          partnership.PromoteIRRWaterfall,
		PreferredRate: 0.08,
		FinalPromote:  0.20,
	})
	input := monthsSeries(1000, 1500, 12)

	result, err := Distribute(structure, input)
	require.NoError(t, err)

	gp := result.PartnerByName("Sponsor")
	lp := result.PartnerByName("Anchor Fund")
	require.NotNil(t, gp)
	require.NotNil(t, lp)

	assert.InDelta(t, 225.6, gp.Metrics.TotalDistributed, 1e-6)
	assert.InDelta(t, 1274.4, lp.Metrics.TotalDistributed, 1e-6)
	assertConservation(t, result, input)
}

func TestIRRWaterfall_ZeroFinalPromoteDegeneratesToProRata(t *testing.T) {
	structure := gpLpStructure(0.10, 0.90, partnership.MethodWaterfall, &partnership.Promote{
		Type:          partnership.PromoteIRRWaterfall,
		PreferredRate: 0.08,
		FinalPromote:  0.0,
	})
	input := monthsSeries(1000, 2000, 12)

	result, err := Distribute(structure, input)
	require.NoError(t, err)

	gp := result.PartnerByName("Sponsor")
	require.NotNil(t, gp)
	assert.InDelta(t, 200.0, gp.Metrics.TotalDistributed, 1e-6)
}

func TestIRRWaterfall_NoPromoteBeforeCapitalReturned(t *testing.T) {
	// Distributions never exceed invested capital: everything stays in the
	// return-of-capital tier and the GP receives exactly its share.
	structure := gpLpStructure(0.10, 0.90, partnership.MethodWaterfall, &partnership.Promote{
		Type:          partnership.PromoteIRRWaterfall,
		PreferredRate: 0.08,
		FinalPromote:  0.20,
	})
	input := series(-1000, 300, 400)

	result, err := Distribute(structure, input)
	require.NoError(t, err)

	gp := result.PartnerByName("Sponsor")
	require.NotNil(t, gp)
	assert.InDelta(t, 30.0, gp.Flows.Amounts[1], 1e-9)
	assert.InDelta(t, 40.0, gp.Flows.Amounts[2], 1e-9)
}

func TestIRRWaterfall_StagedInvestmentsCompoundIndividually(t *testing.T) {
	// Two investments at different dates: each dollar compounds from its own
	// investment period to the final period. 12 months for the first 1000,
	// 6 months for the second: threshold = 1000*1.08 + 1000*1.08^0.5.
	structure := gpLpStructure(0.10, 0.90, partnership.MethodWaterfall, &partnership.Promote{
		Type:          partnership.PromoteIRRWaterfall,
		PreferredRate: 0.08,
		FinalPromote:  0.20,
	})
	amounts := make([]float64, 13)
	amounts[0] = -1000
	amounts[6] = -1000
	amounts[12] = 2200
	input := series(amounts...)

	result, err := Distribute(structure, input)
	require.NoError(t, err)

	// Threshold ~= 1080 + 1039.23 = 2119.23; promote applies to ~80.77 only.
	gp := result.PartnerByName("Sponsor")
	require.NotNil(t, gp)
	promoteBase := 2200.0 - 2119.2304845413264
	expected := 2119.2304845413264*0.10 + promoteBase*0.20 + promoteBase*0.80*0.10
	assert.InDelta(t, expected, gp.Metrics.TotalDistributed, 1e-6)
}

func TestEMWaterfall_PeriodSpansMultipleTiers(t *testing.T) {
	// Invest 1000. Tiers: 1.5x at 10%, 2.0x at 20%, final 30%, so cumulative
	// thresholds are 1000 / 1500 / 2000. Distributions 800, 900, 600:
	//   p1: 800 in tier 0                      -> GP 80
	//   p2: 200 t0 + 500 t1 + 200 t2           -> GP 20 + (50+45) + (40+16) = 171
	//   p3: 300 t2 + 300 final                 -> GP (60+24) + (90+21) = 195
	structure := gpLpStructure(0.10, 0.90, partnership.MethodWaterfall, &partnership.Promote{
		Type: partnership.PromoteEMWaterfall,
		Tiers: []partnership.Tier{
			{Hurdle: 1.5, Promote: 0.10},
			{Hurdle: 2.0, Promote: 0.20},
		},
		FinalPromote: 0.30,
	})
	input := series(-1000, 800, 900, 600)

	result, err := Distribute(structure, input)
	require.NoError(t, err)

	gp := result.PartnerByName("Sponsor")
	require.NotNil(t, gp)
	assert.InDelta(t, 80.0, gp.Flows.Amounts[1], 1e-6)
	assert.InDelta(t, 171.0, gp.Flows.Amounts[2], 1e-6)
	assert.InDelta(t, 195.0, gp.Flows.Amounts[3], 1e-6)
	assert.InDelta(t, 446.0, gp.Metrics.TotalDistributed, 1e-6)

	assertConservation(t, result, input)
}

func TestEMWaterfall_MonotonicTierFilling(t *testing.T) {
	// Drip distributions: the promote must not appear before cumulative
	// distributions cross the 1.5x threshold at 1500.
	structure := gpLpStructure(0.10, 0.90, partnership.MethodWaterfall, &partnership.Promote{
		Type:         partnership.PromoteEMWaterfall,
		Tiers:        []partnership.Tier{{Hurdle: 1.5, Promote: 0.50}},
		FinalPromote: 0.50,
	})
	input := series(-1000, 500, 500, 500, 500)

	result, err := Distribute(structure, input)
	require.NoError(t, err)

	gp := result.PartnerByName("Sponsor")
	require.NotNil(t, gp)
	// Periods 1-3 fill capital + the 1.5x tier at 0% promote.
	assert.InDelta(t, 50.0, gp.Flows.Amounts[1], 1e-6)
	assert.InDelta(t, 50.0, gp.Flows.Amounts[2], 1e-6)
	assert.InDelta(t, 50.0, gp.Flows.Amounts[3], 1e-6)
	// Period 4 is entirely above the threshold: 50% promote.
	assert.InDelta(t, 500*0.5+500*0.5*0.1, gp.Flows.Amounts[4], 1e-6)
}

func TestIRRWaterfall_CompoundingOverflowIsNumericalFailure(t *testing.T) {
	structure := gpLpStructure(0.10, 0.90, partnership.MethodWaterfall, &partnership.Promote{
		Type:          partnership.PromoteIRRWaterfall,
		PreferredRate: 1e200,
		FinalPromote:  0.20,
	})
	input := monthsSeries(1000, 5000, 24)

	result, err := Distribute(structure, input)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrNumerical)
}
