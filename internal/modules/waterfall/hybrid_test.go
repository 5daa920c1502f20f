package waterfall

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/dealflow/internal/modules/partnership"
)

// hybridLegs builds a deal where the two candidates disagree: the IRR leg
// promotes everything above an 8% pref, while the EM leg carries no promote
// until a 2.0x multiple that the payout never crosses.
func hybridLegs() (irr, em partnership.Promote) {
	irr = partnership.Promote{
		Type:          partnership.PromoteIRRWaterfall,
		PreferredRate: 0.08,
		FinalPromote:  0.20,
	}
	em = partnership.Promote{
		Type:         partnership.PromoteEMWaterfall,
		Tiers:        []partnership.Tier{{Hurdle: 2.0, Promote: 0.0}},
		FinalPromote: 0.20,
	}
	return irr, em
}

func hybridStructure(combine partnership.HybridCombine) partnership.Structure {
	irr, em := hybridLegs()
	return gpLpStructure(0.0, 1.0, partnership.MethodWaterfall, &partnership.Promote{
		Type:    partnership.PromoteHybrid,
		Combine: combine,
		IRR:     &irr,
		EM:      &em,
	})
}

func TestHybrid_MinSelectsLPFavorableCandidate(t *testing.T) {
	input := monthsSeries(1000, 2000, 12)

	result, err := Distribute(hybridStructure(partnership.CombineMin), input)
	require.NoError(t, err)

	// The EM candidate pays the LP all 2000; the IRR candidate diverts a
	// 184 promote to the GP. Under min the LP floor wins.
	assert.InDelta(t, 2000.0, result.TotalDistributedTo(partnership.KindLP), 1e-6)
	assert.InDelta(t, 0.0, result.TotalDistributedTo(partnership.KindGP), 1e-6)
}

func TestHybrid_MaxSelectsGPFavorableCandidate(t *testing.T) {
	input := monthsSeries(1000, 2000, 12)

	result, err := Distribute(hybridStructure(partnership.CombineMax), input)
	require.NoError(t, err)

	assert.InDelta(t, 184.0, result.TotalDistributedTo(partnership.KindGP), 1e-6)
	assert.InDelta(t, 1816.0, result.TotalDistributedTo(partnership.KindLP), 1e-6)
}

func TestHybrid_SelectionIsAllOrNothing(t *testing.T) {
	// The selected result must be one complete candidate, not a blend.
	input := monthsSeries(1000, 2000, 12)

	irr, em := hybridLegs()
	emOnly, err := Distribute(gpLpStructure(0.0, 1.0, partnership.MethodWaterfall, &em), input)
	require.NoError(t, err)
	irrOnly, err := Distribute(gpLpStructure(0.0, 1.0, partnership.MethodWaterfall, &irr), input)
	require.NoError(t, err)

	minResult, err := Distribute(hybridStructure(partnership.CombineMin), input)
	require.NoError(t, err)
	maxResult, err := Distribute(hybridStructure(partnership.CombineMax), input)
	require.NoError(t, err)

	for i := range minResult.Partners {
		assert.Equal(t, emOnly.Partners[i].Flows, minResult.Partners[i].Flows)
		assert.Equal(t, irrOnly.Partners[i].Flows, maxResult.Partners[i].Flows)
	}
}

func TestHybrid_SelectionCorrectness(t *testing.T) {
	// Property: under min the selected candidate's LP total is >= the
	// rejected one's; under max the same holds for GP totals.
	inputs := []struct {
		name        string
		distributed float64
	}{
		{"modest payout", 1200},
		{"pref boundary", 1080},
		{"large payout", 3000},
	}

	for _, tt := range inputs {
		t.Run(tt.name, func(t *testing.T) {
			input := monthsSeries(1000, tt.distributed, 12)

			irr, em := hybridLegs()
			irrOnly, err := Distribute(gpLpStructure(0.0, 1.0, partnership.MethodWaterfall, &irr), input)
			require.NoError(t, err)
			emOnly, err := Distribute(gpLpStructure(0.0, 1.0, partnership.MethodWaterfall, &em), input)
			require.NoError(t, err)

			minResult, err := Distribute(hybridStructure(partnership.CombineMin), input)
			require.NoError(t, err)
			maxResult, err := Distribute(hybridStructure(partnership.CombineMax), input)
			require.NoError(t, err)

			maxLP := irrOnly.TotalDistributedTo(partnership.KindLP)
			if emLP := emOnly.TotalDistributedTo(partnership.KindLP); emLP > maxLP {
				maxLP = emLP
			}
			maxGP := irrOnly.TotalDistributedTo(partnership.KindGP)
			if emGP := emOnly.TotalDistributedTo(partnership.KindGP); emGP > maxGP {
				maxGP = emGP
			}

			assert.InDelta(t, maxLP, minResult.TotalDistributedTo(partnership.KindLP), 1e-9)
			assert.InDelta(t, maxGP, maxResult.TotalDistributedTo(partnership.KindGP), 1e-9)
		})
	}
}
