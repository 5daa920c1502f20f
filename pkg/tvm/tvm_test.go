package tvm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIRR_SimpleOneYearReturn(t *testing.T) {
	// 1000 invested, 1100 back a year later: IRR ~10%
	flows := []CashFlow{
		{Date: date(2021, time.January, 1), Amount: -1000},
		{Date: date(2022, time.January, 1), Amount: 1100},
	}

	irr := IRR(flows)
	require.NotNil(t, irr)
	assert.InDelta(t, 0.10, *irr, 0.005)
}

func TestIRR_MonthlySeries(t *testing.T) {
	// Invest 1200, receive 110/month for 12 months. Positive IRR well above 10%.
	start := date(2023, time.March, 1)
	flows := []CashFlow{{Date: start, Amount: -1200}}
	for i := 1; i <= 12; i++ {
		flows = append(flows, CashFlow{Date: start.AddDate(0, i, 0), Amount: 110})
	}

	irr := IRR(flows)
	require.NotNil(t, irr)
	assert.Greater(t, *irr, 0.10)
	assert.Less(t, *irr, 0.50)
}

func TestIRR_NegativeReturn(t *testing.T) {
	// 1000 in, 800 out a year later: IRR ~-20%
	flows := []CashFlow{
		{Date: date(2021, time.January, 1), Amount: -1000},
		{Date: date(2022, time.January, 1), Amount: 800},
	}

	irr := IRR(flows)
	require.NotNil(t, irr)
	assert.InDelta(t, -0.20, *irr, 0.005)
}

func TestIRR_UndefinedCases(t *testing.T) {
	tests := []struct {
		name  string
		flows []CashFlow
	}{
		{"empty series", nil},
		{"all positive", []CashFlow{
			{Date: date(2021, time.January, 1), Amount: 100},
			{Date: date(2021, time.February, 1), Amount: 200},
		}},
		{"all negative", []CashFlow{
			{Date: date(2021, time.January, 1), Amount: -100},
			{Date: date(2021, time.February, 1), Amount: -200},
		}},
		{"single flow", []CashFlow{
			{Date: date(2021, time.January, 1), Amount: -100},
		}},
		{"zeros do not create a sign change", []CashFlow{
			{Date: date(2021, time.January, 1), Amount: -100},
			{Date: date(2021, time.February, 1), Amount: 0},
			{Date: date(2021, time.March, 1), Amount: -50},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, IRR(tt.flows))
		})
	}
}

func TestIRR_ZeroFlowsTolerated(t *testing.T) {
	flows := []CashFlow{
		{Date: date(2021, time.January, 1), Amount: -1000},
		{Date: date(2021, time.June, 1), Amount: 0},
		{Date: date(2022, time.January, 1), Amount: 1100},
	}

	irr := IRR(flows)
	require.NotNil(t, irr)
	assert.InDelta(t, 0.10, *irr, 0.005)
}

func TestIRR_Deterministic(t *testing.T) {
	flows := []CashFlow{
		{Date: date(2020, time.May, 1), Amount: -5000},
		{Date: date(2021, time.May, 1), Amount: 1200},
		{Date: date(2022, time.May, 1), Amount: 1200},
		{Date: date(2023, time.May, 1), Amount: 4800},
	}

	first := IRR(flows)
	second := IRR(flows)
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, *first, *second)
}

func TestNPV_ZeroRateIsPlainSum(t *testing.T) {
	flows := []CashFlow{
		{Date: date(2021, time.January, 1), Amount: -1000},
		{Date: date(2022, time.January, 1), Amount: 1300},
	}

	npv := NPV(flows, 0)
	require.NotNil(t, npv)
	assert.InDelta(t, 300.0, *npv, 1e-9)
}

func TestNPV_DiscountsLaterFlows(t *testing.T) {
	flows := []CashFlow{
		{Date: date(2021, time.January, 1), Amount: -1000},
		{Date: date(2022, time.January, 1), Amount: 1100},
	}

	npv := NPV(flows, 0.10)
	require.NotNil(t, npv)
	// Discounting 1100 at 10% over ~one year lands close to zero.
	assert.InDelta(t, 0.0, *npv, 1.0)
}

func TestNPV_UndefinedCases(t *testing.T) {
	flows := []CashFlow{{Date: date(2021, time.January, 1), Amount: 100}}

	assert.Nil(t, NPV(nil, 0.05))
	assert.Nil(t, NPV(flows, -1.0))
	assert.Nil(t, NPV(flows, -1.5))
}

func TestTerminalValue(t *testing.T) {
	value, err := TerminalValue(1000, 0.08, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1080.0, value, 1e-9)

	value, err = TerminalValue(1000, 0.08, 2)
	require.NoError(t, err)
	assert.InDelta(t, 1166.4, value, 1e-9)
}

func TestTerminalValue_Overflow(t *testing.T) {
	_, err := TerminalValue(1e300, 10.0, 1e6)
	assert.Error(t, err)
}

func TestEquityMultiple(t *testing.T) {
	jan := date(2021, time.January, 1)

	tests := []struct {
		name     string
		flows    []CashFlow
		expected *float64
	}{
		{
			name: "30 percent gain",
			flows: []CashFlow{
				{Date: jan, Amount: -1000},
				{Date: jan.AddDate(0, 2, 0), Amount: 1300},
			},
			expected: ptr(1.3),
		},
		{
			name: "total loss is zero not undefined",
			flows: []CashFlow{
				{Date: jan, Amount: -1000},
			},
			expected: ptr(0.0),
		},
		{
			name: "no investment is undefined",
			flows: []CashFlow{
				{Date: jan, Amount: 500},
			},
			expected: nil,
		},
		{
			name:     "empty series is undefined",
			flows:    nil,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := EquityMultiple(tt.flows)
			if tt.expected == nil {
				assert.Nil(t, result)
				return
			}
			require.NotNil(t, result)
			assert.InDelta(t, *tt.expected, *result, 1e-9)
		})
	}
}

func TestDSCR(t *testing.T) {
	tests := []struct {
		name        string
		noi         float64
		debtService float64
		expected    *float64
	}{
		{"standard coverage", 125000, 100000, ptr(1.25)},
		{"negative debt service uses magnitude", 125000, -100000, ptr(1.25)},
		{"no debt service with positive NOI", 50000, 0, ptr(NoDebtServiceDSCR)},
		{"no debt service with zero NOI", 0, 0, nil},
		{"no debt service with negative NOI", -5000, 0, nil},
		{"negative NOI", -50000, 100000, ptr(-0.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DSCR(tt.noi, tt.debtService)
			if tt.expected == nil {
				assert.Nil(t, result)
				return
			}
			require.NotNil(t, result)
			assert.InDelta(t, *tt.expected, *result, 1e-9)
		})
	}
}

func ptr(v float64) *float64 {
	return &v
}
