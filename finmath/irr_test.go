package finmath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthlyIRR_NoPositiveFlowReturnsZeroNotOK(t *testing.T) {
	rate, ok, err := MonthlyIRR([]float64{-100, -50, -10})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0.0, rate)
}

func TestMonthlyIRR_SimpleTwoPeriodCashflow(t *testing.T) {
	// -100 now, +110 next period => monthly IRR of exactly 10%.
	rate, ok, err := MonthlyIRR([]float64{-100, 110})
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 0.10, rate, 1e-6)
}

func TestMonthlyIRR_MultiPeriodConverges(t *testing.T) {
	cashflows := []float64{-100000, 2000, 2000, 2000, 2000, 2000, 110000}
	rate, ok, err := MonthlyIRR(cashflows)
	require.NoError(t, err)
	require.True(t, ok)

	// Validate the root: NPV at the solved rate should be ~zero.
	total := 0.0
	for i, cf := range cashflows {
		total += cf / math.Pow(1+rate, float64(i))
	}
	assert.InDelta(t, 0, total, 1e-4)
}

func TestMonthlyIRR_SingleTerminalInflowResolves(t *testing.T) {
	// One outflow and a single inflow twelve months later (monthly IRR
	// about 2.8%, reached from the rate=0.1 starting point) resolves.
	cashflows := []float64{-500000, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 700000}
	_, ok, err := MonthlyIRR(cashflows)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAnnualizeIRR_Compounded(t *testing.T) {
	annual := AnnualizeIRR(0.01, true)
	assert.InDelta(t, math.Pow(1.01, 12)-1, annual, 1e-9)
}

func TestAnnualizeIRR_Simple(t *testing.T) {
	annual := AnnualizeIRR(0.01, false)
	assert.InDelta(t, 0.12, annual, 1e-9)
}
