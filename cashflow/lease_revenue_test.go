package cashflow

import (
	"testing"
	"time"

	"performa/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leaseTimeline(t *testing.T) model.Timeline {
	t.Helper()
	tl, err := model.NewTimeline(model.YearMonth{Year: 2025, Month: time.January}, 24)
	require.NoError(t, err)
	return tl
}

func TestLeaseRevenueModel_StabilizedAssetAppliesFlatOccupancy(t *testing.T) {
	tl := leaseTimeline(t)
	m := &LeaseRevenueModel{
		AssetID: uuid.New(),
		Asset: model.Asset{
			Kind:               model.AssetOffice,
			MonthlyBaseRent:    10000,
			OccupancyPct:       0.9,
			VacancyLossPct:     0.05,
			CreditLossPct:      0.02,
		},
	}
	postings, err := m.Compute(Context{Timeline: tl})
	require.NoError(t, err)
	require.Len(t, postings, 3)

	gross := postings[0].Series
	assert.InDelta(t, 9000, gross.At(tl.Start()), 1e-9) // 10000 * 0.9, no escalation in month 0

	vacancy := postings[1].Series
	assert.InDelta(t, -9000*0.05, vacancy.At(tl.Start()), 1e-9)

	credit := postings[2].Series
	assert.InDelta(t, -9000*0.02, credit.At(tl.Start()), 1e-9)
}

func TestLeaseRevenueModel_EscalatesAnnually(t *testing.T) {
	tl := leaseTimeline(t)
	m := &LeaseRevenueModel{
		Asset: model.Asset{
			Kind:                model.AssetOffice,
			MonthlyBaseRent:     10000,
			OccupancyPct:        1.0,
			AnnualEscalationPct: 0.03,
		},
	}
	postings, err := m.Compute(Context{Timeline: tl})
	require.NoError(t, err)

	gross := postings[0].Series
	assert.InDelta(t, 10000, gross.At(tl.Start()), 1e-9)
	assert.InDelta(t, 10300, gross.At(tl.Start().AddMonths(12)), 1e-6)
}

func TestLeaseRevenueModel_DevelopmentProjectRampsOccupancyDuringLeaseUp(t *testing.T) {
	tl := leaseTimeline(t)
	m := &LeaseRevenueModel{
		Asset: model.Asset{
			Kind:               model.AssetDevelopment,
			MonthlyBaseRent:    10000,
			OccupancyPct:       0.9,
			ConstructionMonths: 6,
			StabilizationMonth: 12,
		},
	}
	postings, err := m.Compute(Context{Timeline: tl})
	require.NoError(t, err)
	gross := postings[0].Series

	months := tl.Months()
	// During construction, occupancy is zero => no revenue.
	assert.Equal(t, 0.0, gross.At(months[0]))
	assert.Equal(t, 0.0, gross.At(months[6]))
	// Halfway through lease-up (month 9 of 6..12), occupancy is 0.45, half of 0.9.
	assert.InDelta(t, 10000*0.9*0.5, gross.At(months[9]), 10)
	// At and after stabilization, full occupancy.
	assert.InDelta(t, 10000*0.9, gross.At(months[12]), 1e-6)
	assert.InDelta(t, 10000*0.9, gross.At(months[23]), 1)
}

func TestLeaseRevenueModel_IDHasNoDependencies(t *testing.T) {
	m := &LeaseRevenueModel{}
	assert.Equal(t, "LeaseRevenueModel", m.ID())
	assert.Nil(t, m.Dependencies())
	assert.True(t, m.Pure())
}
