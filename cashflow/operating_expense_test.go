package cashflow

import (
	"testing"
	"time"

	"performa/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperatingExpenseModel_CombinesFixedAndPctOfRevenue(t *testing.T) {
	tl, err := model.NewTimeline(model.YearMonth{Year: 2025, Month: time.January}, 3)
	require.NoError(t, err)

	grossLease := model.NewSeries(tl)
	grossLease.Set(tl.Start(), 10000)
	miscIncome := model.NewSeries(tl)
	miscIncome.Set(tl.Start(), 500)

	ctx := Context{
		Timeline: tl,
		Outputs: map[string]map[string]*model.CashFlowSeries{
			leaseRevenueModelID: {"gross_lease": grossLease},
			miscIncomeModelID:   {"misc_income": miscIncome},
		},
	}

	m := &OperatingExpenseModel{
		Asset: model.Asset{OpExFixedMonthly: 1000, OpExPctOfRevenue: 0.1},
	}
	postings, err := m.Compute(ctx)
	require.NoError(t, err)
	require.Len(t, postings, 1)

	// revenue = 10000 + 500 = 10500; opex = -(1000 + 10500*0.1) = -2050
	assert.InDelta(t, -2050, postings[0].Series.At(tl.Start()), 1e-9)
}

func TestOperatingExpenseModel_SkipsMonthsDuringConstruction(t *testing.T) {
	tl, err := model.NewTimeline(model.YearMonth{Year: 2025, Month: time.January}, 3)
	require.NoError(t, err)

	m := &OperatingExpenseModel{
		Asset: model.Asset{OpExFixedMonthly: 1000, ConstructionMonths: 2},
	}
	postings, err := m.Compute(Context{Timeline: tl, Outputs: map[string]map[string]*model.CashFlowSeries{}})
	require.NoError(t, err)

	months := tl.Months()
	assert.Equal(t, 0.0, postings[0].Series.At(months[0]))
	assert.Equal(t, 0.0, postings[0].Series.At(months[1]))
	assert.InDelta(t, -1000, postings[0].Series.At(months[2]), 1e-9)
}

func TestOperatingExpenseModel_DependsOnLeaseAndMiscIncome(t *testing.T) {
	m := &OperatingExpenseModel{}
	assert.Equal(t, []string{leaseRevenueModelID, miscIncomeModelID}, m.Dependencies())
}
