package cashflow

import (
	"performa/model"

	"github.com/google/uuid"
)

// OperatingExpenseModel posts monthly operating expenses as a fixed amount
// plus a percentage of the asset's gross revenue. It depends on
// LeaseRevenueModel and MiscIncomeModel, so the orchestrator places it in a
// later pass than both.
type OperatingExpenseModel struct {
	AssetID uuid.UUID
	DealID  uuid.UUID
	Asset   model.Asset
}

const operatingExpenseModelID = "OperatingExpenseModel"

func (m *OperatingExpenseModel) ID() string { return operatingExpenseModelID }

func (m *OperatingExpenseModel) Dependencies() []string {
	return []string{leaseRevenueModelID, miscIncomeModelID}
}

func (m *OperatingExpenseModel) Pure() bool { return true }

func (m *OperatingExpenseModel) Compute(ctx Context) ([]Posting, error) {
	grossLease, _ := ctx.Output(leaseRevenueModelID, "gross_lease")
	miscIncome, _ := ctx.Output(miscIncomeModelID, "misc_income")
	recoveryIncome, _ := ctx.Output(miscIncomeModelID, "recovery_income")

	revenue := model.NewSeries(ctx.Timeline)
	if grossLease != nil {
		revenue = revenue.Add(grossLease)
	}
	if miscIncome != nil {
		revenue = revenue.Add(miscIncome)
	}
	if recoveryIncome != nil {
		revenue = revenue.Add(recoveryIncome)
	}

	opex := model.NewSeries(ctx.Timeline)
	months := ctx.Timeline.Months()
	for i, ym := range months {
		if i < m.Asset.ConstructionMonths {
			continue
		}
		amount := m.Asset.OpExFixedMonthly + revenue.At(ym)*m.Asset.OpExPctOfRevenue
		opex.Set(ym, -amount)
	}

	return []Posting{
		{
			Name:   "operating_expense",
			Series: opex,
			Meta: model.PostingMeta{
				Category:    model.CategoryExpense,
				Subcategory: model.SubOpEx,
				ItemName:    "Operating Expense",
				SourceID:    m.AssetID,
				AssetID:     m.AssetID,
				DealID:      m.DealID,
			},
		},
	}, nil
}
