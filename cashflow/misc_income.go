package cashflow

import (
	"performa/model"

	"github.com/google/uuid"
)

// MiscIncomeModel posts flat monthly miscellaneous income and expense
// recovery income for one asset.
type MiscIncomeModel struct {
	AssetID uuid.UUID
	DealID  uuid.UUID
	Asset   model.Asset
}

const miscIncomeModelID = "MiscIncomeModel"

func (m *MiscIncomeModel) ID() string            { return miscIncomeModelID }
func (m *MiscIncomeModel) Dependencies() []string { return nil }
func (m *MiscIncomeModel) Pure() bool             { return true }

func (m *MiscIncomeModel) Compute(ctx Context) ([]Posting, error) {
	months := ctx.Timeline.Months()
	misc := model.NewSeries(ctx.Timeline)
	recovery := model.NewSeries(ctx.Timeline)

	for i, ym := range months {
		if i < m.Asset.ConstructionMonths {
			continue
		}
		misc.Set(ym, m.Asset.MiscIncomeMonthly)
		recovery.Set(ym, m.Asset.RecoveryMonthly)
	}

	meta := func(sub model.Subcategory) model.PostingMeta {
		return model.PostingMeta{
			Category:    model.CategoryRevenue,
			Subcategory: sub,
			ItemName:    "Misc / Recovery Income",
			SourceID:    m.AssetID,
			AssetID:     m.AssetID,
			DealID:      m.DealID,
		}
	}

	return []Posting{
		{Name: "misc_income", Series: misc, Meta: meta(model.SubMiscIncome)},
		{Name: "recovery_income", Series: recovery, Meta: meta(model.SubRecovery)},
	}, nil
}
