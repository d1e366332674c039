package cashflow

import (
	"math"

	"performa/model"

	"github.com/google/uuid"
)

// LeaseRevenueModel posts gross lease revenue net of vacancy and credit
// loss for one asset. Its internal escalation/occupancy math is a
// deliberately simple reference implementation — spec.md treats the actual
// property-type math as opaque to the orchestrator (§1 Non-goals).
type LeaseRevenueModel struct {
	AssetID uuid.UUID
	DealID  uuid.UUID
	Asset   model.Asset
}

const leaseRevenueModelID = "LeaseRevenueModel"

func (m *LeaseRevenueModel) ID() string             { return leaseRevenueModelID }
func (m *LeaseRevenueModel) Dependencies() []string  { return nil }
func (m *LeaseRevenueModel) Pure() bool              { return true }

// Compute posts base lease revenue (escalated annually, ramped by
// occupancy) along with its vacancy-loss and credit-loss contra entries.
func (m *LeaseRevenueModel) Compute(ctx Context) ([]Posting, error) {
	months := ctx.Timeline.Months()
	gross := model.NewSeries(ctx.Timeline)
	vacancy := model.NewSeries(ctx.Timeline)
	credit := model.NewSeries(ctx.Timeline)

	for i, ym := range months {
		occupancy := m.occupancyAt(i)
		escalated := m.Asset.MonthlyBaseRent * math.Pow(1+m.Asset.AnnualEscalationPct, float64(i)/12.0)
		base := escalated * occupancy

		gross.Set(ym, base)
		vacancy.Set(ym, -base*m.Asset.VacancyLossPct)
		credit.Set(ym, -base*m.Asset.CreditLossPct)
	}

	meta := func(sub model.Subcategory) model.PostingMeta {
		return model.PostingMeta{
			Category:    model.CategoryRevenue,
			Subcategory: sub,
			ItemName:    "Lease Revenue",
			SourceID:    m.AssetID,
			AssetID:     m.AssetID,
			DealID:      m.DealID,
		}
	}

	return []Posting{
		{Name: "gross_lease", Series: gross, Meta: meta(model.SubLease)},
		{Name: "vacancy_loss", Series: vacancy, Meta: meta(model.SubVacancyLoss)},
		{Name: "credit_loss", Series: credit, Meta: meta(model.SubCreditLoss)},
	}, nil
}

// occupancyAt ramps occupancy linearly to its stabilized level across a
// development project's construction and lease-up period, and holds the
// asset's steady-state occupancy otherwise.
func (m *LeaseRevenueModel) occupancyAt(monthIndex int) float64 {
	if m.Asset.Kind != model.AssetDevelopment || m.Asset.StabilizationMonth <= m.Asset.ConstructionMonths {
		return m.Asset.OccupancyPct
	}
	if monthIndex <= m.Asset.ConstructionMonths {
		return 0
	}
	if monthIndex >= m.Asset.StabilizationMonth {
		return m.Asset.OccupancyPct
	}
	rampLength := float64(m.Asset.StabilizationMonth - m.Asset.ConstructionMonths)
	progressed := float64(monthIndex - m.Asset.ConstructionMonths)
	return m.Asset.OccupancyPct * (progressed / rampLength)
}
