package analysis

import (
	"performa/finmath"
	"performa/internal/apperrors"
	"performa/ledger"
	"performa/model"
)

// PartnerResult is one partner's reported performance (spec.md §4.9 /
// §4.10).
type PartnerResult struct {
	Partner        model.Partner
	IRR            float64
	EquityMultiple float64
	Series         *model.CashFlowSeries
}

// DealResults is the facade spec.md §4.10 exposes to callers: unlevered,
// levered, and equity cash flow, their IRRs and equity multiple, each
// partner's results, and raw ledger query access for ad-hoc analytics.
type DealResults struct {
	Queries *ledger.Queries

	UnleveredCashFlow *model.CashFlowSeries
	LeveredCashFlow   *model.CashFlowSeries
	EquityCashFlow    *model.CashFlowSeries

	UnleveredIRR   float64
	LeveredIRR     float64
	EquityMultiple float64

	PerPartner []PartnerResult
}

// BuildDealResults computes every DealResults field from the sealed
// ledger's queries.
func BuildDealResults(l *ledger.Ledger, deal model.Deal, settings model.Settings) (*DealResults, error) {
	q := ledger.NewQueries(l)
	compounded := settings.IRRAnnualizationBasis == model.IRRCompounded

	unlevered := q.ProjectCashFlow()
	levered := q.LeveredCashFlow()
	equity := q.EquityCashFlow()

	unleveredIRR, err := annualizedIRR(unlevered.Values, compounded)
	if err != nil {
		return nil, err
	}
	leveredIRR, err := annualizedIRR(levered.Values, compounded)
	if err != nil {
		return nil, err
	}

	contributions := q.EquityContributions().Sum()
	distributions := -q.EquityDistributions().Sum()
	equityMultiple := 0.0
	if contributions > 0 {
		equityMultiple = distributions / contributions
	}

	results := &DealResults{
		Queries:           q,
		UnleveredCashFlow: unlevered,
		LeveredCashFlow:   levered,
		EquityCashFlow:    equity,
		UnleveredIRR:      unleveredIRR,
		LeveredIRR:        leveredIRR,
		EquityMultiple:    equityMultiple,
	}

	for _, partner := range deal.Partnership.Partners {
		series := partnerSeries(l, partner)
		irr, err := annualizedIRR(series.Values, compounded)
		if err != nil {
			return nil, err
		}
		contrib := sumIf(series.Values, func(v float64) bool { return v < 0 })
		distrib := sumIf(series.Values, func(v float64) bool { return v > 0 })
		em := 0.0
		if contrib < 0 {
			em = distrib / -contrib
		}
		results.PerPartner = append(results.PerPartner, PartnerResult{
			Partner:        partner,
			IRR:            irr,
			EquityMultiple: em,
			Series:         series,
		})
	}

	return results, nil
}

func annualizedIRR(cashflows []float64, compounded bool) (float64, error) {
	monthly, ok, err := finmath.MonthlyIRR(cashflows)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return finmath.AnnualizeIRR(monthly, compounded), nil
}

// partnerSeries builds partner p's investor-perspective cash flow:
// contributions negative, distributions positive, filtered by entity_id
// (spec.md §4.9).
func partnerSeries(l *ledger.Ledger, p model.Partner) *model.CashFlowSeries {
	records := l.Filter(func(r model.TransactionRecord) bool {
		return r.EntityID == p.ID
	})

	// Investor perspective is the sign flip of the deal-perspective ledger
	// amount for both contributions and distributions (spec.md §3.7).
	points := make(map[model.YearMonth]float64, len(records))
	for _, r := range records {
		points[r.YearMonth()] += -r.Amount
	}
	return model.NewSeriesFromPoints(l.Timeline(), points)
}

func sumIf(values []float64, pred func(float64) bool) float64 {
	var total float64
	for _, v := range values {
		if pred(v) {
			total += v
		}
	}
	return total
}

// Metric looks up a named scalar metric, matching the language-neutral
// DealResults.metric(name) shape of spec.md §6.
func (d *DealResults) Metric(name string) (float64, error) {
	switch name {
	case "unlevered_irr":
		return d.UnleveredIRR, nil
	case "levered_irr":
		return d.LeveredIRR, nil
	case "equity_multiple":
		return d.EquityMultiple, nil
	default:
		return 0, apperrors.Newf(apperrors.KindQuery, "unknown metric %q", name)
	}
}

// Partner looks up one partner's result by ID, matching
// DealResults.partner(id).
func (d *DealResults) Partner(id string) (*PartnerResult, error) {
	for i := range d.PerPartner {
		if d.PerPartner[i].Partner.ID.String() == id {
			return &d.PerPartner[i], nil
		}
	}
	return nil, apperrors.Newf(apperrors.KindQuery, "unknown partner %q", id)
}
