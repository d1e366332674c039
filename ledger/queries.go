package ledger

import (
	"performa/internal/apperrors"
	"performa/model"
)

// Queries wraps a Ledger with the canonical aggregations of spec.md §4.2.
// Every method here is defined purely as a filter on flow_purpose plus
// optional category/subcategory constraints — never by arithmetic across
// other queries. That is the invariant that rules out the double-counting
// class of bug the specification calls out explicitly; do not "optimize" a
// query by composing two other queries' results.
type Queries struct {
	l *Ledger
}

// NewQueries wraps l.
func NewQueries(l *Ledger) *Queries {
	return &Queries{l: l}
}

func (q *Queries) seriesFrom(records []model.TransactionRecord) *model.CashFlowSeries {
	points := make(map[model.YearMonth]float64, len(records))
	for _, r := range records {
		points[r.YearMonth()] += r.Amount
	}
	return model.NewSeriesFromPoints(q.l.Timeline(), points)
}

func inSet(sub model.Subcategory, set ...model.Subcategory) bool {
	for _, s := range set {
		if sub == s {
			return true
		}
	}
	return false
}

// GrossRevenue: purpose=Operating, category=Revenue, sub in {Lease, Misc, Recovery}.
func (q *Queries) GrossRevenue() *model.CashFlowSeries {
	return q.seriesFrom(q.l.Filter(func(r model.TransactionRecord) bool {
		return r.FlowPurpose == model.PurposeOperating &&
			r.Category == model.CategoryRevenue &&
			inSet(r.Subcategory, model.SubLease, model.SubMiscIncome, model.SubRecovery)
	}))
}

// OpEx: purpose=Operating, category=Expense, sub=OpEx.
func (q *Queries) OpEx() *model.CashFlowSeries {
	return q.seriesFrom(q.l.Filter(func(r model.TransactionRecord) bool {
		return r.FlowPurpose == model.PurposeOperating &&
			r.Category == model.CategoryExpense &&
			r.Subcategory == model.SubOpEx
	}))
}

// NOI: every Operating-purpose posting, signed.
func (q *Queries) NOI() *model.CashFlowSeries {
	return q.seriesFrom(q.l.Filter(func(r model.TransactionRecord) bool {
		return r.FlowPurpose == model.PurposeOperating
	}))
}

// OperationalCashFlow is identical to NOI absent a recurring capex line
// distinct from OpEx (spec.md §4.2).
func (q *Queries) OperationalCashFlow() *model.CashFlowSeries {
	return q.NOI()
}

// CapitalUses: purpose=CapitalUse (includes capitalized interest).
func (q *Queries) CapitalUses() *model.CashFlowSeries {
	return q.seriesFrom(q.l.Filter(func(r model.TransactionRecord) bool {
		return r.FlowPurpose == model.PurposeCapitalUse
	}))
}

// CapitalSources: purpose=CapitalSource.
func (q *Queries) CapitalSources() *model.CashFlowSeries {
	return q.seriesFrom(q.l.Filter(func(r model.TransactionRecord) bool {
		return r.FlowPurpose == model.PurposeCapitalSource
	}))
}

// DebtDraws: category=Financing, sub in {Loan Proceeds, Refinancing Proceeds}.
func (q *Queries) DebtDraws() *model.CashFlowSeries {
	return q.seriesFrom(q.l.Filter(func(r model.TransactionRecord) bool {
		return r.Category == model.CategoryFinancing &&
			inSet(r.Subcategory, model.SubLoanProceeds, model.SubRefinanceProceeds)
	}))
}

// DebtService: category=Financing, sub in {Interest Payment, Principal
// Payment, Refinancing Payoff, Prepayment}.
func (q *Queries) DebtService() *model.CashFlowSeries {
	return q.seriesFrom(q.l.Filter(func(r model.TransactionRecord) bool {
		return r.Category == model.CategoryFinancing &&
			inSet(r.Subcategory, model.SubInterestPayment, model.SubPrincipalPayment,
				model.SubRefinancePayoff, model.SubPrepayment)
	}))
}

// EquityContributions: sub=Equity Contribution (deal-view sign, positive).
func (q *Queries) EquityContributions() *model.CashFlowSeries {
	return q.seriesFrom(q.l.Filter(func(r model.TransactionRecord) bool {
		return r.Subcategory == model.SubEquityContribution
	}))
}

// EquityDistributions: sub in {Equity Distribution, Preferred Return,
// Promote} (deal-view sign, negative).
func (q *Queries) EquityDistributions() *model.CashFlowSeries {
	return q.seriesFrom(q.l.Filter(func(r model.TransactionRecord) bool {
		return inSet(r.Subcategory, model.SubEquityDistribution, model.SubPreferredReturn, model.SubPromote)
	}))
}

// EquityPartnerFlows is the union of EquityContributions and
// EquityDistributions.
func (q *Queries) EquityPartnerFlows() *model.CashFlowSeries {
	return q.seriesFrom(q.l.Filter(func(r model.TransactionRecord) bool {
		return r.Subcategory == model.SubEquityContribution ||
			inSet(r.Subcategory, model.SubEquityDistribution, model.SubPreferredReturn, model.SubPromote)
	}))
}

// ProjectCashFlow: purpose in {Operating, CapitalUse} union (CapitalSource
// with sub=Sale) — the unlevered view.
func (q *Queries) ProjectCashFlow() *model.CashFlowSeries {
	return q.seriesFrom(q.l.Filter(func(r model.TransactionRecord) bool {
		if r.FlowPurpose == model.PurposeOperating || r.FlowPurpose == model.PurposeCapitalUse {
			return true
		}
		return r.FlowPurpose == model.PurposeCapitalSource && r.Subcategory == model.SubSale
	}))
}

// SweepDeposits: sub=Cash Sweep Deposit.
func (q *Queries) SweepDeposits() *model.CashFlowSeries {
	return q.seriesFrom(q.l.Filter(func(r model.TransactionRecord) bool {
		return r.Subcategory == model.SubSweepDeposit
	}))
}

// SweepReleases: sub=Cash Sweep Release.
func (q *Queries) SweepReleases() *model.CashFlowSeries {
	return q.seriesFrom(q.l.Filter(func(r model.TransactionRecord) bool {
		return r.Subcategory == model.SubSweepRelease
	}))
}

// SweepPrepayments: sub=Sweep Prepayment.
func (q *Queries) SweepPrepayments() *model.CashFlowSeries {
	return q.seriesFrom(q.l.Filter(func(r model.TransactionRecord) bool {
		return r.Subcategory == model.SubSweepPrepayment
	}))
}

// LeveredCashFlow is the investor-perspective presentation series: the sign
// flip of EquityPartnerFlows. This is the ONLY correct way to derive it —
// never project_cf + debt_draws + debt_service (spec.md §4.2's forbidden
// pattern; it double-counts whenever LTC != 100% or a refinancing occurs).
func (q *Queries) LeveredCashFlow() *model.CashFlowSeries {
	return q.EquityPartnerFlows().Negate()
}

// EquityCashFlow is an alias of LeveredCashFlow, exactly equal.
func (q *Queries) EquityCashFlow() *model.CashFlowSeries {
	return q.LeveredCashFlow()
}

// ExportCSV renders every committed record on the wrapped ledger in the
// spec.md §6.6 column order.
func (q *Queries) ExportCSV() string {
	return ExportCSV(q.l.Snapshot())
}

// ByName dispatches a canonical query by its spec.md §4.2 snake_case name,
// the lookup the HTTP facade's GET /deals/:id/query/:expr endpoint uses so
// callers never need compiled Go to reach these aggregations.
func (q *Queries) ByName(name string) (*model.CashFlowSeries, error) {
	switch name {
	case "gross_revenue":
		return q.GrossRevenue(), nil
	case "operating_expense", "opex":
		return q.OpEx(), nil
	case "noi":
		return q.NOI(), nil
	case "operational_cash_flow":
		return q.OperationalCashFlow(), nil
	case "capital_uses":
		return q.CapitalUses(), nil
	case "capital_sources":
		return q.CapitalSources(), nil
	case "debt_draws":
		return q.DebtDraws(), nil
	case "debt_service":
		return q.DebtService(), nil
	case "equity_contributions":
		return q.EquityContributions(), nil
	case "equity_distributions":
		return q.EquityDistributions(), nil
	case "equity_partner_flows":
		return q.EquityPartnerFlows(), nil
	case "project_cash_flow":
		return q.ProjectCashFlow(), nil
	case "sweep_deposits":
		return q.SweepDeposits(), nil
	case "sweep_releases":
		return q.SweepReleases(), nil
	case "sweep_prepayments":
		return q.SweepPrepayments(), nil
	case "levered_cash_flow":
		return q.LeveredCashFlow(), nil
	case "equity_cash_flow":
		return q.EquityCashFlow(), nil
	default:
		return nil, apperrors.Newf(apperrors.KindQuery, "unknown query %q", name)
	}
}
