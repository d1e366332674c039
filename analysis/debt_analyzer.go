package analysis

import (
	"performa/ledger"
	"performa/model"
)

// constructionState tracks the running balance of one Construction
// facility across the month-by-month loop DebtAnalyzer drives.
type constructionState struct {
	facility     model.Facility
	balance      float64
	drawnToDate  float64
	sweepTrapped float64
}

// permanentState tracks one Permanent facility once it has been sized at
// its refinance month.
type permanentState struct {
	facility       model.Facility
	balance        float64
	monthlyPayment float64
	originated     bool
}

// DebtAnalyzer processes deal.Financing month by month: sizing and drawing
// construction facilities against their LTC caps, accruing and
// capitalizing interest, applying any cash-sweep covenant, refinancing into
// a permanent facility, amortizing it, and posting the exit payoff
// (spec.md §4.7). It owns the per-month equity/debt split decision via its
// embedded CashFlowEngine.
type DebtAnalyzer struct {
	Deal     model.Deal
	Timeline model.Timeline
	Settings model.Settings
	Engine   CashFlowEngine

	constructions []*constructionState
	permanents    []*permanentState

	remainingEquity float64
}

// NewDebtAnalyzer builds a DebtAnalyzer for deal, seeding remaining
// committed equity from the partnership's total committed capital.
func NewDebtAnalyzer(deal model.Deal, timeline model.Timeline, settings model.Settings) *DebtAnalyzer {
	d := &DebtAnalyzer{
		Deal:     deal,
		Timeline: timeline,
		Settings: settings,
		Engine:   CashFlowEngine{Priority: settings.FundingPriority},
	}
	for _, f := range deal.Financing {
		switch f.Kind {
		case model.FacilityConstruction:
			d.constructions = append(d.constructions, &constructionState{facility: f})
		case model.FacilityPermanent:
			d.permanents = append(d.permanents, &permanentState{facility: f})
		}
	}
	d.remainingEquity = totalCommittedCapital(deal.Partnership)
	return d
}

func totalCommittedCapital(p model.Partnership) float64 {
	var total float64
	for _, partner := range p.Partners {
		total += partner.CommittedCapital
	}
	return total
}

// Run executes the full debt + equity capital-stack loop over the
// timeline, posting every draw, interest accrual, sweep, refinance,
// amortization payment, and exit payoff directly to the ledger.
func (d *DebtAnalyzer) Run(l *ledger.Ledger, q *ledger.Queries, valuation *ValuationEngine, exitMonth int) error {
	months := d.Timeline.Months()

	for i, ym := range months {
		capitalUse := -q.CapitalUses().Values[i] // magnitude of this month's capital need
		if capitalUse > 0 {
			if err := d.fundMonth(l, q, i, ym, capitalUse); err != nil {
				return err
			}
		}

		if err := d.accrueConstructionInterest(l, ym, i); err != nil {
			return err
		}

		operCF := q.OperationalCashFlow().Values[i]
		if err := d.applySweeps(l, ym, i, operCF); err != nil {
			return err
		}

		for _, p := range d.permanents {
			if i == p.facility.Permanent.RefinanceMonth && !p.originated {
				if err := d.refinance(l, q, valuation, ym, i, p); err != nil {
					return err
				}
			} else if p.originated && p.balance > 0 && i != exitMonth {
				if err := d.amortize(l, ym, p); err != nil {
					return err
				}
			}
		}

		if i == exitMonth {
			if err := d.payoffAtExit(l, ym); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *DebtAnalyzer) fundMonth(l *ledger.Ledger, q *ledger.Queries, i int, ym model.YearMonth, need float64) error {
	capacity := d.totalConstructionCapacity(q, i)
	equity, debt := d.Engine.Split(need, d.remainingEquity, capacity)

	return l.Transaction(func() error {
		if equity > 0 {
			d.remainingEquity -= equity
			series := model.NewSeries(d.Timeline)
			series.Set(ym, equity)
			if err := l.AppendSeries(series, model.PostingMeta{
				Category:    model.CategoryFinancing,
				Subcategory: model.SubEquityContribution,
				ItemName:    "Equity Contribution",
				SourceID:    d.Deal.ID,
				AssetID:     d.Deal.Asset.ID,
				DealID:      d.Deal.ID,
			}); err != nil {
				return err
			}
		}
		if debt > 0 {
			if err := d.drawConstruction(l, q, i, ym, debt); err != nil {
				return err
			}
		}
		return nil
	})
}

// cumulativeCapitalUses sums the magnitude of capital_uses() postings from
// the timeline's start through uptoMonth inclusive — the "total project
// cost to date" figure spec.md §4.7.1 sizes LTC headroom against.
func (d *DebtAnalyzer) cumulativeCapitalUses(q *ledger.Queries, uptoMonth int) float64 {
	var cumulativeCost float64
	uses := q.CapitalUses().Values
	for i := 0; i <= uptoMonth; i++ {
		cumulativeCost += -uses[i]
	}
	return cumulativeCost
}

// totalConstructionCapacity sums each construction tranche's remaining LTC
// headroom, computed against the cumulative capital_uses() to date — the
// "total project cost" figure spec.md §4.7.1 sizes against.
func (d *DebtAnalyzer) totalConstructionCapacity(q *ledger.Queries, uptoMonth int) float64 {
	cumulativeCost := d.cumulativeCapitalUses(q, uptoMonth)

	var capacity float64
	for _, cs := range d.constructions {
		max := cs.facility.Construction.LTCThreshold * cumulativeCost
		headroom := max - cs.drawnToDate
		if headroom > 0 {
			capacity += headroom
		}
	}
	return capacity
}

// drawConstruction allocates amount across construction tranches in
// priority order (senior first), filling each one's remaining LTC
// headroom before spilling the remainder to the next tranche.
func (d *DebtAnalyzer) drawConstruction(l *ledger.Ledger, q *ledger.Queries, uptoMonth int, ym model.YearMonth, amount float64) error {
	cumulativeCost := d.cumulativeCapitalUses(q, uptoMonth)
	remaining := amount
	for _, cs := range d.constructions {
		if remaining <= 0 {
			break
		}
		headroom := cs.facility.Construction.LTCThreshold*cumulativeCost - cs.drawnToDate
		if headroom <= 0 {
			continue
		}
		draw := minFloat(remaining, headroom)
		cs.balance += draw
		cs.drawnToDate += draw
		remaining -= draw

		series := model.NewSeries(d.Timeline)
		series.Set(ym, draw)
		if err := l.AppendSeries(series, model.PostingMeta{
			Category:    model.CategoryFinancing,
			Subcategory: model.SubLoanProceeds,
			ItemName:    "Construction Draw: " + cs.facility.Name,
			SourceID:    cs.facility.ID,
			AssetID:     d.Deal.Asset.ID,
			DealID:      d.Deal.ID,
			EntityID:    cs.facility.ID,
			EntityType:  cs.facility.Name,
		}); err != nil {
			return err
		}

		if feeRate := cs.facility.Construction.OriginationFeeRate; feeRate > 0 {
			fee := draw * feeRate
			feeSeries := model.NewSeries(d.Timeline)
			feeSeries.Set(ym, -fee)
			if err := l.AppendSeries(feeSeries, model.PostingMeta{
				Category:    model.CategoryFinancing,
				Subcategory: model.SubOriginationFee,
				ItemName:    "Origination Fee: " + cs.facility.Name,
				SourceID:    cs.facility.ID,
				AssetID:     d.Deal.Asset.ID,
				DealID:      d.Deal.ID,
				EntityID:    cs.facility.ID,
				EntityType:  cs.facility.Name,
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

// accrueConstructionInterest implements the None/Simple/Scheduled methods
// of §4.7.1. Iterative is not implemented; its fixed-point convergence is
// unused by every reference scenario and left for a future revision.
func (d *DebtAnalyzer) accrueConstructionInterest(l *ledger.Ledger, ym model.YearMonth, monthIndex int) error {
	for _, cs := range d.constructions {
		terms := cs.facility.Construction
		var interest float64

		switch terms.InterestCapMethod {
		case model.InterestCapNone:
			continue
		case model.InterestCapSimple:
			if monthIndex != 0 {
				continue
			}
			interest = cs.balance * terms.SimpleReserveRate
		default: // Scheduled (canonical default) and Iterative (treated as Scheduled)
			interest = cs.balance * terms.RatePerAnnum / 12
		}

		if interest == 0 {
			continue
		}
		cs.balance += interest

		series := model.NewSeries(d.Timeline)
		series.Set(ym, -interest)
		if err := l.AppendSeries(series, model.PostingMeta{
			Category:    model.CategoryFinancing,
			Subcategory: model.SubInterestReserve,
			ItemName:    "Capitalized Interest: " + cs.facility.Name,
			SourceID:    cs.facility.ID,
			AssetID:     d.Deal.Asset.ID,
			DealID:      d.Deal.ID,
			EntityID:    cs.facility.ID,
			EntityType:  cs.facility.Name,
		}); err != nil {
			return err
		}
	}
	return nil
}

// applySweeps implements the TRAP/PREPAY covenant of §4.7.2.
func (d *DebtAnalyzer) applySweeps(l *ledger.Ledger, ym model.YearMonth, monthIndex int, operCF float64) error {
	for _, cs := range d.constructions {
		sweep := cs.facility.Construction.Sweep
		if !sweep.Enabled || monthIndex > sweep.EndMonth {
			continue
		}

		if operCF > 0 {
			series := model.NewSeries(d.Timeline)
			switch sweep.Mode {
			case model.SweepTrap:
				series.Set(ym, -operCF)
				cs.sweepTrapped += operCF
				if err := l.AppendSeries(series, sweepMeta(cs, d.Deal, model.SubSweepDeposit, "Cash Sweep Deposit")); err != nil {
					return err
				}
			case model.SweepPrepay:
				series.Set(ym, -operCF)
				cs.balance -= operCF
				if cs.balance < 0 {
					cs.balance = 0
				}
				if err := l.AppendSeries(series, sweepMeta(cs, d.Deal, model.SubSweepPrepayment, "Sweep Prepayment")); err != nil {
					return err
				}
			}
		}

		if monthIndex == sweep.EndMonth && sweep.Mode == model.SweepTrap && cs.sweepTrapped > 0 {
			release := model.NewSeries(d.Timeline)
			release.Set(ym, cs.sweepTrapped)
			if err := l.AppendSeries(release, sweepMeta(cs, d.Deal, model.SubSweepRelease, "Cash Sweep Release")); err != nil {
				return err
			}
			cs.sweepTrapped = 0
		}
	}
	return nil
}

func sweepMeta(cs *constructionState, deal model.Deal, sub model.Subcategory, item string) model.PostingMeta {
	return model.PostingMeta{
		Category:    model.CategoryFinancing,
		Subcategory: sub,
		ItemName:    item + ": " + cs.facility.Name,
		SourceID:    cs.facility.ID,
		AssetID:     deal.Asset.ID,
		DealID:      deal.ID,
		EntityID:    cs.facility.ID,
		EntityType:  cs.facility.Name,
	}
}

// refinance sizes and originates a permanent facility at its configured
// month, posting new proceeds and paying off the outstanding construction
// balance and any other permanent facility's balance (spec.md §4.7.3).
func (d *DebtAnalyzer) refinance(l *ledger.Ledger, q *ledger.Queries, valuation *ValuationEngine, ym model.YearMonth, monthIndex int, p *permanentState) error {
	terms := p.facility.Permanent

	amount := terms.ExplicitAmount
	if amount == 0 {
		values := valuation.PropertyValueSeries(q)
		amount = values.Values[monthIndex] * terms.SizingLTV
	}

	payoff := d.outstandingConstructionBalance() + d.outstandingOtherPermanentBalance(p)

	p.balance = amount
	p.originated = true
	p.monthlyPayment = levelPayment(amount, terms.RatePerAnnum, terms.AmortizationMonths)

	return l.Transaction(func() error {
		proceeds := model.NewSeries(d.Timeline)
		proceeds.Set(ym, amount)
		if err := l.AppendSeries(proceeds, model.PostingMeta{
			Category:    model.CategoryFinancing,
			Subcategory: model.SubRefinanceProceeds,
			ItemName:    "Refinance Proceeds: " + p.facility.Name,
			SourceID:    p.facility.ID,
			AssetID:     d.Deal.Asset.ID,
			DealID:      d.Deal.ID,
			EntityID:    p.facility.ID,
			EntityType:  p.facility.Name,
		}); err != nil {
			return err
		}

		if feeRate := terms.OriginationFeeRate; feeRate > 0 {
			fee := amount * feeRate
			feeSeries := model.NewSeries(d.Timeline)
			feeSeries.Set(ym, -fee)
			if err := l.AppendSeries(feeSeries, model.PostingMeta{
				Category:    model.CategoryFinancing,
				Subcategory: model.SubOriginationFee,
				ItemName:    "Origination Fee: " + p.facility.Name,
				SourceID:    p.facility.ID,
				AssetID:     d.Deal.Asset.ID,
				DealID:      d.Deal.ID,
				EntityID:    p.facility.ID,
				EntityType:  p.facility.Name,
			}); err != nil {
				return err
			}
		}

		if payoff == 0 {
			return nil
		}
		payoffSeries := model.NewSeries(d.Timeline)
		payoffSeries.Set(ym, -payoff)
		if err := l.AppendSeries(payoffSeries, model.PostingMeta{
			Category:    model.CategoryFinancing,
			Subcategory: model.SubRefinancePayoff,
			ItemName:    "Construction Payoff",
			SourceID:    p.facility.ID,
			AssetID:     d.Deal.Asset.ID,
			DealID:      d.Deal.ID,
		}); err != nil {
			return err
		}
		d.clearConstructionBalances()
		d.clearOtherPermanentBalances(p)
		return nil
	})
}

func (d *DebtAnalyzer) outstandingConstructionBalance() float64 {
	var total float64
	for _, cs := range d.constructions {
		total += cs.balance
	}
	return total
}

func (d *DebtAnalyzer) clearConstructionBalances() {
	for _, cs := range d.constructions {
		cs.balance = 0
	}
}

// outstandingOtherPermanentBalance sums the balance of any already-
// originated permanent facility besides exclude — the prior-generation
// permanent loan a cash-out refinance (spec.md §8 scenario 5) pays off.
func (d *DebtAnalyzer) outstandingOtherPermanentBalance(exclude *permanentState) float64 {
	var total float64
	for _, other := range d.permanents {
		if other == exclude || !other.originated {
			continue
		}
		total += other.balance
	}
	return total
}

func (d *DebtAnalyzer) clearOtherPermanentBalances(exclude *permanentState) {
	for _, other := range d.permanents {
		if other == exclude {
			continue
		}
		other.balance = 0
	}
}

// amortize posts one month's level-payment interest/principal split for an
// originated permanent facility.
func (d *DebtAnalyzer) amortize(l *ledger.Ledger, ym model.YearMonth, p *permanentState) error {
	terms := p.facility.Permanent
	interest := p.balance * terms.RatePerAnnum / 12
	principal := p.monthlyPayment - interest
	if principal > p.balance {
		principal = p.balance
	}
	p.balance -= principal

	return l.Transaction(func() error {
		interestSeries := model.NewSeries(d.Timeline)
		interestSeries.Set(ym, -interest)
		if err := l.AppendSeries(interestSeries, model.PostingMeta{
			Category:    model.CategoryFinancing,
			Subcategory: model.SubInterestPayment,
			ItemName:    "Debt Service Interest: " + p.facility.Name,
			SourceID:    p.facility.ID,
			AssetID:     d.Deal.Asset.ID,
			DealID:      d.Deal.ID,
			EntityID:    p.facility.ID,
			EntityType:  p.facility.Name,
		}); err != nil {
			return err
		}

		principalSeries := model.NewSeries(d.Timeline)
		principalSeries.Set(ym, -principal)
		return l.AppendSeries(principalSeries, model.PostingMeta{
			Category:    model.CategoryFinancing,
			Subcategory: model.SubPrincipalPayment,
			ItemName:    "Debt Service Principal: " + p.facility.Name,
			SourceID:    p.facility.ID,
			AssetID:     d.Deal.Asset.ID,
			DealID:      d.Deal.ID,
			EntityID:    p.facility.ID,
			EntityType:  p.facility.Name,
		})
	})
}

// payoffAtExit posts the full outstanding balance of whichever facility is
// active at the sale month as a Prepayment (spec.md §4.7.4).
func (d *DebtAnalyzer) payoffAtExit(l *ledger.Ledger, ym model.YearMonth) error {
	for _, p := range d.permanents {
		if p.originated && p.balance > 0 {
			balance := p.balance
			p.balance = 0
			if err := l.Append(model.NewTransactionRecord(ym, -balance, model.PostingMeta{
				Category:    model.CategoryFinancing,
				Subcategory: model.SubPrepayment,
				ItemName:    "Exit Payoff: " + p.facility.Name,
				SourceID:    p.facility.ID,
				AssetID:     d.Deal.Asset.ID,
				DealID:      d.Deal.ID,
				EntityID:    p.facility.ID,
				EntityType:  p.facility.Name,
			})); err != nil {
				return err
			}
		}
	}
	for _, cs := range d.constructions {
		if cs.balance > 0 {
			balance := cs.balance
			cs.balance = 0
			if err := l.Append(model.NewTransactionRecord(ym, -balance, model.PostingMeta{
				Category:    model.CategoryFinancing,
				Subcategory: model.SubPrepayment,
				ItemName:    "Exit Payoff: " + cs.facility.Name,
				SourceID:    cs.facility.ID,
				AssetID:     d.Deal.Asset.ID,
				DealID:      d.Deal.ID,
				EntityID:    cs.facility.ID,
				EntityType:  cs.facility.Name,
			})); err != nil {
				return err
			}
		}
	}
	return nil
}

// levelPayment computes the standard monthly level payment that fully
// amortizes principal over amortMonths at the given annual rate. A balloon
// occurs naturally whenever the caller stops paying at a term shorter than
// amortMonths — the remaining balance is whatever payoffAtExit posts.
func levelPayment(principal, annualRate float64, amortMonths int) float64 {
	if amortMonths <= 0 {
		return principal
	}
	monthlyRate := annualRate / 12
	if monthlyRate == 0 {
		return principal / float64(amortMonths)
	}
	r := monthlyRate
	n := float64(amortMonths)
	factor := pow1p(r, n)
	return principal * (r * factor) / (factor - 1)
}

func pow1p(r, n float64) float64 {
	result := 1.0
	for i := 0; i < int(n); i++ {
		result *= 1 + r
	}
	return result
}
