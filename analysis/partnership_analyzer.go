package analysis

import (
	"performa/ledger"
	"performa/model"

	"github.com/google/uuid"
)

// partnerLedger tracks one partner's running unreturned-capital balance
// and cumulative distributions across the waterfall run.
type partnerLedger struct {
	partner            model.Partner
	unreturnedCapital  float64
	cumulativeDistrib  float64
}

// PartnershipAnalyzer runs the distribution waterfall over distributable
// cash and posts each partner's contribution/distribution rows tagged
// with entity_id = partner.id (spec.md §4.9).
type PartnershipAnalyzer struct {
	Deal     model.Deal
	Timeline model.Timeline

	partners []*partnerLedger
}

// NewPartnershipAnalyzer creates an empty per-partner running ledger for
// each partner; AllocateContributions fills it from the deal's equity
// contributions.
func NewPartnershipAnalyzer(deal model.Deal, timeline model.Timeline) *PartnershipAnalyzer {
	p := &PartnershipAnalyzer{Deal: deal, Timeline: timeline}
	for _, partner := range deal.Partnership.Partners {
		p.partners = append(p.partners, &partnerLedger{partner: partner})
	}
	return p
}

// AllocateContributions splits every Equity Contribution row already on
// the ledger pro-rata across partners by share_of_equity and posts the
// per-partner rows.
func (p *PartnershipAnalyzer) AllocateContributions(l *ledger.Ledger, q *ledger.Queries) error {
	contributions := q.EquityContributions()
	if len(p.partners) == 0 {
		return nil
	}

	return l.Transaction(func() error {
		for _, pl := range p.partners {
			series := model.NewSeries(p.Timeline)
			for i, v := range contributions.Values {
				share := v * pl.partner.ShareOfEquity
				series.Values[i] = share
				pl.unreturnedCapital += share
			}
			if err := l.AppendSeries(series, model.PostingMeta{
				Category:    model.CategoryFinancing,
				Subcategory: model.SubEquityContribution,
				ItemName:    "Partner Contribution: " + pl.partner.Name,
				SourceID:    p.Deal.ID,
				AssetID:     p.Deal.Asset.ID,
				DealID:      p.Deal.ID,
				EntityID:    pl.partner.ID,
				EntityType:  pl.partner.EntityType,
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

// RunWaterfall computes monthly distributable cash and runs the ordered
// waterfall tiers, posting each partner's distribution rows. Preferred
// return and hurdle splits are evaluated against each partner's running
// unreturned-capital balance rather than a full per-month binary-search
// IRR solve; see DESIGN.md for the tradeoff this simplification makes
// against spec.md §4.9's exact-IRR-equalization description.
func (p *PartnershipAnalyzer) RunWaterfall(l *ledger.Ledger, q *ledger.Queries, constructionEndMonth int) error {
	if len(p.partners) == 0 {
		return nil
	}

	distributable := p.distributableCash(q)
	months := p.Timeline.Months()

	return l.Transaction(func() error {
		for i, ym := range months {
			if i < constructionEndMonth {
				continue
			}
			cash := distributable.Values[i]
			if cash <= 0 {
				continue
			}
			if err := p.distributeMonth(l, ym, cash); err != nil {
				return err
			}
		}
		return nil
	})
}

func (p *PartnershipAnalyzer) distributableCash(q *ledger.Queries) *model.CashFlowSeries {
	opCF := q.OperationalCashFlow()
	debtService := q.DebtService()
	sweepDeposits := q.SweepDeposits()
	sweepReleases := q.SweepReleases()

	out := model.NewSeries(p.Timeline)
	for i := range out.Values {
		out.Values[i] = opCF.Values[i] + debtService.Values[i] + sweepDeposits.Values[i] + sweepReleases.Values[i]
	}
	return out
}

// distributeMonth runs the ordered waterfall tiers against one month's
// distributable cash, allocating across return-of-capital, preferred
// return, catch-up, and hurdle-split tiers in the order configured.
func (p *PartnershipAnalyzer) distributeMonth(l *ledger.Ledger, ym model.YearMonth, cash float64) error {
	remaining := cash

	for _, tier := range p.Deal.Partnership.Waterfall {
		if remaining <= 0 {
			break
		}
		var err error
		remaining, err = p.applyTier(l, ym, tier, remaining)
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *PartnershipAnalyzer) applyTier(l *ledger.Ledger, ym model.YearMonth, tier model.WaterfallTier, available float64) (float64, error) {
	switch tier.Kind {
	case model.TierReturnOfCapital:
		return p.payReturnOfCapital(l, ym, available)
	case model.TierPreferredReturn:
		return p.payPreferredReturn(l, ym, available, tier.HurdleRate)
	case model.TierCatchUp:
		return p.payCatchUp(l, ym, available, tier.CatchUpPct)
	case model.TierSplitAboveHurdle:
		return p.paySplit(l, ym, available, tier.GPSplitPct, tier.LPSplitPct)
	default:
		return available, nil
	}
}

func (p *PartnershipAnalyzer) payReturnOfCapital(l *ledger.Ledger, ym model.YearMonth, available float64) (float64, error) {
	var totalUnreturned float64
	for _, pl := range p.partners {
		totalUnreturned += pl.unreturnedCapital
	}
	if totalUnreturned <= 0 {
		return available, nil
	}

	paid := minFloat(available, totalUnreturned)
	return available - paid, p.postPerPartnerProRata(l, ym, paid, totalUnreturned, model.SubEquityDistribution, "Return of Capital", func(pl *partnerLedger) float64 {
		return pl.unreturnedCapital
	}, func(pl *partnerLedger, amount float64) {
		pl.unreturnedCapital -= amount
		pl.cumulativeDistrib += amount
	})
}

// payPreferredReturn pays each partner a monthly accrual on their
// unreturned capital at hurdleRate/12 until available is exhausted.
func (p *PartnershipAnalyzer) payPreferredReturn(l *ledger.Ledger, ym model.YearMonth, available, hurdleRate float64) (float64, error) {
	var totalAccrued float64
	accruals := make(map[uuid.UUID]float64, len(p.partners))
	for _, pl := range p.partners {
		accrual := pl.unreturnedCapital * hurdleRate / 12
		accruals[pl.partner.ID] = accrual
		totalAccrued += accrual
	}
	if totalAccrued <= 0 {
		return available, nil
	}

	paid := minFloat(available, totalAccrued)
	remainingAfter := available - paid
	scale := paid / totalAccrued

	return remainingAfter, l.Transaction(func() error {
		for _, pl := range p.partners {
			amount := accruals[pl.partner.ID] * scale
			if amount <= 0 {
				continue
			}
			pl.cumulativeDistrib += amount
			if err := postPartnerDistribution(l, p.Deal, ym, pl.partner, amount, model.SubPreferredReturn, "Preferred Return"); err != nil {
				return err
			}
		}
		return nil
	})
}

func (p *PartnershipAnalyzer) payCatchUp(l *ledger.Ledger, ym model.YearMonth, available, catchUpPct float64) (float64, error) {
	gp := p.findGP()
	if gp == nil || catchUpPct <= 0 {
		return available, nil
	}
	amount := available * catchUpPct
	gp.cumulativeDistrib += amount
	return available - amount, postPartnerDistribution(l, p.Deal, ym, gp.partner, amount, model.SubPromote, "Catch-Up Promote")
}

// paySplit allocates available between the GP and LP pools per gpPct/lpPct,
// then divides each pool across its own partners pro-rata by
// ShareOfEquity renormalized within that pool (not the deal-wide total,
// which sums to 1.0 across both pools and would otherwise under-allocate
// whichever pool holds less than 100% of total equity). Returns the true
// leftover (available minus what was actually posted) rather than
// assuming the whole tier clears, so a tier that can't fully allocate
// (empty pool, zero split) carries its remainder into the next tier
// instead of vanishing from the ledger.
func (p *PartnershipAnalyzer) paySplit(l *ledger.Ledger, ym model.YearMonth, available, gpPct, lpPct float64) (float64, error) {
	total := gpPct + lpPct
	if total <= 0 {
		return available, nil
	}

	var gpEquity, lpEquity float64
	for _, pl := range p.partners {
		if pl.partner.EntityType == "GP" {
			gpEquity += pl.partner.ShareOfEquity
		} else {
			lpEquity += pl.partner.ShareOfEquity
		}
	}

	var totalPosted float64
	err := l.Transaction(func() error {
		for _, pl := range p.partners {
			var share float64
			switch {
			case pl.partner.EntityType == "GP" && gpEquity > 0:
				share = gpPct / total * (pl.partner.ShareOfEquity / gpEquity)
			case pl.partner.EntityType != "GP" && lpEquity > 0:
				share = lpPct / total * (pl.partner.ShareOfEquity / lpEquity)
			default:
				continue
			}
			amount := available * share
			if amount <= 0 {
				continue
			}
			pl.cumulativeDistrib += amount
			totalPosted += amount
			sub := model.SubEquityDistribution
			if pl.partner.EntityType == "GP" {
				sub = model.SubPromote
			}
			if err := postPartnerDistribution(l, p.Deal, ym, pl.partner, amount, sub, "Hurdle Split Distribution"); err != nil {
				return err
			}
		}
		return nil
	})
	return available - totalPosted, err
}

func (p *PartnershipAnalyzer) findGP() *partnerLedger {
	for _, pl := range p.partners {
		if pl.partner.EntityType == "GP" {
			return pl
		}
	}
	return nil
}

func (p *PartnershipAnalyzer) postPerPartnerProRata(l *ledger.Ledger, ym model.YearMonth, total, base float64, sub model.Subcategory, item string, weight func(*partnerLedger) float64, apply func(*partnerLedger, float64)) error {
	return l.Transaction(func() error {
		for _, pl := range p.partners {
			w := weight(pl)
			if w <= 0 {
				continue
			}
			amount := total * (w / base)
			apply(pl, amount)
			if err := postPartnerDistribution(l, p.Deal, ym, pl.partner, amount, sub, item); err != nil {
				return err
			}
		}
		return nil
	})
}

func postPartnerDistribution(l *ledger.Ledger, deal model.Deal, ym model.YearMonth, partner model.Partner, amount float64, sub model.Subcategory, item string) error {
	if amount <= 0 {
		return nil
	}
	return l.Append(model.NewTransactionRecord(ym, -amount, model.PostingMeta{
		Category:    model.CategoryFinancing,
		Subcategory: sub,
		ItemName:    item + ": " + partner.Name,
		SourceID:    deal.ID,
		AssetID:     deal.Asset.ID,
		DealID:      deal.ID,
		EntityID:    partner.ID,
		EntityType:  partner.EntityType,
	}))
}
