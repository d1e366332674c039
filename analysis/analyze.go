package analysis

import (
	"performa/internal/apperrors"
	"performa/internal/logger"
	"performa/ledger"
	"performa/model"
	"performa/orchestrator"
)

// Analyze runs the full deal analysis pipeline: it posts acquisition
// costs, runs the asset revenue/expense models through the orchestrator,
// values the property and posts the disposition, runs the debt and equity
// capital stack, allocates and distributes partner cash flows, and
// finally builds DealResults from the sealed ledger. This is the single
// entry point spec.md §6's `analyze(deal, timeline, settings) ->
// DealResults` names.
func Analyze(deal model.Deal, timeline model.Timeline, settings model.Settings) (*DealResults, error) {
	l, err := ledger.New(timeline)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindConfiguration, "failed to open ledger")
	}
	q := ledger.NewQueries(l)

	if err := postAcquisitionCosts(l, deal, timeline); err != nil {
		return nil, err
	}

	reg := BuildCashFlowModels(deal)
	if _, err := orchestrator.Run(reg, l, timeline, settings); err != nil {
		return nil, err
	}

	valuation := &ValuationEngine{Deal: deal, Timeline: timeline}
	exitMonth, err := valuation.PostDisposition(l, q)
	if err != nil {
		return nil, err
	}

	debt := NewDebtAnalyzer(deal, timeline, settings)
	if err := debt.Run(l, q, valuation, exitMonth); err != nil {
		return nil, err
	}

	partnership := NewPartnershipAnalyzer(deal, timeline)
	if err := partnership.AllocateContributions(l, q); err != nil {
		return nil, err
	}
	if err := partnership.RunWaterfall(l, q, constructionEndMonth(deal)); err != nil {
		return nil, err
	}

	l.Seal()
	logger.WithField("deal_id", deal.ID.String()).Info("analysis complete")

	return BuildDealResults(l, deal, settings)
}

func constructionEndMonth(deal model.Deal) int {
	if deal.Asset.Kind == model.AssetDevelopment {
		return deal.Asset.ConstructionMonths
	}
	return 0
}

// postAcquisitionCosts posts the deal's entry economics — purchase price,
// closing costs, due diligence, and hard/soft/site-work costs, each only
// when nonzero and for any asset kind — at the acquisition date (spec.md
// §6's Acquisition shape).
func postAcquisitionCosts(l *ledger.Ledger, deal model.Deal, timeline model.Timeline) error {
	ym := deal.Acquisition.Date
	acq := deal.Acquisition

	items := []struct {
		sub    model.Subcategory
		amount float64
		name   string
	}{
		{model.SubPurchasePrice, acq.PurchasePrice, "Purchase Price"},
		{model.SubClosingCosts, acq.PurchasePrice * acq.ClosingCostsRate, "Closing Costs"},
		{model.SubDueDiligence, acq.DueDiligenceCosts, "Due Diligence"},
		{model.SubHardCosts, acq.HardCosts, "Hard Costs"},
		{model.SubSoftCosts, acq.SoftCosts, "Soft Costs"},
		{model.SubSiteWork, acq.SiteWorkCosts, "Site Work"},
	}

	return l.Transaction(func() error {
		for _, item := range items {
			if item.amount == 0 {
				continue
			}
			series := model.NewSeries(timeline)
			series.Set(ym, -item.amount)
			if err := l.AppendSeries(series, model.PostingMeta{
				Category:    model.CategoryCapital,
				Subcategory: item.sub,
				ItemName:    item.name,
				SourceID:    deal.ID,
				AssetID:     deal.Asset.ID,
				DealID:      deal.ID,
			}); err != nil {
				return err
			}
		}
		return nil
	})
}
