package analysis

import (
	"math"

	"performa/ledger"
	"performa/model"
)

// ValuationEngine derives a property_value_series for LTV diagnostics and
// posts the disposition at the deal's configured exit month (spec.md §4.6).
type ValuationEngine struct {
	Deal     model.Deal
	Timeline model.Timeline
}

// PropertyValueSeries computes a running value estimate across the
// timeline using the configured exit method's cap rate against trailing
// NOI; DirectEntry/DCF configurations fall back to the NOI-based estimate
// for interim months since their price/discounting only pins the exit
// value itself.
func (v *ValuationEngine) PropertyValueSeries(q *ledger.Queries) *model.CashFlowSeries {
	noi := q.NOI()
	out := model.NewSeries(v.Timeline)
	months := v.Timeline.Months()

	capRate := v.Deal.Exit.CapRate
	if capRate == 0 {
		capRate = 0.06
	}

	for i, ym := range months {
		trailing := trailingTwelveNOI(noi, i)
		out.Set(ym, trailing*12/capRate)
	}
	return out
}

// trailingTwelveNOI sums the trailing 12 months of noi ending at index i
// (or however many months have elapsed if fewer than 12) and returns the
// average monthly NOI over the months actually summed; callers multiply by
// 12 to annualize.
func trailingTwelveNOI(noi *model.CashFlowSeries, i int) float64 {
	start := i - 11
	if start < 0 {
		start = 0
	}
	span := i - start + 1
	var sum float64
	for j := start; j <= i; j++ {
		sum += noi.Values[j]
	}
	return sum / float64(span)
}

// PostDisposition posts the sale proceeds and transaction costs at the
// deal's exit month per the method precedence DirectEntry > DirectCap >
// DCF (spec.md §4.6). Returns the month index at which it posted.
func (v *ValuationEngine) PostDisposition(l *ledger.Ledger, q *ledger.Queries) (int, error) {
	exitMonth := v.exitMonthIndex()
	months := v.Timeline.Months()
	exitYM := months[exitMonth]

	grossSale := v.exitValue(q, exitMonth)
	costs := grossSale * v.Deal.Exit.TransactionCostsRate

	saleSeries := model.NewSeries(v.Timeline)
	saleSeries.Set(exitYM, grossSale)
	costSeries := model.NewSeries(v.Timeline)
	costSeries.Set(exitYM, -costs)

	assetMeta := model.PostingMeta{
		Category:    model.CategoryRevenue,
		Subcategory: model.SubSale,
		ItemName:    "Disposition Sale Proceeds",
		SourceID:    v.Deal.Asset.ID,
		AssetID:     v.Deal.Asset.ID,
		DealID:      v.Deal.ID,
	}
	costMeta := model.PostingMeta{
		Category:    model.CategoryCapital,
		Subcategory: model.SubTransactCosts,
		ItemName:    "Disposition Transaction Costs",
		SourceID:    v.Deal.Asset.ID,
		AssetID:     v.Deal.Asset.ID,
		DealID:      v.Deal.ID,
	}

	return exitMonth, l.Transaction(func() error {
		if err := l.AppendSeries(saleSeries, assetMeta); err != nil {
			return err
		}
		return l.AppendSeries(costSeries, costMeta)
	})
}

func (v *ValuationEngine) exitMonthIndex() int {
	idx := v.Deal.Exit.HoldMonths - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= v.Timeline.Length() {
		idx = v.Timeline.Length() - 1
	}
	return idx
}

func (v *ValuationEngine) exitValue(q *ledger.Queries, exitMonth int) float64 {
	exit := v.Deal.Exit
	switch {
	case exit.Method == model.ValuationDirectEntry || exit.DirectEntryPrice > 0:
		return exit.DirectEntryPrice
	case exit.Method == model.ValuationDCF && exit.CapRate == 0:
		return v.dcfValue(q, exitMonth)
	default: // DirectCap
		return v.directCapValue(q, exitMonth)
	}
}

func (v *ValuationEngine) directCapValue(q *ledger.Queries, exitMonth int) float64 {
	noi := q.NOI()
	trailing := trailingTwelveNOI(noi, exitMonth)
	capRate := v.Deal.Exit.CapRate
	if capRate == 0 {
		capRate = 0.06
	}
	return trailing * 12 / capRate
}

// dcfValue discounts the hold-period NOI stream plus a terminal value back
// to the acquisition date at DiscountRate, the indicated value a DCF
// appraisal would assign the property (distinct from directCapValue's
// single-year income-approach snapshot).
func (v *ValuationEngine) dcfValue(q *ledger.Queries, exitMonth int) float64 {
	noi := q.NOI()
	terminalNOI := trailingTwelveNOI(noi, exitMonth) * 12
	terminalCapRate := v.Deal.Exit.TerminalCapRate
	if terminalCapRate == 0 {
		terminalCapRate = 0.065
	}
	terminalValue := terminalNOI / terminalCapRate

	discountRate := v.Deal.Exit.DiscountRate
	if discountRate == 0 {
		discountRate = 0.08
	}
	monthlyRate := discountRate / 12

	var pvNOI float64
	for i := 0; i <= exitMonth; i++ {
		pvNOI += noi.Values[i] / math.Pow(1+monthlyRate, float64(i+1))
	}
	pvTerminal := terminalValue / math.Pow(1+monthlyRate, float64(exitMonth+1))

	return pvNOI + pvTerminal
}
