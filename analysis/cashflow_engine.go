package analysis

import "performa/model"

// CashFlowEngine decides, for one month's unfunded capital need, how much
// comes from committed equity still available versus the debt stack's
// remaining LTC capacity (spec.md §4.8). The facility draw itself and its
// interest consequences live in DebtAnalyzer; this type only orders the
// two sources.
type CashFlowEngine struct {
	Priority model.FundingPriority
}

// Split divides need between equity and debt given remainingEquity (equity
// still uncalled against total committed capital) and debtCapacity (what
// the debt stack can still absorb this month under its LTC caps).
func (e *CashFlowEngine) Split(need, remainingEquity, debtCapacity float64) (equity, debt float64) {
	if need <= 0 {
		return 0, 0
	}
	if remainingEquity < 0 {
		remainingEquity = 0
	}
	if debtCapacity < 0 {
		debtCapacity = 0
	}

	if e.Priority == model.FundingDebtFirst {
		debt = minFloat(need, debtCapacity)
		equity = minFloat(need-debt, remainingEquity)
		return equity, debt
	}

	// equity_first (default)
	equity = minFloat(need, remainingEquity)
	debt = minFloat(need-equity, debtCapacity)
	return equity, debt
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
