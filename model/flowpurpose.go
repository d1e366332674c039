package model

// FlowPurpose is the derived, query-relevant classification of a posting.
// It is always a pure function of (category, subcategory, sign) — never an
// independent input — per spec.md §3.6. Storing it on TransactionRecord is
// purely a query-speed optimization.
type FlowPurpose string

const (
	PurposeOperating        FlowPurpose = "Operating"
	PurposeCapitalUse       FlowPurpose = "CapitalUse"
	PurposeCapitalSource    FlowPurpose = "CapitalSource"
	PurposeFinancingService FlowPurpose = "FinancingService"
	PurposeValuation        FlowPurpose = "Valuation"
)

// capitalSourceFinancingSubs are the Financing subcategories that bring
// cash into the deal entity and therefore read as CapitalSource rather than
// FinancingService.
var capitalSourceFinancingSubs = map[Subcategory]bool{
	SubLoanProceeds:       true,
	SubRefinanceProceeds:  true,
	SubEquityContribution: true,
}

// DerivePurpose implements the §3.6 table exactly. It is the sole place the
// Interest-Reserve/CapitalUse exception lives.
func DerivePurpose(cat Category, sub Subcategory, amount float64) FlowPurpose {
	switch cat {
	case CategoryValuation:
		return PurposeValuation
	case CategoryCapital:
		return PurposeCapitalUse
	case CategoryRevenue:
		if sub == SubSale {
			return PurposeCapitalSource
		}
		return PurposeOperating
	case CategoryExpense:
		return PurposeOperating
	case CategoryFinancing:
		if sub == SubInterestReserve {
			// Capitalized interest: added to project cost, not debt service.
			return PurposeCapitalUse
		}
		if sub == SubSweepRelease {
			return PurposeFinancingService
		}
		if capitalSourceFinancingSubs[sub] {
			return PurposeCapitalSource
		}
		return PurposeFinancingService
	default:
		return PurposeOperating
	}
}
