package model

// IRRAnnualizationBasis selects how a monthly IRR is compounded to an
// annual figure.
type IRRAnnualizationBasis string

const (
	IRRCompounded IRRAnnualizationBasis = "compounded"
	IRRSimple     IRRAnnualizationBasis = "simple"
)

// FundingPriority selects the order in which the CashFlowEngine fills
// capital-use gaps (spec.md §4.8).
type FundingPriority string

const (
	FundingEquityFirst FundingPriority = "equity_first"
	FundingDebtFirst   FundingPriority = "debt_first"
)

// Settings enumerates the run-level configuration spec.md §6 requires.
// A Settings value is constructed once per analysis run; there is no
// process-wide mutable configuration (spec.md §5, §9).
type Settings struct {
	AnalysisStart          YearMonth
	PeriodCount            int                    `validate:"gt=0"`
	InflationMonth         int                     `validate:"gte=1,lte=12"` // 1..12
	ValuationMethodDefault ValuationMethodKind     `validate:"omitempty,oneof=DirectCap DCF DirectEntry"`
	IRRAnnualizationBasis  IRRAnnualizationBasis   `validate:"omitempty,oneof=compounded simple"`
	FundingPriority        FundingPriority         `validate:"omitempty,oneof=equity_first debt_first"`
	SweepDefaultMode       SweepMode               `validate:"omitempty,oneof=TRAP PREPAY"`
	LedgerMemoryLimitBytes int64                   `validate:"gte=0"`
}

// Timeline derives the run's Timeline from AnalysisStart/PeriodCount.
func (s Settings) Timeline() (Timeline, error) {
	return NewTimeline(s.AnalysisStart, s.PeriodCount)
}
