package model

import "github.com/google/uuid"

// AssetKind tags which concrete asset variant a Deal.Asset holds. Per
// spec.md §9's re-architecture note, property-type math is kept fully
// opaque behind BuildCashFlowModels; the core only ever switches on Kind.
type AssetKind string

const (
	AssetOffice      AssetKind = "OfficeProperty"
	AssetResidential AssetKind = "ResidentialProperty"
	AssetDevelopment AssetKind = "DevelopmentProject"
)

// Asset is the tagged-union asset variant a Deal analyzes. Concrete
// per-type leaf math lives in the cashflow package; Asset only carries the
// parameters a leaf model needs plus its own identity.
type Asset struct {
	ID   uuid.UUID `validate:"required"`
	Kind AssetKind `validate:"required,oneof=OfficeProperty ResidentialProperty DevelopmentProject"`

	// OfficeProperty / ResidentialProperty parameters.
	MonthlyBaseRent    float64 `validate:"gte=0"`
	AnnualEscalationPct float64 `validate:"gte=0"`
	OccupancyPct       float64 `validate:"gte=0,lte=1"`
	VacancyLossPct     float64 `validate:"gte=0,lte=1"`
	CreditLossPct      float64 `validate:"gte=0,lte=1"`
	MiscIncomeMonthly  float64 `validate:"gte=0"`
	RecoveryMonthly    float64 `validate:"gte=0"`
	OpExPctOfRevenue   float64 `validate:"gte=0,lte=1"`
	OpExFixedMonthly   float64 `validate:"gte=0"`

	// DevelopmentProject parameters (in addition to the above, applied
	// once the project stabilizes).
	ConstructionMonths int `validate:"gte=0"`
	StabilizationMonth int // offset from timeline start; 0 means no lease-up ramp
}

// Acquisition captures the deal's entry economics (spec.md §6).
type Acquisition struct {
	Date              YearMonth
	PurchasePrice     float64 `validate:"gte=0"`
	ClosingCostsRate  float64 `validate:"gte=0"`
	DueDiligenceCosts float64 `validate:"gte=0"`
	HardCosts         float64 `validate:"gte=0"` // development: construction hard costs
	SoftCosts         float64 `validate:"gte=0"` // development: soft costs (design, permits, etc.)
	SiteWorkCosts     float64 `validate:"gte=0"`
}

// ValuationMethodKind tags the ValuationEngine method variant in use.
type ValuationMethodKind string

const (
	ValuationDirectCap   ValuationMethodKind = "DirectCap"
	ValuationDCF         ValuationMethodKind = "DCF"
	ValuationDirectEntry ValuationMethodKind = "DirectEntry"
)

// ExitConfig configures the ValuationEngine's disposition calculation.
// Method precedence when more than one field is populated: DirectEntry >
// DirectCap > DCF (spec.md §4.6).
type ExitConfig struct {
	Method              ValuationMethodKind `validate:"omitempty,oneof=DirectCap DCF DirectEntry"`
	CapRate             float64 `validate:"gte=0"` // DirectCap
	HoldMonths          int     `validate:"gte=0"` // DirectCap / DCF: months from analysis start to disposition
	DiscountRate        float64 `validate:"gte=0"` // DCF
	TerminalCapRate     float64 `validate:"gte=0"` // DCF
	DirectEntryPrice    float64 `validate:"gte=0"` // DirectEntry
	TransactionCostsRate float64 `validate:"gte=0"`
}

// Deal is the declarative description of a single real-estate investment:
// property, financing, partnership, and exit, exactly as enumerated in
// spec.md §6.
type Deal struct {
	ID          uuid.UUID `validate:"required"`
	Asset       Asset
	Acquisition Acquisition
	Financing   []Facility
	Partnership Partnership
	Exit        ExitConfig
}
