package model

import "github.com/google/uuid"

// FacilityKind tags the debt Facility variant (spec.md §4.7).
type FacilityKind string

const (
	FacilityConstruction FacilityKind = "Construction"
	FacilityPermanent    FacilityKind = "Permanent"
)

// InterestCapMethod selects how construction-period interest is accrued
// (spec.md §4.7.1). Scheduled is the default and canonical method; the
// reference baselines in spec.md §8 were all produced with it.
type InterestCapMethod string

const (
	InterestCapNone       InterestCapMethod = "None"
	InterestCapSimple     InterestCapMethod = "Simple"
	InterestCapScheduled  InterestCapMethod = "Scheduled"
	InterestCapIterative  InterestCapMethod = "Iterative"
)

// SweepMode selects the cash-sweep covenant's behavior (spec.md §4.7.2).
type SweepMode string

const (
	SweepTrap   SweepMode = "TRAP"
	SweepPrepay SweepMode = "PREPAY"
)

// CashSweep is an optional covenant attached to a Construction facility.
type CashSweep struct {
	Enabled  bool
	Mode     SweepMode
	EndMonth int // offset from timeline start
}

// Facility is one entry in a Deal's ordered financing list. Exactly one of
// the *Construction / *Permanent fields is populated, selected by Kind.
type Facility struct {
	ID   uuid.UUID `validate:"required"`
	Kind FacilityKind `validate:"required,oneof=Construction Permanent"`
	Name string // e.g. "Senior", "Mezz" — used as EntityType on postings

	Construction *ConstructionTerms
	Permanent    *PermanentTerms
}

// ConstructionTerms parameterizes an LTC-sized construction facility.
type ConstructionTerms struct {
	LTCThreshold       float64           `validate:"gte=0"` // max draw as a fraction of total project cost
	RatePerAnnum       float64           `validate:"gte=0"`
	InterestCapMethod  InterestCapMethod `validate:"omitempty,oneof=None Simple Scheduled Iterative"`
	SimpleReserveRate  float64           `validate:"gte=0"` // used only when InterestCapMethod == Simple
	Sweep              CashSweep
	OriginationFeeRate float64 `validate:"gte=0"` // fraction of each draw, posted as Financing/Origination Fee
}

// PermanentTerms parameterizes a permanent/refinance facility.
type PermanentTerms struct {
	RefinanceMonth     int     `validate:"gte=0"` // offset from timeline start
	SizingLTV          float64 `validate:"gte=0"`
	ExplicitAmount      float64 `validate:"gte=0"` // if > 0, overrides LTV sizing
	RatePerAnnum       float64 `validate:"gte=0"`
	TermMonths         int     `validate:"gte=0"` // not read by DebtAnalyzer: no balloon is posted at term maturity
	AmortizationMonths int     `validate:"gte=0"` // level payment runs until refinance or exit, where the remaining balance is paid off
	OriginationFeeRate float64 `validate:"gte=0"` // fraction of sized amount, posted at origination
}
