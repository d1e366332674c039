package model

import "github.com/google/uuid"

// Partner is one member of a Deal's partnership (spec.md §4.9).
type Partner struct {
	ID               uuid.UUID `validate:"required"`
	Name             string    `validate:"required"`
	EntityType       string    `validate:"required,oneof=GP LP"` // "GP" or "LP"
	ShareOfEquity    float64   `validate:"gte=0,lte=1"`
	CommittedCapital float64   `validate:"gte=0"`
}

// WaterfallTierKind tags a waterfall tier variant (spec.md §4.9).
type WaterfallTierKind string

const (
	TierReturnOfCapital    WaterfallTierKind = "ReturnOfCapital"
	TierPreferredReturn    WaterfallTierKind = "PreferredReturn"
	TierCatchUp            WaterfallTierKind = "CatchUp"
	TierSplitAboveHurdle   WaterfallTierKind = "SplitAboveHurdle"
)

// WaterfallTier is one ordered rule in the partnership distribution
// waterfall.
type WaterfallTier struct {
	Kind WaterfallTierKind `validate:"required,oneof=ReturnOfCapital PreferredReturn CatchUp SplitAboveHurdle"`

	// PreferredReturn / SplitAboveHurdle.
	HurdleRate float64 `validate:"gte=0"` // annualized IRR hurdle this tier pays to, or up to

	// CatchUp.
	CatchUpPct float64 `validate:"gte=0,lte=1"` // GP's target share of promote-eligible distributions

	// SplitAboveHurdle.
	GPSplitPct float64 `validate:"gte=0,lte=1"`
	LPSplitPct float64 `validate:"gte=0,lte=1"`
}

// Partnership bundles the partner roster and the ordered waterfall that
// distributes distributable cash among them.
type Partnership struct {
	Partners  []Partner
	Waterfall []WaterfallTier
}
