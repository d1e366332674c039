// Package analysis implements the deal-level analysis pipeline: asset
// revenue/expense dispatch, valuation, debt, the funding cascade, the
// partnership waterfall, and the DealResults facade (spec.md §4.5-§4.10).
package analysis

import (
	"performa/cashflow"
	"performa/model"
)

// BuildCashFlowModels constructs the leaf CashFlowModels for deal's asset
// and registers them so the orchestrator can run them. Asset-specific math
// stays inside the cashflow package; this dispatcher only wires identity.
func BuildCashFlowModels(deal model.Deal) *cashflow.Registry {
	reg := cashflow.NewRegistry()

	reg.Register(&cashflow.LeaseRevenueModel{AssetID: deal.Asset.ID, DealID: deal.ID, Asset: deal.Asset})
	reg.Register(&cashflow.MiscIncomeModel{AssetID: deal.Asset.ID, DealID: deal.ID, Asset: deal.Asset})
	reg.Register(&cashflow.OperatingExpenseModel{AssetID: deal.Asset.ID, DealID: deal.ID, Asset: deal.Asset})

	return reg
}
