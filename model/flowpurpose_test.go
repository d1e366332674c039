package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDerivePurpose_ValuationAndCapitalAreFixed(t *testing.T) {
	assert.Equal(t, PurposeValuation, DerivePurpose(CategoryValuation, SubAssetValuation, 100))
	assert.Equal(t, PurposeCapitalUse, DerivePurpose(CategoryCapital, SubHardCosts, -100))
}

func TestDerivePurpose_RevenueSaleIsCapitalSourceOtherwiseOperating(t *testing.T) {
	assert.Equal(t, PurposeCapitalSource, DerivePurpose(CategoryRevenue, SubSale, 100))
	assert.Equal(t, PurposeOperating, DerivePurpose(CategoryRevenue, SubLease, 100))
}

func TestDerivePurpose_ExpenseIsAlwaysOperating(t *testing.T) {
	assert.Equal(t, PurposeOperating, DerivePurpose(CategoryExpense, SubOpEx, -100))
}

func TestDerivePurpose_FinancingInterestReserveIsCapitalUseException(t *testing.T) {
	assert.Equal(t, PurposeCapitalUse, DerivePurpose(CategoryFinancing, SubInterestReserve, -100))
}

func TestDerivePurpose_FinancingSweepReleaseIsFinancingService(t *testing.T) {
	assert.Equal(t, PurposeFinancingService, DerivePurpose(CategoryFinancing, SubSweepRelease, 100))
}

func TestDerivePurpose_FinancingCapitalSourceSubsAreCapitalSource(t *testing.T) {
	assert.Equal(t, PurposeCapitalSource, DerivePurpose(CategoryFinancing, SubLoanProceeds, 100))
	assert.Equal(t, PurposeCapitalSource, DerivePurpose(CategoryFinancing, SubRefinanceProceeds, 100))
	assert.Equal(t, PurposeCapitalSource, DerivePurpose(CategoryFinancing, SubEquityContribution, 100))
}

func TestDerivePurpose_FinancingOriginationFeeIsFinancingService(t *testing.T) {
	assert.Equal(t, PurposeFinancingService, DerivePurpose(CategoryFinancing, SubOriginationFee, -100))
}

func TestDerivePurpose_FinancingDefaultIsFinancingService(t *testing.T) {
	assert.Equal(t, PurposeFinancingService, DerivePurpose(CategoryFinancing, SubPrincipalPayment, -100))
}
