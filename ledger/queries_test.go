package ledger

import (
	"testing"

	"performa/internal/apperrors"
	"performa/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLedger(t *testing.T) (*Ledger, *Queries, model.Timeline) {
	t.Helper()
	tl := testTimeline(t)
	l, err := New(tl)
	require.NoError(t, err)
	return l, NewQueries(l), tl
}

func post(t *testing.T, l *Ledger, ym model.YearMonth, amount float64, cat model.Category, sub model.Subcategory) {
	t.Helper()
	require.NoError(t, l.Append(model.NewTransactionRecord(ym, amount, model.PostingMeta{
		Category:    cat,
		Subcategory: sub,
		AssetID:     uuid.New(),
	})))
}

func TestQueries_GrossRevenueAndOpExAndNOI(t *testing.T) {
	l, q, tl := newTestLedger(t)
	post(t, l, tl.Start(), 10000, model.CategoryRevenue, model.SubLease)
	post(t, l, tl.Start(), 500, model.CategoryRevenue, model.SubMiscIncome)
	post(t, l, tl.Start(), -400, model.CategoryRevenue, model.SubVacancyLoss)
	post(t, l, tl.Start(), -3000, model.CategoryExpense, model.SubOpEx)

	assert.Equal(t, 10500.0, q.GrossRevenue().At(tl.Start()))
	assert.Equal(t, -3000.0, q.OpEx().At(tl.Start()))
	// NOI sums every Operating-purpose posting, including vacancy loss.
	assert.Equal(t, 10500.0-400-3000, q.NOI().At(tl.Start()))
	assert.True(t, q.OperationalCashFlow().Equal(q.NOI()))
}

func TestQueries_CapitalUsesExcludesInterestReserveFromDebtService(t *testing.T) {
	l, q, tl := newTestLedger(t)
	post(t, l, tl.Start(), -50000, model.CategoryCapital, model.SubHardCosts)
	post(t, l, tl.Start(), -1200, model.CategoryFinancing, model.SubInterestReserve)
	post(t, l, tl.Start(), -800, model.CategoryFinancing, model.SubInterestPayment)

	assert.Equal(t, -51200.0, q.CapitalUses().At(tl.Start()))
	assert.Equal(t, -800.0, q.DebtService().At(tl.Start()))
}

func TestQueries_DebtDrawsAndCapitalSources(t *testing.T) {
	l, q, tl := newTestLedger(t)
	post(t, l, tl.Start(), 100000, model.CategoryFinancing, model.SubLoanProceeds)
	post(t, l, tl.Start(), 50000, model.CategoryFinancing, model.SubEquityContribution)
	post(t, l, tl.Start(), 20000, model.CategoryRevenue, model.SubSale)

	assert.Equal(t, 100000.0, q.DebtDraws().At(tl.Start()))
	assert.Equal(t, 170000.0, q.CapitalSources().At(tl.Start()))
	assert.Equal(t, 20000.0, q.ProjectCashFlow().At(tl.Start()))
}

func TestQueries_LeveredCashFlowIsNegatedEquityPartnerFlows(t *testing.T) {
	l, q, tl := newTestLedger(t)
	post(t, l, tl.Start(), 50000, model.CategoryFinancing, model.SubEquityContribution)
	post(t, l, tl.Start().AddMonths(1), -10000, model.CategoryFinancing, model.SubEquityDistribution)

	epf := q.EquityPartnerFlows()
	lcf := q.LeveredCashFlow()
	assert.Equal(t, -epf.At(tl.Start()), lcf.At(tl.Start()))
	assert.Equal(t, -epf.At(tl.Start().AddMonths(1)), lcf.At(tl.Start().AddMonths(1)))
	assert.True(t, q.EquityCashFlow().Equal(lcf))
}

func TestQueries_SweepQueries(t *testing.T) {
	l, q, tl := newTestLedger(t)
	post(t, l, tl.Start(), -5000, model.CategoryFinancing, model.SubSweepDeposit)
	post(t, l, tl.Start().AddMonths(1), 2000, model.CategoryFinancing, model.SubSweepRelease)
	post(t, l, tl.Start().AddMonths(2), -1000, model.CategoryFinancing, model.SubSweepPrepayment)

	assert.Equal(t, -5000.0, q.SweepDeposits().At(tl.Start()))
	assert.Equal(t, 2000.0, q.SweepReleases().At(tl.Start().AddMonths(1)))
	assert.Equal(t, -1000.0, q.SweepPrepayments().At(tl.Start().AddMonths(2)))
}

func TestQueries_ByNameDispatchesAllCanonicalNames(t *testing.T) {
	_, q, _ := newTestLedger(t)
	names := []string{
		"gross_revenue", "operating_expense", "opex", "noi", "operational_cash_flow",
		"capital_uses", "capital_sources", "debt_draws", "debt_service",
		"equity_contributions", "equity_distributions", "equity_partner_flows",
		"project_cash_flow", "sweep_deposits", "sweep_releases", "sweep_prepayments",
		"levered_cash_flow", "equity_cash_flow",
	}
	for _, name := range names {
		series, err := q.ByName(name)
		require.NoError(t, err, name)
		assert.NotNil(t, series, name)
	}
}

func TestQueries_ByNameRejectsUnknownQuery(t *testing.T) {
	_, q, _ := newTestLedger(t)
	_, err := q.ByName("not_a_real_query")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindQuery))
}

func TestQueries_ExportCSVIncludesPostedRecords(t *testing.T) {
	l, q, tl := newTestLedger(t)
	post(t, l, tl.Start(), 10000, model.CategoryRevenue, model.SubLease)

	csv := q.ExportCSV()
	assert.Contains(t, csv, "Lease")
	assert.Contains(t, csv, "10000")
}
