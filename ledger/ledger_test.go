package ledger

import (
	"testing"
	"time"

	"performa/internal/apperrors"
	"performa/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTimeline(t *testing.T) model.Timeline {
	t.Helper()
	tl, err := model.NewTimeline(model.YearMonth{Year: 2025, Month: time.January}, 6)
	require.NoError(t, err)
	return tl
}

func rentMeta(assetID uuid.UUID) model.PostingMeta {
	return model.PostingMeta{
		Category:    model.CategoryRevenue,
		Subcategory: model.SubLease,
		ItemName:    "Base Rent",
		AssetID:     assetID,
	}
}

func TestLedger_AppendAndSnapshot(t *testing.T) {
	tl := testTimeline(t)
	l, err := New(tl)
	require.NoError(t, err)

	assetID := uuid.New()
	rec := model.NewTransactionRecord(tl.Start(), 1000, rentMeta(assetID))
	require.NoError(t, l.Append(rec))

	snap := l.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, 1000.0, snap[0].Amount)
	assert.Equal(t, model.PurposeOperating, snap[0].FlowPurpose)
}

func TestLedger_AppendRejectsOutOfTimelineDate(t *testing.T) {
	tl := testTimeline(t)
	l, err := New(tl)
	require.NoError(t, err)

	rec := model.NewTransactionRecord(tl.Start().AddMonths(-1), 100, rentMeta(uuid.New()))
	err = l.Append(rec)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindOutOfTimeline))
}

func TestLedger_AppendRejectsAfterSeal(t *testing.T) {
	tl := testTimeline(t)
	l, err := New(tl)
	require.NoError(t, err)
	l.Seal()

	rec := model.NewTransactionRecord(tl.Start(), 100, rentMeta(uuid.New()))
	err = l.Append(rec)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindLedgerSealed))
}

func TestLedger_AppendSeriesSkipsZeroMonths(t *testing.T) {
	tl := testTimeline(t)
	l, err := New(tl)
	require.NoError(t, err)

	series := model.NewSeries(tl)
	series.Set(tl.Start(), 500)
	series.Set(tl.Start().AddMonths(2), -200)

	require.NoError(t, l.AppendSeries(series, rentMeta(uuid.New())))
	assert.Len(t, l.Snapshot(), 2)
}

func TestLedger_TransactionCommitsAtomically(t *testing.T) {
	tl := testTimeline(t)
	l, err := New(tl)
	require.NoError(t, err)

	err = l.Transaction(func() error {
		require.NoError(t, l.Append(model.NewTransactionRecord(tl.Start(), 100, rentMeta(uuid.New()))))
		require.NoError(t, l.Append(model.NewTransactionRecord(tl.Start().AddMonths(1), 200, rentMeta(uuid.New()))))
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, l.Snapshot(), 2)
}

func TestLedger_TransactionDiscardsOnError(t *testing.T) {
	tl := testTimeline(t)
	l, err := New(tl)
	require.NoError(t, err)

	err = l.Transaction(func() error {
		require.NoError(t, l.Append(model.NewTransactionRecord(tl.Start(), 100, rentMeta(uuid.New()))))
		return apperrors.New(apperrors.KindConfiguration, "boom")
	})
	require.Error(t, err)
	assert.Empty(t, l.Snapshot())
}

func TestLedger_TransactionDiscardsOnPanic(t *testing.T) {
	tl := testTimeline(t)
	l, err := New(tl)
	require.NoError(t, err)

	err = l.Transaction(func() error {
		require.NoError(t, l.Append(model.NewTransactionRecord(tl.Start(), 100, rentMeta(uuid.New()))))
		panic("unexpected")
	})
	require.Error(t, err)
	assert.Empty(t, l.Snapshot())
}

func TestLedger_SnapshotIsDateOrdered(t *testing.T) {
	tl := testTimeline(t)
	l, err := New(tl)
	require.NoError(t, err)

	require.NoError(t, l.Append(model.NewTransactionRecord(tl.Start().AddMonths(2), 1, rentMeta(uuid.New()))))
	require.NoError(t, l.Append(model.NewTransactionRecord(tl.Start(), 2, rentMeta(uuid.New()))))
	require.NoError(t, l.Append(model.NewTransactionRecord(tl.Start().AddMonths(1), 3, rentMeta(uuid.New()))))

	snap := l.Snapshot()
	require.Len(t, snap, 3)
	assert.True(t, snap[0].Date.Before(snap[1].Date))
	assert.True(t, snap[1].Date.Before(snap[2].Date))
}

func TestLedger_FilterAppliesPredicate(t *testing.T) {
	tl := testTimeline(t)
	l, err := New(tl)
	require.NoError(t, err)

	require.NoError(t, l.Append(model.NewTransactionRecord(tl.Start(), 100, rentMeta(uuid.New()))))
	require.NoError(t, l.Append(model.NewTransactionRecord(tl.Start(), -50, model.PostingMeta{
		Category:    model.CategoryExpense,
		Subcategory: model.SubOpEx,
	})))

	revenue := l.Filter(func(r model.TransactionRecord) bool {
		return r.Category == model.CategoryRevenue
	})
	assert.Len(t, revenue, 1)
	assert.Equal(t, 100.0, revenue[0].Amount)
}
