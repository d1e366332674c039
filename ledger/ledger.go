// Package ledger is the append-only store of TransactionRecords each
// analysis run constructs for itself (spec.md §4.1). It is backed by an
// in-memory sqlite database reached through gorm — the "embedded columnar
// analytical engine" the specification calls for — plus a parallel
// in-memory slice/map index that every LedgerQueries aggregation actually
// reads from, since sub-100ms aggregation latency over a deal's lifetime
// transaction volume matters more than going through SQL on every call.
package ledger

import (
	"fmt"
	"sort"
	"sync"

	"performa/internal/apperrors"
	"performa/internal/logger"
	"performa/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ledger is the append-only, eventually-sealed transaction store for one
// analysis run.
type Ledger struct {
	mu       sync.RWMutex
	db       *gorm.DB
	timeline model.Timeline
	records  []model.TransactionRecord // committed, date-sorted
	sealed   bool

	// pending holds records appended inside an open Transaction scope,
	// discarded on error/panic and bulk-inserted on successful Commit.
	pending []model.TransactionRecord
	inScope bool
}

// New opens a fresh Ledger bound to timeline. Each Ledger gets its own
// private in-memory database.
func New(timeline model.Timeline) (*Ledger, error) {
	db, err := openStore(uuid.New().String())
	if err != nil {
		return nil, err
	}
	return &Ledger{db: db, timeline: timeline}, nil
}

// Append buffers a single record for the ledger's current scope. Outside an
// open Transaction, it commits immediately as a one-record batch.
func (l *Ledger) Append(record model.TransactionRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.appendLocked(record)
}

func (l *Ledger) appendLocked(record model.TransactionRecord) error {
	if l.sealed {
		return apperrors.New(apperrors.KindLedgerSealed, "cannot append: ledger is sealed")
	}
	if !l.timeline.Contains(record.YearMonth()) {
		return apperrors.Newf(apperrors.KindOutOfTimeline,
			"transaction date %s falls outside the active timeline", record.YearMonth()).
			WithModel(record.SourceID.String()).
			WithDate(record.Date)
	}

	if l.inScope {
		l.pending = append(l.pending, record)
		return nil
	}
	return l.commit([]model.TransactionRecord{record})
}

// AppendSeries expands series into one record per non-zero month and
// appends each, skipping zero-amount months entirely.
func (l *Ledger) AppendSeries(series *model.CashFlowSeries, meta model.PostingMeta) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	months := series.Timeline.Months()
	for i, v := range series.Values {
		if v == 0 {
			continue
		}
		rec := model.NewTransactionRecord(months[i], v, meta)
		if err := l.appendLocked(rec); err != nil {
			return err
		}
	}
	return nil
}

// Transaction runs scope with all of its Append/AppendSeries calls batched
// into a single bulk insert on successful return. An error returned by
// scope, or a panic inside it, discards everything scope buffered.
func (l *Ledger) Transaction(scope func() error) (err error) {
	l.mu.Lock()
	l.inScope = true
	l.pending = nil
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.inScope = false
		if r := recover(); r != nil {
			l.pending = nil
			err = fmt.Errorf("ledger transaction panicked: %v", r)
			return
		}
		if err != nil {
			l.pending = nil
			return
		}
		err = l.commit(l.pending)
		l.pending = nil
	}()

	return scope()
}

// commit bulk-inserts batch into the sqlite store and the in-memory index,
// maintaining date order in the index. Caller must hold l.mu.
func (l *Ledger) commit(batch []model.TransactionRecord) error {
	if len(batch) == 0 {
		return nil
	}

	rows := make([]row, len(batch))
	for i, r := range batch {
		rows[i] = toRow(r)
	}
	if err := l.db.CreateInBatches(rows, 500).Error; err != nil {
		return apperrors.Wrap(err, apperrors.KindQuery, "failed to persist ledger batch")
	}

	l.records = append(l.records, batch...)
	sort.SliceStable(l.records, func(i, j int) bool {
		return l.records[i].Date.Before(l.records[j].Date)
	})

	logger.WithFields(map[string]interface{}{
		"batch_size": len(batch),
	}).Debug("committed ledger batch")

	return nil
}

// Seal marks the ledger closed; subsequent Append/AppendSeries calls fail
// with LedgerSealedError. Called once orchestration completes.
func (l *Ledger) Seal() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sealed = true
}

// Snapshot returns every committed record, time-ordered. The returned slice
// is a copy; callers may not mutate the ledger through it.
func (l *Ledger) Snapshot() []model.TransactionRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]model.TransactionRecord, len(l.records))
	copy(out, l.records)
	return out
}

// Timeline returns the ledger's bound timeline.
func (l *Ledger) Timeline() model.Timeline {
	return l.timeline
}

// Filter is a predicate-based escape hatch used internally by Queries; it
// is not a substitute for the canonical aggregations in queries.go.
func (l *Ledger) Filter(pred func(model.TransactionRecord) bool) []model.TransactionRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []model.TransactionRecord
	for _, r := range l.records {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}

// Query runs a raw SQL predicate (a WHERE clause fragment, e.g.
// "category = 'Revenue' AND amount > 0") against the sqlite-backed store
// and returns the matching records. This is the ad hoc escape hatch spec.md
// §4.1 reserves for callers that need something LedgerQueries' canonical
// aggregations don't cover; it must never be used to reimplement one of
// them with cross-query arithmetic.
func (l *Ledger) Query(whereClause string, args ...interface{}) ([]model.TransactionRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var rows []row
	if err := l.db.Where(whereClause, args...).Order("date").Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindQuery, "ledger query failed")
	}
	out := make([]model.TransactionRecord, len(rows))
	for i, r := range rows {
		out[i] = fromRow(r)
	}
	return out, nil
}
