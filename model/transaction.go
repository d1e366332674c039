package model

import (
	"time"

	"github.com/google/uuid"
)

// TransactionRecord is the atomic, immutable unit of the ledger
// (spec.md §3.3). Once constructed it is never mutated; corrections are
// posted as new records by a later orchestration pass.
type TransactionRecord struct {
	TransactionID uuid.UUID
	Date          time.Time // always normalized to the 1st of the month
	Amount        float64   // deal perspective: + into the entity, - out
	Category      Category
	Subcategory   Subcategory
	FlowPurpose   FlowPurpose
	ItemName      string
	SourceID      uuid.UUID // the posting model's identity
	AssetID       uuid.UUID
	DealID        uuid.UUID // optional; uuid.Nil when absent
	EntityID      uuid.UUID // optional; uuid.Nil when absent (partner/facility)
	EntityType    string    // optional, e.g. "GP", "LP", "Senior"
	PassNum       uint8
}

// PostingMeta carries everything about a posting except its month and
// amount; Ledger.AppendSeries expands a (meta, series) pair into one record
// per non-zero month.
type PostingMeta struct {
	Category   Category
	Subcategory Subcategory
	ItemName   string
	SourceID   uuid.UUID
	AssetID    uuid.UUID
	DealID     uuid.UUID
	EntityID   uuid.UUID
	EntityType string
	PassNum    uint8
}

// NewTransactionRecord builds a fully-valued, immutable record with its
// FlowPurpose derived per §3.6. date is normalized to the 1st of its month.
func NewTransactionRecord(ym YearMonth, amount float64, meta PostingMeta) TransactionRecord {
	return TransactionRecord{
		TransactionID: uuid.New(),
		Date:          ym.Time(),
		Amount:        amount,
		Category:      meta.Category,
		Subcategory:   meta.Subcategory,
		FlowPurpose:   DerivePurpose(meta.Category, meta.Subcategory, amount),
		ItemName:      meta.ItemName,
		SourceID:      meta.SourceID,
		AssetID:       meta.AssetID,
		DealID:        meta.DealID,
		EntityID:      meta.EntityID,
		EntityType:    meta.EntityType,
		PassNum:       meta.PassNum,
	}
}

// YearMonth returns the record's posting month.
func (r TransactionRecord) YearMonth() YearMonth {
	return NewYearMonth(r.Date)
}
