package ledger

import (
	"time"

	"performa/model"

	"github.com/google/uuid"
)

// row is the gorm-mapped table representation of a model.TransactionRecord.
// UUIDs and enum types are stored as their string forms; the ledger's
// in-memory index (see ledger.go) is what every hot-path query actually
// reads from, so this schema only needs to be good enough to back the ad
// hoc Query escape hatch and a durable append log.
type row struct {
	TransactionID string `gorm:"primaryKey;size:36"`
	Date          time.Time `gorm:"index"`
	Amount        float64
	Category      string `gorm:"index"`
	Subcategory   string `gorm:"index"`
	FlowPurpose   string `gorm:"index"`
	ItemName      string
	SourceID      string
	AssetID       string `gorm:"index"`
	DealID        string `gorm:"index"`
	EntityID      string
	EntityType    string
	PassNum       uint8
}

func (row) TableName() string { return "transactions" }

func toRow(r model.TransactionRecord) row {
	return row{
		TransactionID: r.TransactionID.String(),
		Date:          r.Date,
		Amount:        r.Amount,
		Category:      string(r.Category),
		Subcategory:   string(r.Subcategory),
		FlowPurpose:   string(r.FlowPurpose),
		ItemName:      r.ItemName,
		SourceID:      r.SourceID.String(),
		AssetID:       r.AssetID.String(),
		DealID:        r.DealID.String(),
		EntityID:      r.EntityID.String(),
		EntityType:    r.EntityType,
		PassNum:       r.PassNum,
	}
}

func fromRow(r row) model.TransactionRecord {
	return model.TransactionRecord{
		TransactionID: uuid.MustParse(r.TransactionID),
		Date:          r.Date,
		Amount:        r.Amount,
		Category:      model.Category(r.Category),
		Subcategory:   model.Subcategory(r.Subcategory),
		FlowPurpose:   model.FlowPurpose(r.FlowPurpose),
		ItemName:      r.ItemName,
		SourceID:      parseUUIDOrNil(r.SourceID),
		AssetID:       parseUUIDOrNil(r.AssetID),
		DealID:        parseUUIDOrNil(r.DealID),
		EntityID:      parseUUIDOrNil(r.EntityID),
		EntityType:    r.EntityType,
		PassNum:       r.PassNum,
	}
}

func parseUUIDOrNil(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}
