package ledger

import (
	"fmt"
	"strings"

	"performa/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExportCSV renders snapshot as the columnar dump format spec.md §6.6
// mandates: one line per record, fields in a fixed column order, no header
// row, amounts formatted as 2-decimal-place decimal strings rather than
// raw floats so the export is stable across languages and runs.
func ExportCSV(records []model.TransactionRecord) string {
	var b strings.Builder
	for _, r := range records {
		amount := decimal.NewFromFloat(r.Amount).Round(2).StringFixed(2)
		fmt.Fprintf(&b, "%s,%s,%s,%s,%s,%s,%s,%s,%s,%s,%s,%s,%d\n",
			r.TransactionID.String(),
			r.Date.Format("2006-01-02"),
			amount,
			string(r.Category),
			string(r.Subcategory),
			string(r.FlowPurpose),
			csvEscape(r.ItemName),
			r.SourceID.String(),
			r.AssetID.String(),
			optionalUUID(r.DealID),
			optionalUUID(r.EntityID),
			r.EntityType,
			r.PassNum,
		)
	}
	return b.String()
}

func optionalUUID(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}

func csvEscape(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
