// Package stockledger provides the append-only stock movement log.
//
// One entry is written per stock-affecting event, in the same transaction
// as the stock mutation it documents. The log is the sole audit trail for
// quantities; the product's cached stockQty is a projection of the latest
// entry's stockAfter and must always agree with it.
package stockledger

import (
	"time"

	"dukapos/internal/core/id"
)

// EntryType classifies a stock-affecting event.
type EntryType string

const (
	// TypeSale records a negative quantity change from a sale.
	TypeSale EntryType = "sale"
	// TypePurchase records a positive quantity change from a purchase.
	TypePurchase EntryType = "purchase"
	// TypeAdjustment records an admin-initiated correction of any sign.
	TypeAdjustment EntryType = "adjustment"
)

// Entry is one immutable audit record of a product's quantity change and
// the resulting stock level. Entries for a product, ordered by creation
// time, satisfy stockAfter[i] = stockAfter[i-1] + qtyChange[i] with every
// stockAfter >= 0.
type Entry struct {
	ID id.ID `db:"id" json:"id"`

	ProductID id.ID     `db:"product_id" json:"productId"`
	Type      EntryType `db:"type" json:"type"`

	// RefID points at the originating sale or purchase, nil for adjustments.
	RefID *id.ID `db:"ref_id" json:"refId,omitempty"`

	QtyChange  float64 `db:"qty_change" json:"qtyChange"`
	StockAfter float64 `db:"stock_after" json:"stockAfter"`

	CreatedBy id.ID   `db:"created_by" json:"createdBy"`
	Note      *string `db:"note" json:"note,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
