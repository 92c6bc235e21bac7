// Package purchase holds committed purchase documents, whether entered by
// hand or produced by approving an imported receipt draft.
package purchase

import (
	"context"
	"time"

	"dukapos/internal/core/apperror"
	"dukapos/internal/core/id"
	"dukapos/internal/core/types"
)

// Source records how a purchase entered the system.
type Source string

const (
	SourceManual    Source = "manual"
	SourceOCRImport Source = "ocr_import"
)

// Item is one received line on a purchase.
type Item struct {
	ProductID id.ID       `json:"productId"`
	Name      string      `json:"name"`
	Qty       float64     `json:"qty"`
	Unit      string      `json:"unit"`
	UnitCost  types.Money `json:"unitCost"`
	LineTotal types.Money `json:"lineTotal"`
}

// Purchase is a committed goods receipt. Once created it is immutable;
// corrections go through stock adjustments.
type Purchase struct {
	ID           id.ID      `json:"id"`
	Number       string     `json:"number"`
	SupplierName string     `json:"supplierName"`
	Date         time.Time  `json:"date"`
	Items        []Item     `json:"items"`
	TotalCost    types.Money `json:"totalCost"`
	Source       Source     `json:"source"`
	DraftID      *id.ID     `json:"draftId,omitempty"`
	CreatedBy    id.ID      `json:"createdBy"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// New creates an empty purchase shell with identity and timestamps set.
func New(source Source, createdBy id.ID) *Purchase {
	now := time.Now()
	return &Purchase{
		ID:        id.New(),
		Date:      now,
		Source:    source,
		TotalCost: types.Zero(),
		CreatedBy: createdBy,
		CreatedAt: now,
	}
}

// Validate checks structural integrity before persisting.
func (p *Purchase) Validate(ctx context.Context) error {
	if p.Number == "" {
		return apperror.NewValidation("purchase number is required")
	}
	if len(p.Items) == 0 {
		return apperror.NewValidation("purchase must have at least one item")
	}
	for i, it := range p.Items {
		if id.IsNil(it.ProductID) {
			return apperror.NewValidation("product is required").
				WithDetail("item", i+1)
		}
		if it.Qty <= 0 {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("item", i+1)
		}
		if it.UnitCost.IsNegative() {
			return apperror.NewValidation("unit cost cannot be negative").
				WithDetail("item", i+1)
		}
	}
	return nil
}

// Recalculate derives line totals and the document total from qty and
// unit cost.
func (p *Purchase) Recalculate() {
	total := types.Zero()
	for i := range p.Items {
		it := &p.Items[i]
		it.LineTotal = it.UnitCost.Mul(types.NewMoney(it.Qty))
		total = total.Add(it.LineTotal)
	}
	p.TotalCost = total
}
