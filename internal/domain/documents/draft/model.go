// Package draft holds purchase drafts produced by receipt imports and the
// approval engine that turns them into committed purchases.
package draft

import (
	"time"

	"dukapos/internal/core/id"
	"dukapos/internal/core/types"
)

// Status is the draft lifecycle state. Drafts move from StatusDraft to
// exactly one terminal state and never back.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Item is one parsed receipt line awaiting approval.
type Item struct {
	RawName          string      `json:"rawName"`
	Qty              float64     `json:"qty"`
	Unit             string      `json:"unit"`
	UnitCost         types.Money `json:"unitCost"`
	LineTotal        types.Money `json:"lineTotal"`
	MatchedProductID *id.ID      `json:"matchedProductId,omitempty"`
	Confidence       float64     `json:"confidence"`
	MatchMethod      string      `json:"matchMethod,omitempty"`
	PendingProductID *id.ID      `json:"pendingProductId,omitempty"`
	RequiresApproval bool        `json:"requiresApproval"`
}

// PurchaseDraft is an imported receipt pending human review.
type PurchaseDraft struct {
	ID           id.ID       `json:"id"`
	SupplierName string      `json:"supplierName"`
	Date         time.Time   `json:"date"`
	Items        []Item      `json:"items"`
	TotalCost    types.Money `json:"totalCost"`
	Status       Status      `json:"status"`
	ImagePath    string      `json:"imagePath,omitempty"`
	RawText      string      `json:"rawText,omitempty"`
	OCRDegraded  bool        `json:"ocrDegraded"`
	CreatedBy    id.ID       `json:"createdBy"`
	ApprovedBy   *id.ID      `json:"approvedBy,omitempty"`
	ApprovedAt   *time.Time  `json:"approvedAt,omitempty"`
	RejectedBy   *id.ID      `json:"rejectedBy,omitempty"`
	RejectedAt   *time.Time  `json:"rejectedAt,omitempty"`
	RejectReason string      `json:"rejectReason,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// New creates a fresh draft shell.
func New(createdBy id.ID) *PurchaseDraft {
	now := time.Now()
	return &PurchaseDraft{
		ID:        id.New(),
		Date:      now,
		Status:    StatusDraft,
		TotalCost: types.Zero(),
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Recalculate derives missing line totals and the draft total. A line
// total already present (printed on the receipt) is kept as-is.
func (d *PurchaseDraft) Recalculate() {
	total := types.Zero()
	for i := range d.Items {
		it := &d.Items[i]
		if it.LineTotal.IsZero() {
			it.LineTotal = it.UnitCost.Mul(types.NewMoney(it.Qty))
		}
		total = total.Add(it.LineTotal)
	}
	d.TotalCost = total
}

// IsProcessed reports whether the draft has reached a terminal state.
func (d *PurchaseDraft) IsProcessed() bool {
	return d.Status != StatusDraft
}
