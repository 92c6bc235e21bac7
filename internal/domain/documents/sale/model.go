// Package sale records retail and wholesale sales and their stock and
// customer-ledger effects.
package sale

import (
	"time"

	"dukapos/internal/core/id"
	"dukapos/internal/core/types"
	"dukapos/internal/domain/custledger"
)

// Type distinguishes the two pricing channels.
type Type string

const (
	TypeRetail    Type = "retail"
	TypeWholesale Type = "wholesale"
)

// Item is one sold line.
type Item struct {
	ProductID id.ID       `json:"productId"`
	Name      string      `json:"name"`
	Qty       float64     `json:"qty"`
	Unit      string      `json:"unit"`
	UnitPrice types.Money `json:"unitPrice"`
	LineTotal types.Money `json:"lineTotal"`
}

// PaymentMethod is how the sale was settled.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentMobile PaymentMethod = "mobile"
	PaymentCredit PaymentMethod = "credit"
)

// Sale is a committed sale document. Item names and units are snapshots
// taken at sale time; a later catalog rename does not change them. The
// LedgerEffect on a wholesale sale is the balance snapshot captured at
// commit time; it is never recomputed.
type Sale struct {
	ID              id.ID              `json:"id"`
	Number          string             `json:"number"`
	Type            Type               `json:"type"`
	CustomerID      *id.ID             `json:"customerId,omitempty"`
	Date            time.Time          `json:"date"`
	Items           []Item             `json:"items"`
	Subtotal        types.Money        `json:"subtotal"`
	Discount        types.Money        `json:"discount"`
	GrandTotal      types.Money        `json:"grandTotal"`
	PaymentReceived types.Money        `json:"paymentReceived"`
	PaymentMethod   PaymentMethod      `json:"paymentMethod"`
	LedgerEffect    *custledger.Effect `json:"ledgerEffect,omitempty"`
	CreatedBy       id.ID              `json:"createdBy"`
	CreatedAt       time.Time          `json:"createdAt"`
}

// New creates a sale shell.
func New(saleType Type, createdBy id.ID) *Sale {
	now := time.Now()
	return &Sale{
		ID:              id.New(),
		Type:            saleType,
		Date:            now,
		Subtotal:        types.Zero(),
		Discount:        types.Zero(),
		GrandTotal:      types.Zero(),
		PaymentReceived: types.Zero(),
		PaymentMethod:   PaymentCash,
		CreatedBy:       createdBy,
		CreatedAt:       now,
	}
}

// Recalculate derives line totals, the subtotal and the grand total.
func (s *Sale) Recalculate() {
	subtotal := types.Zero()
	for i := range s.Items {
		it := &s.Items[i]
		it.LineTotal = it.UnitPrice.Mul(types.NewMoney(it.Qty))
		subtotal = subtotal.Add(it.LineTotal)
	}
	s.Subtotal = subtotal
	s.GrandTotal = subtotal.Sub(s.Discount)
}

// OutstandingAmount is the unpaid remainder carried to the customer ledger.
func (s *Sale) OutstandingAmount() types.Money {
	return s.GrandTotal.Sub(s.PaymentReceived)
}
