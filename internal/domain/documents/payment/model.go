// Package payment records standalone customer payments against credit.
package payment

import (
	"time"

	"dukapos/internal/core/id"
	"dukapos/internal/core/types"
)

// Method is how the money arrived.
type Method string

const (
	MethodCash   Method = "cash"
	MethodMobile Method = "mobile"
	MethodBank   Method = "bank"
)

// IsValidMethod reports whether m is a supported payment method.
func IsValidMethod(m Method) bool {
	switch m {
	case MethodCash, MethodMobile, MethodBank:
		return true
	}
	return false
}

// Payment is a committed customer payment.
type Payment struct {
	ID              id.ID       `json:"id"`
	CustomerID      id.ID       `json:"customerId"`
	Date            time.Time   `json:"date"`
	Amount          types.Money `json:"amount"`
	Method          Method      `json:"method"`
	Note            string      `json:"note,omitempty"`
	PreviousBalance types.Money `json:"previousBalance"`
	NewBalance      types.Money `json:"newBalance"`
	CreatedBy       id.ID       `json:"createdBy"`
	CreatedAt       time.Time   `json:"createdAt"`
}
