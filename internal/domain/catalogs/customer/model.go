// Package customer provides the customer catalog and running balances.
package customer

import (
	"context"
	"strings"
	"time"

	"dukapos/internal/core/apperror"
	"dukapos/internal/core/id"
	"dukapos/internal/core/types"
)

// PricingTier selects which catalog price applies by default.
type PricingTier string

const (
	TierRetail    PricingTier = "retail"
	TierWholesale PricingTier = "wholesale"
)

// Customer is a wholesale buyer with a running credit balance.
// A positive balance means the customer owes the shop.
type Customer struct {
	ID id.ID `db:"id" json:"id"`

	Name     string  `db:"name" json:"name"`
	ShopName *string `db:"shop_name" json:"shopName,omitempty"`
	Phone    string  `db:"phone" json:"phone"`
	Address  *string `db:"address" json:"address,omitempty"`

	PricingTier PricingTier `db:"pricing_tier" json:"pricingTier"`

	OpeningBalance types.Money `db:"opening_balance" json:"openingBalance"`

	// CurrentBalance is mutated only by wholesale sale creation and
	// payment creation, both under transaction.
	CurrentBalance types.Money `db:"current_balance" json:"currentBalance"`

	IsActive bool `db:"is_active" json:"isActive"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// New creates a customer whose current balance starts at the opening balance.
func New(name, phone string, openingBalance types.Money) *Customer {
	now := time.Now().UTC()
	return &Customer{
		ID:             id.New(),
		Name:           strings.TrimSpace(name),
		Phone:          strings.TrimSpace(phone),
		PricingTier:    TierWholesale,
		OpeningBalance: openingBalance,
		CurrentBalance: openingBalance,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Validate implements invariant checks without database access.
func (c *Customer) Validate(ctx context.Context) error {
	if strings.TrimSpace(c.Name) == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if strings.TrimSpace(c.Phone) == "" {
		return apperror.NewValidation("phone is required").
			WithDetail("field", "phone")
	}
	switch c.PricingTier {
	case TierRetail, TierWholesale:
	default:
		return apperror.NewValidation("invalid pricing tier").
			WithDetail("field", "pricingTier").
			WithDetail("value", string(c.PricingTier))
	}
	return nil
}

// Touch updates the modification timestamp.
func (c *Customer) Touch() {
	c.UpdatedAt = time.Now().UTC()
}
