// Package product provides the canonical product catalog.
package product

import (
	"context"
	"strings"
	"time"

	"dukapos/internal/core/apperror"
	"dukapos/internal/core/id"
	"dukapos/internal/core/types"
)

// UnitType defines how a product is counted or measured.
type UnitType string

const (
	UnitPcs    UnitType = "pcs"
	UnitKg     UnitType = "kg"
	UnitPack   UnitType = "pack"
	UnitCarton UnitType = "carton"
	UnitCase   UnitType = "case"
)

// IsValidUnitType reports whether u is one of the supported unit types.
func IsValidUnitType(u UnitType) bool {
	switch u {
	case UnitPcs, UnitKg, UnitPack, UnitCarton, UnitCase:
		return true
	}
	return false
}

// Product is a canonical catalog entry. Products are never deleted,
// only deactivated, so historical documents keep valid references.
type Product struct {
	ID id.ID `db:"id" json:"id"`

	Name     string  `db:"name" json:"name"`
	Brand    *string `db:"brand" json:"brand,omitempty"`
	Category *string `db:"category" json:"category,omitempty"`

	// SKU and Barcode are identifier-matching keys for the product matcher.
	SKU     *string `db:"sku" json:"sku,omitempty"`
	Barcode *string `db:"barcode" json:"barcode,omitempty"`

	UnitType UnitType `db:"unit_type" json:"unitType"`
	PackSize float64  `db:"pack_size" json:"packSize"`

	// Aliases are alternative supplier spellings accepted by the matcher.
	Aliases []string `db:"aliases" json:"aliases"`

	CostPrice      types.Money `db:"cost_price" json:"costPrice"`
	RetailPrice    types.Money `db:"retail_price" json:"retailPrice"`
	WholesalePrice types.Money `db:"wholesale_price" json:"wholesalePrice"`

	// StockQty is a cached projection of the stock ledger. It must always
	// equal the stockAfter of the product's most recent ledger entry.
	StockQty     float64 `db:"stock_qty" json:"stockQty"`
	ReorderLevel float64 `db:"reorder_level" json:"reorderLevel"`

	IsActive bool `db:"is_active" json:"isActive"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// New creates a product with generated ID and zero stock.
func New(name string, unitType UnitType) *Product {
	now := time.Now().UTC()
	return &Product{
		ID:             id.New(),
		Name:           strings.TrimSpace(name),
		UnitType:       unitType,
		PackSize:       1,
		Aliases:        []string{},
		CostPrice:      types.Zero(),
		RetailPrice:    types.Zero(),
		WholesalePrice: types.Zero(),
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Validate implements invariant checks without database access.
func (p *Product) Validate(ctx context.Context) error {
	if strings.TrimSpace(p.Name) == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if !IsValidUnitType(p.UnitType) {
		return apperror.NewValidation("invalid unit type").
			WithDetail("field", "unitType").
			WithDetail("value", string(p.UnitType))
	}
	if p.CostPrice.IsNegative() || p.RetailPrice.IsNegative() || p.WholesalePrice.IsNegative() {
		return apperror.NewValidation("prices cannot be negative")
	}
	if p.StockQty < 0 {
		return apperror.NewValidation("stock cannot be negative").
			WithDetail("field", "stockQty")
	}
	return nil
}

// Touch updates the modification timestamp.
func (p *Product) Touch() {
	p.UpdatedAt = time.Now().UTC()
}

// Deactivate marks the product inactive. Deactivated products are excluded
// from matching and cannot be sold.
func (p *Product) Deactivate() {
	p.IsActive = false
	p.Touch()
}

// AddAlias records an alternative spelling if not already present.
func (p *Product) AddAlias(alias string) {
	alias = strings.TrimSpace(alias)
	if alias == "" {
		return
	}
	for _, a := range p.Aliases {
		if strings.EqualFold(a, alias) {
			return
		}
	}
	p.Aliases = append(p.Aliases, alias)
	p.Touch()
}
