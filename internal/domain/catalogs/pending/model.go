// Package pending provides placeholder catalog candidates awaiting review.
package pending

import (
	"strings"
	"time"

	"dukapos/internal/core/id"
	"dukapos/internal/core/types"
	"dukapos/internal/domain/catalogs/product"
)

// Status describes the lifecycle of a pending product. A pending product
// transitions to merged or created exactly once, by the draft approval engine.
type Status string

const (
	StatusPending Status = "pending"
	StatusMerged  Status = "merged"
	StatusCreated Status = "created"
)

// SuggestedFields holds the values a reviewer sees when deciding whether
// to create a new product or merge into an existing one.
type SuggestedFields struct {
	Name           string           `db:"suggested_name" json:"name"`
	UnitType       product.UnitType `db:"suggested_unit_type" json:"unitType"`
	CostPrice      types.Money      `db:"suggested_cost_price" json:"costPrice"`
	RetailPrice    types.Money      `db:"suggested_retail_price" json:"retailPrice"`
	WholesalePrice types.Money      `db:"suggested_wholesale_price" json:"wholesalePrice"`
}

// PendingProduct is a not-yet-canonical product candidate created by the
// import pipeline when no confident catalog match exists.
type PendingProduct struct {
	ID id.ID `db:"id" json:"id"`

	RawName   string          `db:"raw_name" json:"rawName"`
	Suggested SuggestedFields `json:"suggestedFields"`

	Status Status `db:"status" json:"status"`

	// ResolvedProductID links to the product this record was merged into
	// or created as. Set exactly once, together with the status change.
	ResolvedProductID *id.ID `db:"resolved_product_id" json:"resolvedProductId,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// New creates a pending product seeded from raw import data.
func New(rawName string, suggested SuggestedFields) *PendingProduct {
	if strings.TrimSpace(suggested.Name) == "" {
		suggested.Name = rawName
	}
	now := time.Now().UTC()
	return &PendingProduct{
		ID:        id.New(),
		RawName:   rawName,
		Suggested: suggested,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
