package product

import (
	"context"

	"dukapos/internal/core/id"
)

// ListFilter narrows product listings.
type ListFilter struct {
	Search         string
	ActiveOnly     bool
	LowStockOnly   bool
	Limit          int
	Offset         int
}

// Repository defines the interface for product persistence.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, productID id.ID) (*Product, error)

	// GetForUpdate retrieves a product with a row lock. Every
	// read-modify-write of stock or balance-bearing fields must go
	// through this inside a transaction.
	GetForUpdate(ctx context.Context, productID id.ID) (*Product, error)

	Update(ctx context.Context, p *Product) error

	// ListActive returns all active products ordered by ID ascending.
	// The stable ordering makes matcher tie-breaks deterministic.
	ListActive(ctx context.Context) ([]Product, error)

	// FindActiveByIdentifier looks up an active product by exact trimmed
	// barcode or SKU equality. Returns nil when neither matches.
	FindActiveByIdentifier(ctx context.Context, barcode, sku string) (*Product, error)

	List(ctx context.Context, filter ListFilter) ([]Product, int64, error)
}
