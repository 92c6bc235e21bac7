package customer

import (
	"context"

	"dukapos/internal/core/id"
)

// ListFilter narrows customer listings.
type ListFilter struct {
	Search     string
	ActiveOnly bool
	Limit      int
	Offset     int
}

// Repository defines the interface for customer persistence.
type Repository interface {
	Create(ctx context.Context, c *Customer) error
	GetByID(ctx context.Context, customerID id.ID) (*Customer, error)

	// GetForUpdate retrieves a customer with a row lock for balance
	// mutation inside a transaction.
	GetForUpdate(ctx context.Context, customerID id.ID) (*Customer, error)

	Update(ctx context.Context, c *Customer) error
	List(ctx context.Context, filter ListFilter) ([]Customer, int64, error)
}
