package sale

import (
	"context"
	"time"

	"dukapos/internal/core/id"
)

// ListFilter narrows sale listings.
type ListFilter struct {
	Type       Type
	CustomerID *id.ID
	FromDate   *time.Time
	ToDate     *time.Time
	Limit      int
	Offset     int
}

// Repository persists sale documents.
type Repository interface {
	Create(ctx context.Context, s *Sale) error
	GetByID(ctx context.Context, saleID id.ID) (*Sale, error)
	List(ctx context.Context, filter ListFilter) ([]*Sale, error)
}
