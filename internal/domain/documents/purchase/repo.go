package purchase

import (
	"context"
	"time"

	"dukapos/internal/core/id"
)

// ListFilter narrows purchase listings.
type ListFilter struct {
	Source   Source
	FromDate *time.Time
	ToDate   *time.Time
	Limit    int
	Offset   int
}

// Repository persists purchase documents.
type Repository interface {
	Create(ctx context.Context, p *Purchase) error
	GetByID(ctx context.Context, purchaseID id.ID) (*Purchase, error)
	List(ctx context.Context, filter ListFilter) ([]*Purchase, error)
}
