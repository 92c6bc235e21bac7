package pending

import (
	"context"

	"dukapos/internal/core/id"
)

// ListFilter narrows pending product listings.
type ListFilter struct {
	Status Status
	Limit  int
	Offset int
}

// Repository defines the interface for pending product persistence.
type Repository interface {
	Create(ctx context.Context, p *PendingProduct) error
	GetByID(ctx context.Context, pendingID id.ID) (*PendingProduct, error)

	// Resolve transitions a pending product out of the pending status,
	// linking it to the product it was merged into or created as. The
	// transition is guarded: it fails with Conflict if the record is no
	// longer pending, making the merged/created transition exactly-once.
	Resolve(ctx context.Context, pendingID id.ID, status Status, productID id.ID) error

	List(ctx context.Context, filter ListFilter) ([]PendingProduct, int64, error)
}
