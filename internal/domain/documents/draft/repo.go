package draft

import (
	"context"

	"dukapos/internal/core/id"
)

// ListFilter narrows draft listings.
type ListFilter struct {
	Status Status
	Limit  int
	Offset int
}

// Repository persists purchase drafts.
type Repository interface {
	Create(ctx context.Context, d *PurchaseDraft) error
	GetByID(ctx context.Context, draftID id.ID) (*PurchaseDraft, error)

	// GetForUpdate locks the draft row for the duration of the
	// transaction so concurrent approvals serialize.
	GetForUpdate(ctx context.Context, draftID id.ID) (*PurchaseDraft, error)

	Update(ctx context.Context, d *PurchaseDraft) error
	List(ctx context.Context, filter ListFilter) ([]*PurchaseDraft, error)
}
