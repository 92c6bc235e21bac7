package stockledger

import (
	"context"
	"time"

	"dukapos/internal/core/id"
)

// HistoryFilter narrows ledger history queries.
type HistoryFilter struct {
	Type     *EntryType
	FromDate *time.Time
	ToDate   *time.Time
	Limit    int
	Offset   int
}

// Repository defines operations for the stock ledger. The log is
// append-only: entries are never updated or deleted.
type Repository interface {
	// Append inserts one entry. Must be called within the transaction
	// that performs the corresponding stock mutation.
	Append(ctx context.Context, e *Entry) error

	// HistoryByProduct returns entries for a product, newest first.
	HistoryByProduct(ctx context.Context, productID id.ID, filter HistoryFilter) ([]Entry, int64, error)

	// LatestByProduct returns the most recent entry, or nil when the
	// product has no history.
	LatestByProduct(ctx context.Context, productID id.ID) (*Entry, error)
}
