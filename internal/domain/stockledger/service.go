package stockledger

import (
	"context"
	"fmt"
	"time"

	"dukapos/internal/core/apperror"
	"dukapos/internal/core/id"
	"dukapos/internal/core/tx"
	"dukapos/internal/core/types"
	"dukapos/internal/domain/catalogs/product"
	"dukapos/pkg/logger"
)

// ProductStore is the narrow product access the ledger write path needs.
// Satisfied by product.Repository.
type ProductStore interface {
	GetForUpdate(ctx context.Context, productID id.ID) (*product.Product, error)
	Update(ctx context.Context, p *product.Product) error
}

// Movement describes one requested stock mutation.
type Movement struct {
	ProductID id.ID
	Type      EntryType
	RefID     *id.ID
	QtyChange float64
	ActorID   id.ID
	Note      *string

	// CostPrice, when set, overwrites the product's cost price together
	// with the stock change (most-recent-purchase-price policy).
	CostPrice *types.Money
}

// AdjustResult reports the outcome of a manual stock adjustment.
type AdjustResult struct {
	ProductID     id.ID   `json:"productId"`
	PreviousStock float64 `json:"previousStock"`
	NewStock      float64 `json:"newStock"`
	QtyChange     float64 `json:"qtyChange"`
}

// Service is the single write path for product stock. Every stock change
// goes through Apply so the ledger and the cached projection stay in step.
type Service struct {
	products  ProductStore
	entries   Repository
	txManager tx.Manager
}

// NewService creates a stock ledger service.
func NewService(products ProductStore, entries Repository, txManager tx.Manager) *Service {
	return &Service{products: products, entries: entries, txManager: txManager}
}

// Apply executes one stock mutation within the caller's transaction: locks
// the product row, computes the resulting stock, rejects negative results,
// persists the projection, and appends the ledger entry.
func (s *Service) Apply(ctx context.Context, m Movement) (*Entry, error) {
	p, err := s.products.GetForUpdate(ctx, m.ProductID)
	if err != nil {
		return nil, err
	}

	newStock := p.StockQty + m.QtyChange
	if newStock < 0 {
		return nil, apperror.NewInvalidStock(p.Name, p.StockQty, m.QtyChange)
	}

	p.StockQty = newStock
	if m.CostPrice != nil {
		p.CostPrice = *m.CostPrice
	}
	p.Touch()
	if err := s.products.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update product stock: %w", err)
	}

	entry := &Entry{
		ID:         id.New(),
		ProductID:  m.ProductID,
		Type:       m.Type,
		RefID:      m.RefID,
		QtyChange:  m.QtyChange,
		StockAfter: newStock,
		CreatedBy:  m.ActorID,
		Note:       m.Note,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.entries.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("append ledger entry: %w", err)
	}

	return entry, nil
}

// Adjust performs an admin-initiated stock correction in its own
// transaction. Zero-quantity adjustments are rejected.
func (s *Service) Adjust(ctx context.Context, productID id.ID, qtyChange float64, reason string, actorID id.ID) (*AdjustResult, error) {
	if qtyChange == 0 {
		return nil, apperror.NewValidation("quantity change cannot be zero").
			WithDetail("field", "qtyChange")
	}

	var result *AdjustResult
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var note *string
		if reason != "" {
			note = &reason
		}

		entry, err := s.Apply(ctx, Movement{
			ProductID: productID,
			Type:      TypeAdjustment,
			QtyChange: qtyChange,
			ActorID:   actorID,
			Note:      note,
		})
		if err != nil {
			return err
		}

		result = &AdjustResult{
			ProductID:     productID,
			PreviousStock: entry.StockAfter - entry.QtyChange,
			NewStock:      entry.StockAfter,
			QtyChange:     entry.QtyChange,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock adjusted",
		"product_id", productID,
		"qty_change", qtyChange,
		"new_stock", result.NewStock,
	)

	return result, nil
}

// History returns a product's ledger entries.
func (s *Service) History(ctx context.Context, productID id.ID, filter HistoryFilter) ([]Entry, int64, error) {
	return s.entries.HistoryByProduct(ctx, productID, filter)
}
