package product

import (
	"context"
	"fmt"

	"dukapos/internal/core/id"
	"dukapos/internal/core/tx"
	"dukapos/pkg/logger"
)

// Service provides business operations for the product catalog.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new product service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{repo: repo, txManager: txManager}
}

// Create validates and persists a new product.
func (s *Service) Create(ctx context.Context, p *Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return fmt.Errorf("create product: %w", err)
	}

	logger.Info(ctx, "product created", "id", p.ID, "name", p.Name)
	return nil
}

// GetByID retrieves a product.
func (s *Service) GetByID(ctx context.Context, productID id.ID) (*Product, error) {
	return s.repo.GetByID(ctx, productID)
}

// Update validates and persists product changes. Stock quantity is owned by
// the stock ledger and must not change through this path.
func (s *Service) Update(ctx context.Context, p *Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetForUpdate(ctx, p.ID)
		if err != nil {
			return err
		}
		// Catalog edits never move stock; preserve the ledger projection.
		p.StockQty = current.StockQty
		p.Touch()
		return s.repo.Update(ctx, p)
	})
}

// Deactivate marks a product inactive. Products are never deleted.
func (s *Service) Deactivate(ctx context.Context, productID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.repo.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		p.Deactivate()
		if err := s.repo.Update(ctx, p); err != nil {
			return err
		}
		logger.Info(ctx, "product deactivated", "id", productID)
		return nil
	})
}

// AddAlias records a supplier spelling on the product.
func (s *Service) AddAlias(ctx context.Context, productID id.ID, alias string) (*Product, error) {
	var updated *Product
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.repo.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		p.AddAlias(alias)
		if err := s.repo.Update(ctx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	return updated, err
}

// List retrieves products with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Product, int64, error) {
	return s.repo.List(ctx, filter)
}
