package customer

import (
	"context"
	"fmt"

	"dukapos/internal/core/id"
	"dukapos/internal/core/tx"
	"dukapos/pkg/logger"
)

// Service provides business operations for the customer catalog.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new customer service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{repo: repo, txManager: txManager}
}

// Create validates and persists a new customer.
func (s *Service) Create(ctx context.Context, c *Customer) error {
	if err := c.Validate(ctx); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return fmt.Errorf("create customer: %w", err)
	}

	logger.Info(ctx, "customer created", "id", c.ID, "name", c.Name)
	return nil
}

// GetByID retrieves a customer.
func (s *Service) GetByID(ctx context.Context, customerID id.ID) (*Customer, error) {
	return s.repo.GetByID(ctx, customerID)
}

// Update persists contact and tier changes. Balances are owned by the
// customer ledger and must not change through this path.
func (s *Service) Update(ctx context.Context, c *Customer) error {
	if err := c.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetForUpdate(ctx, c.ID)
		if err != nil {
			return err
		}
		c.OpeningBalance = current.OpeningBalance
		c.CurrentBalance = current.CurrentBalance
		c.Touch()
		return s.repo.Update(ctx, c)
	})
}

// List retrieves customers with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Customer, int64, error) {
	return s.repo.List(ctx, filter)
}
