package purchase

import (
	"context"
	"time"

	"dukapos/internal/core/apperror"
	appctx "dukapos/internal/core/context"
	"dukapos/internal/core/id"
	"dukapos/internal/core/tx"
	"dukapos/internal/core/types"
	"dukapos/internal/domain/catalogs/product"
	"dukapos/internal/domain/stockledger"
	"dukapos/pkg/logger"
)

// NumberPrefix is the document number series for purchases.
const NumberPrefix = "PO"

// Numbering hands out the next document number in a series.
type Numbering interface {
	Next(ctx context.Context, prefix string) (string, error)
}

// StockApplier posts a stock movement inside the caller's transaction.
type StockApplier interface {
	Apply(ctx context.Context, m stockledger.Movement) (*stockledger.Entry, error)
}

// CreateItemInput is one line of a manual purchase request.
type CreateItemInput struct {
	ProductID id.ID
	Qty       float64
	UnitCost  types.Money
}

// CreateInput is a manual purchase entry request.
type CreateInput struct {
	SupplierName string
	Date         *time.Time
	Items        []CreateItemInput
}

// Service commits purchase documents and their stock effects.
type Service struct {
	repo      Repository
	products  product.Repository
	stock     StockApplier
	numbering Numbering
	txManager tx.Manager
}

// NewService creates the purchase service.
func NewService(repo Repository, products product.Repository, stock StockApplier, numbering Numbering, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		products:  products,
		stock:     stock,
		numbering: numbering,
		txManager: txManager,
	}
}

// CreateManual records a hand-entered purchase: every line increases stock
// and overwrites the product's cost price, then the document is persisted.
// All of it happens in one transaction.
func (s *Service) CreateManual(ctx context.Context, input CreateInput) (*Purchase, error) {
	if len(input.Items) == 0 {
		return nil, apperror.NewValidation("purchase must have at least one item")
	}

	actorID := appctx.GetActorID(ctx)
	p := New(SourceManual, actorID)
	p.SupplierName = input.SupplierName
	if input.Date != nil {
		p.Date = *input.Date
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		number, err := s.numbering.Next(ctx, NumberPrefix)
		if err != nil {
			return err
		}
		p.Number = number

		for _, in := range input.Items {
			prod, err := s.products.GetByID(ctx, in.ProductID)
			if err != nil {
				return err
			}

			unitCost := in.UnitCost
			if _, err := s.stock.Apply(ctx, stockledger.Movement{
				ProductID: in.ProductID,
				Type:      stockledger.TypePurchase,
				RefID:     &p.ID,
				QtyChange: in.Qty,
				ActorID:   actorID,
				CostPrice: &unitCost,
			}); err != nil {
				return err
			}

			p.Items = append(p.Items, Item{
				ProductID: in.ProductID,
				Name:      prod.Name,
				Qty:       in.Qty,
				Unit:      string(prod.UnitType),
				UnitCost:  in.UnitCost,
			})
		}

		p.Recalculate()
		if err := p.Validate(ctx); err != nil {
			return err
		}
		return s.repo.Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase recorded",
		"purchase_id", p.ID,
		"number", p.Number,
		"items", len(p.Items),
		"total_cost", p.TotalCost,
	)
	return p, nil
}

// GetByID returns a committed purchase.
func (s *Service) GetByID(ctx context.Context, purchaseID id.ID) (*Purchase, error) {
	return s.repo.GetByID(ctx, purchaseID)
}

// List returns purchases matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Purchase, error) {
	return s.repo.List(ctx, filter)
}
