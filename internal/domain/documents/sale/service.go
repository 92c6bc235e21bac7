package sale

import (
	"context"

	"dukapos/internal/core/apperror"
	appctx "dukapos/internal/core/context"
	"dukapos/internal/core/id"
	"dukapos/internal/core/tx"
	"dukapos/internal/core/types"
	"dukapos/internal/domain/catalogs/product"
	"dukapos/internal/domain/custledger"
	"dukapos/internal/domain/documents/purchase"
	"dukapos/internal/domain/stockledger"
	"dukapos/pkg/logger"
)

// NumberPrefix is the document number series for sales.
const NumberPrefix = "INV"

// BalanceApplier moves a customer balance for a wholesale sale inside the
// caller's transaction.
type BalanceApplier interface {
	ApplyWholesaleSale(ctx context.Context, customerID id.ID, grandTotal, paymentReceived types.Money) (custledger.Effect, error)
}

// CreateItemInput is one requested line. UnitPrice overrides the stored
// tier price when set.
type CreateItemInput struct {
	ProductID id.ID
	Qty       float64
	UnitPrice *types.Money
}

// CreateInput is a sale request.
type CreateInput struct {
	CustomerID      *id.ID
	Items           []CreateItemInput
	Discount        *types.Money
	PaymentReceived *types.Money
	PaymentMethod   PaymentMethod
}

// Service commits sales with their stock effects and, for wholesale,
// their customer-ledger effect, in one transaction.
type Service struct {
	repo      Repository
	products  product.Repository
	stock     purchase.StockApplier
	balances  BalanceApplier
	numbering purchase.Numbering
	txManager tx.Manager
}

// NewService creates the sale service.
func NewService(repo Repository, products product.Repository, stock purchase.StockApplier, balances BalanceApplier, numbering purchase.Numbering, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		products:  products,
		stock:     stock,
		balances:  balances,
		numbering: numbering,
		txManager: txManager,
	}
}

// CreateRetail records a walk-in sale at retail prices, paid in full.
func (s *Service) CreateRetail(ctx context.Context, input CreateInput) (*Sale, error) {
	return s.create(ctx, TypeRetail, input)
}

// CreateWholesale records a credit-capable sale at wholesale prices for a
// known customer. The resulting balance snapshot is embedded in the sale.
func (s *Service) CreateWholesale(ctx context.Context, input CreateInput) (*Sale, error) {
	if input.CustomerID == nil || id.IsNil(*input.CustomerID) {
		return nil, apperror.NewCustomerRequired()
	}
	return s.create(ctx, TypeWholesale, input)
}

func (s *Service) create(ctx context.Context, saleType Type, input CreateInput) (*Sale, error) {
	if len(input.Items) == 0 {
		return nil, apperror.NewValidation("sale must have at least one item")
	}
	for i, in := range input.Items {
		if in.Qty <= 0 {
			return nil, apperror.NewValidation("quantity must be positive").
				WithDetail("item", i+1)
		}
		if in.UnitPrice != nil && in.UnitPrice.IsNegative() {
			return nil, apperror.NewValidation("unit price cannot be negative").
				WithDetail("item", i+1)
		}
	}

	actorID := appctx.GetActorID(ctx)
	doc := New(saleType, actorID)
	doc.CustomerID = input.CustomerID
	if input.Discount != nil {
		if input.Discount.IsNegative() {
			return nil, apperror.NewValidation("discount cannot be negative")
		}
		doc.Discount = *input.Discount
	}
	if input.PaymentMethod != "" {
		doc.PaymentMethod = input.PaymentMethod
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		number, err := s.numbering.Next(ctx, NumberPrefix)
		if err != nil {
			return err
		}
		doc.Number = number

		for _, in := range input.Items {
			prod, err := s.products.GetForUpdate(ctx, in.ProductID)
			if err != nil {
				return err
			}
			if !prod.IsActive {
				return apperror.NewValidation("product is inactive").
					WithDetail("product", prod.Name)
			}

			// Availability is checked up front so shortages surface as
			// a sale-level error rather than a ledger invariant breach.
			if prod.StockQty < in.Qty {
				return apperror.NewInsufficientStock(prod.Name, in.Qty, prod.StockQty)
			}

			price := s.resolvePrice(saleType, prod, in.UnitPrice)

			if _, err := s.stock.Apply(ctx, stockledger.Movement{
				ProductID: prod.ID,
				Type:      stockledger.TypeSale,
				RefID:     &doc.ID,
				QtyChange: -in.Qty,
				ActorID:   actorID,
			}); err != nil {
				return err
			}

			doc.Items = append(doc.Items, Item{
				ProductID: prod.ID,
				Name:      prod.Name,
				Qty:       in.Qty,
				Unit:      string(prod.UnitType),
				UnitPrice: price,
			})
		}

		doc.Recalculate()

		switch saleType {
		case TypeRetail:
			// Retail settles in full at the counter: a caller-supplied
			// partial amount is ignored, retail sales carry no credit.
			doc.PaymentReceived = doc.GrandTotal
		case TypeWholesale:
			if input.PaymentReceived != nil {
				doc.PaymentReceived = *input.PaymentReceived
			}
			if doc.PaymentReceived.IsNegative() {
				return apperror.NewValidation("payment received cannot be negative")
			}
			effect, err := s.balances.ApplyWholesaleSale(ctx, *doc.CustomerID, doc.GrandTotal, doc.PaymentReceived)
			if err != nil {
				return err
			}
			doc.LedgerEffect = &effect
		}

		return s.repo.Create(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "sale recorded",
		"sale_id", doc.ID,
		"number", doc.Number,
		"type", doc.Type,
		"items", len(doc.Items),
		"grand_total", doc.GrandTotal,
	)
	return doc, nil
}

// resolvePrice picks the line price. Retail always sells at the catalog
// retail price. Wholesale takes a caller override first, then the
// wholesale price, then retail when no wholesale price is set.
func (s *Service) resolvePrice(saleType Type, prod *product.Product, override *types.Money) types.Money {
	if saleType == TypeRetail {
		return prod.RetailPrice
	}
	if override != nil {
		return *override
	}
	if !prod.WholesalePrice.IsZero() {
		return prod.WholesalePrice
	}
	return prod.RetailPrice
}

// GetByID returns a committed sale.
func (s *Service) GetByID(ctx context.Context, saleID id.ID) (*Sale, error) {
	return s.repo.GetByID(ctx, saleID)
}

// List returns sales matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Sale, error) {
	return s.repo.List(ctx, filter)
}
