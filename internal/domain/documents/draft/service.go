package draft

import (
	"context"
	"time"

	"dukapos/internal/core/apperror"
	appctx "dukapos/internal/core/context"
	"dukapos/internal/core/id"
	"dukapos/internal/core/tx"
	"dukapos/internal/core/types"
	"dukapos/internal/domain/catalogs/pending"
	"dukapos/internal/domain/catalogs/product"
	"dukapos/internal/domain/documents/purchase"
	"dukapos/internal/domain/stockledger"
	"dukapos/pkg/logger"
)

// DecisionAction is the reviewer's choice for one unresolved draft item.
type DecisionAction string

const (
	// ActionUseExisting maps the item onto an already-cataloged product.
	ActionUseExisting DecisionAction = "use_existing"
	// ActionCreateNew promotes the item's pending product into the catalog.
	ActionCreateNew DecisionAction = "create_new"
	// ActionMergePending folds the item into an existing product and
	// records the raw receipt name as an alias.
	ActionMergePending DecisionAction = "merge_pending"
)

// ProductFields carries reviewer overrides for a create_new decision.
// Zero values fall back to the pending product's suggestions.
type ProductFields struct {
	Name           string
	UnitType       product.UnitType
	Barcode        *string
	SKU            *string
	CostPrice      *types.Money
	RetailPrice    *types.Money
	WholesalePrice *types.Money
}

// MappingDecision resolves one draft item during approval. ItemIndex is
// the zero-based position in the draft's item list.
type MappingDecision struct {
	ItemIndex        int
	Action           DecisionAction
	ProductID        id.ID // use_existing, merge_pending target
	PendingProductID id.ID
	Fields           *ProductFields // create_new overrides
}

// ImageRemover deletes a stored receipt image. Used after reject.
type ImageRemover interface {
	Remove(ctx context.Context, path string) error
}

// Service is the draft approval engine. Approval resolves every item to a
// canonical product, posts the stock effects, and commits a purchase, all
// atomically: any failure leaves the draft and catalog untouched.
type Service struct {
	drafts    Repository
	purchases purchase.Repository
	products  product.Repository
	pendings  pending.Repository
	stock     purchase.StockApplier
	numbering purchase.Numbering
	images    ImageRemover
	txManager tx.Manager
}

// NewService creates the approval engine.
func NewService(
	drafts Repository,
	purchases purchase.Repository,
	products product.Repository,
	pendings pending.Repository,
	stock purchase.StockApplier,
	numbering purchase.Numbering,
	images ImageRemover,
	txManager tx.Manager,
) *Service {
	return &Service{
		drafts:    drafts,
		purchases: purchases,
		products:  products,
		pendings:  pendings,
		stock:     stock,
		numbering: numbering,
		images:    images,
		txManager: txManager,
	}
}

// Create persists a freshly imported draft.
func (s *Service) Create(ctx context.Context, d *PurchaseDraft) error {
	d.Recalculate()
	return s.drafts.Create(ctx, d)
}

// GetByID returns a draft.
func (s *Service) GetByID(ctx context.Context, draftID id.ID) (*PurchaseDraft, error) {
	return s.drafts.GetByID(ctx, draftID)
}

// List returns drafts matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*PurchaseDraft, error) {
	return s.drafts.List(ctx, filter)
}

// Approve turns a draft into a committed purchase. Every item must end up
// mapped to a canonical product, either through its stored match or a
// reviewer decision; otherwise the whole approval fails and nothing is
// written. On success the draft is terminal and re-approval returns
// DRAFT_ALREADY_PROCESSED.
func (s *Service) Approve(ctx context.Context, draftID id.ID, decisions []MappingDecision) (*purchase.Purchase, error) {
	actorID := appctx.GetActorID(ctx)

	var committed *purchase.Purchase
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		d, err := s.drafts.GetForUpdate(ctx, draftID)
		if err != nil {
			return err
		}
		if d.IsProcessed() {
			return apperror.NewDraftProcessed(string(d.Status))
		}

		byIndex := make(map[int]MappingDecision, len(decisions))
		for _, dec := range decisions {
			if dec.ItemIndex < 0 || dec.ItemIndex >= len(d.Items) {
				return apperror.NewValidation("decision references an item outside the draft").
					WithDetail("itemIndex", dec.ItemIndex)
			}
			byIndex[dec.ItemIndex] = dec
		}

		p := purchase.New(purchase.SourceOCRImport, actorID)
		p.SupplierName = d.SupplierName
		p.Date = d.Date
		p.DraftID = &d.ID

		number, err := s.numbering.Next(ctx, purchase.NumberPrefix)
		if err != nil {
			return err
		}
		p.Number = number

		for i := range d.Items {
			item := &d.Items[i]

			prod, err := s.resolveItem(ctx, item, byIndex[i])
			if err != nil {
				return err
			}
			item.MatchedProductID = &prod.ID
			item.RequiresApproval = false

			unitCost := item.UnitCost
			if _, err := s.stock.Apply(ctx, stockledger.Movement{
				ProductID: prod.ID,
				Type:      stockledger.TypePurchase,
				RefID:     &p.ID,
				QtyChange: item.Qty,
				ActorID:   actorID,
				CostPrice: &unitCost,
			}); err != nil {
				return err
			}

			p.Items = append(p.Items, purchase.Item{
				ProductID: prod.ID,
				Name:      prod.Name,
				Qty:       item.Qty,
				Unit:      item.Unit,
				UnitCost:  item.UnitCost,
			})
		}

		p.Recalculate()
		if err := p.Validate(ctx); err != nil {
			return err
		}
		if err := s.purchases.Create(ctx, p); err != nil {
			return err
		}

		now := time.Now()
		d.Status = StatusApproved
		d.ApprovedBy = &actorID
		d.ApprovedAt = &now
		d.UpdatedAt = now
		d.Recalculate()
		if err := s.drafts.Update(ctx, d); err != nil {
			return err
		}

		committed = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "draft approved",
		"draft_id", draftID,
		"purchase_id", committed.ID,
		"number", committed.Number,
		"items", len(committed.Items),
	)
	return committed, nil
}

// resolveItem maps one draft item to a canonical product, applying the
// reviewer's decision when present and falling back to the stored match.
func (s *Service) resolveItem(ctx context.Context, item *Item, dec MappingDecision) (*product.Product, error) {
	switch dec.Action {
	case ActionUseExisting:
		productID := dec.ProductID
		if id.IsNil(productID) && item.MatchedProductID != nil {
			productID = *item.MatchedProductID
		}
		if id.IsNil(productID) {
			return nil, apperror.NewValidation("use_existing requires a product").
				WithDetail("rawName", item.RawName)
		}
		prod, err := s.products.GetByID(ctx, productID)
		if err != nil {
			return nil, err
		}
		if err := s.resolvePending(ctx, item, dec, pending.StatusMerged, prod.ID); err != nil {
			return nil, err
		}
		return prod, nil

	case ActionCreateNew:
		return s.createNewProduct(ctx, item, dec)

	case ActionMergePending:
		if id.IsNil(dec.ProductID) {
			return nil, apperror.NewValidation("merge_pending requires a target product").
				WithDetail("rawName", item.RawName)
		}
		prod, err := s.products.GetForUpdate(ctx, dec.ProductID)
		if err != nil {
			return nil, err
		}
		prod.AddAlias(item.RawName)
		if err := s.products.Update(ctx, prod); err != nil {
			return nil, err
		}
		if err := s.resolvePending(ctx, item, dec, pending.StatusMerged, prod.ID); err != nil {
			return nil, err
		}
		return prod, nil

	default:
		// No usable decision: the stored match must carry the item.
		if item.MatchedProductID == nil {
			return nil, apperror.NewValidation("item has no matched product and no decision").
				WithDetail("rawName", item.RawName)
		}
		return s.products.GetByID(ctx, *item.MatchedProductID)
	}
}

// estimatedMarkups applied when a new product is created without explicit
// retail/wholesale prices.
var (
	retailMarkup    = types.MustMoney("1.5")
	wholesaleMarkup = types.MustMoney("1.3")
)

// createNewProduct adds a catalog product for the item. Reviewer-supplied
// fields win, then the pending product's suggestions, then the draft
// item's raw data with estimated prices.
func (s *Service) createNewProduct(ctx context.Context, item *Item, dec MappingDecision) (*product.Product, error) {
	name := item.RawName
	unitType := product.UnitType(item.Unit)
	costPrice := item.UnitCost
	retailPrice := costPrice.Mul(retailMarkup)
	wholesalePrice := costPrice.Mul(wholesaleMarkup)

	var pp *pending.PendingProduct
	pendingID := dec.PendingProductID
	if id.IsNil(pendingID) && item.PendingProductID != nil {
		pendingID = *item.PendingProductID
	}
	if !id.IsNil(pendingID) {
		found, err := s.pendings.GetByID(ctx, pendingID)
		if err != nil {
			return nil, err
		}
		pp = found
		name = pp.Suggested.Name
		unitType = pp.Suggested.UnitType
		costPrice = pp.Suggested.CostPrice
		retailPrice = pp.Suggested.RetailPrice
		wholesalePrice = pp.Suggested.WholesalePrice
	}

	var barcode, sku *string
	if f := dec.Fields; f != nil {
		if f.Name != "" {
			name = f.Name
		}
		if f.UnitType != "" {
			unitType = f.UnitType
		}
		if f.CostPrice != nil {
			costPrice = *f.CostPrice
		}
		if f.RetailPrice != nil {
			retailPrice = *f.RetailPrice
		}
		if f.WholesalePrice != nil {
			wholesalePrice = *f.WholesalePrice
		}
		barcode = f.Barcode
		sku = f.SKU
	}

	if !product.IsValidUnitType(unitType) {
		unitType = product.UnitPcs
	}

	prod := product.New(name, unitType)
	prod.CostPrice = costPrice
	prod.RetailPrice = retailPrice
	prod.WholesalePrice = wholesalePrice
	prod.Barcode = barcode
	prod.SKU = sku
	if name != item.RawName {
		prod.AddAlias(item.RawName)
	}
	if err := prod.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.products.Create(ctx, prod); err != nil {
		return nil, err
	}

	if pp != nil {
		if err := s.pendings.Resolve(ctx, pp.ID, pending.StatusCreated, prod.ID); err != nil {
			return nil, err
		}
	}
	return prod, nil
}

// resolvePending closes out the item's pending product when it has one.
func (s *Service) resolvePending(ctx context.Context, item *Item, dec MappingDecision, status pending.Status, productID id.ID) error {
	pendingID := dec.PendingProductID
	if id.IsNil(pendingID) && item.PendingProductID != nil {
		pendingID = *item.PendingProductID
	}
	if id.IsNil(pendingID) {
		return nil
	}
	return s.pendings.Resolve(ctx, pendingID, status, productID)
}

// Reject marks a draft terminally rejected and removes its stored receipt
// image. Like approval, rejection is guarded against double processing.
func (s *Service) Reject(ctx context.Context, draftID id.ID, reason string) (*PurchaseDraft, error) {
	actorID := appctx.GetActorID(ctx)

	var rejected *PurchaseDraft
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		d, err := s.drafts.GetForUpdate(ctx, draftID)
		if err != nil {
			return err
		}
		if d.IsProcessed() {
			return apperror.NewDraftProcessed(string(d.Status))
		}

		now := time.Now()
		d.Status = StatusRejected
		d.RejectedBy = &actorID
		d.RejectedAt = &now
		d.RejectReason = reason
		d.UpdatedAt = now
		if err := s.drafts.Update(ctx, d); err != nil {
			return err
		}
		rejected = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	if rejected.ImagePath != "" && s.images != nil {
		if err := s.images.Remove(ctx, rejected.ImagePath); err != nil {
			logger.Warn(ctx, "failed to remove rejected draft image",
				"draft_id", draftID, "path", rejected.ImagePath, "error", err)
		}
	}

	logger.Info(ctx, "draft rejected", "draft_id", draftID, "reason", reason)
	return rejected, nil
}
