// Package importer runs the receipt import pipeline: image in, reviewed
// purchase draft out.
package importer

import (
	"context"
	"io"
	"time"

	"dukapos/internal/ai"
	"dukapos/internal/core/apperror"
	appctx "dukapos/internal/core/context"
	"dukapos/internal/core/types"
	"dukapos/internal/domain/catalogs/pending"
	"dukapos/internal/domain/documents/draft"
	"dukapos/internal/domain/matching"
	"dukapos/internal/imagestore"
	"dukapos/internal/ocr"
	"dukapos/pkg/logger"
)

// placeholderText seeds parsing when OCR is not configured. The draft is
// flagged degraded so reviewers know the items came from a fallback.
const placeholderText = "[OCR unavailable - receipt text could not be extracted]"

// markups used for price estimates on unmatched items.
var (
	retailMarkup    = types.MustMoney("1.5")
	wholesaleMarkup = types.MustMoney("1.3")
)

// ReceiptParser is the AI collaborator contract.
type ReceiptParser interface {
	ParseReceipt(ctx context.Context, rawText string) (*ai.ParsedReceipt, error)
}

// DraftStore persists the resulting draft.
type DraftStore interface {
	Create(ctx context.Context, d *draft.PurchaseDraft) error
}

// Pipeline orchestrates image storage, OCR, AI parsing, matching and
// pending-product registration into a single import operation. External
// calls happen before any write; only the final draft persist touches
// the store.
type Pipeline struct {
	images   imagestore.Store
	ocr      ocr.Engine
	parser   ReceiptParser
	matcher  *matching.Matcher
	pendings pending.Repository
	drafts   DraftStore
}

// NewPipeline creates the import pipeline.
func NewPipeline(images imagestore.Store, ocrEngine ocr.Engine, parser ReceiptParser, matcher *matching.Matcher, pendings pending.Repository, drafts DraftStore) *Pipeline {
	return &Pipeline{
		images:   images,
		ocr:      ocrEngine,
		parser:   parser,
		matcher:  matcher,
		pendings: pendings,
		drafts:   drafts,
	}
}

// ImportReceipt runs the full pipeline. On any failure after the image is
// saved, the image is removed before the error propagates so no orphaned
// files accumulate.
func (p *Pipeline) ImportReceipt(ctx context.Context, filename string, image io.Reader) (*draft.PurchaseDraft, error) {
	imagePath, err := p.images.Save(ctx, filename, image)
	if err != nil {
		return nil, err
	}

	d, err := p.buildDraft(ctx, imagePath)
	if err != nil {
		if rmErr := p.images.Remove(ctx, imagePath); rmErr != nil {
			logger.Warn(ctx, "failed to remove image after import failure",
				"path", imagePath, "error", rmErr)
		}
		return nil, err
	}
	return d, nil
}

func (p *Pipeline) buildDraft(ctx context.Context, imagePath string) (*draft.PurchaseDraft, error) {
	rawText, degraded, err := p.extractText(ctx, imagePath)
	if err != nil {
		return nil, err
	}

	parsed, err := p.parser.ParseReceipt(ctx, rawText)
	if err != nil {
		return nil, err
	}

	d := draft.New(appctx.GetActorID(ctx))
	d.SupplierName = parsed.SupplierName
	d.ImagePath = imagePath
	d.RawText = rawText
	d.OCRDegraded = degraded
	if parsed.Date != "" {
		if t, err := time.Parse("2006-01-02", parsed.Date); err == nil {
			d.Date = t
		}
	}

	matchedCount := 0
	for _, pi := range parsed.Items {
		item, matched, err := p.buildItem(ctx, pi)
		if err != nil {
			return nil, err
		}
		if matched {
			matchedCount++
		}
		d.Items = append(d.Items, item)
	}

	d.Recalculate()
	if err := p.drafts.Create(ctx, d); err != nil {
		return nil, err
	}

	logger.Info(ctx, "receipt imported",
		"draft_id", d.ID,
		"supplier", d.SupplierName,
		"items", len(d.Items),
		"matched", matchedCount,
		"degraded", degraded,
	)
	return d, nil
}

// extractText obtains the raw receipt text. When OCR is not configured
// the pipeline proceeds in degraded mode with placeholder text; any
// other OCR failure is a hard error.
func (p *Pipeline) extractText(ctx context.Context, imagePath string) (string, bool, error) {
	rawText, err := p.ocr.ExtractText(ctx, imagePath)
	if err != nil {
		if apperror.IsCode(err, apperror.CodeOCRNotConfigured) {
			logger.Warn(ctx, "ocr not configured, importing with placeholder text",
				"image", imagePath)
			return placeholderText, true, nil
		}
		return "", false, err
	}
	return rawText, false, nil
}

// buildItem normalizes one parsed line and resolves it against the
// catalog. Unmatched items get a pending product with estimated prices.
func (p *Pipeline) buildItem(ctx context.Context, pi ai.ParsedItem) (draft.Item, bool, error) {
	qty := pi.Qty
	if qty < 0 {
		qty = 0
	}
	unitCost := types.NewMoney(pi.UnitPrice)
	if unitCost.IsNegative() {
		unitCost = types.Zero()
	}

	unit := NormalizeUnit(pi.Unit)
	item := draft.Item{
		RawName:  pi.Name,
		Qty:      qty,
		Unit:     string(unit),
		UnitCost: unitCost,
	}
	// A printed line total wins over the derived one; receipts often
	// round differently than qty x unit price.
	if pi.LineTotal > 0 {
		item.LineTotal = types.NewMoney(pi.LineTotal)
	}

	match, err := p.matcher.Match(ctx, pi.Name, pi.Barcode, pi.SKU)
	if err != nil {
		return draft.Item{}, false, err
	}

	if match != nil {
		item.MatchedProductID = &match.Product.ID
		item.Confidence = match.Confidence
		item.MatchMethod = match.Method
		item.RequiresApproval = false
		return item, true, nil
	}

	pp := pending.New(pi.Name, pending.SuggestedFields{
		Name:           pi.Name,
		UnitType:       unit,
		CostPrice:      unitCost,
		RetailPrice:    unitCost.Mul(retailMarkup),
		WholesalePrice: unitCost.Mul(wholesaleMarkup),
	})
	if err := p.pendings.Create(ctx, pp); err != nil {
		return draft.Item{}, false, err
	}

	item.PendingProductID = &pp.ID
	item.RequiresApproval = true
	return item, false, nil
}
