package importer

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dukapos/internal/ai"
	"dukapos/internal/core/apperror"
	"dukapos/internal/core/id"
	"dukapos/internal/core/types"
	"dukapos/internal/domain/catalogs/pending"
	"dukapos/internal/domain/catalogs/product"
	"dukapos/internal/domain/documents/draft"
	"dukapos/internal/domain/matching"
)

type fakeImages struct {
	saved     []string
	removed   []string
	saveErr   error
	removeErr error
}

func (f *fakeImages) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	path := "receipts/" + filename
	f.saved = append(f.saved, path)
	return path, nil
}

func (f *fakeImages) Remove(ctx context.Context, path string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, path)
	return nil
}

type fakeOCR struct {
	text string
	err  error
}

func (f *fakeOCR) ExtractText(ctx context.Context, imagePath string) (string, error) {
	return f.text, f.err
}

type fakeParser struct {
	receipt *ai.ParsedReceipt
	err     error
	gotText string
}

func (f *fakeParser) ParseReceipt(ctx context.Context, rawText string) (*ai.ParsedReceipt, error) {
	f.gotText = rawText
	if f.err != nil {
		return nil, f.err
	}
	return f.receipt, nil
}

type memCatalog struct {
	products []product.Product
	byIdent  map[string]*product.Product
}

func (m *memCatalog) FindActiveByIdentifier(ctx context.Context, barcode, sku string) (*product.Product, error) {
	if barcode != "" {
		if p, ok := m.byIdent[barcode]; ok {
			return p, nil
		}
	}
	if sku != "" {
		if p, ok := m.byIdent[sku]; ok {
			return p, nil
		}
	}
	return nil, nil
}

func (m *memCatalog) ListActive(ctx context.Context) ([]product.Product, error) {
	return m.products, nil
}

type memPendingRepo struct {
	created []*pending.PendingProduct
}

func (m *memPendingRepo) Create(ctx context.Context, p *pending.PendingProduct) error {
	m.created = append(m.created, p)
	return nil
}

func (m *memPendingRepo) GetByID(ctx context.Context, pendingID id.ID) (*pending.PendingProduct, error) {
	for _, p := range m.created {
		if p.ID == pendingID {
			return p, nil
		}
	}
	return nil, apperror.NewNotFound("pending product", pendingID)
}

func (m *memPendingRepo) Resolve(ctx context.Context, pendingID id.ID, status pending.Status, productID id.ID) error {
	return nil
}

func (m *memPendingRepo) List(ctx context.Context, filter pending.ListFilter) ([]pending.PendingProduct, int64, error) {
	return nil, 0, nil
}

type memDraftStore struct {
	created []*draft.PurchaseDraft
	err     error
}

func (m *memDraftStore) Create(ctx context.Context, d *draft.PurchaseDraft) error {
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, d)
	return nil
}

type pipelineFixture struct {
	pipeline *Pipeline
	images   *fakeImages
	ocr      *fakeOCR
	parser   *fakeParser
	pendings *memPendingRepo
	drafts   *memDraftStore
}

func newPipelineFixture(catalog *memCatalog, ocrEngine *fakeOCR, parser *fakeParser) *pipelineFixture {
	images := &fakeImages{}
	pendings := &memPendingRepo{}
	drafts := &memDraftStore{}
	matcher := matching.NewMatcher(catalog, 0.7)
	return &pipelineFixture{
		pipeline: NewPipeline(images, ocrEngine, parser, matcher, pendings, drafts),
		images:   images,
		ocr:      ocrEngine,
		parser:   parser,
		pendings: pendings,
		drafts:   drafts,
	}
}

func receiptImage() io.Reader {
	return strings.NewReader("jpeg-bytes")
}

func TestImportReceipt_MatchedAndUnmatchedItems(t *testing.T) {
	sugar := *product.New("Sugar 1kg", product.UnitPcs)
	catalog := &memCatalog{products: []product.Product{sugar}}
	parser := &fakeParser{receipt: &ai.ParsedReceipt{
		SupplierName: "Mega Wholesalers",
		Date:         "2026-08-12",
		Items: []ai.ParsedItem{
			{Name: "sugar 1kg", Qty: 10, Unit: "pcs", UnitPrice: 120},
			{Name: "mystery snack", Qty: 4, Unit: "boxes", UnitPrice: 100},
		},
	}}
	fx := newPipelineFixture(catalog, &fakeOCR{text: "SUGAR 1KG x10 ..."}, parser)

	d, err := fx.pipeline.ImportReceipt(context.Background(), "r1.jpg", receiptImage())
	require.NoError(t, err)

	assert.Equal(t, "Mega Wholesalers", d.SupplierName)
	assert.Equal(t, "2026-08-12", d.Date.Format("2006-01-02"))
	assert.False(t, d.OCRDegraded)
	assert.Equal(t, "receipts/r1.jpg", d.ImagePath)
	assert.Equal(t, "SUGAR 1KG x10 ...", d.RawText)
	require.Len(t, d.Items, 2)

	matched := d.Items[0]
	require.NotNil(t, matched.MatchedProductID)
	assert.Equal(t, sugar.ID, *matched.MatchedProductID)
	assert.Equal(t, 1.0, matched.Confidence)
	assert.False(t, matched.RequiresApproval)
	assert.Nil(t, matched.PendingProductID)

	unmatched := d.Items[1]
	assert.Nil(t, unmatched.MatchedProductID)
	assert.True(t, unmatched.RequiresApproval)
	require.NotNil(t, unmatched.PendingProductID)
	assert.Equal(t, "pcs", unmatched.Unit, "unknown unit defaults to pcs")

	// the unmatched line registered a pending product with estimated prices
	require.Len(t, fx.pendings.created, 1)
	pp := fx.pendings.created[0]
	assert.Equal(t, "mystery snack", pp.RawName)
	assert.True(t, pp.Suggested.CostPrice.Equal(types.MustMoney("100")))
	assert.True(t, pp.Suggested.RetailPrice.Equal(types.MustMoney("150")))
	assert.True(t, pp.Suggested.WholesalePrice.Equal(types.MustMoney("130")))

	// totals derived from parsed lines: 10*120 + 4*100
	assert.True(t, d.TotalCost.Equal(types.MustMoney("1600")))

	require.Len(t, fx.drafts.created, 1)
	assert.Empty(t, fx.images.removed)
}

func TestImportReceipt_OCRNotConfiguredDegrades(t *testing.T) {
	parser := &fakeParser{receipt: &ai.ParsedReceipt{SupplierName: "Unknown Supplier"}}
	fx := newPipelineFixture(&memCatalog{}, &fakeOCR{err: apperror.NewOCRNotConfigured("tesseract")}, parser)

	d, err := fx.pipeline.ImportReceipt(context.Background(), "r2.jpg", receiptImage())
	require.NoError(t, err)

	assert.True(t, d.OCRDegraded)
	assert.Equal(t, placeholderText, d.RawText)
	assert.Equal(t, placeholderText, parser.gotText, "parser still runs on the placeholder")
	require.Len(t, fx.drafts.created, 1)
}

func TestImportReceipt_OCRHardErrorRemovesImage(t *testing.T) {
	fx := newPipelineFixture(&memCatalog{},
		&fakeOCR{err: fmt.Errorf("ocr service timeout")},
		&fakeParser{receipt: &ai.ParsedReceipt{}})

	_, err := fx.pipeline.ImportReceipt(context.Background(), "r3.jpg", receiptImage())
	require.Error(t, err)

	assert.Empty(t, fx.drafts.created)
	assert.Equal(t, []string{"receipts/r3.jpg"}, fx.images.removed)
}

func TestImportReceipt_ParserFailureRemovesImage(t *testing.T) {
	fx := newPipelineFixture(&memCatalog{},
		&fakeOCR{text: "some text"},
		&fakeParser{err: fmt.Errorf("model quota exceeded")})

	_, err := fx.pipeline.ImportReceipt(context.Background(), "r4.jpg", receiptImage())
	require.Error(t, err)
	assert.Equal(t, []string{"receipts/r4.jpg"}, fx.images.removed)
}

func TestImportReceipt_DraftPersistFailureRemovesImage(t *testing.T) {
	fx := newPipelineFixture(&memCatalog{},
		&fakeOCR{text: "some text"},
		&fakeParser{receipt: &ai.ParsedReceipt{SupplierName: "S"}})
	fx.drafts.err = fmt.Errorf("connection reset")

	_, err := fx.pipeline.ImportReceipt(context.Background(), "r5.jpg", receiptImage())
	require.Error(t, err)
	assert.Equal(t, []string{"receipts/r5.jpg"}, fx.images.removed)
}

func TestImportReceipt_SaveFailureStopsPipeline(t *testing.T) {
	parser := &fakeParser{receipt: &ai.ParsedReceipt{}}
	fx := newPipelineFixture(&memCatalog{}, &fakeOCR{text: "text"}, parser)
	fx.images.saveErr = fmt.Errorf("disk full")

	_, err := fx.pipeline.ImportReceipt(context.Background(), "r6.jpg", receiptImage())
	require.Error(t, err)
	assert.Empty(t, parser.gotText)
	assert.Empty(t, fx.drafts.created)
}

func TestImportReceipt_RemoveFailureStillReturnsOriginalError(t *testing.T) {
	parseErr := fmt.Errorf("model quota exceeded")
	fx := newPipelineFixture(&memCatalog{},
		&fakeOCR{text: "some text"},
		&fakeParser{err: parseErr})
	fx.images.removeErr = fmt.Errorf("permission denied")

	_, err := fx.pipeline.ImportReceipt(context.Background(), "r7.jpg", receiptImage())
	assert.ErrorIs(t, err, parseErr)
}

func TestImportReceipt_BarcodeShortCircuitsNameMatch(t *testing.T) {
	oil := product.New("Cooking Oil 1L", product.UnitPcs)
	catalog := &memCatalog{byIdent: map[string]*product.Product{"6161100123456": oil}}
	parser := &fakeParser{receipt: &ai.ParsedReceipt{
		SupplierName: "Mega Wholesalers",
		Items: []ai.ParsedItem{
			{Name: "c00k oil ???", Qty: 6, Unit: "pcs", UnitPrice: 350, Barcode: "6161100123456"},
		},
	}}
	fx := newPipelineFixture(catalog, &fakeOCR{text: "barcode receipt"}, parser)

	d, err := fx.pipeline.ImportReceipt(context.Background(), "r9.jpg", receiptImage())
	require.NoError(t, err)

	require.Len(t, d.Items, 1)
	item := d.Items[0]
	require.NotNil(t, item.MatchedProductID)
	assert.Equal(t, oil.ID, *item.MatchedProductID)
	assert.Equal(t, 1.0, item.Confidence)
	assert.Equal(t, matching.MethodIdentifier, item.MatchMethod)
	assert.False(t, item.RequiresApproval)
	assert.Empty(t, fx.pendings.created)
}

func TestImportReceipt_PrintedLineTotalKept(t *testing.T) {
	parser := &fakeParser{receipt: &ai.ParsedReceipt{
		SupplierName: "S",
		Items: []ai.ParsedItem{
			{Name: "rounded line", Qty: 3, Unit: "pcs", UnitPrice: 100, LineTotal: 295},
			{Name: "plain line", Qty: 2, Unit: "pcs", UnitPrice: 50},
		},
	}}
	fx := newPipelineFixture(&memCatalog{}, &fakeOCR{text: "text"}, parser)

	d, err := fx.pipeline.ImportReceipt(context.Background(), "r10.jpg", receiptImage())
	require.NoError(t, err)

	require.Len(t, d.Items, 2)
	assert.True(t, d.Items[0].LineTotal.Equal(types.MustMoney("295")),
		"printed total wins over qty x unit price")
	assert.True(t, d.Items[1].LineTotal.Equal(types.MustMoney("100")),
		"missing total is derived")
	assert.True(t, d.TotalCost.Equal(types.MustMoney("395")))
}

func TestImportReceipt_NegativeValuesClampedToZero(t *testing.T) {
	parser := &fakeParser{receipt: &ai.ParsedReceipt{
		SupplierName: "S",
		Items:        []ai.ParsedItem{{Name: "weird line", Qty: -2, Unit: "pcs", UnitPrice: -30}},
	}}
	fx := newPipelineFixture(&memCatalog{}, &fakeOCR{text: "text"}, parser)

	d, err := fx.pipeline.ImportReceipt(context.Background(), "r8.jpg", receiptImage())
	require.NoError(t, err)

	require.Len(t, d.Items, 1)
	assert.Equal(t, 0.0, d.Items[0].Qty)
	assert.True(t, d.Items[0].UnitCost.IsZero())
	assert.True(t, d.TotalCost.IsZero())
}
