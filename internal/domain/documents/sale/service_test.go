package sale

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dukapos/internal/core/apperror"
	"dukapos/internal/core/id"
	"dukapos/internal/core/types"
	"dukapos/internal/domain/catalogs/product"
	"dukapos/internal/domain/custledger"
	"dukapos/internal/domain/stockledger"
)

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeProductRepo struct {
	products map[id.ID]*product.Product
}

func (f *fakeProductRepo) Create(ctx context.Context, p *product.Product) error {
	f.products[p.ID] = p
	return nil
}

func (f *fakeProductRepo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	p, ok := f.products[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID)
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProductRepo) GetForUpdate(ctx context.Context, productID id.ID) (*product.Product, error) {
	return f.GetByID(ctx, productID)
}

func (f *fakeProductRepo) Update(ctx context.Context, p *product.Product) error {
	f.products[p.ID] = p
	return nil
}

func (f *fakeProductRepo) ListActive(ctx context.Context) ([]product.Product, error) {
	return nil, nil
}

func (f *fakeProductRepo) FindActiveByIdentifier(ctx context.Context, barcode, sku string) (*product.Product, error) {
	return nil, nil
}

func (f *fakeProductRepo) List(ctx context.Context, filter product.ListFilter) ([]product.Product, int64, error) {
	return nil, 0, nil
}

// fakeStock mirrors the real ledger write path: mutate the cached stock,
// reject negative results, record the movement.
type fakeStock struct {
	products  *fakeProductRepo
	movements []stockledger.Movement
}

func (f *fakeStock) Apply(ctx context.Context, m stockledger.Movement) (*stockledger.Entry, error) {
	p := f.products.products[m.ProductID]
	newStock := p.StockQty + m.QtyChange
	if newStock < 0 {
		return nil, apperror.NewInvalidStock(p.Name, p.StockQty, m.QtyChange)
	}
	p.StockQty = newStock
	f.movements = append(f.movements, m)
	return &stockledger.Entry{ProductID: m.ProductID, QtyChange: m.QtyChange, StockAfter: newStock}, nil
}

type fakeBalances struct {
	balance types.Money
	calls   int
}

func (f *fakeBalances) ApplyWholesaleSale(ctx context.Context, customerID id.ID, grandTotal, paymentReceived types.Money) (custledger.Effect, error) {
	previous := f.balance
	f.balance = previous.Add(grandTotal).Sub(paymentReceived)
	f.calls++
	return custledger.Effect{
		PreviousBalance:  previous,
		AddedToBalance:   grandTotal,
		ReducedByPayment: paymentReceived,
		NewBalance:       f.balance,
	}, nil
}

type fakeSaleRepo struct {
	created []*Sale
}

func (f *fakeSaleRepo) Create(ctx context.Context, s *Sale) error {
	f.created = append(f.created, s)
	return nil
}

func (f *fakeSaleRepo) GetByID(ctx context.Context, saleID id.ID) (*Sale, error) {
	for _, s := range f.created {
		if s.ID == saleID {
			return s, nil
		}
	}
	return nil, apperror.NewNotFound("sale", saleID)
}

func (f *fakeSaleRepo) List(ctx context.Context, filter ListFilter) ([]*Sale, error) {
	return f.created, nil
}

type fakeNumbering struct {
	n int
}

func (f *fakeNumbering) Next(ctx context.Context, prefix string) (string, error) {
	f.n++
	return fmt.Sprintf("%s-2026-%05d", prefix, f.n), nil
}

type saleFixture struct {
	svc      *Service
	repo     *fakeSaleRepo
	products *fakeProductRepo
	stock    *fakeStock
	balances *fakeBalances
}

func newSaleFixture(products ...*product.Product) *saleFixture {
	prodRepo := &fakeProductRepo{products: map[id.ID]*product.Product{}}
	for _, p := range products {
		prodRepo.products[p.ID] = p
	}
	stock := &fakeStock{products: prodRepo}
	balances := &fakeBalances{balance: types.Zero()}
	repo := &fakeSaleRepo{}
	svc := NewService(repo, prodRepo, stock, balances, &fakeNumbering{}, fakeTxManager{})
	return &saleFixture{svc: svc, repo: repo, products: prodRepo, stock: stock, balances: balances}
}

func pricedProduct(name string, stock float64, retail, wholesale string) *product.Product {
	p := product.New(name, product.UnitPcs)
	p.StockQty = stock
	p.RetailPrice = types.MustMoney(retail)
	p.WholesalePrice = types.MustMoney(wholesale)
	return p
}

func TestCreateRetail_SellsAtRetailAndSettlesInFull(t *testing.T) {
	p := pricedProduct("Coca Cola 500ml", 24, "60", "50")
	fx := newSaleFixture(p)

	s, err := fx.svc.CreateRetail(context.Background(), CreateInput{
		Items: []CreateItemInput{{ProductID: p.ID, Qty: 3}},
	})
	require.NoError(t, err)

	require.Len(t, s.Items, 1)
	assert.True(t, s.Items[0].UnitPrice.Equal(types.MustMoney("60")))
	assert.True(t, s.GrandTotal.Equal(types.MustMoney("180")))
	assert.True(t, s.PaymentReceived.Equal(s.GrandTotal), "retail settles in full")
	assert.Nil(t, s.LedgerEffect)
	assert.Equal(t, "INV-2026-00001", s.Number)

	// stock decremented through the ledger
	assert.Equal(t, 21.0, fx.products.products[p.ID].StockQty)
	require.Len(t, fx.stock.movements, 1)
	assert.Equal(t, -3.0, fx.stock.movements[0].QtyChange)
	assert.Equal(t, stockledger.TypeSale, fx.stock.movements[0].Type)
	require.NotNil(t, fx.stock.movements[0].RefID)
	assert.Equal(t, s.ID, *fx.stock.movements[0].RefID)

	// no customer ledger involvement for retail
	assert.Zero(t, fx.balances.calls)
	require.Len(t, fx.repo.created, 1)
}

func TestCreateWholesale_UsesWholesalePriceAndLedger(t *testing.T) {
	p := pricedProduct("Sugar 1kg", 100, "150", "130")
	fx := newSaleFixture(p)
	customerID := id.New()
	paid := types.MustMoney("200")

	s, err := fx.svc.CreateWholesale(context.Background(), CreateInput{
		CustomerID:      &customerID,
		Items:           []CreateItemInput{{ProductID: p.ID, Qty: 5}},
		PaymentReceived: &paid,
	})
	require.NoError(t, err)

	assert.True(t, s.Items[0].UnitPrice.Equal(types.MustMoney("130")))
	assert.True(t, s.GrandTotal.Equal(types.MustMoney("650")))
	assert.True(t, s.PaymentReceived.Equal(paid))

	require.NotNil(t, s.LedgerEffect)
	assert.True(t, s.LedgerEffect.PreviousBalance.Equal(types.Zero()))
	assert.True(t, s.LedgerEffect.NewBalance.Equal(types.MustMoney("450")))
	assert.Equal(t, 1, fx.balances.calls)
}

func TestCreateWholesale_PriceOverride(t *testing.T) {
	p := pricedProduct("Rice 5kg", 10, "800", "700")
	fx := newSaleFixture(p)
	customerID := id.New()
	override := types.MustMoney("650")

	s, err := fx.svc.CreateWholesale(context.Background(), CreateInput{
		CustomerID: &customerID,
		Items:      []CreateItemInput{{ProductID: p.ID, Qty: 2, UnitPrice: &override}},
	})
	require.NoError(t, err)
	assert.True(t, s.Items[0].UnitPrice.Equal(override))
	assert.True(t, s.GrandTotal.Equal(types.MustMoney("1300")))
}

func TestCreateWholesale_FallsBackToRetailPrice(t *testing.T) {
	p := pricedProduct("Odd Item", 10, "90", "0")
	fx := newSaleFixture(p)
	customerID := id.New()

	s, err := fx.svc.CreateWholesale(context.Background(), CreateInput{
		CustomerID: &customerID,
		Items:      []CreateItemInput{{ProductID: p.ID, Qty: 1}},
	})
	require.NoError(t, err)
	assert.True(t, s.Items[0].UnitPrice.Equal(types.MustMoney("90")))
}

func TestCreateWholesale_RequiresCustomer(t *testing.T) {
	fx := newSaleFixture()

	_, err := fx.svc.CreateWholesale(context.Background(), CreateInput{
		Items: []CreateItemInput{{ProductID: id.New(), Qty: 1}},
	})
	assert.True(t, apperror.IsCode(err, apperror.CodeCustomerRequired))

	nilID := id.Nil()
	_, err = fx.svc.CreateWholesale(context.Background(), CreateInput{
		CustomerID: &nilID,
		Items:      []CreateItemInput{{ProductID: id.New(), Qty: 1}},
	})
	assert.True(t, apperror.IsCode(err, apperror.CodeCustomerRequired))
}

func TestCreate_InsufficientStock(t *testing.T) {
	p := pricedProduct("Bread", 2, "65", "60")
	fx := newSaleFixture(p)

	_, err := fx.svc.CreateRetail(context.Background(), CreateInput{
		Items: []CreateItemInput{{ProductID: p.ID, Qty: 5}},
	})

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
	assert.Equal(t, 5.0, appErr.Details["requested"])
	assert.Equal(t, 2.0, appErr.Details["available"])

	// nothing persisted
	assert.Empty(t, fx.repo.created)
	assert.Equal(t, 2.0, fx.products.products[p.ID].StockQty)
}

func TestCreate_ExactStockSellsOut(t *testing.T) {
	p := pricedProduct("Bread", 2, "65", "60")
	fx := newSaleFixture(p)

	_, err := fx.svc.CreateRetail(context.Background(), CreateInput{
		Items: []CreateItemInput{{ProductID: p.ID, Qty: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, fx.products.products[p.ID].StockQty)
}

func TestCreate_InactiveProductRejected(t *testing.T) {
	p := pricedProduct("Old Stock", 10, "10", "8")
	p.Deactivate()
	fx := newSaleFixture(p)

	_, err := fx.svc.CreateRetail(context.Background(), CreateInput{
		Items: []CreateItemInput{{ProductID: p.ID, Qty: 1}},
	})
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
	assert.Empty(t, fx.repo.created)
}

func TestCreate_ValidatesInput(t *testing.T) {
	p := pricedProduct("Milk 500ml", 10, "55", "50")
	fx := newSaleFixture(p)
	ctx := context.Background()

	_, err := fx.svc.CreateRetail(ctx, CreateInput{})
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation), "empty items")

	_, err = fx.svc.CreateRetail(ctx, CreateInput{
		Items: []CreateItemInput{{ProductID: p.ID, Qty: 0}},
	})
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation), "zero qty")

	neg := types.MustMoney("-5")
	_, err = fx.svc.CreateRetail(ctx, CreateInput{
		Items: []CreateItemInput{{ProductID: p.ID, Qty: 1, UnitPrice: &neg}},
	})
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation), "negative price")

	_, err = fx.svc.CreateRetail(ctx, CreateInput{
		Items:    []CreateItemInput{{ProductID: p.ID, Qty: 1}},
		Discount: &neg,
	})
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation), "negative discount")
}

func TestCreate_DiscountReducesGrandTotal(t *testing.T) {
	p := pricedProduct("Soap", 10, "100", "90")
	fx := newSaleFixture(p)
	discount := types.MustMoney("30")

	s, err := fx.svc.CreateRetail(context.Background(), CreateInput{
		Items:    []CreateItemInput{{ProductID: p.ID, Qty: 2}},
		Discount: &discount,
	})
	require.NoError(t, err)
	assert.True(t, s.Subtotal.Equal(types.MustMoney("200")))
	assert.True(t, s.GrandTotal.Equal(types.MustMoney("170")))
}

func TestRecalculate_LineTotals(t *testing.T) {
	s := New(TypeRetail, id.New())
	s.Items = []Item{
		{Qty: 2, UnitPrice: types.MustMoney("60")},
		{Qty: 0.5, UnitPrice: types.MustMoney("200")},
	}
	s.Discount = types.MustMoney("20")
	s.Recalculate()

	assert.True(t, s.Items[0].LineTotal.Equal(types.MustMoney("120")))
	assert.True(t, s.Items[1].LineTotal.Equal(types.MustMoney("100")))
	assert.True(t, s.Subtotal.Equal(types.MustMoney("220")))
	assert.True(t, s.GrandTotal.Equal(types.MustMoney("200")))

	s.PaymentReceived = types.MustMoney("150")
	assert.True(t, s.OutstandingAmount().Equal(types.MustMoney("50")))
}
