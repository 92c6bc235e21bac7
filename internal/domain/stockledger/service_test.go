package stockledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dukapos/internal/core/apperror"
	"dukapos/internal/core/id"
	"dukapos/internal/core/types"
	"dukapos/internal/domain/catalogs/product"
)

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeProductStore struct {
	products map[id.ID]*product.Product
	updates  int
}

func (f *fakeProductStore) GetForUpdate(ctx context.Context, productID id.ID) (*product.Product, error) {
	p, ok := f.products[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID)
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProductStore) Update(ctx context.Context, p *product.Product) error {
	f.products[p.ID] = p
	f.updates++
	return nil
}

type fakeEntryRepo struct {
	entries []Entry
}

func (f *fakeEntryRepo) Append(ctx context.Context, e *Entry) error {
	f.entries = append(f.entries, *e)
	return nil
}

func (f *fakeEntryRepo) HistoryByProduct(ctx context.Context, productID id.ID, filter HistoryFilter) ([]Entry, int64, error) {
	var out []Entry
	for i := len(f.entries) - 1; i >= 0; i-- {
		if f.entries[i].ProductID == productID {
			out = append(out, f.entries[i])
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeEntryRepo) LatestByProduct(ctx context.Context, productID id.ID) (*Entry, error) {
	for i := len(f.entries) - 1; i >= 0; i-- {
		if f.entries[i].ProductID == productID {
			e := f.entries[i]
			return &e, nil
		}
	}
	return nil, nil
}

func newTestService(p *product.Product) (*Service, *fakeProductStore, *fakeEntryRepo) {
	store := &fakeProductStore{products: map[id.ID]*product.Product{p.ID: p}}
	repo := &fakeEntryRepo{}
	return NewService(store, repo, fakeTxManager{}), store, repo
}

func stockedProduct(name string, qty float64) *product.Product {
	p := product.New(name, product.UnitPcs)
	p.StockQty = qty
	return p
}

func TestApply_IncreasesStockAndAppendsEntry(t *testing.T) {
	p := stockedProduct("Sugar 1kg", 10)
	svc, store, repo := newTestService(p)
	actor := id.New()

	entry, err := svc.Apply(context.Background(), Movement{
		ProductID: p.ID,
		Type:      TypePurchase,
		QtyChange: 5,
		ActorID:   actor,
	})
	require.NoError(t, err)

	assert.Equal(t, 15.0, entry.StockAfter)
	assert.Equal(t, 5.0, entry.QtyChange)
	assert.Equal(t, TypePurchase, entry.Type)
	assert.Equal(t, actor, entry.CreatedBy)
	assert.Equal(t, 15.0, store.products[p.ID].StockQty)
	require.Len(t, repo.entries, 1)
}

func TestApply_RejectsNegativeResult(t *testing.T) {
	p := stockedProduct("Sugar 1kg", 3)
	svc, store, repo := newTestService(p)

	_, err := svc.Apply(context.Background(), Movement{
		ProductID: p.ID,
		Type:      TypeSale,
		QtyChange: -5,
		ActorID:   id.New(),
	})

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidStock, appErr.Code)

	// nothing written
	assert.Equal(t, 3.0, store.products[p.ID].StockQty)
	assert.Empty(t, repo.entries)
	assert.Zero(t, store.updates)
}

func TestApply_AllowsExactlyZeroResult(t *testing.T) {
	p := stockedProduct("Sugar 1kg", 5)
	svc, _, _ := newTestService(p)

	entry, err := svc.Apply(context.Background(), Movement{
		ProductID: p.ID,
		Type:      TypeSale,
		QtyChange: -5,
		ActorID:   id.New(),
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, entry.StockAfter)
}

func TestApply_OverwritesCostPrice(t *testing.T) {
	p := stockedProduct("Rice 5kg", 0)
	p.CostPrice = types.MustMoney("100")
	svc, store, _ := newTestService(p)

	newCost := types.MustMoney("120")
	_, err := svc.Apply(context.Background(), Movement{
		ProductID: p.ID,
		Type:      TypePurchase,
		QtyChange: 10,
		ActorID:   id.New(),
		CostPrice: &newCost,
	})
	require.NoError(t, err)
	assert.True(t, store.products[p.ID].CostPrice.Equal(newCost))
}

func TestApply_UnknownProduct(t *testing.T) {
	svc, _, _ := newTestService(stockedProduct("Known", 1))

	_, err := svc.Apply(context.Background(), Movement{
		ProductID: id.New(),
		Type:      TypePurchase,
		QtyChange: 1,
		ActorID:   id.New(),
	})

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeNotFound, appErr.Code)
}

func TestAdjust_RecordsBeforeAndAfter(t *testing.T) {
	p := stockedProduct("Omo 500g", 20)
	svc, _, repo := newTestService(p)

	result, err := svc.Adjust(context.Background(), p.ID, -4, "damaged in transit", id.New())
	require.NoError(t, err)

	assert.Equal(t, 20.0, result.PreviousStock)
	assert.Equal(t, 16.0, result.NewStock)
	assert.Equal(t, -4.0, result.QtyChange)

	require.Len(t, repo.entries, 1)
	assert.Equal(t, TypeAdjustment, repo.entries[0].Type)
	require.NotNil(t, repo.entries[0].Note)
	assert.Equal(t, "damaged in transit", *repo.entries[0].Note)
	assert.Nil(t, repo.entries[0].RefID)
}

func TestAdjust_RejectsZeroChange(t *testing.T) {
	p := stockedProduct("Omo 500g", 20)
	svc, _, repo := newTestService(p)

	_, err := svc.Adjust(context.Background(), p.ID, 0, "noop", id.New())

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Empty(t, repo.entries)
}

func TestLedgerChain_SumsToStockAfter(t *testing.T) {
	p := stockedProduct("Fanta 300ml", 0)
	svc, store, repo := newTestService(p)
	ctx := context.Background()
	actor := id.New()

	moves := []float64{10, -3, 7, -14}
	for _, qty := range moves {
		entryType := TypePurchase
		if qty < 0 {
			entryType = TypeSale
		}
		_, err := svc.Apply(ctx, Movement{
			ProductID: p.ID,
			Type:      entryType,
			QtyChange: qty,
			ActorID:   actor,
		})
		require.NoError(t, err)
	}

	// stockAfter[i] = stockAfter[i-1] + qtyChange[i]
	running := 0.0
	for _, e := range repo.entries {
		running += e.QtyChange
		assert.Equal(t, running, e.StockAfter)
		assert.GreaterOrEqual(t, e.StockAfter, 0.0)
	}
	assert.Equal(t, running, store.products[p.ID].StockQty)
}
