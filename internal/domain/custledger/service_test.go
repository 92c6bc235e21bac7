package custledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dukapos/internal/core/apperror"
	"dukapos/internal/core/id"
	"dukapos/internal/core/types"
	"dukapos/internal/domain/catalogs/customer"
)

type fakeCustomerRepo struct {
	customers map[id.ID]*customer.Customer
}

func (f *fakeCustomerRepo) Create(ctx context.Context, c *customer.Customer) error {
	f.customers[c.ID] = c
	return nil
}

func (f *fakeCustomerRepo) GetByID(ctx context.Context, customerID id.ID) (*customer.Customer, error) {
	c, ok := f.customers[customerID]
	if !ok {
		return nil, apperror.NewNotFound("customer", customerID)
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCustomerRepo) GetForUpdate(ctx context.Context, customerID id.ID) (*customer.Customer, error) {
	return f.GetByID(ctx, customerID)
}

func (f *fakeCustomerRepo) Update(ctx context.Context, c *customer.Customer) error {
	f.customers[c.ID] = c
	return nil
}

func (f *fakeCustomerRepo) List(ctx context.Context, filter customer.ListFilter) ([]customer.Customer, int64, error) {
	return nil, 0, nil
}

// fakeSales and fakePayments apply the same window filtering the real
// repositories do: from inclusive, to exclusive.
type fakeSales struct {
	records []SaleRecord
}

func (f *fakeSales) WholesaleSalesForCustomer(ctx context.Context, customerID id.ID, from, to *time.Time) ([]SaleRecord, error) {
	var out []SaleRecord
	for _, r := range f.records {
		if from != nil && r.Date.Before(*from) {
			continue
		}
		if to != nil && !r.Date.Before(*to) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

type fakePayments struct {
	records []PaymentRecord
}

func (f *fakePayments) PaymentsForCustomer(ctx context.Context, customerID id.ID, from, to *time.Time) ([]PaymentRecord, error) {
	var out []PaymentRecord
	for _, r := range f.records {
		if from != nil && r.Date.Before(*from) {
			continue
		}
		if to != nil && !r.Date.Before(*to) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func day(d int) time.Time {
	return time.Date(2026, time.January, d, 12, 0, 0, 0, time.UTC)
}

func newLedgerFixture(opening string, sales []SaleRecord, payments []PaymentRecord) (*Service, *customer.Customer, *fakeCustomerRepo) {
	c := customer.New("Mama Njeri", "+254700000001", types.MustMoney(opening))
	repo := &fakeCustomerRepo{customers: map[id.ID]*customer.Customer{c.ID: c}}
	svc := NewService(repo, &fakeSales{records: sales}, &fakePayments{records: payments})
	return svc, c, repo
}

func TestApplyWholesaleSale_MovesBalance(t *testing.T) {
	svc, c, repo := newLedgerFixture("100", nil, nil)

	effect, err := svc.ApplyWholesaleSale(context.Background(), c.ID,
		types.MustMoney("250"), types.MustMoney("50"))
	require.NoError(t, err)

	// 100 + 250 - 50
	assert.True(t, effect.PreviousBalance.Equal(types.MustMoney("100")))
	assert.True(t, effect.AddedToBalance.Equal(types.MustMoney("250")))
	assert.True(t, effect.ReducedByPayment.Equal(types.MustMoney("50")))
	assert.True(t, effect.NewBalance.Equal(types.MustMoney("300")))
	assert.True(t, repo.customers[c.ID].CurrentBalance.Equal(types.MustMoney("300")))
}

func TestApplyWholesaleSale_FullyPaidLeavesBalance(t *testing.T) {
	svc, c, _ := newLedgerFixture("80", nil, nil)

	effect, err := svc.ApplyWholesaleSale(context.Background(), c.ID,
		types.MustMoney("200"), types.MustMoney("200"))
	require.NoError(t, err)
	assert.True(t, effect.NewBalance.Equal(types.MustMoney("80")))
}

func TestApplyPayment_ReducesBalance(t *testing.T) {
	svc, c, repo := newLedgerFixture("500", nil, nil)

	effect, err := svc.ApplyPayment(context.Background(), c.ID, types.MustMoney("180"))
	require.NoError(t, err)

	assert.True(t, effect.PreviousBalance.Equal(types.MustMoney("500")))
	assert.True(t, effect.NewBalance.Equal(types.MustMoney("320")))
	assert.True(t, repo.customers[c.ID].CurrentBalance.Equal(types.MustMoney("320")))
}

func TestApplyPayment_OverpaymentGoesNegative(t *testing.T) {
	// overpayment is shop credit toward the customer, not an error
	svc, c, _ := newLedgerFixture("50", nil, nil)

	effect, err := svc.ApplyPayment(context.Background(), c.ID, types.MustMoney("80"))
	require.NoError(t, err)
	assert.True(t, effect.NewBalance.Equal(types.MustMoney("-30")))
}

func TestApplyWholesaleSale_UnknownCustomer(t *testing.T) {
	svc, _, _ := newLedgerFixture("0", nil, nil)

	_, err := svc.ApplyWholesaleSale(context.Background(), id.New(),
		types.MustMoney("10"), types.Zero())
	assert.True(t, apperror.IsNotFound(err))
}

func TestGetCustomerLedger_FullTimeline(t *testing.T) {
	saleID, payID := id.New(), id.New()
	svc, c, _ := newLedgerFixture("100",
		[]SaleRecord{{ID: saleID, Date: day(2), GrandTotal: types.MustMoney("300"), PaymentReceived: types.MustMoney("100")}},
		[]PaymentRecord{{ID: payID, Date: day(5), Amount: types.MustMoney("150"), Method: "mpesa"}},
	)

	ledger, err := svc.GetCustomerLedger(context.Background(), c.ID, nil, nil)
	require.NoError(t, err)

	assert.True(t, ledger.OpeningBalance.Equal(types.MustMoney("100")))
	require.Len(t, ledger.Entries, 2)

	// day 2: 100 + 300 - 100 = 300
	assert.Equal(t, EntrySale, ledger.Entries[0].Kind)
	assert.True(t, ledger.Entries[0].Balance.Equal(types.MustMoney("300")))

	// day 5: 300 - 150 = 150
	assert.Equal(t, EntryPayment, ledger.Entries[1].Kind)
	assert.True(t, ledger.Entries[1].Balance.Equal(types.MustMoney("150")))

	assert.True(t, ledger.ClosingBalance.Equal(types.MustMoney("150")))
}

func TestGetCustomerLedger_WindowReplaysPriorEvents(t *testing.T) {
	svc, c, _ := newLedgerFixture("100",
		[]SaleRecord{
			{ID: id.New(), Date: day(2), GrandTotal: types.MustMoney("300"), PaymentReceived: types.MustMoney("100")},
			{ID: id.New(), Date: day(10), GrandTotal: types.MustMoney("50"), PaymentReceived: types.Zero()},
		},
		[]PaymentRecord{
			{ID: id.New(), Date: day(5), Amount: types.MustMoney("150")},
		},
	)

	from := day(8)
	ledger, err := svc.GetCustomerLedger(context.Background(), c.ID, &from, nil)
	require.NoError(t, err)

	// everything before day 8 replayed: 100 + 200 - 150 = 150
	assert.True(t, ledger.OpeningBalance.Equal(types.MustMoney("150")))

	require.Len(t, ledger.Entries, 1)
	assert.True(t, ledger.ClosingBalance.Equal(types.MustMoney("200")))
}

func TestGetCustomerLedger_WindowInvariance(t *testing.T) {
	// the closing balance of one window equals the opening balance of the
	// next regardless of where the cut lands
	svc, c, _ := newLedgerFixture("0",
		[]SaleRecord{
			{ID: id.New(), Date: day(1), GrandTotal: types.MustMoney("120"), PaymentReceived: types.MustMoney("20")},
			{ID: id.New(), Date: day(7), GrandTotal: types.MustMoney("80"), PaymentReceived: types.Zero()},
			{ID: id.New(), Date: day(15), GrandTotal: types.MustMoney("60"), PaymentReceived: types.MustMoney("60")},
		},
		[]PaymentRecord{
			{ID: id.New(), Date: day(4), Amount: types.MustMoney("40")},
			{ID: id.New(), Date: day(20), Amount: types.MustMoney("100")},
		},
	)
	ctx := context.Background()

	cut := day(10)
	first, err := svc.GetCustomerLedger(ctx, c.ID, nil, &cut)
	require.NoError(t, err)
	second, err := svc.GetCustomerLedger(ctx, c.ID, &cut, nil)
	require.NoError(t, err)

	assert.True(t, first.ClosingBalance.Equal(second.OpeningBalance),
		"closing %s != opening %s", first.ClosingBalance, second.OpeningBalance)

	full, err := svc.GetCustomerLedger(ctx, c.ID, nil, nil)
	require.NoError(t, err)
	assert.True(t, full.ClosingBalance.Equal(second.ClosingBalance))
}

func TestGetCustomerLedger_EmptyWindow(t *testing.T) {
	svc, c, _ := newLedgerFixture("75", nil, nil)

	ledger, err := svc.GetCustomerLedger(context.Background(), c.ID, nil, nil)
	require.NoError(t, err)

	assert.Empty(t, ledger.Entries)
	assert.True(t, ledger.OpeningBalance.Equal(types.MustMoney("75")))
	assert.True(t, ledger.ClosingBalance.Equal(types.MustMoney("75")))
}

func TestGetCustomerLedger_PaymentDescriptionFallback(t *testing.T) {
	svc, c, _ := newLedgerFixture("0", nil,
		[]PaymentRecord{{ID: id.New(), Date: day(3), Amount: types.MustMoney("10")}},
	)

	ledger, err := svc.GetCustomerLedger(context.Background(), c.ID, nil, nil)
	require.NoError(t, err)
	require.Len(t, ledger.Entries, 1)
	assert.Equal(t, "Payment received", ledger.Entries[0].Description)
}
