package payment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dukapos/internal/core/apperror"
	"dukapos/internal/core/id"
	"dukapos/internal/core/types"
	"dukapos/internal/domain/custledger"
)

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakePaymentRepo struct {
	created []*Payment
}

func (f *fakePaymentRepo) Create(ctx context.Context, p *Payment) error {
	f.created = append(f.created, p)
	return nil
}

func (f *fakePaymentRepo) GetByID(ctx context.Context, paymentID id.ID) (*Payment, error) {
	for _, p := range f.created {
		if p.ID == paymentID {
			return p, nil
		}
	}
	return nil, apperror.NewNotFound("payment", paymentID)
}

func (f *fakePaymentRepo) List(ctx context.Context, filter ListFilter) ([]*Payment, error) {
	return f.created, nil
}

type fakeBalances struct {
	balance types.Money
	calls   int
}

func (f *fakeBalances) ApplyPayment(ctx context.Context, customerID id.ID, amount types.Money) (custledger.PaymentEffect, error) {
	previous := f.balance
	f.balance = previous.Sub(amount)
	f.calls++
	return custledger.PaymentEffect{PreviousBalance: previous, NewBalance: f.balance}, nil
}

func newPaymentFixture(balance string) (*Service, *fakePaymentRepo, *fakeBalances) {
	repo := &fakePaymentRepo{}
	balances := &fakeBalances{balance: types.MustMoney(balance)}
	return NewService(repo, balances, fakeTxManager{}), repo, balances
}

func TestCreate_RecordsPaymentWithBalanceSnapshot(t *testing.T) {
	svc, repo, balances := newPaymentFixture("500")
	customerID := id.New()

	p, err := svc.Create(context.Background(), CreateInput{
		CustomerID: customerID,
		Amount:     types.MustMoney("180"),
		Method:     MethodMobile,
		Note:       "weekly settlement",
	})
	require.NoError(t, err)

	assert.Equal(t, customerID, p.CustomerID)
	assert.Equal(t, MethodMobile, p.Method)
	assert.True(t, p.PreviousBalance.Equal(types.MustMoney("500")))
	assert.True(t, p.NewBalance.Equal(types.MustMoney("320")))
	assert.Equal(t, 1, balances.calls)
	require.Len(t, repo.created, 1)
}

func TestCreate_DefaultsToCash(t *testing.T) {
	svc, _, _ := newPaymentFixture("0")

	p, err := svc.Create(context.Background(), CreateInput{
		CustomerID: id.New(),
		Amount:     types.MustMoney("10"),
	})
	require.NoError(t, err)
	assert.Equal(t, MethodCash, p.Method)
}

func TestCreate_ExplicitDateKept(t *testing.T) {
	svc, _, _ := newPaymentFixture("0")
	when := time.Date(2026, time.July, 3, 10, 0, 0, 0, time.UTC)

	p, err := svc.Create(context.Background(), CreateInput{
		CustomerID: id.New(),
		Amount:     types.MustMoney("10"),
		Date:       &when,
	})
	require.NoError(t, err)
	assert.True(t, p.Date.Equal(when))
}

func TestCreate_OverpaymentAllowed(t *testing.T) {
	svc, _, _ := newPaymentFixture("50")

	p, err := svc.Create(context.Background(), CreateInput{
		CustomerID: id.New(),
		Amount:     types.MustMoney("80"),
	})
	require.NoError(t, err)
	assert.True(t, p.NewBalance.Equal(types.MustMoney("-30")))
}

func TestCreate_Validation(t *testing.T) {
	svc, repo, _ := newPaymentFixture("0")
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Amount: types.MustMoney("10")})
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation), "missing customer")

	_, err = svc.Create(ctx, CreateInput{CustomerID: id.New(), Amount: types.Zero()})
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation), "zero amount")

	_, err = svc.Create(ctx, CreateInput{CustomerID: id.New(), Amount: types.MustMoney("-5")})
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation), "negative amount")

	_, err = svc.Create(ctx, CreateInput{CustomerID: id.New(), Amount: types.MustMoney("5"), Method: "cheque"})
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation), "unknown method")

	assert.Empty(t, repo.created)
}
