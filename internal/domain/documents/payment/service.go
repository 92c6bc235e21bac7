package payment

import (
	"context"
	"time"

	"dukapos/internal/core/apperror"
	appctx "dukapos/internal/core/context"
	"dukapos/internal/core/id"
	"dukapos/internal/core/tx"
	"dukapos/internal/core/types"
	"dukapos/internal/domain/custledger"
	"dukapos/pkg/logger"
)

// ListFilter narrows payment listings.
type ListFilter struct {
	CustomerID *id.ID
	FromDate   *time.Time
	ToDate     *time.Time
	Limit      int
	Offset     int
}

// Repository persists payments.
type Repository interface {
	Create(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, paymentID id.ID) (*Payment, error)
	List(ctx context.Context, filter ListFilter) ([]*Payment, error)
}

// BalanceApplier reduces a customer balance inside the caller's transaction.
type BalanceApplier interface {
	ApplyPayment(ctx context.Context, customerID id.ID, amount types.Money) (custledger.PaymentEffect, error)
}

// CreateInput is a payment request.
type CreateInput struct {
	CustomerID id.ID
	Amount     types.Money
	Method     Method
	Note       string
	Date       *time.Time
}

// Service records customer payments and their balance effect atomically.
type Service struct {
	repo      Repository
	balances  BalanceApplier
	txManager tx.Manager
}

// NewService creates the payment service.
func NewService(repo Repository, balances BalanceApplier, txManager tx.Manager) *Service {
	return &Service{repo: repo, balances: balances, txManager: txManager}
}

// Create records a payment. Amount must be strictly positive; overpayment
// is allowed and drives the balance negative, meaning the shop owes the
// customer.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Payment, error) {
	if id.IsNil(input.CustomerID) {
		return nil, apperror.NewValidation("customer is required")
	}
	if !input.Amount.IsPositive() {
		return nil, apperror.NewValidation("amount must be positive")
	}
	if input.Method == "" {
		input.Method = MethodCash
	}
	if !IsValidMethod(input.Method) {
		return nil, apperror.NewValidation("invalid payment method").
			WithDetail("method", string(input.Method))
	}

	now := time.Now()
	p := &Payment{
		ID:         id.New(),
		CustomerID: input.CustomerID,
		Date:       now,
		Amount:     input.Amount,
		Method:     input.Method,
		Note:       input.Note,
		CreatedBy:  appctx.GetActorID(ctx),
		CreatedAt:  now,
	}
	if input.Date != nil {
		p.Date = *input.Date
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		effect, err := s.balances.ApplyPayment(ctx, input.CustomerID, input.Amount)
		if err != nil {
			return err
		}
		p.PreviousBalance = effect.PreviousBalance
		p.NewBalance = effect.NewBalance
		return s.repo.Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "payment recorded",
		"payment_id", p.ID,
		"customer_id", p.CustomerID,
		"amount", p.Amount,
		"new_balance", p.NewBalance,
	)
	return p, nil
}

// GetByID returns a payment.
func (s *Service) GetByID(ctx context.Context, paymentID id.ID) (*Payment, error) {
	return s.repo.GetByID(ctx, paymentID)
}

// List returns payments matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Payment, error) {
	return s.repo.List(ctx, filter)
}
