package document_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"dukapos/internal/core/apperror"
	"dukapos/internal/core/id"
	"dukapos/internal/core/types"
	"dukapos/internal/domain/custledger"
	"dukapos/internal/domain/documents/payment"
	"dukapos/internal/infrastructure/storage/postgres"
)

const paymentsTable = "doc_payments"

var paymentColumns = []string{
	"id", "customer_id", "date", "amount", "method", "note",
	"previous_balance", "new_balance", "created_by", "created_at",
}

type paymentRow struct {
	ID              id.ID       `db:"id"`
	CustomerID      id.ID       `db:"customer_id"`
	Date            time.Time   `db:"date"`
	Amount          types.Money `db:"amount"`
	Method          string      `db:"method"`
	Note            string      `db:"note"`
	PreviousBalance types.Money `db:"previous_balance"`
	NewBalance      types.Money `db:"new_balance"`
	CreatedBy       id.ID       `db:"created_by"`
	CreatedAt       time.Time   `db:"created_at"`
}

// PaymentRepo implements payment.Repository and custledger.PaymentSource.
type PaymentRepo struct {
	txm *postgres.TxManager
}

// NewPaymentRepo creates a new payment repository.
func NewPaymentRepo(txm *postgres.TxManager) *PaymentRepo {
	return &PaymentRepo{txm: txm}
}

func (r *PaymentRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts a payment. Payments are immutable once recorded.
func (r *PaymentRepo) Create(ctx context.Context, p *payment.Payment) error {
	sql, args, err := r.builder().
		Insert(paymentsTable).
		SetMap(map[string]any{
			"id":               p.ID,
			"customer_id":      p.CustomerID,
			"date":             p.Date,
			"amount":           p.Amount,
			"method":           string(p.Method),
			"note":             p.Note,
			"previous_balance": p.PreviousBalance,
			"new_balance":      p.NewBalance,
			"created_by":       p.CreatedBy,
			"created_at":       p.CreatedAt,
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// GetByID retrieves a payment.
func (r *PaymentRepo) GetByID(ctx context.Context, paymentID id.ID) (*payment.Payment, error) {
	sql, args, err := r.builder().
		Select(paymentColumns...).
		From(paymentsTable).
		Where(squirrel.Eq{"id": paymentID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row paymentRow
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("payment", paymentID.String())
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return row.toDomain(), nil
}

// List retrieves payments matching the filter, newest first.
func (r *PaymentRepo) List(ctx context.Context, filter payment.ListFilter) ([]*payment.Payment, error) {
	q := r.builder().
		Select(paymentColumns...).
		From(paymentsTable).
		OrderBy("date DESC", "id DESC")

	if filter.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.Lt{"date": *filter.ToDate})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []paymentRow
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}

	items := make([]*payment.Payment, 0, len(rows))
	for i := range rows {
		items = append(items, rows[i].toDomain())
	}
	return items, nil
}

// PaymentsForCustomer lists payments for the customer ledger, oldest first.
func (r *PaymentRepo) PaymentsForCustomer(ctx context.Context, customerID id.ID, from, to *time.Time) ([]custledger.PaymentRecord, error) {
	q := r.builder().
		Select("id", "date", "amount", "method", "note").
		From(paymentsTable).
		Where(squirrel.Eq{"customer_id": customerID}).
		OrderBy("date ASC", "id ASC")

	if from != nil {
		q = q.Where(squirrel.GtOrEq{"date": *from})
	}
	if to != nil {
		q = q.Where(squirrel.Lt{"date": *to})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []struct {
		ID     id.ID       `db:"id"`
		Date   time.Time   `db:"date"`
		Amount types.Money `db:"amount"`
		Method string      `db:"method"`
		Note   string      `db:"note"`
	}
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list customer payments: %w", err)
	}

	records := make([]custledger.PaymentRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, custledger.PaymentRecord{
			ID:     row.ID,
			Date:   row.Date,
			Amount: row.Amount,
			Method: row.Method,
			Note:   row.Note,
		})
	}
	return records, nil
}

func (row *paymentRow) toDomain() *payment.Payment {
	return &payment.Payment{
		ID:              row.ID,
		CustomerID:      row.CustomerID,
		Date:            row.Date,
		Amount:          row.Amount,
		Method:          payment.Method(row.Method),
		Note:            row.Note,
		PreviousBalance: row.PreviousBalance,
		NewBalance:      row.NewBalance,
		CreatedBy:       row.CreatedBy,
		CreatedAt:       row.CreatedAt,
	}
}
