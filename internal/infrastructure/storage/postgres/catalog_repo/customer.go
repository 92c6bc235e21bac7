package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"dukapos/internal/core/apperror"
	"dukapos/internal/core/id"
	"dukapos/internal/domain/catalogs/customer"
	"dukapos/internal/infrastructure/storage/postgres"
)

const customerTable = "cat_customers"

var customerColumns = []string{
	"id", "name", "shop_name", "phone", "address", "pricing_tier",
	"opening_balance", "current_balance", "is_active",
	"created_at", "updated_at",
}

// CustomerRepo implements customer.Repository.
type CustomerRepo struct {
	txm *postgres.TxManager
}

// NewCustomerRepo creates a new customer repository.
func NewCustomerRepo(txm *postgres.TxManager) *CustomerRepo {
	return &CustomerRepo{txm: txm}
}

func (r *CustomerRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *CustomerRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder().Select(customerColumns...).From(customerTable)
}

func (r *CustomerRepo) setMap(c *customer.Customer) map[string]any {
	return map[string]any{
		"id":              c.ID,
		"name":            c.Name,
		"shop_name":       c.ShopName,
		"phone":           c.Phone,
		"address":         c.Address,
		"pricing_tier":    string(c.PricingTier),
		"opening_balance": c.OpeningBalance,
		"current_balance": c.CurrentBalance,
		"is_active":       c.IsActive,
		"created_at":      c.CreatedAt,
		"updated_at":      c.UpdatedAt,
	}
}

// Create inserts a new customer.
func (r *CustomerRepo) Create(ctx context.Context, c *customer.Customer) error {
	sql, args, err := r.builder().
		Insert(customerTable).
		SetMap(r.setMap(c)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// GetByID retrieves a customer by ID.
func (r *CustomerRepo) GetByID(ctx context.Context, customerID id.ID) (*customer.Customer, error) {
	return r.getOne(ctx, r.baseSelect().Where(squirrel.Eq{"id": customerID}), customerID)
}

// GetForUpdate retrieves a customer with a row lock for balance mutation.
func (r *CustomerRepo) GetForUpdate(ctx context.Context, customerID id.ID) (*customer.Customer, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"id": customerID}).
		Suffix("FOR UPDATE")
	return r.getOne(ctx, q, customerID)
}

func (r *CustomerRepo) getOne(ctx context.Context, q squirrel.SelectBuilder, customerID id.ID) (*customer.Customer, error) {
	sql, args, err := q.Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var c customer.Customer
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &c, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("customer", customerID.String())
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &c, nil
}

// Update overwrites a customer row.
func (r *CustomerRepo) Update(ctx context.Context, c *customer.Customer) error {
	data := r.setMap(c)
	delete(data, "id")
	delete(data, "created_at")

	sql, args, err := r.builder().
		Update(customerTable).
		SetMap(data).
		Where(squirrel.Eq{"id": c.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("customer", c.ID.String())
	}
	return nil
}

// List returns customers matching the filter with the total count.
func (r *CustomerRepo) List(ctx context.Context, filter customer.ListFilter) ([]customer.Customer, int64, error) {
	where := func(q squirrel.SelectBuilder) squirrel.SelectBuilder {
		if filter.ActiveOnly {
			q = q.Where(squirrel.Eq{"is_active": true})
		}
		if filter.Search != "" {
			q = q.Where(squirrel.Or{
				squirrel.ILike{"name": "%" + filter.Search + "%"},
				squirrel.ILike{"shop_name": "%" + filter.Search + "%"},
				squirrel.ILike{"phone": "%" + filter.Search + "%"},
			})
		}
		return q
	}

	countSQL, countArgs, err := where(r.builder().Select("COUNT(*)").From(customerTable)).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}
	var total int64
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count customers: %w", err)
	}

	q := where(r.baseSelect()).OrderBy("name ASC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}

	var items []customer.Customer
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", err)
	}
	return items, total, nil
}
