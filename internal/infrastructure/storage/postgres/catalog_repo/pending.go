package catalog_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"dukapos/internal/core/apperror"
	"dukapos/internal/core/id"
	"dukapos/internal/core/types"
	"dukapos/internal/domain/catalogs/pending"
	"dukapos/internal/domain/catalogs/product"
	"dukapos/internal/infrastructure/storage/postgres"
)

const pendingTable = "cat_pending_products"

var pendingColumns = []string{
	"id", "raw_name",
	"suggested_name", "suggested_unit_type",
	"suggested_cost_price", "suggested_retail_price", "suggested_wholesale_price",
	"status", "resolved_product_id",
	"created_at", "updated_at",
}

// pendingRow flattens the nested suggested fields for scanning.
type pendingRow struct {
	ID                      id.ID       `db:"id"`
	RawName                 string      `db:"raw_name"`
	SuggestedName           string      `db:"suggested_name"`
	SuggestedUnitType       string      `db:"suggested_unit_type"`
	SuggestedCostPrice      types.Money `db:"suggested_cost_price"`
	SuggestedRetailPrice    types.Money `db:"suggested_retail_price"`
	SuggestedWholesalePrice types.Money `db:"suggested_wholesale_price"`
	Status                  string      `db:"status"`
	ResolvedProductID       *id.ID      `db:"resolved_product_id"`
	CreatedAt               time.Time   `db:"created_at"`
	UpdatedAt               time.Time   `db:"updated_at"`
}

func (row *pendingRow) toDomain() *pending.PendingProduct {
	return &pending.PendingProduct{
		ID:      row.ID,
		RawName: row.RawName,
		Suggested: pending.SuggestedFields{
			Name:           row.SuggestedName,
			UnitType:       product.UnitType(row.SuggestedUnitType),
			CostPrice:      row.SuggestedCostPrice,
			RetailPrice:    row.SuggestedRetailPrice,
			WholesalePrice: row.SuggestedWholesalePrice,
		},
		Status:            pending.Status(row.Status),
		ResolvedProductID: row.ResolvedProductID,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
}

// PendingProductRepo implements pending.Repository.
type PendingProductRepo struct {
	txm *postgres.TxManager
}

// NewPendingProductRepo creates a new pending product repository.
func NewPendingProductRepo(txm *postgres.TxManager) *PendingProductRepo {
	return &PendingProductRepo{txm: txm}
}

func (r *PendingProductRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *PendingProductRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder().Select(pendingColumns...).From(pendingTable)
}

// Create inserts a new pending product.
func (r *PendingProductRepo) Create(ctx context.Context, p *pending.PendingProduct) error {
	sql, args, err := r.builder().
		Insert(pendingTable).
		SetMap(map[string]any{
			"id":                        p.ID,
			"raw_name":                  p.RawName,
			"suggested_name":            p.Suggested.Name,
			"suggested_unit_type":       string(p.Suggested.UnitType),
			"suggested_cost_price":      p.Suggested.CostPrice,
			"suggested_retail_price":    p.Suggested.RetailPrice,
			"suggested_wholesale_price": p.Suggested.WholesalePrice,
			"status":                    string(p.Status),
			"resolved_product_id":       p.ResolvedProductID,
			"created_at":                p.CreatedAt,
			"updated_at":                p.UpdatedAt,
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert pending product: %w", err)
	}
	return nil
}

// GetByID retrieves a pending product by ID.
func (r *PendingProductRepo) GetByID(ctx context.Context, pendingID id.ID) (*pending.PendingProduct, error) {
	sql, args, err := r.baseSelect().
		Where(squirrel.Eq{"id": pendingID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row pendingRow
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("pending product", pendingID.String())
		}
		return nil, fmt.Errorf("get pending product: %w", err)
	}
	return row.toDomain(), nil
}

// Resolve transitions a pending product out of the pending status. The
// update is guarded on the current status so the transition happens
// exactly once; a second attempt hits zero rows and conflicts.
func (r *PendingProductRepo) Resolve(ctx context.Context, pendingID id.ID, status pending.Status, productID id.ID) error {
	sql, args, err := r.builder().
		Update(pendingTable).
		Set("status", string(status)).
		Set("resolved_product_id", productID).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": pendingID}).
		Where(squirrel.Eq{"status": string(pending.StatusPending)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("resolve pending product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConflict("pending product is already resolved").
			WithDetail("id", pendingID.String())
	}
	return nil
}

// List returns pending products matching the filter with the total count.
func (r *PendingProductRepo) List(ctx context.Context, filter pending.ListFilter) ([]pending.PendingProduct, int64, error) {
	where := func(q squirrel.SelectBuilder) squirrel.SelectBuilder {
		if filter.Status != "" {
			q = q.Where(squirrel.Eq{"status": string(filter.Status)})
		}
		return q
	}

	countSQL, countArgs, err := where(r.builder().Select("COUNT(*)").From(pendingTable)).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}
	var total int64
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count pending products: %w", err)
	}

	q := where(r.baseSelect()).OrderBy("created_at DESC")
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

	var rows []pendingRow
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list pending products: %w", err)
	}

	items := make([]pending.PendingProduct, 0, len(rows))
	for i := range rows {
		items = append(items, *rows[i].toDomain())
	}
	return items, total, nil
}
