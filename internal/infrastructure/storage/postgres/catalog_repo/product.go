// Package catalog_repo provides PostgreSQL implementations for catalog
// repositories.
package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"dukapos/internal/core/apperror"
	"dukapos/internal/core/id"
	"dukapos/internal/domain/catalogs/product"
	"dukapos/internal/infrastructure/storage/postgres"
)

const productTable = "cat_products"

var productColumns = []string{
	"id", "name", "brand", "category", "sku", "barcode",
	"unit_type", "pack_size", "aliases",
	"cost_price", "retail_price", "wholesale_price",
	"stock_qty", "reorder_level", "is_active",
	"created_at", "updated_at",
}

// ProductRepo implements product.Repository.
type ProductRepo struct {
	txm *postgres.TxManager
}

// NewProductRepo creates a new product repository.
func NewProductRepo(txm *postgres.TxManager) *ProductRepo {
	return &ProductRepo{txm: txm}
}

func (r *ProductRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *ProductRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder().Select(productColumns...).From(productTable)
}

func (r *ProductRepo) setMap(p *product.Product) map[string]any {
	return map[string]any{
		"id":              p.ID,
		"name":            p.Name,
		"brand":           p.Brand,
		"category":        p.Category,
		"sku":             p.SKU,
		"barcode":         p.Barcode,
		"unit_type":       string(p.UnitType),
		"pack_size":       p.PackSize,
		"aliases":         p.Aliases,
		"cost_price":      p.CostPrice,
		"retail_price":    p.RetailPrice,
		"wholesale_price": p.WholesalePrice,
		"stock_qty":       p.StockQty,
		"reorder_level":   p.ReorderLevel,
		"is_active":       p.IsActive,
		"created_at":      p.CreatedAt,
		"updated_at":      p.UpdatedAt,
	}
}

// Create inserts a new product.
func (r *ProductRepo) Create(ctx context.Context, p *product.Product) error {
	sql, args, err := r.builder().
		Insert(productTable).
		SetMap(r.setMap(p)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID retrieves a product by ID.
func (r *ProductRepo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	return r.getOne(ctx, r.baseSelect().Where(squirrel.Eq{"id": productID}), productID.String())
}

// GetForUpdate retrieves a product with a row lock. Must run inside a
// transaction.
func (r *ProductRepo) GetForUpdate(ctx context.Context, productID id.ID) (*product.Product, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"id": productID}).
		Suffix("FOR UPDATE")
	return r.getOne(ctx, q, productID.String())
}

func (r *ProductRepo) getOne(ctx context.Context, q squirrel.SelectBuilder, key string) (*product.Product, error) {
	sql, args, err := q.Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p product.Product
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("product", key)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// Update overwrites a product row.
func (r *ProductRepo) Update(ctx context.Context, p *product.Product) error {
	data := r.setMap(p)
	delete(data, "id")
	delete(data, "created_at")

	sql, args, err := r.builder().
		Update(productTable).
		SetMap(data).
		Where(squirrel.Eq{"id": p.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("product", p.ID.String())
	}
	return nil
}

// ListActive returns active products ordered by ID. Matching relies on
// this ordering for deterministic tie-breaks.
func (r *ProductRepo) ListActive(ctx context.Context) ([]product.Product, error) {
	sql, args, err := r.baseSelect().
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []product.Product
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list active products: %w", err)
	}
	return items, nil
}

// FindActiveByIdentifier finds an active product by barcode or SKU.
// Returns nil without error when nothing matches.
func (r *ProductRepo) FindActiveByIdentifier(ctx context.Context, barcode, sku string) (*product.Product, error) {
	or := squirrel.Or{}
	if barcode != "" {
		or = append(or, squirrel.Eq{"barcode": barcode})
	}
	if sku != "" {
		or = append(or, squirrel.Eq{"sku": sku})
	}
	if len(or) == 0 {
		return nil, nil
	}

	sql, args, err := r.baseSelect().
		Where(squirrel.Eq{"is_active": true}).
		Where(or).
		OrderBy("id ASC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p product.Product
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find product by identifier: %w", err)
	}
	return &p, nil
}

// List returns products matching the filter, ordered by name, with the
// total count before paging.
func (r *ProductRepo) List(ctx context.Context, filter product.ListFilter) ([]product.Product, int64, error) {
	where := func(q squirrel.SelectBuilder) squirrel.SelectBuilder {
		if filter.ActiveOnly {
			q = q.Where(squirrel.Eq{"is_active": true})
		}
		if filter.LowStockOnly {
			q = q.Where(squirrel.Expr("stock_qty <= reorder_level"))
		}
		if filter.Search != "" {
			q = q.Where(squirrel.ILike{"name": "%" + filter.Search + "%"})
		}
		return q
	}

	countSQL, countArgs, err := where(r.builder().Select("COUNT(*)").From(productTable)).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}
	var total int64
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
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

	var items []product.Product
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return items, total, nil
}
