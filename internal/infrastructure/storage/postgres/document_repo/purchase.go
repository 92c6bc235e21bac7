// Package document_repo provides PostgreSQL implementations for document
// repositories. Documents are stored as a header row plus ordered line
// rows in a companion table.
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
	"dukapos/internal/domain/documents/purchase"
	"dukapos/internal/infrastructure/storage/postgres"
)

const (
	purchasesTable     = "doc_purchases"
	purchaseLinesTable = "doc_purchase_lines"
)

var purchaseColumns = []string{
	"id", "number", "supplier_name", "date", "total_cost",
	"source", "draft_id", "created_by", "created_at",
}

type purchaseRow struct {
	ID           id.ID       `db:"id"`
	Number       string      `db:"number"`
	SupplierName string      `db:"supplier_name"`
	Date         time.Time   `db:"date"`
	TotalCost    types.Money `db:"total_cost"`
	Source       string      `db:"source"`
	DraftID      *id.ID      `db:"draft_id"`
	CreatedBy    id.ID       `db:"created_by"`
	CreatedAt    time.Time   `db:"created_at"`
}

type purchaseLineRow struct {
	ProductID id.ID       `db:"product_id"`
	Name      string      `db:"name"`
	Qty       float64     `db:"qty"`
	Unit      string      `db:"unit"`
	UnitCost  types.Money `db:"unit_cost"`
	LineTotal types.Money `db:"line_total"`
}

// PurchaseRepo implements purchase.Repository.
type PurchaseRepo struct {
	txm *postgres.TxManager
}

// NewPurchaseRepo creates a new purchase repository.
func NewPurchaseRepo(txm *postgres.TxManager) *PurchaseRepo {
	return &PurchaseRepo{txm: txm}
}

func (r *PurchaseRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts the purchase header and its lines.
func (r *PurchaseRepo) Create(ctx context.Context, p *purchase.Purchase) error {
	querier := r.txm.GetQuerier(ctx)

	sql, args, err := r.builder().
		Insert(purchasesTable).
		SetMap(map[string]any{
			"id":            p.ID,
			"number":        p.Number,
			"supplier_name": p.SupplierName,
			"date":          p.Date,
			"total_cost":    p.TotalCost,
			"source":        string(p.Source),
			"draft_id":      p.DraftID,
			"created_by":    p.CreatedBy,
			"created_at":    p.CreatedAt,
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert purchase: %w", err)
	}

	if len(p.Items) == 0 {
		return nil
	}

	q := r.builder().
		Insert(purchaseLinesTable).
		Columns("purchase_id", "line_no", "product_id", "name", "qty", "unit", "unit_cost", "line_total")
	for i, it := range p.Items {
		q = q.Values(p.ID, i+1, it.ProductID, it.Name, it.Qty, it.Unit, it.UnitCost, it.LineTotal)
	}

	sql, args, err = q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert purchase lines: %w", err)
	}
	return nil
}

// GetByID retrieves a purchase with its lines.
func (r *PurchaseRepo) GetByID(ctx context.Context, purchaseID id.ID) (*purchase.Purchase, error) {
	sql, args, err := r.builder().
		Select(purchaseColumns...).
		From(purchasesTable).
		Where(squirrel.Eq{"id": purchaseID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row purchaseRow
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("purchase", purchaseID.String())
		}
		return nil, fmt.Errorf("get purchase: %w", err)
	}

	p := row.toDomain()
	if err := r.loadLines(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// List retrieves purchases matching the filter, newest first.
func (r *PurchaseRepo) List(ctx context.Context, filter purchase.ListFilter) ([]*purchase.Purchase, error) {
	q := r.builder().
		Select(purchaseColumns...).
		From(purchasesTable).
		OrderBy("date DESC", "id DESC")

	if filter.Source != "" {
		q = q.Where(squirrel.Eq{"source": string(filter.Source)})
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

	var rows []purchaseRow
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}

	items := make([]*purchase.Purchase, 0, len(rows))
	for i := range rows {
		p := rows[i].toDomain()
		if err := r.loadLines(ctx, p); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, nil
}

func (row *purchaseRow) toDomain() *purchase.Purchase {
	return &purchase.Purchase{
		ID:           row.ID,
		Number:       row.Number,
		SupplierName: row.SupplierName,
		Date:         row.Date,
		TotalCost:    row.TotalCost,
		Source:       purchase.Source(row.Source),
		DraftID:      row.DraftID,
		CreatedBy:    row.CreatedBy,
		CreatedAt:    row.CreatedAt,
	}
}

func (r *PurchaseRepo) loadLines(ctx context.Context, p *purchase.Purchase) error {
	sql, args, err := r.builder().
		Select("product_id", "name", "qty", "unit", "unit_cost", "line_total").
		From(purchaseLinesTable).
		Where(squirrel.Eq{"purchase_id": p.ID}).
		OrderBy("line_no").
		ToSql()
	if err != nil {
		return fmt.Errorf("build lines query: %w", err)
	}

	var lines []purchaseLineRow
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &lines, sql, args...); err != nil {
		return fmt.Errorf("get purchase lines: %w", err)
	}

	p.Items = make([]purchase.Item, 0, len(lines))
	for _, l := range lines {
		p.Items = append(p.Items, purchase.Item{
			ProductID: l.ProductID,
			Name:      l.Name,
			Qty:       l.Qty,
			Unit:      l.Unit,
			UnitCost:  l.UnitCost,
			LineTotal: l.LineTotal,
		})
	}
	return nil
}
