// Package report_repo runs read-only aggregate queries over committed
// documents.
package report_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"dukapos/internal/core/id"
	"dukapos/internal/core/types"
	"dukapos/internal/domain/reports"
	"dukapos/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository with SQL aggregates.
type ReportRepo struct {
	txm *postgres.TxManager
}

// NewReportRepo creates a new report repository.
func NewReportRepo(txm *postgres.TxManager) *ReportRepo {
	return &ReportRepo{txm: txm}
}

func (r *ReportRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// SalesTotals aggregates sales in [from, to) per channel.
func (r *ReportRepo) SalesTotals(ctx context.Context, from, to time.Time) (reports.SalesTotals, error) {
	sql, args, err := r.builder().
		Select(
			"COALESCE(SUM(grand_total) FILTER (WHERE type = 'retail'), 0) AS retail_total",
			"COALESCE(SUM(grand_total) FILTER (WHERE type = 'wholesale'), 0) AS wholesale_total",
			"COALESCE(SUM(payment_received), 0) AS cash_received",
			"COALESCE(SUM(grand_total - payment_received) FILTER (WHERE type = 'wholesale'), 0) AS credit_extended",
			"COUNT(*) AS transaction_count",
		).
		From("doc_sales").
		Where(squirrel.GtOrEq{"date": from}).
		Where(squirrel.Lt{"date": to}).
		ToSql()
	if err != nil {
		return reports.SalesTotals{}, fmt.Errorf("build query: %w", err)
	}

	var row struct {
		RetailTotal      types.Money `db:"retail_total"`
		WholesaleTotal   types.Money `db:"wholesale_total"`
		CashReceived     types.Money `db:"cash_received"`
		CreditExtended   types.Money `db:"credit_extended"`
		TransactionCount int64       `db:"transaction_count"`
	}
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &row, sql, args...); err != nil {
		return reports.SalesTotals{}, fmt.Errorf("sales totals: %w", err)
	}

	return reports.SalesTotals{
		RetailTotal:      row.RetailTotal,
		WholesaleTotal:   row.WholesaleTotal,
		CashReceived:     row.CashReceived,
		CreditExtended:   row.CreditExtended,
		TransactionCount: row.TransactionCount,
	}, nil
}

// PaymentsTotal sums customer payments in [from, to).
func (r *ReportRepo) PaymentsTotal(ctx context.Context, from, to time.Time) (types.Money, error) {
	sql, args, err := r.builder().
		Select("COALESCE(SUM(amount), 0) AS total").
		From("doc_payments").
		Where(squirrel.GtOrEq{"date": from}).
		Where(squirrel.Lt{"date": to}).
		ToSql()
	if err != nil {
		return types.Zero(), fmt.Errorf("build query: %w", err)
	}

	var row struct {
		Total types.Money `db:"total"`
	}
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &row, sql, args...); err != nil {
		return types.Zero(), fmt.Errorf("payments total: %w", err)
	}
	return row.Total, nil
}

// TopItems ranks products by quantity sold in [from, to).
func (r *ReportRepo) TopItems(ctx context.Context, from, to time.Time, limit int) ([]reports.TopItem, error) {
	sql, args, err := r.builder().
		Select(
			"l.product_id",
			"MAX(l.name) AS name",
			"SUM(l.qty) AS qty",
			"COALESCE(SUM(l.line_total), 0) AS revenue",
		).
		From("doc_sale_lines l").
		Join("doc_sales s ON s.id = l.sale_id").
		Where(squirrel.GtOrEq{"s.date": from}).
		Where(squirrel.Lt{"s.date": to}).
		GroupBy("l.product_id").
		OrderBy("qty DESC", "revenue DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []struct {
		ProductID id.ID       `db:"product_id"`
		Name      string      `db:"name"`
		Qty       float64     `db:"qty"`
		Revenue   types.Money `db:"revenue"`
	}
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("top items: %w", err)
	}

	items := make([]reports.TopItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, reports.TopItem{
			ProductID: row.ProductID,
			Name:      row.Name,
			Qty:       row.Qty,
			Revenue:   row.Revenue,
		})
	}
	return items, nil
}

// LowStock lists active products at or below their reorder level.
func (r *ReportRepo) LowStock(ctx context.Context) ([]reports.LowStockProduct, error) {
	sql, args, err := r.builder().
		Select("id AS product_id", "name", "stock_qty", "reorder_level").
		From("cat_products").
		Where(squirrel.Eq{"is_active": true}).
		Where("stock_qty <= reorder_level").
		OrderBy("stock_qty ASC", "name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []struct {
		ProductID    id.ID   `db:"product_id"`
		Name         string  `db:"name"`
		StockQty     float64 `db:"stock_qty"`
		ReorderLevel float64 `db:"reorder_level"`
	}
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("low stock: %w", err)
	}

	out := make([]reports.LowStockProduct, 0, len(rows))
	for _, row := range rows {
		out = append(out, reports.LowStockProduct{
			ProductID:    row.ProductID,
			Name:         row.Name,
			StockQty:     row.StockQty,
			ReorderLevel: row.ReorderLevel,
		})
	}
	return out, nil
}
