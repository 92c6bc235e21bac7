// Package ledger_repo persists the append-only stock movement log.
package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"dukapos/internal/core/id"
	"dukapos/internal/domain/stockledger"
	"dukapos/internal/infrastructure/storage/postgres"
)

const stockLedgerTable = "reg_stock_ledger"

var stockLedgerColumns = []string{
	"id", "product_id", "type", "ref_id",
	"qty_change", "stock_after",
	"created_by", "note", "created_at",
}

// StockLedgerRepo implements stockledger.Repository. Entries are only
// ever inserted; there is no update or delete path.
type StockLedgerRepo struct {
	txm *postgres.TxManager
}

// NewStockLedgerRepo creates a new stock ledger repository.
func NewStockLedgerRepo(txm *postgres.TxManager) *StockLedgerRepo {
	return &StockLedgerRepo{txm: txm}
}

func (r *StockLedgerRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Append inserts one ledger entry.
func (r *StockLedgerRepo) Append(ctx context.Context, e *stockledger.Entry) error {
	sql, args, err := r.builder().
		Insert(stockLedgerTable).
		SetMap(map[string]any{
			"id":          e.ID,
			"product_id":  e.ProductID,
			"type":        string(e.Type),
			"ref_id":      e.RefID,
			"qty_change":  e.QtyChange,
			"stock_after": e.StockAfter,
			"created_by":  e.CreatedBy,
			"note":        e.Note,
			"created_at":  e.CreatedAt,
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("append stock ledger entry: %w", err)
	}
	return nil
}

// HistoryByProduct returns entries for a product, newest first, with the
// total count before paging.
func (r *StockLedgerRepo) HistoryByProduct(ctx context.Context, productID id.ID, filter stockledger.HistoryFilter) ([]stockledger.Entry, int64, error) {
	where := func(q squirrel.SelectBuilder) squirrel.SelectBuilder {
		q = q.Where(squirrel.Eq{"product_id": productID})
		if filter.Type != nil {
			q = q.Where(squirrel.Eq{"type": string(*filter.Type)})
		}
		if filter.FromDate != nil {
			q = q.Where(squirrel.GtOrEq{"created_at": *filter.FromDate})
		}
		if filter.ToDate != nil {
			q = q.Where(squirrel.Lt{"created_at": *filter.ToDate})
		}
		return q
	}

	countSQL, countArgs, err := where(r.builder().Select("COUNT(*)").From(stockLedgerTable)).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}
	var total int64
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count ledger entries: %w", err)
	}

	q := where(r.builder().Select(stockLedgerColumns...).From(stockLedgerTable)).
		OrderBy("created_at DESC", "id DESC")
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

	var entries []stockledger.Entry
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &entries, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list ledger entries: %w", err)
	}
	return entries, total, nil
}

// LatestByProduct returns the most recent entry, or nil when the product
// has no history.
func (r *StockLedgerRepo) LatestByProduct(ctx context.Context, productID id.ID) (*stockledger.Entry, error) {
	sql, args, err := r.builder().
		Select(stockLedgerColumns...).
		From(stockLedgerTable).
		Where(squirrel.Eq{"product_id": productID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var e stockledger.Entry
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &e, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest ledger entry: %w", err)
	}
	return &e, nil
}
