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
	"dukapos/internal/domain/documents/sale"
	"dukapos/internal/infrastructure/storage/postgres"
)

const (
	salesTable     = "doc_sales"
	saleLinesTable = "doc_sale_lines"
)

var saleColumns = []string{
	"id", "number", "type", "customer_id", "date",
	"subtotal", "discount", "grand_total", "payment_received", "payment_method",
	"ledger_previous_balance", "ledger_added", "ledger_reduced", "ledger_new_balance",
	"created_by", "created_at",
}

type saleRow struct {
	ID              id.ID        `db:"id"`
	Number          string       `db:"number"`
	Type            string       `db:"type"`
	CustomerID      *id.ID       `db:"customer_id"`
	Date            time.Time    `db:"date"`
	Subtotal        types.Money  `db:"subtotal"`
	Discount        types.Money  `db:"discount"`
	GrandTotal      types.Money  `db:"grand_total"`
	PaymentReceived types.Money  `db:"payment_received"`
	PaymentMethod   string       `db:"payment_method"`
	LedgerPrev      *types.Money `db:"ledger_previous_balance"`
	LedgerAdded     *types.Money `db:"ledger_added"`
	LedgerReduced   *types.Money `db:"ledger_reduced"`
	LedgerNew       *types.Money `db:"ledger_new_balance"`
	CreatedBy       id.ID        `db:"created_by"`
	CreatedAt       time.Time    `db:"created_at"`
}

type saleLineRow struct {
	ProductID id.ID       `db:"product_id"`
	Name      string      `db:"name"`
	Qty       float64     `db:"qty"`
	Unit      string      `db:"unit"`
	UnitPrice types.Money `db:"unit_price"`
	LineTotal types.Money `db:"line_total"`
}

// SaleRepo implements sale.Repository and custledger.SaleSource.
type SaleRepo struct {
	txm *postgres.TxManager
}

// NewSaleRepo creates a new sale repository.
func NewSaleRepo(txm *postgres.TxManager) *SaleRepo {
	return &SaleRepo{txm: txm}
}

func (r *SaleRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts the sale header and its lines.
func (r *SaleRepo) Create(ctx context.Context, s *sale.Sale) error {
	querier := r.txm.GetQuerier(ctx)

	setMap := map[string]any{
		"id":               s.ID,
		"number":           s.Number,
		"type":             string(s.Type),
		"customer_id":      s.CustomerID,
		"date":             s.Date,
		"subtotal":         s.Subtotal,
		"discount":         s.Discount,
		"grand_total":      s.GrandTotal,
		"payment_received": s.PaymentReceived,
		"payment_method":   string(s.PaymentMethod),
		"created_by":       s.CreatedBy,
		"created_at":       s.CreatedAt,
	}
	if s.LedgerEffect != nil {
		setMap["ledger_previous_balance"] = s.LedgerEffect.PreviousBalance
		setMap["ledger_added"] = s.LedgerEffect.AddedToBalance
		setMap["ledger_reduced"] = s.LedgerEffect.ReducedByPayment
		setMap["ledger_new_balance"] = s.LedgerEffect.NewBalance
	}

	sql, args, err := r.builder().
		Insert(salesTable).
		SetMap(setMap).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}

	if len(s.Items) == 0 {
		return nil
	}

	q := r.builder().
		Insert(saleLinesTable).
		Columns("sale_id", "line_no", "product_id", "name", "qty", "unit", "unit_price", "line_total")
	for i, it := range s.Items {
		q = q.Values(s.ID, i+1, it.ProductID, it.Name, it.Qty, it.Unit, it.UnitPrice, it.LineTotal)
	}

	sql, args, err = q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert sale lines: %w", err)
	}
	return nil
}

// GetByID retrieves a sale with its lines.
func (r *SaleRepo) GetByID(ctx context.Context, saleID id.ID) (*sale.Sale, error) {
	sql, args, err := r.builder().
		Select(saleColumns...).
		From(salesTable).
		Where(squirrel.Eq{"id": saleID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row saleRow
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("sale", saleID.String())
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}

	s := row.toDomain()
	if err := r.loadLines(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// List retrieves sales matching the filter, newest first.
func (r *SaleRepo) List(ctx context.Context, filter sale.ListFilter) ([]*sale.Sale, error) {
	q := r.builder().
		Select(saleColumns...).
		From(salesTable).
		OrderBy("date DESC", "id DESC")

	if filter.Type != "" {
		q = q.Where(squirrel.Eq{"type": string(filter.Type)})
	}
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

	var rows []saleRow
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}

	items := make([]*sale.Sale, 0, len(rows))
	for i := range rows {
		s := rows[i].toDomain()
		if err := r.loadLines(ctx, s); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, nil
}

// WholesaleSalesForCustomer lists committed wholesale sales for the
// customer ledger, oldest first.
func (r *SaleRepo) WholesaleSalesForCustomer(ctx context.Context, customerID id.ID, from, to *time.Time) ([]custledger.SaleRecord, error) {
	q := r.builder().
		Select("s.id", "s.date", "s.grand_total", "s.payment_received",
			"(SELECT COUNT(*) FROM "+saleLinesTable+" l WHERE l.sale_id = s.id) AS item_count").
		From(salesTable + " s").
		Where(squirrel.Eq{"s.type": string(sale.TypeWholesale)}).
		Where(squirrel.Eq{"s.customer_id": customerID}).
		OrderBy("s.date ASC", "s.id ASC")

	if from != nil {
		q = q.Where(squirrel.GtOrEq{"s.date": *from})
	}
	if to != nil {
		q = q.Where(squirrel.Lt{"s.date": *to})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []struct {
		ID              id.ID       `db:"id"`
		Date            time.Time   `db:"date"`
		GrandTotal      types.Money `db:"grand_total"`
		PaymentReceived types.Money `db:"payment_received"`
		ItemCount       int         `db:"item_count"`
	}
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list wholesale sales: %w", err)
	}

	records := make([]custledger.SaleRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, custledger.SaleRecord{
			ID:              row.ID,
			Date:            row.Date,
			GrandTotal:      row.GrandTotal,
			PaymentReceived: row.PaymentReceived,
			ItemCount:       row.ItemCount,
		})
	}
	return records, nil
}

func (row *saleRow) toDomain() *sale.Sale {
	s := &sale.Sale{
		ID:              row.ID,
		Number:          row.Number,
		Type:            sale.Type(row.Type),
		CustomerID:      row.CustomerID,
		Date:            row.Date,
		Subtotal:        row.Subtotal,
		Discount:        row.Discount,
		GrandTotal:      row.GrandTotal,
		PaymentReceived: row.PaymentReceived,
		PaymentMethod:   sale.PaymentMethod(row.PaymentMethod),
		CreatedBy:       row.CreatedBy,
		CreatedAt:       row.CreatedAt,
	}
	if row.LedgerPrev != nil && row.LedgerNew != nil {
		effect := custledger.Effect{
			PreviousBalance: *row.LedgerPrev,
			NewBalance:      *row.LedgerNew,
		}
		if row.LedgerAdded != nil {
			effect.AddedToBalance = *row.LedgerAdded
		}
		if row.LedgerReduced != nil {
			effect.ReducedByPayment = *row.LedgerReduced
		}
		s.LedgerEffect = &effect
	}
	return s
}

func (r *SaleRepo) loadLines(ctx context.Context, s *sale.Sale) error {
	sql, args, err := r.builder().
		Select("product_id", "name", "qty", "unit", "unit_price", "line_total").
		From(saleLinesTable).
		Where(squirrel.Eq{"sale_id": s.ID}).
		OrderBy("line_no").
		ToSql()
	if err != nil {
		return fmt.Errorf("build lines query: %w", err)
	}

	var lines []saleLineRow
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &lines, sql, args...); err != nil {
		return fmt.Errorf("get sale lines: %w", err)
	}

	s.Items = make([]sale.Item, 0, len(lines))
	for _, l := range lines {
		s.Items = append(s.Items, sale.Item{
			ProductID: l.ProductID,
			Name:      l.Name,
			Qty:       l.Qty,
			Unit:      l.Unit,
			UnitPrice: l.UnitPrice,
			LineTotal: l.LineTotal,
		})
	}
	return nil
}
