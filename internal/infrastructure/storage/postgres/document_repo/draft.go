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
	"dukapos/internal/domain/documents/draft"
	"dukapos/internal/infrastructure/storage/postgres"
)

const (
	draftsTable     = "doc_purchase_drafts"
	draftLinesTable = "doc_purchase_draft_lines"
)

var draftColumns = []string{
	"id", "supplier_name", "date", "total_cost", "status",
	"image_path", "raw_text", "ocr_degraded",
	"created_by", "approved_by", "approved_at",
	"rejected_by", "rejected_at", "reject_reason",
	"created_at", "updated_at",
}

type draftRow struct {
	ID           id.ID       `db:"id"`
	SupplierName string      `db:"supplier_name"`
	Date         time.Time   `db:"date"`
	TotalCost    types.Money `db:"total_cost"`
	Status       string      `db:"status"`
	ImagePath    string      `db:"image_path"`
	RawText      string      `db:"raw_text"`
	OCRDegraded  bool        `db:"ocr_degraded"`
	CreatedBy    id.ID       `db:"created_by"`
	ApprovedBy   *id.ID      `db:"approved_by"`
	ApprovedAt   *time.Time  `db:"approved_at"`
	RejectedBy   *id.ID      `db:"rejected_by"`
	RejectedAt   *time.Time  `db:"rejected_at"`
	RejectReason string      `db:"reject_reason"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
}

type draftLineRow struct {
	RawName          string      `db:"raw_name"`
	Qty              float64     `db:"qty"`
	Unit             string      `db:"unit"`
	UnitCost         types.Money `db:"unit_cost"`
	LineTotal        types.Money `db:"line_total"`
	MatchedProductID *id.ID      `db:"matched_product_id"`
	Confidence       float64     `db:"confidence"`
	MatchMethod      string      `db:"match_method"`
	PendingProductID *id.ID      `db:"pending_product_id"`
	RequiresApproval bool        `db:"requires_approval"`
}

// DraftRepo implements draft.Repository.
type DraftRepo struct {
	txm *postgres.TxManager
}

// NewDraftRepo creates a new draft repository.
func NewDraftRepo(txm *postgres.TxManager) *DraftRepo {
	return &DraftRepo{txm: txm}
}

func (r *DraftRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *DraftRepo) headerMap(d *draft.PurchaseDraft) map[string]any {
	return map[string]any{
		"id":            d.ID,
		"supplier_name": d.SupplierName,
		"date":          d.Date,
		"total_cost":    d.TotalCost,
		"status":        string(d.Status),
		"image_path":    d.ImagePath,
		"raw_text":      d.RawText,
		"ocr_degraded":  d.OCRDegraded,
		"created_by":    d.CreatedBy,
		"approved_by":   d.ApprovedBy,
		"approved_at":   d.ApprovedAt,
		"rejected_by":   d.RejectedBy,
		"rejected_at":   d.RejectedAt,
		"reject_reason": d.RejectReason,
		"created_at":    d.CreatedAt,
		"updated_at":    d.UpdatedAt,
	}
}

// Create inserts the draft header and its lines.
func (r *DraftRepo) Create(ctx context.Context, d *draft.PurchaseDraft) error {
	querier := r.txm.GetQuerier(ctx)

	sql, args, err := r.builder().
		Insert(draftsTable).
		SetMap(r.headerMap(d)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert draft: %w", err)
	}
	return r.saveLines(ctx, d)
}

// GetByID retrieves a draft with its lines.
func (r *DraftRepo) GetByID(ctx context.Context, draftID id.ID) (*draft.PurchaseDraft, error) {
	return r.getOne(ctx, draftID, false)
}

// GetForUpdate retrieves a draft locking the header row. Must run inside
// a transaction.
func (r *DraftRepo) GetForUpdate(ctx context.Context, draftID id.ID) (*draft.PurchaseDraft, error) {
	return r.getOne(ctx, draftID, true)
}

func (r *DraftRepo) getOne(ctx context.Context, draftID id.ID, forUpdate bool) (*draft.PurchaseDraft, error) {
	q := r.builder().
		Select(draftColumns...).
		From(draftsTable).
		Where(squirrel.Eq{"id": draftID}).
		Limit(1)
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row draftRow
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("draft", draftID.String())
		}
		return nil, fmt.Errorf("get draft: %w", err)
	}

	d := row.toDomain()
	if err := r.loadLines(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Update rewrites the draft header and replaces its lines.
func (r *DraftRepo) Update(ctx context.Context, d *draft.PurchaseDraft) error {
	querier := r.txm.GetQuerier(ctx)

	d.UpdatedAt = time.Now()

	setMap := r.headerMap(d)
	delete(setMap, "id")
	delete(setMap, "created_by")
	delete(setMap, "created_at")

	sql, args, err := r.builder().
		Update(draftsTable).
		SetMap(setMap).
		Where(squirrel.Eq{"id": d.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	res, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update draft: %w", err)
	}
	if res.RowsAffected() == 0 {
		return apperror.NewNotFound("draft", d.ID.String())
	}

	delSQL, delArgs, err := r.builder().
		Delete(draftLinesTable).
		Where(squirrel.Eq{"draft_id": d.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete lines: %w", err)
	}
	if _, err := querier.Exec(ctx, delSQL, delArgs...); err != nil {
		return fmt.Errorf("delete draft lines: %w", err)
	}
	return r.saveLines(ctx, d)
}

// List retrieves drafts matching the filter, newest first.
func (r *DraftRepo) List(ctx context.Context, filter draft.ListFilter) ([]*draft.PurchaseDraft, error) {
	q := r.builder().
		Select(draftColumns...).
		From(draftsTable).
		OrderBy("created_at DESC", "id DESC")

	if filter.Status != "" {
		q = q.Where(squirrel.Eq{"status": string(filter.Status)})
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

	var rows []draftRow
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}

	items := make([]*draft.PurchaseDraft, 0, len(rows))
	for i := range rows {
		d := rows[i].toDomain()
		if err := r.loadLines(ctx, d); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, nil
}

func (row *draftRow) toDomain() *draft.PurchaseDraft {
	return &draft.PurchaseDraft{
		ID:           row.ID,
		SupplierName: row.SupplierName,
		Date:         row.Date,
		TotalCost:    row.TotalCost,
		Status:       draft.Status(row.Status),
		ImagePath:    row.ImagePath,
		RawText:      row.RawText,
		OCRDegraded:  row.OCRDegraded,
		CreatedBy:    row.CreatedBy,
		ApprovedBy:   row.ApprovedBy,
		ApprovedAt:   row.ApprovedAt,
		RejectedBy:   row.RejectedBy,
		RejectedAt:   row.RejectedAt,
		RejectReason: row.RejectReason,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func (r *DraftRepo) saveLines(ctx context.Context, d *draft.PurchaseDraft) error {
	if len(d.Items) == 0 {
		return nil
	}

	q := r.builder().
		Insert(draftLinesTable).
		Columns("draft_id", "line_no", "raw_name", "qty", "unit", "unit_cost", "line_total",
			"matched_product_id", "confidence", "match_method", "pending_product_id", "requires_approval")
	for i, it := range d.Items {
		q = q.Values(d.ID, i+1, it.RawName, it.Qty, it.Unit, it.UnitCost, it.LineTotal,
			it.MatchedProductID, it.Confidence, it.MatchMethod, it.PendingProductID, it.RequiresApproval)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert draft lines: %w", err)
	}
	return nil
}

func (r *DraftRepo) loadLines(ctx context.Context, d *draft.PurchaseDraft) error {
	sql, args, err := r.builder().
		Select("raw_name", "qty", "unit", "unit_cost", "line_total",
			"matched_product_id", "confidence", "match_method", "pending_product_id", "requires_approval").
		From(draftLinesTable).
		Where(squirrel.Eq{"draft_id": d.ID}).
		OrderBy("line_no").
		ToSql()
	if err != nil {
		return fmt.Errorf("build lines query: %w", err)
	}

	var lines []draftLineRow
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &lines, sql, args...); err != nil {
		return fmt.Errorf("get draft lines: %w", err)
	}

	d.Items = make([]draft.Item, 0, len(lines))
	for _, l := range lines {
		d.Items = append(d.Items, draft.Item{
			RawName:          l.RawName,
			Qty:              l.Qty,
			Unit:             l.Unit,
			UnitCost:         l.UnitCost,
			LineTotal:        l.LineTotal,
			MatchedProductID: l.MatchedProductID,
			Confidence:       l.Confidence,
			MatchMethod:      l.MatchMethod,
			PendingProductID: l.PendingProductID,
			RequiresApproval: l.RequiresApproval,
		})
	}
	return nil
}
