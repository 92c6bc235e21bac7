// Package reports produces read-only aggregates over committed documents.
package reports

import (
	"context"
	"time"

	"dukapos/internal/core/id"
	"dukapos/internal/core/types"
)

// TopItem is one entry in the best-sellers ranking.
type TopItem struct {
	ProductID id.ID       `json:"productId"`
	Name      string      `json:"name"`
	Qty       float64     `json:"qty"`
	Revenue   types.Money `json:"revenue"`
}

// SalesTotals is the per-channel revenue aggregate for a window.
type SalesTotals struct {
	RetailTotal      types.Money `json:"retailTotal"`
	WholesaleTotal   types.Money `json:"wholesaleTotal"`
	CashReceived     types.Money `json:"cashReceived"`
	CreditExtended   types.Money `json:"creditExtended"`
	TransactionCount int64       `json:"transactionCount"`
}

// DailySummary is the end-of-day snapshot.
type DailySummary struct {
	Date             time.Time   `json:"date"`
	Sales            SalesTotals `json:"sales"`
	PaymentsReceived types.Money `json:"paymentsReceived"`
	TopItems         []TopItem   `json:"topItems"`
}

// LowStockProduct flags a product at or below its reorder level.
type LowStockProduct struct {
	ProductID    id.ID   `json:"productId"`
	Name         string  `json:"name"`
	StockQty     float64 `json:"stockQty"`
	ReorderLevel float64 `json:"reorderLevel"`
}

// Repository runs the aggregate queries. Implementations read committed
// documents only; nothing here mutates state.
type Repository interface {
	SalesTotals(ctx context.Context, from, to time.Time) (SalesTotals, error)
	PaymentsTotal(ctx context.Context, from, to time.Time) (types.Money, error)
	TopItems(ctx context.Context, from, to time.Time, limit int) ([]TopItem, error)
	LowStock(ctx context.Context) ([]LowStockProduct, error)
}

// Service exposes the reporting operations.
type Service struct {
	repo Repository
}

// NewService creates the reports service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

const topItemsLimit = 10

// Daily builds the end-of-day summary for the calendar day containing t,
// in t's location.
func (s *Service) Daily(ctx context.Context, t time.Time) (*DailySummary, error) {
	from := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	to := from.AddDate(0, 0, 1)

	totals, err := s.repo.SalesTotals(ctx, from, to)
	if err != nil {
		return nil, err
	}
	payments, err := s.repo.PaymentsTotal(ctx, from, to)
	if err != nil {
		return nil, err
	}
	top, err := s.repo.TopItems(ctx, from, to, topItemsLimit)
	if err != nil {
		return nil, err
	}

	return &DailySummary{
		Date:             from,
		Sales:            totals,
		PaymentsReceived: payments,
		TopItems:         top,
	}, nil
}

// LowStock lists products at or below their reorder level.
func (s *Service) LowStock(ctx context.Context) ([]LowStockProduct, error) {
	return s.repo.LowStock(ctx)
}
