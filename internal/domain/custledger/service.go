// Package custledger maintains and reconstructs per-customer running
// credit balances from sales and payments.
package custledger

import (
	"context"
	"sort"
	"time"

	"dukapos/internal/core/id"
	"dukapos/internal/core/types"
	"dukapos/internal/domain/catalogs/customer"
	"dukapos/pkg/logger"
)

// Effect is the four-field balance snapshot captured when a wholesale sale
// is applied. It is embedded immutably in the sale and never recomputed.
type Effect struct {
	PreviousBalance  types.Money `json:"previousBalance"`
	AddedToBalance   types.Money `json:"addedToBalance"`
	ReducedByPayment types.Money `json:"reducedByPayment"`
	NewBalance       types.Money `json:"newBalance"`
}

// PaymentEffect reports a balance change from a standalone payment.
type PaymentEffect struct {
	PreviousBalance types.Money `json:"previousBalance"`
	NewBalance      types.Money `json:"newBalance"`
}

// SaleRecord is the slice of a wholesale sale the ledger needs for
// timeline reconstruction.
type SaleRecord struct {
	ID              id.ID
	Date            time.Time
	GrandTotal      types.Money
	PaymentReceived types.Money
	ItemCount       int
}

// PaymentRecord is the slice of a payment the ledger needs.
type PaymentRecord struct {
	ID     id.ID
	Date   time.Time
	Amount types.Money
	Method string
	Note   string
}

// SaleSource lists committed wholesale sales for a customer in
// chronological order. A nil from/to leaves that bound open.
type SaleSource interface {
	WholesaleSalesForCustomer(ctx context.Context, customerID id.ID, from, to *time.Time) ([]SaleRecord, error)
}

// PaymentSource lists committed payments for a customer in chronological
// order.
type PaymentSource interface {
	PaymentsForCustomer(ctx context.Context, customerID id.ID, from, to *time.Time) ([]PaymentRecord, error)
}

// EntryKind tags a reconstructed timeline entry.
type EntryKind string

const (
	EntrySale    EntryKind = "sale"
	EntryPayment EntryKind = "payment"
)

// LedgerEntry is one event in the reconstructed customer timeline,
// annotated with the running balance after the event.
type LedgerEntry struct {
	Kind        EntryKind   `json:"type"`
	ID          id.ID       `json:"id"`
	Date        time.Time   `json:"date"`
	Description string      `json:"description"`
	Debit       types.Money `json:"debit"`
	Credit      types.Money `json:"credit"`
	Balance     types.Money `json:"balance"`
}

// Ledger is the reconstructed statement for a customer window.
type Ledger struct {
	CustomerID     id.ID         `json:"customerId"`
	OpeningBalance types.Money   `json:"openingBalance"`
	Entries        []LedgerEntry `json:"entries"`
	ClosingBalance types.Money   `json:"closingBalance"`
}

// Service maintains customer running balances.
type Service struct {
	customers customer.Repository
	sales     SaleSource
	payments  PaymentSource
}

// NewService creates a customer ledger service.
func NewService(customers customer.Repository, sales SaleSource, payments PaymentSource) *Service {
	return &Service{customers: customers, sales: sales, payments: payments}
}

// ApplyWholesaleSale moves the customer balance for a wholesale sale:
// newBalance = previousBalance + grandTotal - paymentReceived. Must be
// called within the sale's transaction; the customer row is locked for
// the read-then-write.
func (s *Service) ApplyWholesaleSale(ctx context.Context, customerID id.ID, grandTotal, paymentReceived types.Money) (Effect, error) {
	c, err := s.customers.GetForUpdate(ctx, customerID)
	if err != nil {
		return Effect{}, err
	}

	previous := c.CurrentBalance
	newBalance := previous.Add(grandTotal).Sub(paymentReceived)

	c.CurrentBalance = newBalance
	c.Touch()
	if err := s.customers.Update(ctx, c); err != nil {
		return Effect{}, err
	}

	logger.Info(ctx, "customer balance moved by sale",
		"customer_id", customerID,
		"previous", previous,
		"added", grandTotal,
		"reduced", paymentReceived,
		"new", newBalance,
	)

	return Effect{
		PreviousBalance:  previous,
		AddedToBalance:   grandTotal,
		ReducedByPayment: paymentReceived,
		NewBalance:       newBalance,
	}, nil
}

// ApplyPayment reduces the customer balance by a standalone payment.
// Must be called within the payment's transaction.
func (s *Service) ApplyPayment(ctx context.Context, customerID id.ID, amount types.Money) (PaymentEffect, error) {
	c, err := s.customers.GetForUpdate(ctx, customerID)
	if err != nil {
		return PaymentEffect{}, err
	}

	previous := c.CurrentBalance
	newBalance := previous.Sub(amount)

	c.CurrentBalance = newBalance
	c.Touch()
	if err := s.customers.Update(ctx, c); err != nil {
		return PaymentEffect{}, err
	}

	logger.Info(ctx, "customer balance moved by payment",
		"customer_id", customerID,
		"previous", previous,
		"amount", amount,
		"new", newBalance,
	)

	return PaymentEffect{PreviousBalance: previous, NewBalance: newBalance}, nil
}

// GetCustomerLedger reconstructs the chronological timeline of wholesale
// sales and payments in the optional [from, to] window, each entry
// annotated with an independently computed running balance.
//
// The walk starts from the customer's opening balance and replays every
// event strictly before the window start to derive the window's opening
// balance, then walks the in-range events. Per-sale cached snapshots are
// deliberately not consulted, so the reconstruction stays correct under
// arbitrary date filtering.
func (s *Service) GetCustomerLedger(ctx context.Context, customerID id.ID, from, to *time.Time) (*Ledger, error) {
	c, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	running := c.OpeningBalance

	if from != nil {
		priorSales, err := s.sales.WholesaleSalesForCustomer(ctx, customerID, nil, nil)
		if err != nil {
			return nil, err
		}
		priorPayments, err := s.payments.PaymentsForCustomer(ctx, customerID, nil, nil)
		if err != nil {
			return nil, err
		}
		running = replayBefore(running, priorSales, priorPayments, *from)
	}

	sales, err := s.sales.WholesaleSalesForCustomer(ctx, customerID, from, to)
	if err != nil {
		return nil, err
	}
	payments, err := s.payments.PaymentsForCustomer(ctx, customerID, from, to)
	if err != nil {
		return nil, err
	}

	entries := mergeTimeline(sales, payments)
	openingForWindow := running

	for i := range entries {
		e := &entries[i]
		// A sale moves the balance by its unpaid remainder; a payment
		// carries no debit, so the same expression covers both.
		running = running.Add(e.Debit).Sub(e.Credit)
		e.Balance = running
	}

	return &Ledger{
		CustomerID:     customerID,
		OpeningBalance: openingForWindow,
		Entries:        entries,
		ClosingBalance: running,
	}, nil
}

// replayBefore applies every sale and payment dated strictly before cutoff,
// in chronological order, to derive the balance at the window start.
func replayBefore(opening types.Money, sales []SaleRecord, payments []PaymentRecord, cutoff time.Time) types.Money {
	type event struct {
		date  time.Time
		delta types.Money
	}

	var events []event
	for _, s := range sales {
		if s.Date.Before(cutoff) {
			events = append(events, event{s.Date, s.GrandTotal.Sub(s.PaymentReceived)})
		}
	}
	for _, p := range payments {
		if p.Date.Before(cutoff) {
			events = append(events, event{p.Date, p.Amount.Neg()})
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].date.Before(events[j].date)
	})

	balance := opening
	for _, e := range events {
		balance = balance.Add(e.delta)
	}
	return balance
}

// mergeTimeline interleaves sales and payments into one chronological list.
func mergeTimeline(sales []SaleRecord, payments []PaymentRecord) []LedgerEntry {
	entries := make([]LedgerEntry, 0, len(sales)+len(payments))

	for _, s := range sales {
		entries = append(entries, LedgerEntry{
			Kind:        EntrySale,
			ID:          s.ID,
			Date:        s.Date,
			Description: saleDescription(s.ID),
			Debit:       s.GrandTotal,
			Credit:      s.PaymentReceived,
		})
	}

	for _, p := range payments {
		desc := p.Note
		if desc == "" {
			desc = "Payment received"
		}
		entries = append(entries, LedgerEntry{
			Kind:        EntryPayment,
			ID:          p.ID,
			Date:        p.Date,
			Description: desc,
			Debit:       types.Zero(),
			Credit:      p.Amount,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})

	return entries
}

func saleDescription(saleID id.ID) string {
	s := saleID.String()
	return "Sale #" + s[len(s)-6:]
}
