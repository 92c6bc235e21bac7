// Package invoice renders sale documents into shareable formats.
package invoice

import (
	"context"
	"fmt"
	"strings"

	"dukapos/internal/domain/documents/sale"
)

// Renderer turns a sale into a byte payload with a content type.
type Renderer interface {
	Render(ctx context.Context, s *sale.Sale) ([]byte, string, error)
}

// Text renders plain-text receipts, the format thermal printers and
// messaging apps both accept.
type Text struct {
	ShopName string
	Footer   string
}

// NewText creates the plain-text renderer.
func NewText(shopName, footer string) *Text {
	return &Text{ShopName: shopName, Footer: footer}
}

const receiptWidth = 40

// Render produces the receipt text.
func (r *Text) Render(ctx context.Context, s *sale.Sale) ([]byte, string, error) {
	var b strings.Builder
	line := strings.Repeat("-", receiptWidth)

	if r.ShopName != "" {
		b.WriteString(center(r.ShopName))
		b.WriteByte('\n')
	}
	b.WriteString(line)
	b.WriteByte('\n')
	fmt.Fprintf(&b, "Receipt: %s\n", s.Number)
	fmt.Fprintf(&b, "Date:    %s\n", s.Date.Format("02 Jan 2006 15:04"))
	fmt.Fprintf(&b, "Type:    %s\n", s.Type)
	b.WriteString(line)
	b.WriteByte('\n')

	for _, it := range s.Items {
		fmt.Fprintf(&b, "%s\n", it.Name)
		qty := fmt.Sprintf("  %g %s x %s", it.Qty, it.Unit, it.UnitPrice.StringFixed(2))
		total := it.LineTotal.StringFixed(2)
		b.WriteString(padBetween(qty, total))
		b.WriteByte('\n')
	}

	b.WriteString(line)
	b.WriteByte('\n')
	b.WriteString(padBetween("Subtotal", s.Subtotal.StringFixed(2)))
	b.WriteByte('\n')
	if !s.Discount.IsZero() {
		b.WriteString(padBetween("Discount", "-"+s.Discount.StringFixed(2)))
		b.WriteByte('\n')
	}
	b.WriteString(padBetween("TOTAL", s.GrandTotal.StringFixed(2)))
	b.WriteByte('\n')
	b.WriteString(padBetween("Paid", s.PaymentReceived.StringFixed(2)))
	b.WriteByte('\n')
	if s.LedgerEffect != nil {
		b.WriteString(padBetween("Balance", s.LedgerEffect.NewBalance.StringFixed(2)))
		b.WriteByte('\n')
	}
	if r.Footer != "" {
		b.WriteString(line)
		b.WriteByte('\n')
		b.WriteString(center(r.Footer))
		b.WriteByte('\n')
	}

	return []byte(b.String()), "text/plain; charset=utf-8", nil
}

func center(s string) string {
	if len(s) >= receiptWidth {
		return s
	}
	pad := (receiptWidth - len(s)) / 2
	return strings.Repeat(" ", pad) + s
}

func padBetween(left, right string) string {
	gap := receiptWidth - len(left) - len(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}
