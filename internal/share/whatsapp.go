// Package share builds outbound message payloads for sharing documents
// with customers.
package share

import (
	"fmt"
	"net/url"
	"strings"

	"dukapos/internal/domain/documents/sale"
)

// WhatsAppLink is a ready-to-open wa.me link with its message text.
type WhatsAppLink struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
	URL     string `json:"url"`
}

// ForSale builds a WhatsApp share link summarizing a sale for the given
// phone number. Phone may be empty, which produces a recipient-less link.
func ForSale(s *sale.Sale, phone, shopName string) WhatsAppLink {
	var b strings.Builder
	if shopName != "" {
		fmt.Fprintf(&b, "*%s*\n", shopName)
	}
	fmt.Fprintf(&b, "Receipt %s\n%s\n\n", s.Number, s.Date.Format("02 Jan 2006"))
	for _, it := range s.Items {
		fmt.Fprintf(&b, "%s x%s %s = %s\n", it.Name, trimFloat(it.Qty), it.Unit, it.LineTotal.StringFixed(2))
	}
	if !s.Discount.IsZero() {
		fmt.Fprintf(&b, "\nSubtotal: %s\nDiscount: %s", s.Subtotal.StringFixed(2), s.Discount.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nTotal: %s\nPaid: %s\n", s.GrandTotal.StringFixed(2), s.PaymentReceived.StringFixed(2))
	if s.LedgerEffect != nil {
		fmt.Fprintf(&b, "Balance: %s\n", s.LedgerEffect.NewBalance.StringFixed(2))
	}

	message := b.String()
	return WhatsAppLink{
		Phone:   phone,
		Message: message,
		URL:     buildURL(phone, message),
	}
}

func buildURL(phone, message string) string {
	// wa.me expects digits only in the phone segment.
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)

	base := "https://wa.me/"
	if digits != "" {
		base += digits
	}
	return base + "?text=" + url.QueryEscape(message)
}

func trimFloat(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
