package share

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dukapos/internal/core/id"
	"dukapos/internal/core/types"
	"dukapos/internal/domain/custledger"
	"dukapos/internal/domain/documents/sale"
)

func wholesaleSale() *sale.Sale {
	s := sale.New(sale.TypeWholesale, id.New())
	s.Number = "INV-2026-00007"
	s.Date = time.Date(2026, time.August, 12, 0, 0, 0, 0, time.UTC)
	s.Items = []sale.Item{
		{Name: "Sugar 1kg", Qty: 10, Unit: "pcs", UnitPrice: types.MustMoney("130")},
	}
	s.Recalculate()
	s.PaymentReceived = types.MustMoney("1000")
	s.LedgerEffect = &custledger.Effect{NewBalance: types.MustMoney("300")}
	return s
}

func TestForSale_MessageContent(t *testing.T) {
	link := ForSale(wholesaleSale(), "+254 700 123456", "Duka Bora")

	assert.Contains(t, link.Message, "*Duka Bora*")
	assert.Contains(t, link.Message, "Receipt INV-2026-00007")
	assert.Contains(t, link.Message, "12 Aug 2026")
	assert.Contains(t, link.Message, "Sugar 1kg x10 pcs = 1300.00")
	assert.Contains(t, link.Message, "Total: 1300.00")
	assert.Contains(t, link.Message, "Paid: 1000.00")
	assert.Contains(t, link.Message, "Balance: 300.00")
}

func TestForSale_URLKeepsDigitsOnly(t *testing.T) {
	link := ForSale(wholesaleSale(), "+254 700 123456", "Duka Bora")

	assert.True(t, strings.HasPrefix(link.URL, "https://wa.me/254700123456?text="), link.URL)

	// message survives a round trip through query escaping
	parsed, err := url.Parse(link.URL)
	require.NoError(t, err)
	assert.Equal(t, link.Message, parsed.Query().Get("text"))
}

func TestForSale_EmptyPhoneOmitsRecipient(t *testing.T) {
	link := ForSale(wholesaleSale(), "", "")

	assert.True(t, strings.HasPrefix(link.URL, "https://wa.me/?text="), link.URL)
	assert.NotContains(t, link.Message, "*")
}

func TestForSale_FractionalQtyTrimmed(t *testing.T) {
	s := wholesaleSale()
	s.Items[0].Qty = 2.5
	s.Recalculate()

	link := ForSale(s, "", "")
	assert.Contains(t, link.Message, "x2.5 pcs")
}
