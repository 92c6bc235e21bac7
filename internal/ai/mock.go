package ai

import (
	"context"
)

// MockParser returns a fixed receipt regardless of input. It keeps the
// import pipeline exercisable in development and tests without an API key.
type MockParser struct{}

// NewMockParser creates the mock parser.
func NewMockParser() *MockParser {
	return &MockParser{}
}

// ParseReceipt returns the canned receipt.
func (p *MockParser) ParseReceipt(ctx context.Context, rawText string) (*ParsedReceipt, error) {
	return &ParsedReceipt{
		SupplierName: "Test Supplier",
		Items: []ParsedItem{
			{Name: "Product A", Qty: 10, Unit: "pcs", UnitPrice: 25},
			{Name: "Product B", Qty: 5, Unit: "kg", UnitPrice: 50},
		},
	}, nil
}
