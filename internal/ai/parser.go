// Package ai turns raw receipt text into structured purchase data.
package ai

import (
	"context"

	"dukapos/internal/core/apperror"
)

// ParsedItem is one line item extracted from a receipt. LineTotal,
// Barcode and SKU are optional; receipts rarely carry all three.
type ParsedItem struct {
	Name      string  `json:"name"`
	Qty       float64 `json:"qty"`
	Unit      string  `json:"unit"`
	UnitPrice float64 `json:"unitPrice"`
	LineTotal float64 `json:"lineTotal,omitempty"`
	Barcode   string  `json:"barcode,omitempty"`
	SKU       string  `json:"sku,omitempty"`
}

// ParsedReceipt is the structured result of parsing a receipt.
type ParsedReceipt struct {
	SupplierName string       `json:"supplierName"`
	Date         string       `json:"date,omitempty"`
	Items        []ParsedItem `json:"items"`
}

// ReceiptParser extracts structured purchase data from raw receipt text.
type ReceiptParser interface {
	ParseReceipt(ctx context.Context, rawText string) (*ParsedReceipt, error)
}

// Provider names for NewParser.
const (
	ProviderGemini = "gemini"
	ProviderMock   = "mock"
)

// NewParser selects the parser implementation by provider name.
func NewParser(provider, apiKey string) (ReceiptParser, error) {
	switch provider {
	case ProviderGemini:
		return NewGeminiParser(apiKey), nil
	case ProviderMock:
		return NewMockParser(), nil
	default:
		return nil, apperror.NewUnsupportedAIProvider(provider)
	}
}
