package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"dukapos/pkg/logger"
)

const geminiModel = "gemini-2.0-flash-001"

const receiptPrompt = `You are a receipt parser for a retail shop.
Extract the supplier name, date and line items from the receipt text below.
Respond with JSON only, matching this schema:
{"supplierName": string, "date": "YYYY-MM-DD" or "", "items": [{"name": string, "qty": number, "unit": string, "unitPrice": number, "lineTotal": number, "barcode": string, "sku": string}]}
Units must be one of: pcs, kg, g, liter, pack, carton, case, dozen, box.
Include lineTotal, barcode and sku only when they are printed on the receipt; otherwise omit them.
If a value is unreadable, make the best guess from context.

RECEIPT TEXT:
%s`

// GeminiParser parses receipts with the Gemini API.
type GeminiParser struct {
	apiKey string
}

// NewGeminiParser creates a Gemini-backed parser.
func NewGeminiParser(apiKey string) *GeminiParser {
	return &GeminiParser{apiKey: apiKey}
}

// ParseReceipt sends the raw text to Gemini and decodes the JSON reply.
func (p *GeminiParser) ParseReceipt(ctx context.Context, rawText string) (*ParsedReceipt, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(p.apiKey))
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(geminiModel)
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(fmt.Sprintf(receiptPrompt, rawText)))
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	raw := responseText(resp)
	if raw == "" {
		return nil, fmt.Errorf("empty model response")
	}

	var parsed ParsedReceipt
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("decode model response: %w", err)
	}

	logger.Debug(ctx, "receipt parsed",
		"supplier", parsed.SupplierName,
		"items", len(parsed.Items))

	return &parsed, nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(b.String())
}
