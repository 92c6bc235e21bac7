package matching

import (
	"context"
	"strings"

	"dukapos/internal/domain/catalogs/product"
	"dukapos/pkg/logger"
)

// DefaultConfidenceThreshold is the minimum similarity score accepted as a
// confident catalog match. Overridable through configuration.
const DefaultConfidenceThreshold = 0.7

// Match methods.
const (
	MethodIdentifier = "barcode/sku"
	MethodNameAlias  = "name/alias"
)

// Match is a resolved catalog match with its confidence score.
type Match struct {
	Product    product.Product
	Confidence float64
	Method     string
}

// Catalog is the read-only product access the matcher needs.
type Catalog interface {
	FindActiveByIdentifier(ctx context.Context, barcode, sku string) (*product.Product, error)
	ListActive(ctx context.Context) ([]product.Product, error)
}

// Matcher resolves raw item descriptions to catalog products.
// Read-only; no side effects against the catalog.
type Matcher struct {
	catalog   Catalog
	threshold float64
}

// NewMatcher creates a matcher with the given confidence threshold.
// A zero threshold falls back to the default.
func NewMatcher(catalog Catalog, threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}
	return &Matcher{catalog: catalog, threshold: threshold}
}

// Threshold returns the configured confidence cutoff.
func (m *Matcher) Threshold() float64 {
	return m.threshold
}

// Match resolves a raw item description to an existing product.
// Identifier matches short-circuit name matching with confidence 1.0.
// A nil result means no confident match exists.
func (m *Matcher) Match(ctx context.Context, rawName, barcode, sku string) (*Match, error) {
	barcode = strings.TrimSpace(barcode)
	sku = strings.TrimSpace(sku)

	if barcode != "" || sku != "" {
		p, err := m.catalog.FindActiveByIdentifier(ctx, barcode, sku)
		if err != nil {
			return nil, err
		}
		if p != nil {
			logger.Info(ctx, "matched product by identifier",
				"raw_name", rawName, "product", p.Name)
			return &Match{Product: *p, Confidence: 1.0, Method: MethodIdentifier}, nil
		}
	}

	return m.matchByName(ctx, rawName)
}

// matchByName scans all active products and their aliases for the single
// best-scoring candidate. Products arrive ordered by ID ascending and only
// a strictly better score replaces the current best, so equal scores
// resolve deterministically to the lowest product ID.
func (m *Matcher) matchByName(ctx context.Context, rawName string) (*Match, error) {
	products, err := m.catalog.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	var best *product.Product
	bestConfidence := 0.0

	for i := range products {
		p := &products[i]

		if score := Similarity(rawName, p.Name); score > bestConfidence {
			bestConfidence = score
			best = p
		}

		for _, alias := range p.Aliases {
			if score := Similarity(rawName, alias); score > bestConfidence {
				bestConfidence = score
				best = p
			}
		}
	}

	if best == nil || bestConfidence < m.threshold {
		return nil, nil
	}

	logger.Info(ctx, "matched product by name",
		"raw_name", rawName, "product", best.Name, "confidence", bestConfidence)

	return &Match{Product: *best, Confidence: bestConfidence, Method: MethodNameAlias}, nil
}
