package matching

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dukapos/internal/domain/catalogs/product"
)

type fakeCatalog struct {
	products []product.Product
	byIdent  *product.Product
}

func (f *fakeCatalog) FindActiveByIdentifier(ctx context.Context, barcode, sku string) (*product.Product, error) {
	return f.byIdent, nil
}

func (f *fakeCatalog) ListActive(ctx context.Context) ([]product.Product, error) {
	return f.products, nil
}

func catalogProduct(name string, aliases ...string) product.Product {
	p := product.New(name, product.UnitPcs)
	p.Aliases = aliases
	return *p
}

func TestMatch_IdentifierShortCircuits(t *testing.T) {
	ident := catalogProduct("Coca Cola 500ml")
	cat := &fakeCatalog{
		byIdent:  &ident,
		products: []product.Product{catalogProduct("Something Else Entirely")},
	}
	m := NewMatcher(cat, 0.7)

	match, err := m.Match(context.Background(), "unrelated text", "6001234567890", "")
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, ident.ID, match.Product.ID)
	assert.Equal(t, 1.0, match.Confidence)
	assert.Equal(t, MethodIdentifier, match.Method)
}

func TestMatch_NoIdentifierFallsBackToName(t *testing.T) {
	target := catalogProduct("Sugar 1kg")
	cat := &fakeCatalog{products: []product.Product{
		catalogProduct("Bread Loaf"),
		target,
	}}
	m := NewMatcher(cat, 0.7)

	match, err := m.Match(context.Background(), "sugar 1kg", "", "")
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, target.ID, match.Product.ID)
	assert.Equal(t, 1.0, match.Confidence)
	assert.Equal(t, MethodNameAlias, match.Method)
}

func TestMatch_AliasWins(t *testing.T) {
	target := catalogProduct("Blue Band Margarine 250g", "blueband 250")
	cat := &fakeCatalog{products: []product.Product{
		catalogProduct("Bar Soap"),
		target,
	}}
	m := NewMatcher(cat, 0.7)

	match, err := m.Match(context.Background(), "BLUEBAND 250", "", "")
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, target.ID, match.Product.ID)
	assert.Equal(t, 1.0, match.Confidence)
}

func TestMatch_BelowThresholdReturnsNil(t *testing.T) {
	cat := &fakeCatalog{products: []product.Product{
		catalogProduct("Engine Oil 5L"),
	}}
	m := NewMatcher(cat, 0.7)

	match, err := m.Match(context.Background(), "fresh milk 500ml", "", "")
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestMatch_ExactlyAtThresholdAccepted(t *testing.T) {
	// substring scores exactly 0.8; a 0.8 threshold must still accept it
	target := catalogProduct("Coca Cola 500ml")
	cat := &fakeCatalog{products: []product.Product{target}}
	m := NewMatcher(cat, 0.8)

	match, err := m.Match(context.Background(), "coca cola", "", "")
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, 0.8, match.Confidence)
}

func TestMatch_JustBelowThresholdRejected(t *testing.T) {
	target := catalogProduct("Coca Cola 500ml")
	cat := &fakeCatalog{products: []product.Product{target}}
	m := NewMatcher(cat, 0.81)

	match, err := m.Match(context.Background(), "coca cola", "", "")
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestMatch_TieResolvesToFirstListed(t *testing.T) {
	// both products contain the raw name, so both score 0.8; the first
	// in catalog order (lowest ID) wins because only strictly better
	// scores replace the current best
	first := catalogProduct("Rice 5kg Premium")
	second := catalogProduct("Rice 5kg Standard")
	cat := &fakeCatalog{products: []product.Product{first, second}}
	m := NewMatcher(cat, 0.7)

	match, err := m.Match(context.Background(), "rice 5kg", "", "")
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, first.ID, match.Product.ID)
}

func TestMatch_EmptyCatalog(t *testing.T) {
	m := NewMatcher(&fakeCatalog{}, 0.7)

	match, err := m.Match(context.Background(), "anything", "", "")
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestNewMatcher_ZeroThresholdUsesDefault(t *testing.T) {
	m := NewMatcher(&fakeCatalog{}, 0)
	assert.Equal(t, DefaultConfidenceThreshold, m.Threshold())
}
