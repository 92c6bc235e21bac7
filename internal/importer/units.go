package importer

import (
	"strings"

	"dukapos/internal/domain/catalogs/product"
)

// unitAliases maps supplier unit spellings onto catalog unit types.
// Only the label is renamed; quantities are never rescaled here.
var unitAliases = map[string]product.UnitType{
	"pcs":    product.UnitPcs,
	"pc":     product.UnitPcs,
	"piece":  product.UnitPcs,
	"pieces": product.UnitPcs,

	"kg":        product.UnitKg,
	"kgs":       product.UnitKg,
	"kilogram":  product.UnitKg,
	"kilograms": product.UnitKg,
	"g":         product.UnitKg,
	"gram":      product.UnitKg,
	"grams":     product.UnitKg,

	// TODO: liter is a volume unit and kg a mass unit; this mapping came
	// from supplier receipts that price liquids per kg and needs a real
	// volume unit type to fix properly.
	"liter":  product.UnitKg,
	"litre":  product.UnitKg,
	"liters": product.UnitKg,
	"litres": product.UnitKg,
	"l":      product.UnitKg,
	"ls":     product.UnitKg,

	"pack":  product.UnitPack,
	"packs": product.UnitPack,

	"carton":  product.UnitCarton,
	"cartons": product.UnitCarton,

	"case":  product.UnitCase,
	"cases": product.UnitCase,
}

// NormalizeUnit maps a raw receipt unit onto a catalog unit type.
// Matching is case-insensitive and whitespace-trimmed; anything
// unrecognized defaults to pcs.
func NormalizeUnit(raw string) product.UnitType {
	key := strings.ToLower(strings.TrimSpace(raw))
	if u, ok := unitAliases[key]; ok {
		return u
	}
	return product.UnitPcs
}
