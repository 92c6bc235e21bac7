package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dukapos/internal/domain/catalogs/product"
)

func TestNormalizeUnit(t *testing.T) {
	tests := []struct {
		raw  string
		want product.UnitType
	}{
		{"pcs", product.UnitPcs},
		{"Pieces", product.UnitPcs},
		{" PC ", product.UnitPcs},
		{"kg", product.UnitKg},
		{"Kilograms", product.UnitKg},
		{"g", product.UnitKg},
		{"litre", product.UnitKg},
		{"L", product.UnitKg},
		{"pack", product.UnitPack},
		{"PACKS", product.UnitPack},
		{"carton", product.UnitCarton},
		{"cases", product.UnitCase},
		{"", product.UnitPcs},
		{"dozen", product.UnitPcs},
		{"??", product.UnitPcs},
	}

	for _, tt := range tests {
		assert.Equalf(t, tt.want, NormalizeUnit(tt.raw), "NormalizeUnit(%q)", tt.raw)
	}
}
