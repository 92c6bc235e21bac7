package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase", "Coca Cola", "coca cola"},
		{"trims edges", "  sugar 1kg  ", "sugar 1kg"},
		{"collapses whitespace", "rice\t\t5kg   bag", "rice 5kg bag"},
		{"strips punctuation", "omo (500g) - blue!", "omo 500g blue"},
		{"punctuation only", "---", ""},
		{"empty", "", ""},
		{"digits kept", "fanta 300ml", "fanta 300ml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestSimilarity_ExactAfterNormalization(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("Coca-Cola 500ml", "coca cola 500ml"))
	assert.Equal(t, 1.0, Similarity("SUGAR", "sugar"))
}

func TestSimilarity_Substring(t *testing.T) {
	// one side contained in the other scores a fixed 0.8
	assert.Equal(t, 0.8, Similarity("coca cola", "coca cola 500ml"))
	assert.Equal(t, 0.8, Similarity("omo 1kg blue", "omo"))
}

func TestSimilarity_EditDistance(t *testing.T) {
	// "sugar" vs "sugat": distance 1 over length 5
	assert.InDelta(t, 0.8, Similarity("sugar", "sugat"), 1e-9)

	// completely different strings score low
	assert.Less(t, Similarity("bread", "engine oil"), 0.4)
}

func TestSimilarity_EmptyInputs(t *testing.T) {
	// both empty normalize to equal strings
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 1.0, Similarity("!!!", "..."))

	// empty vs non-empty: no substring credit, distance equals full length
	assert.Equal(t, 0.0, Similarity("", "sugar"))
}

func TestSimilarity_Symmetric(t *testing.T) {
	a, b := "blue band 250g", "blueband 250 g"
	assert.Equal(t, Similarity(a, b), Similarity(b, a))
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"same", "same", 0},
	}

	for _, tt := range tests {
		got := levenshtein([]rune(tt.a), []rune(tt.b))
		assert.Equalf(t, tt.want, got, "levenshtein(%q, %q)", tt.a, tt.b)
	}
}
