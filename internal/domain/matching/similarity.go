// Package matching reconciles raw supplier item names against the catalog.
package matching

import (
	"strings"
	"unicode"
)

// Normalize prepares a string for comparison: lower-case, trim, collapse
// internal whitespace, strip punctuation.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	b.Grow(len(s))
	lastSpace := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			if !lastSpace && b.Len() > 0 {
				b.WriteByte(' ')
				lastSpace = true
			}
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		default:
			// punctuation dropped
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// Similarity scores two raw strings in [0,1]: 1.0 for equal normalized
// forms, 0.8 when one is a non-empty substring of the other, otherwise
// 1 − levenshtein/maxLen.
func Similarity(a, b string) float64 {
	s1 := Normalize(a)
	s2 := Normalize(b)

	if s1 == s2 {
		return 1.0
	}

	longer, shorter := s1, s2
	if len(s2) > len(s1) {
		longer, shorter = s2, s1
	}

	if len(longer) == 0 {
		return 1.0
	}

	if shorter != "" && strings.Contains(longer, shorter) {
		return 0.8
	}

	r1 := []rune(s1)
	r2 := []rune(s2)
	maxLen := len(r1)
	if len(r2) > maxLen {
		maxLen = len(r2)
	}
	return 1 - float64(levenshtein(r1, r2))/float64(maxLen)
}

// levenshtein computes the edit distance between two rune slices using a
// two-row rolling matrix.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
