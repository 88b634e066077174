// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import "github.com/pmezard/go-difflib/difflib"

// Ratio returns the Ratcliff-Obershelp similarity of two strings in
// [0,1], computed over individual characters rather than lines. Both
// inputs should be normalized titles; casing or punctuation differences
// would otherwise drag the score down.
func Ratio(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	return difflib.NewMatcher(explode(a), explode(b)).Ratio()
}

// explode splits a string into one-rune elements for the sequence matcher.
func explode(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
