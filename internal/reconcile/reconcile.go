// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reconcile deduplicates citation records across fetch passes and
// filters out self-citations by the tracked paper's own authors.
package reconcile

import (
	"strings"
	"unicode"

	"github.com/pdiddy/citetrack/pkg/types"
)

// NormalizeTitle returns a lowercased title with punctuation stripped and
// whitespace collapsed. Equal normalized titles must map to the same
// cache and dedup key.
func NormalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// NormalizeAuthor lowercases a name, strips punctuation, and collapses
// whitespace. Unlike title matching this feeds an exact set lookup, so
// removed punctuation is not replaced by a space ("P.C. Ma" → "pc ma").
func NormalizeAuthor(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Key returns a record's identity key: the cluster id when the source
// assigned one, else the normalized title.
func Key(c types.Citation) string {
	if c.ClusterID != "" {
		return "cluster:" + c.ClusterID
	}
	return "title:" + NormalizeTitle(c.Title)
}

// Deduplicate combines per-scope fetch results into one sequence. The
// first occurrence of each key wins; later duplicates are dropped
// silently. Records with an empty key (no cluster id and a blank title)
// are dropped as malformed.
func Deduplicate(batches ...[]types.Citation) []types.Citation {
	seen := make(map[string]struct{})
	var combined []types.Citation
	for _, batch := range batches {
		for _, c := range batch {
			key := Key(c)
			if key == "title:" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			combined = append(combined, c)
		}
	}
	return combined
}

// Denylist is a set of normalized author-name variants to exclude.
type Denylist map[string]struct{}

// NewDenylist normalizes the given name variants into a lookup set.
func NewDenylist(names []string) Denylist {
	d := make(Denylist, len(names))
	for _, n := range names {
		if norm := NormalizeAuthor(n); norm != "" {
			d[norm] = struct{}{}
		}
	}
	return d
}

// Matches reports whether any candidate author name, after
// normalization, is on the denylist. Exact string match only; title
// matching is fuzzy, author matching is not.
func (d Denylist) Matches(authors []string) bool {
	for _, a := range authors {
		if a == "" {
			continue
		}
		if _, ok := d[NormalizeAuthor(a)]; ok {
			return true
		}
	}
	return false
}

// FilterSelfCitations drops records whose author set intersects the
// denylist. The candidate set is the reconciled author list, falling back
// to the scraped list when the merge produced nothing.
func FilterSelfCitations(records []types.EnrichedCitation, deny Denylist) []types.EnrichedCitation {
	var kept []types.EnrichedCitation
	for _, r := range records {
		authors := r.FinalAuthors
		if len(authors) == 0 {
			authors = r.Citation.Authors
		}
		if deny.Matches(authors) {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}
