// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch retrieves raw citation records for the tracked paper.
// Two sources implement the same contract: Google Scholar result-page
// scraping and the OpenAlex citation graph. The source is selected by
// configuration, not by separate call sites.
package fetch

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/pdiddy/citetrack/internal/reconcile"
	"github.com/pdiddy/citetrack/pkg/types"
)

// Scope narrows one fetch pass. A zero Year means the unbounded all-time
// fallback pass.
type Scope struct {
	Year int
}

func (s Scope) String() string {
	if s.Year == 0 {
		return "all time"
	}
	return fmt.Sprintf("%d", s.Year)
}

// Fetcher produces the ordered citation records for one scope.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, scope Scope) ([]types.Citation, error)
}

// PreEnriched is implemented by fetchers whose records already carry
// author and affiliation data, letting the pipeline skip the
// bibliographic enrichment step for them.
type PreEnriched interface {
	Enrich(records []types.Citation) []types.EnrichedCitation
}

// YearScopes returns one scope per year from first through last,
// followed by the all-time fallback scope. The fallback catches records
// Scholar indexes without a year.
func YearScopes(first, last int) []Scope {
	var scopes []Scope
	for y := first; y <= last; y++ {
		scopes = append(scopes, Scope{Year: y})
	}
	scopes = append(scopes, Scope{})
	return scopes
}

// CollectScopes runs the scopes sequentially and combines the results,
// first occurrence winning across scopes. A scope failure propagates:
// the primary fetch has no recovery path beyond rerunning.
func CollectScopes(ctx context.Context, f Fetcher, scopes []Scope, w io.Writer) ([]types.Citation, error) {
	var batches [][]types.Citation
	for _, scope := range scopes {
		records, err := f.Fetch(ctx, scope)
		if err != nil {
			return nil, fmt.Errorf("fetching %s scope %s: %w", f.Name(), scope, err)
		}
		fmt.Fprintf(w, "fetched %d records for %s\n", len(records), scope)
		batches = append(batches, records)
	}
	combined := reconcile.Deduplicate(batches...)
	fmt.Fprintf(w, "combined: %d unique records\n", len(combined))
	return combined, nil
}

var yearPattern = regexp.MustCompile(`(19|20|21)\d{2}`)

// extractYear finds the first plausible publication year in a byline.
func extractYear(meta string) int {
	m := yearPattern.FindString(meta)
	if m == "" {
		return 0
	}
	var year int
	fmt.Sscanf(m, "%d", &year)
	return year
}

// normalizeSpace collapses runs of whitespace (including non-breaking
// spaces) into single spaces.
func normalizeSpace(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.Join(strings.Fields(s), " ")
}

// parseByline splits a Scholar byline into author names. Only the
// segment before the first dash is authors; the rest is venue and year.
func parseByline(byline string) []string {
	if byline == "" {
		return nil
	}
	segment := byline
	if i := strings.Index(byline, "-"); i >= 0 {
		segment = byline[:i]
	}
	var authors []string
	for _, part := range strings.Split(segment, ",") {
		name := normalizeSpace(part)
		if name == "" || name == "…" || name == "..." {
			continue
		}
		authors = append(authors, name)
	}
	return authors
}

// bylineTruncated reports whether the source cut the author list short.
func bylineTruncated(byline string) bool {
	return strings.Contains(byline, "…") ||
		strings.Contains(byline, "...") ||
		strings.Contains(byline, "等")
}

// sleepContext pauses for d or until ctx is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
