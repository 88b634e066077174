// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enrich looks up each citation record on a bibliographic search
// API, fuzzy-matches candidate titles, and merges author, affiliation,
// DOI, venue, and year data into the record. Results are cached by
// normalized title so reruns skip previously answered queries.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pdiddy/citetrack/internal/reconcile"
	"github.com/pdiddy/citetrack/internal/store"
	"github.com/pdiddy/citetrack/pkg/types"
)

// MatchResult is the cached outcome of one bibliographic lookup. Error
// and no-match outcomes are cached too: a rerun must not repeat a query
// the cache already answers, whatever the answer was.
type MatchResult struct {
	Status       types.MatchStatus `json:"status"`
	Score        float64           `json:"score"`
	Error        string            `json:"error,omitempty"`
	DOI          string            `json:"doi,omitempty"`
	Venue        string            `json:"venue,omitempty"`
	Year         int               `json:"year,omitempty"`
	Authors      []string          `json:"authors,omitempty"`
	Affiliations [][]string        `json:"affiliations,omitempty"`
}

// Enricher drives cache-backed enrichment over a record set.
type Enricher struct {
	Crossref *CrossrefClient
	Cache    store.KV
	Cfg      types.EnrichConfig
}

// threshold returns the configured acceptance threshold, defaulting to
// 0.6. The value is a preserved tuning constant, not a derived one.
func (e *Enricher) threshold() float64 {
	if e.Cfg.MatchThreshold > 0 {
		return e.Cfg.MatchThreshold
	}
	return 0.6
}

// Lookup resolves the best bibliographic match for a title, consulting
// the cache first. Live query outcomes, including errors and no-matches,
// are written back to the cache before returning.
func (e *Enricher) Lookup(ctx context.Context, title string) MatchResult {
	key := reconcile.NormalizeTitle(title)

	if raw, ok, err := e.Cache.Get(key); err == nil && ok {
		var cached MatchResult
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached
		}
	}

	result := e.query(ctx, title, key)

	if data, err := json.Marshal(result); err == nil {
		if err := e.Cache.Put(key, data); err != nil {
			fmt.Fprintf(os.Stderr, "warning: caching result for %q: %v\n", key, err)
		}
	}
	return result
}

func (e *Enricher) query(ctx context.Context, title, normTitle string) MatchResult {
	items, err := e.Crossref.Query(ctx, title)
	if err != nil {
		return MatchResult{Status: types.MatchError, Error: err.Error()}
	}

	var best *crossrefWork
	bestScore := 0.0
	for i := range items {
		candidate := items[i].workTitle()
		if candidate == "" {
			continue
		}
		score := Ratio(reconcile.NormalizeTitle(candidate), normTitle)
		if score > bestScore {
			bestScore = score
			best = &items[i]
		}
	}

	if best == nil || bestScore < e.threshold() {
		return MatchResult{Status: types.MatchNone, Score: bestScore}
	}

	authors, affiliations := best.workAuthors()
	return MatchResult{
		Status:       types.MatchOK,
		Score:        bestScore,
		DOI:          strings.ToLower(best.DOI),
		Venue:        best.workVenue(),
		Year:         best.workYear(),
		Authors:      authors,
		Affiliations: affiliations,
	}
}

// Apply builds an enriched record from a raw record and a match result.
func Apply(c types.Citation, res MatchResult) types.EnrichedCitation {
	r := types.EnrichedCitation{
		Citation:    c,
		DOI:         res.DOI,
		Venue:       res.Venue,
		MatchedYear: res.Year,
		MatchScore:  res.Score,
		MatchStatus: res.Status,
	}
	if r.MatchStatus == "" {
		r.MatchStatus = types.MatchUnqueried
	}

	r.EnrichedAuthors = res.Authors
	r.EnrichedAffiliations = AlignAffiliations(len(res.Authors), res.Affiliations)

	if r.MatchedYear == 0 {
		r.MatchedYear = c.Year
	}

	FinalizeAuthors(&r)
	return r
}

// EnrichAll enriches every record in order and flushes the cache once at
// the end. Lookup failures degrade the individual record, never the run.
func (e *Enricher) EnrichAll(ctx context.Context, records []types.Citation, w io.Writer) ([]types.EnrichedCitation, error) {
	enriched := make([]types.EnrichedCitation, 0, len(records))
	for i, c := range records {
		if err := ctx.Err(); err != nil {
			return enriched, err
		}
		res := e.Lookup(ctx, c.Title)
		if res.Status == types.MatchError {
			fmt.Fprintf(w, "warning: enrich %d/%d %q: %s\n", i+1, len(records), c.Title, res.Error)
		}
		enriched = append(enriched, Apply(c, res))
	}

	if err := e.Cache.Flush(); err != nil {
		return enriched, fmt.Errorf("flushing enrichment cache: %w", err)
	}
	return enriched, nil
}

// AlignAffiliations pads or truncates the affiliation lists so they line
// up positionally with an author list of length n. Enrichment sources
// occasionally return mismatched counts.
func AlignAffiliations(n int, affiliations [][]string) [][]string {
	if n == 0 {
		return nil
	}
	aligned := make([][]string, n)
	for i := 0; i < n && i < len(affiliations); i++ {
		aligned[i] = affiliations[i]
	}
	return aligned
}

// FinalizeAuthors applies the merge policy: the enrichment source's
// author list wins when non-empty; otherwise the scraped list stands in,
// tagged with its truncation state; otherwise the record stays empty
// with unknown provenance. First-author fields derive from the result.
func FinalizeAuthors(r *types.EnrichedCitation) {
	switch {
	case len(r.EnrichedAuthors) > 0:
		r.FinalAuthors = r.EnrichedAuthors
		r.FinalAffiliations = AlignAffiliations(len(r.EnrichedAuthors), r.EnrichedAffiliations)
		r.AuthorSource = types.AuthorsFromEnrichment
	case len(r.Citation.Authors) > 0:
		r.FinalAuthors = r.Citation.Authors
		r.FinalAffiliations = make([][]string, len(r.Citation.Authors))
		if r.AuthorsTruncated {
			r.AuthorSource = types.AuthorsFromSourceTruncated
		} else {
			r.AuthorSource = types.AuthorsFromSource
		}
	default:
		r.FinalAuthors = nil
		r.FinalAffiliations = nil
		r.AuthorSource = types.AuthorsUnknown
	}

	if len(r.FinalAuthors) > 0 {
		if r.FinalAuthors[0] != missingAuthor {
			r.FirstAuthor = r.FinalAuthors[0]
		}
		if len(r.FinalAffiliations) > 0 {
			r.FirstAuthorAffiliations = r.FinalAffiliations[0]
		}
	}
}
