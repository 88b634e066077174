// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the citetrack pipeline.
package types

// Citation is one raw citing-work record as produced by a fetcher.
// Records are immutable after fetch and persisted append-only as the
// raw store.
type Citation struct {
	// Title is the citing work's title as shown by the source.
	Title string `json:"title" yaml:"title"`

	// URL is the landing page link, when the source exposes one.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// AuthorsRaw is the unparsed author/venue byline (e.g.
	// "J Smith, K Lee - Journal of Things, 2020").
	AuthorsRaw string `json:"authors_raw" yaml:"authors_raw"`

	// Snippet is the excerpt text shown under the result entry.
	Snippet string `json:"snippet,omitempty" yaml:"snippet,omitempty"`

	// Year is the publication year parsed from the byline, 0 if unknown.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// ClusterID is the source's stable grouping identifier for the work.
	// When present it serves as the dedup key.
	ClusterID string `json:"cluster_id,omitempty" yaml:"cluster_id,omitempty"`

	// PageIndex is the zero-based results page the record came from.
	PageIndex int `json:"page_index" yaml:"page_index"`

	// Authors is the author list parsed from AuthorsRaw, in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// AuthorsTruncated reports that the source cut the author list short
	// (ellipsis or "et al." markers in the byline).
	AuthorsTruncated bool `json:"authors_truncated" yaml:"authors_truncated"`
}

// MatchStatus is the outcome of an enrichment lookup for a record.
type MatchStatus string

const (
	MatchOK        MatchStatus = "ok"
	MatchNone      MatchStatus = "no_match"
	MatchError     MatchStatus = "error"
	MatchUnqueried MatchStatus = "unqueried"
)

// AuthorSource tags which side won the final-author merge.
type AuthorSource string

const (
	// AuthorsFromEnrichment means the bibliographic API's author list won.
	AuthorsFromEnrichment AuthorSource = "enrichment"

	// AuthorsFromSource means the scraped author list was used as-is.
	AuthorsFromSource AuthorSource = "source"

	// AuthorsFromSourceTruncated means the scraped list was used but the
	// source had truncated it.
	AuthorsFromSourceTruncated AuthorSource = "source_truncated"

	// AuthorsUnknown means neither side provided any authors.
	AuthorsUnknown AuthorSource = "unknown"
)

// EnrichedCitation is a Citation plus the fields merged in from a
// bibliographic metadata match.
type EnrichedCitation struct {
	Citation `yaml:",inline"`

	// DOI is the matched work's DOI, bare form without the resolver prefix.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// Venue is the matched journal or conference name.
	Venue string `json:"venue,omitempty" yaml:"venue,omitempty"`

	// MatchedYear is the publication year reported by the enrichment
	// source, falling back to the scraped year when absent.
	MatchedYear int `json:"matched_year,omitempty" yaml:"matched_year,omitempty"`

	// MatchScore is the title-similarity score of the accepted candidate,
	// in [0,1].
	MatchScore float64 `json:"match_score" yaml:"match_score"`

	// MatchStatus records the enrichment outcome.
	MatchStatus MatchStatus `json:"match_status" yaml:"match_status"`

	// EnrichedAuthors is the enrichment source's ordered author list.
	EnrichedAuthors []string `json:"enriched_authors,omitempty" yaml:"enriched_authors,omitempty"`

	// EnrichedAffiliations aligns positionally with EnrichedAuthors.
	EnrichedAffiliations [][]string `json:"enriched_affiliations,omitempty" yaml:"enriched_affiliations,omitempty"`

	// FinalAuthors is the reconciled author list per the merge policy.
	FinalAuthors []string `json:"final_authors" yaml:"final_authors"`

	// FinalAffiliations aligns positionally with FinalAuthors.
	FinalAffiliations [][]string `json:"final_affiliations" yaml:"final_affiliations"`

	// AuthorSource tags where FinalAuthors came from.
	AuthorSource AuthorSource `json:"author_source" yaml:"author_source"`

	// FirstAuthor and its affiliations, derived from the final list.
	FirstAuthor             string   `json:"first_author,omitempty" yaml:"first_author,omitempty"`
	FirstAuthorAffiliations []string `json:"first_author_affiliations,omitempty" yaml:"first_author_affiliations,omitempty"`
}
