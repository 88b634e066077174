// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders the final record set as CSV, Markdown, and HTML.
// No numeric work happens here beyond counting and sorting.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/citetrack/pkg/types"
)

// Missing marks a field the pipeline could not fill.
const Missing = "missing"

// Row is one CSV output row. Column order is fixed; downstream report
// scripts read the file positionally.
type Row struct {
	Index        int
	Title        string
	Authors      string // "; "-joined final authors
	AuthorAffMap string // "Name (Aff1; Aff2)" entries joined by " | "
	AffSummary   string // sorted unique affiliations, "; "-joined
	Year         string
	SourceLink   string
	DOI          string
	Venue        string
	Notes        string
}

var csvHeader = []string{
	"index", "title", "authors", "author_affiliations",
	"affiliation_summary", "year", "source_link", "doi", "venue", "notes",
}

// BuildRow flattens an enriched record into its CSV row. index is
// one-based.
func BuildRow(index int, r types.EnrichedCitation) Row {
	var entries []string
	aggregated := make(map[string]struct{})

	for i, name := range r.FinalAuthors {
		var affs []string
		if i < len(r.FinalAffiliations) {
			affs = r.FinalAffiliations[i]
		}
		entries = append(entries, formatAuthorEntry(name, affs))
		for _, aff := range affs {
			if aff != "" {
				aggregated[aff] = struct{}{}
			}
		}
	}

	authors := Missing
	if len(r.FinalAuthors) > 0 {
		authors = strings.Join(r.FinalAuthors, "; ")
	}
	affMap := Missing
	if len(entries) > 0 {
		affMap = strings.Join(entries, " | ")
	}
	affSummary := Missing
	if len(aggregated) > 0 {
		affSummary = strings.Join(sortedKeys(aggregated), "; ")
	}

	link := r.URL
	if link == "" && r.ClusterID != "" {
		link = "https://scholar.google.com/scholar?cluster=" + r.ClusterID
	}
	if link == "" {
		link = Missing
	}

	year := Missing
	switch {
	case r.MatchedYear != 0:
		year = strconv.Itoa(r.MatchedYear)
	case r.Year != 0:
		year = strconv.Itoa(r.Year)
	}

	return Row{
		Index:        index,
		Title:        r.Title,
		Authors:      authors,
		AuthorAffMap: affMap,
		AffSummary:   affSummary,
		Year:         year,
		SourceLink:   link,
		DOI:          r.DOI,
		Venue:        r.Venue,
		Notes:        strings.Join(rowNotes(r), "; "),
	}
}

// rowNotes flags the data-quality conditions a reviewer checks by hand.
func rowNotes(r types.EnrichedCitation) []string {
	var notes []string
	if r.MatchStatus != types.MatchOK {
		notes = append(notes, "match_status="+string(r.MatchStatus))
	}
	if r.MatchScore > 0 {
		notes = append(notes, fmt.Sprintf("score=%.2f", r.MatchScore))
	}
	if len(r.FinalAuthors) == 0 {
		notes = append(notes, "missing_authors")
	}
	if r.AuthorSource != types.AuthorsFromEnrichment {
		notes = append(notes, "author_source="+string(r.AuthorSource))
	}
	if r.AuthorsTruncated && r.AuthorSource != types.AuthorsFromEnrichment {
		notes = append(notes, "authors_may_be_truncated")
	}
	return notes
}

// BuildRows converts the filtered record set into output rows.
func BuildRows(records []types.EnrichedCitation) []Row {
	rows := make([]Row, 0, len(records))
	for i, r := range records {
		rows = append(rows, BuildRow(i+1, r))
	}
	return rows
}

// WriteCSV writes the rows to path as UTF-8 with a BOM, header first.
// The BOM keeps spreadsheet tools from misreading non-ASCII names.
func WriteCSV(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating CSV: %w", err)
	}
	defer f.Close()

	if _, err := f.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("writing BOM: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			strconv.Itoa(row.Index), row.Title, row.Authors, row.AuthorAffMap,
			row.AffSummary, row.Year, row.SourceLink, row.DOI, row.Venue, row.Notes,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", row.Index, err)
		}
	}
	w.Flush()
	return w.Error()
}

// ReadCSV loads a previously written citations CSV. Rows with the wrong
// column count are skipped rather than failing the report run.
func ReadCSV(path string) ([]Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	text := strings.TrimPrefix(string(data), "\uFEFF")

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}

	var rows []Row
	for i, rec := range records {
		if i == 0 || len(rec) != len(csvHeader) {
			continue
		}
		index, _ := strconv.Atoi(rec[0])
		rows = append(rows, Row{
			Index:        index,
			Title:        rec[1],
			Authors:      rec[2],
			AuthorAffMap: rec[3],
			AffSummary:   rec[4],
			Year:         rec[5],
			SourceLink:   rec[6],
			DOI:          rec[7],
			Venue:        rec[8],
			Notes:        rec[9],
		})
	}
	return rows, nil
}

// formatAuthorEntry renders "Name (Aff1; Aff2)", marking both missing
// names and missing affiliation lists.
func formatAuthorEntry(name string, affiliations []string) string {
	if name == "" {
		name = Missing
	}
	unique := make(map[string]struct{})
	for _, aff := range affiliations {
		if aff != "" {
			unique[aff] = struct{}{}
		}
	}
	if len(unique) == 0 {
		return name + " (" + Missing + ")"
	}
	return name + " (" + strings.Join(sortedKeys(unique), "; ") + ")"
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
