// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// NameCount pairs a name with its occurrence count.
type NameCount struct {
	Name  string
	Count int
}

// YearCount pairs a publication year with its record count.
type YearCount struct {
	Year  int
	Count int
}

// Stats holds the derived summary statistics for a record set.
type Stats struct {
	RawCount            int
	FilteredCount       int
	UniqueAffiliations  int
	MissingAffiliations int
	TopAffiliations     []NameCount
	TopAuthors          []NameCount
	YearCounts          []YearCount
}

// ComputeStats derives the summary numbers from the output rows.
// rawCount is the pre-filter record total from the raw store.
func ComputeStats(rows []Row, rawCount, topN int) Stats {
	if topN <= 0 {
		topN = 10
	}

	affCounter := make(map[string]int)
	authorCounter := make(map[string]int)
	yearCounter := make(map[int]int)
	missing := 0

	for _, row := range rows {
		if row.AffSummary == Missing {
			missing++
		} else {
			for _, aff := range splitList(row.AffSummary) {
				affCounter[aff]++
			}
		}
		if row.Authors != Missing {
			for _, author := range splitList(row.Authors) {
				authorCounter[author]++
			}
		}
		if year, err := strconv.Atoi(row.Year); err == nil {
			yearCounter[year]++
		}
	}

	var years []YearCount
	for y, n := range yearCounter {
		years = append(years, YearCount{Year: y, Count: n})
	}
	sort.Slice(years, func(i, j int) bool { return years[i].Year < years[j].Year })

	return Stats{
		RawCount:            rawCount,
		FilteredCount:       len(rows),
		UniqueAffiliations:  len(affCounter),
		MissingAffiliations: missing,
		TopAffiliations:     topCounts(affCounter, topN),
		TopAuthors:          topCounts(authorCounter, topN),
		YearCounts:          years,
	}
}

// BuildSummary renders the Markdown overview written next to the CSV.
func BuildSummary(s Stats) string {
	lines := []string{
		"# Citation summary",
		"",
		fmt.Sprintf("- Raw citation records fetched: %d", s.RawCount),
		fmt.Sprintf("- Records after self-citation filter: %d", s.FilteredCount),
		fmt.Sprintf("- Rows written to CSV: %d", s.FilteredCount),
		fmt.Sprintf("- Distinct author affiliations: %d", s.UniqueAffiliations),
		fmt.Sprintf("- Records missing affiliation data: %d", s.MissingAffiliations),
		"",
		fmt.Sprintf("## Top %d affiliations", len(s.TopAffiliations)),
		"",
	}

	if len(s.TopAffiliations) == 0 {
		lines = append(lines, "Not enough affiliation data to rank.")
	} else {
		lines = append(lines, "| Rank | Affiliation | Count |", "| --- | --- | --- |")
		for i, nc := range s.TopAffiliations {
			lines = append(lines, fmt.Sprintf("| %d | %s | %d |", i+1, nc.Name, nc.Count))
		}
	}

	lines = append(lines,
		"",
		"## Notes",
		"",
		"- Fields the enrichment source could not fill are marked \""+Missing+"\".",
		"- Match confidence is a title-similarity ratio; see the notes column in the CSV.",
		"- The author_affiliations column separates authors with `|`; each author's",
		"  known affiliations appear in parentheses.",
	)

	return strings.Join(lines, "\n") + "\n"
}

// topCounts returns the topN entries by count descending, ties broken by
// name for stable output.
func topCounts(counter map[string]int, topN int) []NameCount {
	entries := make([]NameCount, 0, len(counter))
	for name, count := range counter {
		entries = append(entries, NameCount{Name: name, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Name < entries[j].Name
	})
	if len(entries) > topN {
		entries = entries[:topN]
	}
	return entries
}

// splitList splits a "; "-joined field back into its items.
func splitList(field string) []string {
	var items []string
	for _, part := range strings.Split(field, ";") {
		if item := strings.TrimSpace(part); item != "" {
			items = append(items, item)
		}
	}
	return items
}
