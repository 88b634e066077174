// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"reflect"
	"strings"
	"testing"
)

func statRows() []Row {
	return []Row{
		{
			Index:      1,
			Authors:    "John Smith; Ada Lovelace",
			AffSummary: "Somewhere U; Elsewhere Lab",
			Year:       "2020",
		},
		{
			Index:      2,
			Authors:    "John Smith",
			AffSummary: "Somewhere U",
			Year:       "2021",
		},
		{
			Index:      3,
			Authors:    Missing,
			AffSummary: Missing,
			Year:       Missing,
		},
	}
}

func TestComputeStats(t *testing.T) {
	s := ComputeStats(statRows(), 5, 10)

	if s.RawCount != 5 {
		t.Errorf("RawCount = %d, want 5", s.RawCount)
	}
	if s.FilteredCount != 3 {
		t.Errorf("FilteredCount = %d, want 3", s.FilteredCount)
	}
	if s.UniqueAffiliations != 2 {
		t.Errorf("UniqueAffiliations = %d, want 2", s.UniqueAffiliations)
	}
	if s.MissingAffiliations != 1 {
		t.Errorf("MissingAffiliations = %d, want 1", s.MissingAffiliations)
	}

	wantAffs := []NameCount{{"Somewhere U", 2}, {"Elsewhere Lab", 1}}
	if !reflect.DeepEqual(s.TopAffiliations, wantAffs) {
		t.Errorf("TopAffiliations = %v, want %v", s.TopAffiliations, wantAffs)
	}
	wantAuthors := []NameCount{{"John Smith", 2}, {"Ada Lovelace", 1}}
	if !reflect.DeepEqual(s.TopAuthors, wantAuthors) {
		t.Errorf("TopAuthors = %v, want %v", s.TopAuthors, wantAuthors)
	}
	wantYears := []YearCount{{2020, 1}, {2021, 1}}
	if !reflect.DeepEqual(s.YearCounts, wantYears) {
		t.Errorf("YearCounts = %v, want %v", s.YearCounts, wantYears)
	}
}

func TestComputeStatsTopNTruncates(t *testing.T) {
	rows := []Row{
		{AffSummary: "A; B; C", Authors: Missing, Year: Missing},
	}
	s := ComputeStats(rows, 1, 2)
	if len(s.TopAffiliations) != 2 {
		t.Errorf("len(TopAffiliations) = %d, want 2", len(s.TopAffiliations))
	}
	// Ties break by name for stable output.
	if s.TopAffiliations[0].Name != "A" || s.TopAffiliations[1].Name != "B" {
		t.Errorf("TopAffiliations = %v, want A then B", s.TopAffiliations)
	}
}

func TestBuildSummary(t *testing.T) {
	s := ComputeStats(statRows(), 5, 10)
	md := BuildSummary(s)

	for _, want := range []string{
		"# Citation summary",
		"Raw citation records fetched: 5",
		"Records after self-citation filter: 3",
		"Distinct author affiliations: 2",
		"Records missing affiliation data: 1",
		"| 1 | Somewhere U | 2 |",
		"## Notes",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("summary missing %q:\n%s", want, md)
		}
	}
}

func TestBuildSummaryNoAffiliations(t *testing.T) {
	md := BuildSummary(Stats{})
	if !strings.Contains(md, "Not enough affiliation data to rank.") {
		t.Errorf("summary should note missing affiliation data:\n%s", md)
	}
}

func TestSplitList(t *testing.T) {
	got := splitList("A; B ;; C ")
	want := []string{"A", "B", "C"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitList = %v, want %v", got, want)
	}
	if splitList("") != nil {
		t.Error("splitList(\"\") should be nil")
	}
}
