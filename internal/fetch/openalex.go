// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/citetrack/internal/enrich"
	"github.com/pdiddy/citetrack/internal/httputil"
	"github.com/pdiddy/citetrack/pkg/types"
)

// openAlexBase is the OpenAlex Works endpoint. Declared as a var so
// tests can substitute an httptest server.
var openAlexBase = "https://api.openalex.org/works"

// OpenAlexFetcher pulls every work citing the target via the cites:
// filter, following the continuation cursor until exhausted. OpenAlex
// records arrive with authorships and institutions attached, so the
// fetcher also satisfies PreEnriched and the pipeline skips the
// bibliographic lookup for its records.
type OpenAlexFetcher struct {
	Client *httputil.Client
	DOI    string
	Cfg    types.FetchConfig

	workID string
	works  map[string]openAlexWork
}

// Name returns the source identifier.
func (f *OpenAlexFetcher) Name() string { return "openalex" }

// resolveWork looks up the target work by DOI and caches its OpenAlex id.
func (f *OpenAlexFetcher) resolveWork(ctx context.Context) error {
	if f.workID != "" {
		return nil
	}
	reqURL := openAlexBase + "/https://doi.org/" + f.DOI
	if f.Cfg.Mailto != "" {
		reqURL += "?mailto=" + url.QueryEscape(f.Cfg.Mailto)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	var work openAlexWork
	if err := f.Client.GetJSON(req, &work); err != nil {
		return fmt.Errorf("resolving target work: %w", err)
	}
	f.workID = shortWorkID(work.ID)
	if f.workID == "" {
		return fmt.Errorf("target work for DOI %s has no OpenAlex id", f.DOI)
	}
	return nil
}

// Fetch cursor-paginates the cites: listing. A year scope becomes a
// publication_year filter; the zero scope fetches everything.
func (f *OpenAlexFetcher) Fetch(ctx context.Context, scope Scope) ([]types.Citation, error) {
	if err := f.resolveWork(ctx); err != nil {
		return nil, err
	}
	if f.works == nil {
		f.works = make(map[string]openAlexWork)
	}

	filter := "cites:" + f.workID
	if scope.Year != 0 {
		filter += ",publication_year:" + strconv.Itoa(scope.Year)
	}

	var records []types.Citation
	cursor := "*"
	page := 0

	for cursor != "" {
		params := url.Values{
			"filter":   {filter},
			"per-page": {"200"},
			"cursor":   {cursor},
		}
		if f.Cfg.Mailto != "" {
			params.Set("mailto", f.Cfg.Mailto)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, openAlexBase+"?"+params.Encode(), nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}

		var payload openAlexResponse
		if err := f.Client.GetJSON(req, &payload); err != nil {
			return nil, fmt.Errorf("OpenAlex cites query: %w", err)
		}

		for _, work := range payload.Results {
			c, ok := workToCitation(work, page)
			if !ok {
				continue
			}
			f.works[c.ClusterID] = work
			records = append(records, c)
		}

		cursor = payload.Meta.NextCursor
		page++
		if cursor != "" {
			if err := sleepContext(ctx, f.Cfg.CursorDelay); err != nil {
				return records, err
			}
		}
	}
	return records, nil
}

// Enrich converts fetched works directly into enriched records. The
// OpenAlex authorship data stands in for a bibliographic match, so the
// records carry a full-confidence ok status.
func (f *OpenAlexFetcher) Enrich(records []types.Citation) []types.EnrichedCitation {
	enriched := make([]types.EnrichedCitation, 0, len(records))
	for _, c := range records {
		r := types.EnrichedCitation{
			Citation:    c,
			MatchStatus: types.MatchUnqueried,
		}
		if work, ok := f.works[c.ClusterID]; ok {
			authors, affiliations := workAuthors(work)
			r.DOI = strings.ToLower(strings.TrimPrefix(work.DOI, "https://doi.org/"))
			r.Venue = work.PrimaryLocation.Source.DisplayName
			r.MatchedYear = work.PublicationYear
			r.MatchScore = 1.0
			r.MatchStatus = types.MatchOK
			r.EnrichedAuthors = authors
			r.EnrichedAffiliations = affiliations
		}
		if r.MatchedYear == 0 {
			r.MatchedYear = c.Year
		}
		enrich.FinalizeAuthors(&r)
		enriched = append(enriched, r)
	}
	return enriched
}

// workToCitation maps an OpenAlex work onto the raw record shape shared
// with the Scholar path. The short work id (W…) serves as the cluster id.
func workToCitation(work openAlexWork, page int) (types.Citation, bool) {
	title := normalizeSpace(work.DisplayName)
	if title == "" {
		return types.Citation{}, false
	}

	authors, _ := workAuthors(work)
	link := work.PrimaryLocation.LandingPageURL
	if link == "" {
		link = work.ID
	}

	return types.Citation{
		Title:      title,
		URL:        link,
		AuthorsRaw: strings.Join(authors, ", "),
		Year:       work.PublicationYear,
		ClusterID:  shortWorkID(work.ID),
		PageIndex:  page,
		Authors:    authors,
	}, true
}

// workAuthors extracts ordered author names and their institution lists.
// Authorships without a display name are dropped, keeping the two slices
// positionally aligned.
func workAuthors(work openAlexWork) ([]string, [][]string) {
	var authors []string
	var affiliations [][]string
	for _, as := range work.Authorships {
		name := normalizeSpace(as.Author.DisplayName)
		if name == "" {
			continue
		}
		var insts []string
		for _, inst := range as.Institutions {
			if n := normalizeSpace(inst.DisplayName); n != "" {
				insts = append(insts, n)
			}
		}
		authors = append(authors, name)
		affiliations = append(affiliations, insts)
	}
	return authors, affiliations
}

// shortWorkID strips the https://openalex.org/ prefix from a work id.
func shortWorkID(id string) string {
	if i := strings.LastIndex(id, "/"); i >= 0 {
		return id[i+1:]
	}
	return id
}

// OpenAlex API JSON structures.
type openAlexResponse struct {
	Meta    openAlexMeta   `json:"meta"`
	Results []openAlexWork `json:"results"`
}

type openAlexMeta struct {
	Count      int    `json:"count"`
	NextCursor string `json:"next_cursor"`
}

type openAlexWork struct {
	ID              string               `json:"id"`
	DisplayName     string               `json:"display_name"`
	DOI             string               `json:"doi"`
	PublicationYear int                  `json:"publication_year"`
	Authorships     []openAlexAuthorship `json:"authorships"`
	PrimaryLocation openAlexLocation     `json:"primary_location"`
}

type openAlexAuthorship struct {
	Author       openAlexAuthor        `json:"author"`
	Institutions []openAlexInstitution `json:"institutions"`
}

type openAlexAuthor struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type openAlexInstitution struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type openAlexLocation struct {
	LandingPageURL string         `json:"landing_page_url"`
	Source         openAlexSource `json:"source"`
}

type openAlexSource struct {
	DisplayName string `json:"display_name"`
}
