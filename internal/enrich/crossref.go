// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/citetrack/internal/httputil"
	"github.com/pdiddy/citetrack/pkg/types"
)

// crossrefBase is the Crossref Works search endpoint. Declared as a var
// so tests can substitute an httptest server.
var crossrefBase = "https://api.crossref.org/works"

// missingAuthor marks an author entry the source returned without any
// usable name parts.
const missingAuthor = "missing"

// CrossrefClient queries the Crossref bibliographic search API.
type CrossrefClient struct {
	Client *httputil.Client
	Cfg    types.EnrichConfig
}

// Query searches Crossref for works matching the title and returns up to
// MaxCandidates items.
func (c *CrossrefClient) Query(ctx context.Context, title string) ([]crossrefWork, error) {
	rows := c.Cfg.MaxCandidates
	if rows <= 0 {
		rows = 5
	}
	params := url.Values{
		"query.bibliographic": {title},
		"rows":                {strconv.Itoa(rows)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, crossrefBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	var cr crossrefResponse
	if err := c.Client.GetJSON(req, &cr); err != nil {
		return nil, fmt.Errorf("Crossref query: %w", err)
	}
	return cr.Message.Items, nil
}

// workTitle returns the work's primary title, or "" when absent.
func (w crossrefWork) workTitle() string {
	if len(w.Title) == 0 {
		return ""
	}
	return w.Title[0]
}

// workVenue returns the container title, or "" when absent.
func (w crossrefWork) workVenue() string {
	if len(w.ContainerTitle) == 0 {
		return ""
	}
	return w.ContainerTitle[0]
}

// workYear returns the issued year, or 0 when absent.
func (w crossrefWork) workYear() int {
	if len(w.Issued.DateParts) == 0 || len(w.Issued.DateParts[0]) == 0 {
		return 0
	}
	return w.Issued.DateParts[0][0]
}

// workAuthors extracts ordered author names and affiliation lists.
// Given+family name parts are preferred, then the literal name, then the
// missing-author sentinel so the affiliation alignment survives.
func (w crossrefWork) workAuthors() ([]string, [][]string) {
	var names []string
	var affiliations [][]string
	for _, a := range w.Author {
		var parts []string
		for _, p := range []string{a.Given, a.Family} {
			if p != "" {
				parts = append(parts, p)
			}
		}
		name := collapseSpace(strings.Join(parts, " "))
		if name == "" {
			name = collapseSpace(a.Name)
		}
		if name == "" {
			name = missingAuthor
		}

		var affs []string
		for _, aff := range a.Affiliation {
			if n := collapseSpace(aff.Name); n != "" {
				affs = append(affs, n)
			}
		}
		names = append(names, name)
		affiliations = append(affiliations, affs)
	}
	return names, affiliations
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Crossref API JSON structures.
type crossrefResponse struct {
	Message crossrefMessage `json:"message"`
}

type crossrefMessage struct {
	Items []crossrefWork `json:"items"`
}

type crossrefWork struct {
	Title          []string          `json:"title"`
	DOI            string            `json:"DOI"`
	ContainerTitle []string          `json:"container-title"`
	Author         []crossrefAuthor  `json:"author"`
	Issued         crossrefDateParts `json:"issued"`
}

type crossrefAuthor struct {
	Given       string                `json:"given"`
	Family      string                `json:"family"`
	Name        string                `json:"name"`
	Affiliation []crossrefAffiliation `json:"affiliation"`
}

type crossrefAffiliation struct {
	Name string `json:"name"`
}

type crossrefDateParts struct {
	DateParts [][]int `json:"date-parts"`
}
