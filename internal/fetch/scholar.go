// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/citetrack/internal/httputil"
	"github.com/pdiddy/citetrack/pkg/types"
)

// scholarBase is the Google Scholar search endpoint. Declared as a var
// so tests can substitute an httptest server.
var scholarBase = "https://scholar.google.com/scholar"

// ScholarFetcher scrapes the paginated "cited by" listing for a cluster
// id. Scholar serves plain HTML but watches for automated access, so the
// fetcher sends a browser User-Agent and pauses a randomized interval
// between result pages.
type ScholarFetcher struct {
	Client    *httputil.Client
	ClusterID string
	Cfg       types.FetchConfig
}

// Name returns the source identifier.
func (f *ScholarFetcher) Name() string { return "scholar" }

// Fetch walks the result pages for one scope until the page comes back
// empty or the total-count hint from the first page is reached. A failed
// first page fails the scope; a failed later page is abandoned along
// with the remainder of the scope, keeping what was already collected.
func (f *ScholarFetcher) Fetch(ctx context.Context, scope Scope) ([]types.Citation, error) {
	perPage := f.Cfg.ResultsPerPage
	if perPage <= 0 {
		perPage = 10
	}

	var collected []types.Citation
	start := 0
	totalExpected := 0

	for {
		records, total, err := f.fetchPage(ctx, scope, start, perPage)
		if err != nil {
			if start == 0 {
				return nil, err
			}
			break
		}
		if totalExpected == 0 && total > 0 {
			totalExpected = total
		}
		if len(records) == 0 {
			break
		}

		collected = append(collected, records...)
		start += perPage

		if totalExpected > 0 && start >= totalExpected {
			break
		}
		if err := sleepContext(ctx, f.pageDelay()); err != nil {
			return collected, err
		}
	}
	return collected, nil
}

// pageDelay picks a randomized pause within the configured bounds.
func (f *ScholarFetcher) pageDelay() time.Duration {
	min, max := f.Cfg.PageDelayMin, f.Cfg.PageDelayMax
	if min <= 0 {
		min = 4 * time.Second
	}
	if max <= min {
		max = min + 2500*time.Millisecond
	}
	return min + time.Duration(rand.Int63n(int64(max-min)))
}

// fetchPage retrieves and parses one results page. The total-expected
// hint is only present on the first page (#gs_ab_md); later pages return
// total 0. Individually malformed entries are skipped.
func (f *ScholarFetcher) fetchPage(ctx context.Context, scope Scope, start, perPage int) ([]types.Citation, int, error) {
	params := url.Values{
		"oi":     {"bibs"},
		"hl":     {"en"},
		"as_sdt": {"5"},
		"cites":  {f.ClusterID},
		"start":  {strconv.Itoa(start)},
	}
	if scope.Year != 0 {
		params.Set("as_ylo", strconv.Itoa(scope.Year))
		params.Set("as_yhi", strconv.Itoa(scope.Year))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, scholarBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("Scholar request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("Scholar returned HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("parsing Scholar page: %w", err)
	}

	total := 0
	if start == 0 {
		total = parseTotalHint(doc.Find("#gs_ab_md").Text())
	}

	var records []types.Citation
	doc.Find("div.gs_r.gs_or.gs_scl").Each(func(_ int, sel *goquery.Selection) {
		title := normalizeSpace(sel.Find("h3.gs_rt").Text())
		if title == "" {
			return
		}
		byline := normalizeSpace(sel.Find(".gs_a").Text())

		records = append(records, types.Citation{
			Title:            title,
			URL:              sel.Find("h3.gs_rt a").AttrOr("href", ""),
			AuthorsRaw:       byline,
			Snippet:          normalizeSpace(sel.Find(".gs_rs").Text()),
			Year:             extractYear(byline),
			ClusterID:        sel.AttrOr("data-cid", ""),
			PageIndex:        start / perPage,
			Authors:          parseByline(byline),
			AuthorsTruncated: bylineTruncated(byline),
		})
	})

	return records, total, nil
}

var digitRuns = regexp.MustCompile(`\d+`)

// parseTotalHint extracts the result count from the "About N results"
// summary line. The parenthesized timing segment ("(0.05 sec)") is cut
// off first so its digits cannot shadow a small count; group separators
// in large counts are removed. The largest remaining number wins.
func parseTotalHint(summary string) int {
	if i := strings.Index(summary, "("); i >= 0 {
		summary = summary[:i]
	}
	summary = strings.ReplaceAll(summary, ",", "")
	best := 0
	for _, run := range digitRuns.FindAllString(normalizeSpace(summary), -1) {
		if n, err := strconv.Atoi(run); err == nil && n > best {
			best = n
		}
	}
	return best
}
