// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pdiddy/citetrack/internal/httputil"
	"github.com/pdiddy/citetrack/pkg/types"
)

const scholarPageOne = `<!DOCTYPE html>
<html><body>
<div id="gs_ab_md">About 3 results (0.05 sec)</div>
<div class="gs_r gs_or gs_scl" data-cid="abc123">
  <h3 class="gs_rt"><a href="https://example.org/paper-a">Paper A: a study</a></h3>
  <div class="gs_a">J Smith, A Jones - Journal of Things, 2021 - publisher.com</div>
  <div class="gs_rs">We study the thing in depth and report results.</div>
</div>
<div class="gs_r gs_or gs_scl" data-cid="def456">
  <h3 class="gs_rt"><a href="https://example.org/paper-b">Paper B</a></h3>
  <div class="gs_a">P Miller, … - Proc. Conf., 2020</div>
  <div class="gs_rs">Snippet for paper B.</div>
</div>
<div class="gs_r gs_or gs_scl">
  <h3 class="gs_rt"></h3>
  <div class="gs_a">malformed entry with no title</div>
</div>
</body></html>`

const scholarPageTwo = `<!DOCTYPE html>
<html><body>
<div class="gs_r gs_or gs_scl" data-cid="ghi789">
  <h3 class="gs_rt"><a href="https://example.org/paper-c">Paper C</a></h3>
  <div class="gs_a">K Chen - 2019</div>
</div>
</body></html>`

const scholarEmptyPage = `<!DOCTYPE html><html><body></body></html>`

// fastCfg keeps the inter-page pause negligible in tests.
func fastCfg() types.FetchConfig {
	return types.FetchConfig{
		ResultsPerPage: 2,
		PageDelayMin:   time.Millisecond,
		PageDelayMax:   2 * time.Millisecond,
	}
}

func swapScholarBase(t *testing.T, url string) {
	t.Helper()
	old := scholarBase
	scholarBase = url
	t.Cleanup(func() { scholarBase = old })
}

func TestScholarFetchPaginates(t *testing.T) {
	pages := map[string]string{
		"0": scholarPageOne,
		"2": scholarPageTwo,
		"4": scholarEmptyPage,
	}
	var requested []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := r.URL.Query().Get("start")
		requested = append(requested, start)
		if r.URL.Query().Get("cites") != "cluster42" {
			t.Errorf("cites = %q, want cluster42", r.URL.Query().Get("cites"))
		}
		fmt.Fprint(w, pages[start])
	}))
	defer ts.Close()
	swapScholarBase(t, ts.URL)

	f := &ScholarFetcher{
		Client:    httputil.NewClient(5*time.Second, "test-agent", 0),
		ClusterID: "cluster42",
		Cfg:       fastCfg(),
	}
	got, err := f.Fetch(context.Background(), Scope{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	// Three parseable records across two pages; the titleless entry is skipped.
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3: %+v", len(got), got)
	}

	r0 := got[0]
	if r0.Title != "Paper A: a study" {
		t.Errorf("Title = %q", r0.Title)
	}
	if r0.URL != "https://example.org/paper-a" {
		t.Errorf("URL = %q", r0.URL)
	}
	if r0.ClusterID != "abc123" {
		t.Errorf("ClusterID = %q", r0.ClusterID)
	}
	if r0.Year != 2021 {
		t.Errorf("Year = %d, want 2021", r0.Year)
	}
	if len(r0.Authors) != 2 || r0.Authors[0] != "J Smith" || r0.Authors[1] != "A Jones" {
		t.Errorf("Authors = %v", r0.Authors)
	}
	if r0.AuthorsTruncated {
		t.Error("paper A byline is not truncated")
	}

	if !got[1].AuthorsTruncated {
		t.Error("paper B byline carries an ellipsis, should be marked truncated")
	}
	if got[2].PageIndex != 1 {
		t.Errorf("PageIndex = %d, want 1 for the second page", got[2].PageIndex)
	}

	// The total hint (3) stops pagination after the second page.
	if len(requested) != 2 {
		t.Errorf("requests = %v, want starts 0 and 2", requested)
	}
}

func TestScholarFetchYearScope(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("as_ylo") != "2020" || q.Get("as_yhi") != "2020" {
			t.Errorf("year bounds = %q..%q, want 2020..2020", q.Get("as_ylo"), q.Get("as_yhi"))
		}
		fmt.Fprint(w, scholarEmptyPage)
	}))
	defer ts.Close()
	swapScholarBase(t, ts.URL)

	f := &ScholarFetcher{
		Client:    httputil.NewClient(5*time.Second, "test-agent", 0),
		ClusterID: "cluster42",
		Cfg:       fastCfg(),
	}
	got, err := f.Fetch(context.Background(), Scope{Year: 2020})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("empty page should yield no records, got %d", len(got))
	}
}

func TestScholarFetchFirstPageFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()
	swapScholarBase(t, ts.URL)

	f := &ScholarFetcher{
		Client:    httputil.NewClient(5*time.Second, "test-agent", 0),
		ClusterID: "cluster42",
		Cfg:       fastCfg(),
	}
	if _, err := f.Fetch(context.Background(), Scope{}); err == nil {
		t.Fatal("a failed first page must fail the scope")
	}
}

func TestScholarFetchLaterPageFailureKeepsCollected(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("start") == "0" {
			// No total hint: pagination continues until a page fails or
			// comes back empty.
			fmt.Fprint(w, `<html><body>
<div class="gs_r gs_or gs_scl" data-cid="abc">
  <h3 class="gs_rt"><a href="https://example.org/a">Paper A</a></h3>
  <div class="gs_a">J Smith - 2021</div>
</div>
<div class="gs_r gs_or gs_scl" data-cid="def">
  <h3 class="gs_rt"><a href="https://example.org/b">Paper B</a></h3>
  <div class="gs_a">A Jones - 2021</div>
</div>
</body></html>`)
			return
		}
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()
	swapScholarBase(t, ts.URL)

	f := &ScholarFetcher{
		Client:    httputil.NewClient(5*time.Second, "test-agent", 0),
		ClusterID: "cluster42",
		Cfg:       fastCfg(),
	}
	got, err := f.Fetch(context.Background(), Scope{})
	if err != nil {
		t.Fatalf("a failed later page should not fail the scope: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want the 2 records collected before the failure", len(got))
	}
}

func TestParseTotalHint(t *testing.T) {
	tests := []struct {
		summary string
		want    int
	}{
		{"About 123 results (0.05 sec)", 123},
		{"123 results", 123},
		{"About 1,234 results (0.07 sec)", 1234},
		// Counts smaller than the timing digits must not be shadowed.
		{"About 3 results (0.05 sec)", 3},
		{"About 7 results (0.12 sec)", 7},
		{"", 0},
		{"no digits here", 0},
	}
	for _, tt := range tests {
		if got := parseTotalHint(tt.summary); got != tt.want {
			t.Errorf("parseTotalHint(%q) = %d, want %d", tt.summary, got, tt.want)
		}
	}
}
