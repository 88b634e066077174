// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/pdiddy/citetrack/internal/httputil"
	"github.com/pdiddy/citetrack/pkg/types"
)

const sampleCrossrefJSON = `{
  "message": {
    "items": [
      {
        "title": ["Test Paper: An Empirical Study"],
        "DOI": "10.1234/Test.001",
        "container-title": ["Journal of Testing"],
        "author": [
          {"given": "John", "family": "Smith",
           "affiliation": [{"name": "University of Somewhere"}]},
          {"name": "Research Consortium", "affiliation": []},
          {"affiliation": [{"name": "Orphan Lab"}]}
        ],
        "issued": {"date-parts": [[2021, 3]]}
      },
      {
        "title": [],
        "DOI": "10.1234/untitled",
        "author": []
      }
    ]
  }
}`

func swapCrossrefBase(t *testing.T, url string) {
	t.Helper()
	old := crossrefBase
	crossrefBase = url
	t.Cleanup(func() { crossrefBase = old })
}

func newTestCrossref(t *testing.T, handler http.HandlerFunc) *CrossrefClient {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	swapCrossrefBase(t, ts.URL)
	return &CrossrefClient{
		Client: httputil.NewClient(5*time.Second, "test-agent", 0),
		Cfg:    types.EnrichConfig{},
	}
}

func TestCrossrefQuery(t *testing.T) {
	c := newTestCrossref(t, func(w http.ResponseWriter, r *http.Request) {
		if q := r.URL.Query().Get("query.bibliographic"); q != "Test Paper" {
			t.Errorf("query.bibliographic = %q", q)
		}
		if rows := r.URL.Query().Get("rows"); rows != "5" {
			t.Errorf("rows = %q, want default 5", rows)
		}
		fmt.Fprint(w, sampleCrossrefJSON)
	})

	items, err := c.Query(context.Background(), "Test Paper")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}

	w0 := items[0]
	if w0.workTitle() != "Test Paper: An Empirical Study" {
		t.Errorf("workTitle = %q", w0.workTitle())
	}
	if w0.workVenue() != "Journal of Testing" {
		t.Errorf("workVenue = %q", w0.workVenue())
	}
	if w0.workYear() != 2021 {
		t.Errorf("workYear = %d", w0.workYear())
	}

	names, affs := w0.workAuthors()
	wantNames := []string{"John Smith", "Research Consortium", "missing"}
	if !reflect.DeepEqual(names, wantNames) {
		t.Errorf("names = %v, want %v", names, wantNames)
	}
	if len(affs) != 3 || affs[0][0] != "University of Somewhere" {
		t.Errorf("affs = %v", affs)
	}
	// The nameless author keeps its affiliation slot aligned.
	if affs[2][0] != "Orphan Lab" {
		t.Errorf("affs[2] = %v, want Orphan Lab", affs[2])
	}

	w1 := items[1]
	if w1.workTitle() != "" || w1.workVenue() != "" || w1.workYear() != 0 {
		t.Errorf("empty-field accessors: %q %q %d", w1.workTitle(), w1.workVenue(), w1.workYear())
	}
}

func TestCrossrefQueryMaxCandidates(t *testing.T) {
	c := newTestCrossref(t, func(w http.ResponseWriter, r *http.Request) {
		if rows := r.URL.Query().Get("rows"); rows != "3" {
			t.Errorf("rows = %q, want 3", rows)
		}
		fmt.Fprint(w, `{"message": {"items": []}}`)
	})
	c.Cfg.MaxCandidates = 3

	if _, err := c.Query(context.Background(), "anything"); err != nil {
		t.Fatalf("Query: %v", err)
	}
}

func TestCrossrefQueryHTTPError(t *testing.T) {
	c := newTestCrossref(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	if _, err := c.Query(context.Background(), "anything"); err == nil {
		t.Fatal("expected an error on HTTP 503")
	}
}
