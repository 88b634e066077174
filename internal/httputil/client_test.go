// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDoSetsUserAgent(t *testing.T) {
	var gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer ts.Close()

	c := NewClient(5*time.Second, "citetrack-test/1.0", 0)
	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	resp.Body.Close()

	if gotUA != "citetrack-test/1.0" {
		t.Errorf("User-Agent = %q", gotUA)
	}
}

func TestThrottleSpacesRequests(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer ts.Close()

	c := NewClient(5*time.Second, "test", 40*time.Millisecond)
	start := time.Now()
	for i := 0; i < 3; i++ {
		req, _ := http.NewRequest(http.MethodGet, ts.URL, nil)
		resp, err := c.Do(req)
		if err != nil {
			t.Fatalf("Do: %v", err)
		}
		resp.Body.Close()
	}
	// First request is immediate; the next two wait one interval each.
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("3 requests took %v, want at least 80ms", elapsed)
	}
}

func TestThrottleHonorsCancellation(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer ts.Close()

	c := NewClient(5*time.Second, "test", time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	// Consume the initial token.
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL, nil)
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	resp.Body.Close()

	cancel()
	req, _ = http.NewRequestWithContext(ctx, http.MethodGet, ts.URL, nil)
	if _, err := c.Do(req); err == nil {
		t.Fatal("expected the throttle wait to fail on a cancelled context")
	}
}

func TestGetJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"name": "ok", "count": 3}`)
	}))
	defer ts.Close()

	c := NewClient(5*time.Second, "test", 0)
	req, _ := http.NewRequest(http.MethodGet, ts.URL, nil)

	var v struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	if err := c.GetJSON(req, &v); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if v.Name != "ok" || v.Count != 3 {
		t.Errorf("decoded %+v", v)
	}
}

func TestGetJSONNon200(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	c := NewClient(5*time.Second, "test", 0)
	req, _ := http.NewRequest(http.MethodGet, ts.URL, nil)

	var v map[string]any
	err := c.GetJSON(req, &v)
	if err == nil {
		t.Fatal("expected an error on HTTP 403")
	}
}

func TestGetJSONBadBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "not json at all")
	}))
	defer ts.Close()

	c := NewClient(5*time.Second, "test", 0)
	req, _ := http.NewRequest(http.MethodGet, ts.URL, nil)

	var v map[string]any
	if err := c.GetJSON(req, &v); err == nil {
		t.Fatal("expected a decode error")
	}
}
