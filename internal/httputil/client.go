// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Client wraps an http.Client with a User-Agent and a blocking
// fixed-interval throttle. Third-party bibliographic APIs expect polite
// pacing rather than burst traffic, so every request waits its turn on
// the limiter before going out. The throttle is non-adaptive: no backoff,
// no retry.
type Client struct {
	HTTP      *http.Client
	UserAgent string
	limiter   *rate.Limiter
}

// NewClient builds a Client with the given timeout and User-Agent. When
// interval > 0, consecutive requests are spaced at least interval apart.
func NewClient(timeout time.Duration, userAgent string, interval time.Duration) *Client {
	c := &Client{
		HTTP:      &http.Client{Timeout: timeout},
		UserAgent: userAgent,
	}
	if interval > 0 {
		c.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
	return c
}

// Do sends the request after setting the User-Agent and waiting on the
// throttle. The caller owns the response body.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}
	return c.HTTP.Do(req)
}

// GetJSON issues a GET and decodes the JSON response body into v.
// Non-200 statuses are errors.
func (c *Client) GetJSON(req *http.Request, v any) error {
	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, req.URL.Host)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("parsing response from %s: %w", req.URL.Host, err)
	}
	return nil
}
