// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FetchSource selects the citation discovery source.
type FetchSource string

const (
	SourceScholar  FetchSource = "scholar"
	SourceOpenAlex FetchSource = "openalex"
)

// FetchConfig holds settings for the fetch stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// Source selects the fetch strategy: scholar or openalex.
	Source FetchSource `json:"source" yaml:"source"`

	// ResultsPerPage is the Scholar page size used to advance the start
	// offset (default 10).
	ResultsPerPage int `json:"results_per_page" yaml:"results_per_page"`

	// PageDelayMin and PageDelayMax bound the randomized pause between
	// Scholar result pages (defaults 4s and 6.5s).
	PageDelayMin time.Duration `json:"page_delay_min" yaml:"page_delay_min"`
	PageDelayMax time.Duration `json:"page_delay_max" yaml:"page_delay_max"`

	// YearFrom is the first year scraped as a per-year scope (default
	// 2016); scopes run through the current year, then an all-time
	// fallback pass.
	YearFrom int `json:"year_from" yaml:"year_from"`

	// CursorDelay is the pause between OpenAlex cursor pages (default 200ms).
	CursorDelay time.Duration `json:"cursor_delay" yaml:"cursor_delay"`

	// Mailto is sent to OpenAlex for polite pool access.
	Mailto string `json:"mailto,omitempty" yaml:"mailto,omitempty"`
}

// EnrichConfig holds settings for the enrichment stage.
type EnrichConfig struct {
	HTTPConfig `yaml:",inline"`

	// MatchThreshold is the minimum title-similarity score accepted as a
	// match (default 0.6). A score equal to the threshold is accepted.
	MatchThreshold float64 `json:"match_threshold" yaml:"match_threshold"`

	// QueryDelay is the blocking pause after every live bibliographic
	// query (default 800ms). Cache hits are not delayed.
	QueryDelay time.Duration `json:"query_delay" yaml:"query_delay"`

	// MaxCandidates is how many candidate works to score per query (default 5).
	MaxCandidates int `json:"max_candidates" yaml:"max_candidates"`

	// Mailto is appended to the Crossref User-Agent for the polite pool.
	Mailto string `json:"mailto,omitempty" yaml:"mailto,omitempty"`
}

// CacheBackend selects the enrichment cache implementation.
type CacheBackend string

const (
	CacheJSON   CacheBackend = "json"
	CacheSQLite CacheBackend = "sqlite"
)

// StoreConfig holds settings for the raw store and enrichment cache.
type StoreConfig struct {
	// DataDir holds citations_raw.json, citations.csv, and the cache.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// CacheBackend selects json (flat file) or sqlite.
	CacheBackend CacheBackend `json:"cache_backend" yaml:"cache_backend"`
}

// ReportConfig holds settings for the report stage.
type ReportConfig struct {
	// ReportsDir holds the Markdown summary and HTML reports.
	ReportsDir string `json:"reports_dir" yaml:"reports_dir"`

	// TopN is the list length for top-affiliation/top-author tables (default 10).
	TopN int `json:"top_n" yaml:"top_n"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Fetch  FetchConfig  `json:"fetch" yaml:"fetch"`
	Enrich EnrichConfig `json:"enrich" yaml:"enrich"`
	Store  StoreConfig  `json:"store" yaml:"store"`
	Report ReportConfig `json:"report" yaml:"report"`
}
