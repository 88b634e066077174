package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/citetrack/internal/enrich"
	"github.com/pdiddy/citetrack/internal/fetch"
	"github.com/pdiddy/citetrack/internal/httputil"
	"github.com/pdiddy/citetrack/internal/reconcile"
	"github.com/pdiddy/citetrack/internal/report"
	"github.com/pdiddy/citetrack/internal/store"
	"github.com/pdiddy/citetrack/pkg/types"
)

const (
	defaultTimeout = 30 * time.Second

	// browserUserAgent is sent to Google Scholar, which serves the result
	// pages only to browser-looking clients.
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// apiUserAgent identifies the tool to the bibliographic APIs.
	apiUserAgent = "citetrack/0.1"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Fetch, enrich, and filter citations of the target paper",
	Long: `Collect fetches the raw citation records for the target paper, enriches
them with author and affiliation metadata, drops self-citations by the
paper's own authors, and writes the CSV and Markdown summary.

Records already present in data/citations_raw.json are reused unless
--force-refresh is given. Enrichment lookups are cached, so reruns only
query titles the cache has not answered before.`,
	RunE: runCollect,
}

func init() {
	collectCmd.Flags().String("source", "scholar", "citation source: scholar or openalex")
	collectCmd.Flags().Bool("force-refresh", false, "refetch raw records even when the raw store is populated")
	collectCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 30s)")
	collectCmd.Flags().Int("year-from", 2016, "first year fetched as a per-year scope (Scholar only)")
	collectCmd.Flags().String("cache-backend", "json", "enrichment cache backend: json or sqlite")
	collectCmd.Flags().String("mailto", "", "contact email for the OpenAlex and Crossref polite pools")

	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, args []string) error {
	target, dataDir, reportsDir, err := loadTargetAndDirs(cmd)
	if err != nil {
		return err
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	source, _ := cmd.Flags().GetString("source")
	forceRefresh, _ := cmd.Flags().GetBool("force-refresh")
	yearFrom, _ := cmd.Flags().GetInt("year-from")
	cacheBackend, _ := cmd.Flags().GetString("cache-backend")
	mailto, _ := cmd.Flags().GetString("mailto")
	mailto = secretDefault("mailto", mailto)
	if mailto == "" {
		mailto = viper.GetString("mailto")
	}

	// Flags cover the common knobs; the tuning values below them come from
	// the config file when present.
	cfg := types.PipelineConfig{
		Fetch: types.FetchConfig{
			HTTPConfig:   types.HTTPConfig{Timeout: timeout},
			Source:       types.FetchSource(source),
			YearFrom:     yearFrom,
			PageDelayMin: viper.GetDuration("fetch.page_delay_min"),
			PageDelayMax: viper.GetDuration("fetch.page_delay_max"),
			CursorDelay:  viper.GetDuration("fetch.cursor_delay"),
			Mailto:       mailto,
		},
		Enrich: types.EnrichConfig{
			HTTPConfig:     types.HTTPConfig{Timeout: timeout, UserAgent: apiUserAgent},
			MatchThreshold: viper.GetFloat64("enrich.match_threshold"),
			QueryDelay:     800 * time.Millisecond,
			MaxCandidates:  viper.GetInt("enrich.max_candidates"),
			Mailto:         mailto,
		},
		Store: types.StoreConfig{
			DataDir:      dataDir,
			CacheBackend: types.CacheBackend(cacheBackend),
		},
		Report: types.ReportConfig{
			ReportsDir: reportsDir,
			TopN:       viper.GetInt("report.top_n"),
		},
	}
	if d := viper.GetDuration("enrich.query_delay"); d > 0 {
		cfg.Enrich.QueryDelay = d
	}

	rawPath := filepath.Join(cfg.Store.DataDir, "citations_raw.json")
	ctx := cmd.Context()

	// Raw fetch. A populated raw store short-circuits the OpenAlex fetch
	// unless a refresh is forced; Scholar is always refetched, its cost
	// sits in enrichment and that is cached separately.
	var fetcher fetch.Fetcher
	var records []types.Citation
	if !forceRefresh && cfg.Fetch.Source == types.SourceOpenAlex {
		records, err = store.LoadRaw(rawPath)
		if err != nil {
			return err
		}
		if len(records) > 0 {
			fmt.Fprintf(os.Stdout, "reusing %d raw records from %s\n", len(records), rawPath)
		}
	}
	if len(records) == 0 {
		var scopes []fetch.Scope
		fetcher, scopes, err = buildFetcher(target, cfg.Fetch)
		if err != nil {
			return err
		}
		records, err = fetch.CollectScopes(ctx, fetcher, scopes, os.Stdout)
		if err != nil {
			return err
		}
		if err := store.SaveRaw(rawPath, records); err != nil {
			return err
		}
	}

	// Enrichment. A source whose records arrive with author data attached
	// converts them directly; otherwise every title goes through the
	// cache-backed bibliographic lookup.
	var enriched []types.EnrichedCitation
	if pre, ok := fetcher.(fetch.PreEnriched); ok {
		enriched = pre.Enrich(records)
	} else {
		cache, err := store.Open(cfg.Store)
		if err != nil {
			return err
		}
		defer cache.Close()

		enricher := &enrich.Enricher{
			Crossref: &enrich.CrossrefClient{
				Client: httputil.NewClient(timeout, crossrefUserAgent(mailto), cfg.Enrich.QueryDelay),
				Cfg:    cfg.Enrich,
			},
			Cache: cache,
			Cfg:   cfg.Enrich,
		}
		enriched, err = enricher.EnrichAll(ctx, records, os.Stdout)
		if err != nil {
			return err
		}
	}

	// Self-citation filter and output.
	deny := reconcile.NewDenylist(target.OriginalAuthors)
	filtered := reconcile.FilterSelfCitations(enriched, deny)
	fmt.Fprintf(os.Stdout, "filtered %d self-citations, %d records remain\n",
		len(enriched)-len(filtered), len(filtered))

	rows := report.BuildRows(filtered)
	csvPath := filepath.Join(cfg.Store.DataDir, "citations.csv")
	if err := report.WriteCSV(csvPath, rows); err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Report.ReportsDir, 0o755); err != nil {
		return fmt.Errorf("creating reports directory: %w", err)
	}
	stats := report.ComputeStats(rows, len(records), cfg.Report.TopN)
	summaryPath := filepath.Join(cfg.Report.ReportsDir, "citations_summary.md")
	if err := os.WriteFile(summaryPath, []byte(report.BuildSummary(stats)), 0o644); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}

	fmt.Fprintf(os.Stdout, "wrote %s and %s\n", csvPath, summaryPath)
	return nil
}

// buildFetcher selects the fetch strategy for the configured source and
// the scopes it should walk. Scholar is scraped per year plus an all-time
// fallback pass; OpenAlex paginates one unbounded pass.
func buildFetcher(target *types.TargetPaper, cfg types.FetchConfig) (fetch.Fetcher, []fetch.Scope, error) {
	switch cfg.Source {
	case types.SourceScholar, "":
		if target.ClusterID == "" {
			return nil, nil, fmt.Errorf("scholar source needs a cluster_id in the target file")
		}
		f := &fetch.ScholarFetcher{
			Client:    httputil.NewClient(cfg.Timeout, browserUserAgent, 0),
			ClusterID: target.ClusterID,
			Cfg:       cfg,
		}
		yearFrom := cfg.YearFrom
		if yearFrom <= 0 {
			yearFrom = 2016
		}
		return f, fetch.YearScopes(yearFrom, time.Now().Year()), nil

	case types.SourceOpenAlex:
		if target.DOI == "" {
			return nil, nil, fmt.Errorf("openalex source needs a doi in the target file")
		}
		f := &fetch.OpenAlexFetcher{
			Client: httputil.NewClient(cfg.Timeout, apiUserAgent, 0),
			DOI:    target.DOI,
			Cfg:    cfg,
		}
		return f, []fetch.Scope{{}}, nil

	default:
		return nil, nil, fmt.Errorf("unknown source %q (want scholar or openalex)", cfg.Source)
	}
}

// crossrefUserAgent appends the polite-pool mailto to the API User-Agent.
func crossrefUserAgent(mailto string) string {
	if mailto == "" {
		return apiUserAgent
	}
	return fmt.Sprintf("%s (mailto:%s)", apiUserAgent, mailto)
}

// loadTargetAndDirs resolves the persistent flags shared by collect and
// report and loads the target file.
func loadTargetAndDirs(cmd *cobra.Command) (*types.TargetPaper, string, string, error) {
	targetPath, _ := cmd.Flags().GetString("target")
	dataDir, _ := cmd.Flags().GetString("data-dir")
	reportsDir, _ := cmd.Flags().GetString("reports-dir")

	target, err := types.LoadTarget(targetPath)
	if err != nil {
		return nil, "", "", err
	}
	return target, dataDir, reportsDir, nil
}
