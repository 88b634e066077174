package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citetrack/internal/report"
	"github.com/pdiddy/citetrack/internal/store"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render HTML reports from the collected citation data",
	Long: `Report reads the collected CSV and raw store and renders two HTML views:
a citation listing with summary statistics and a per-author index of citing
articles. Run collect first; report never touches the network.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().Int("top-n", 10, "list length for the top-affiliation and top-author tables")

	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	target, dataDir, reportsDir, err := loadTargetAndDirs(cmd)
	if err != nil {
		return err
	}
	topN, _ := cmd.Flags().GetInt("top-n")

	csvPath := filepath.Join(dataDir, "citations.csv")
	rows, err := report.ReadCSV(csvPath)
	if err != nil {
		return fmt.Errorf("no collected data at %s (run collect first): %w", csvPath, err)
	}

	raw, err := store.LoadRaw(filepath.Join(dataDir, "citations_raw.json"))
	if err != nil {
		return err
	}

	if err := os.MkdirAll(reportsDir, 0o755); err != nil {
		return fmt.Errorf("creating reports directory: %w", err)
	}

	stats := report.ComputeStats(rows, len(raw), topN)
	now := time.Now()

	citationsPath := filepath.Join(reportsDir, "citation_report.html")
	if err := report.WriteCitationReport(citationsPath, target.Title, rows, stats, now); err != nil {
		return err
	}
	authorsPath := filepath.Join(reportsDir, "author_report.html")
	if err := report.WriteAuthorReport(authorsPath, target.Title, rows, now); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "wrote %s and %s\n", citationsPath, authorsPath)
	return nil
}
