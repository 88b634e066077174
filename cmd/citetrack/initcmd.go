package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citetrack/pkg/types"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter target file to fill in",
	Long: `Init scaffolds the target file describing the tracked paper: title, DOI,
Scholar cluster id, and the author name variants used by the self-citation
filter. An existing target file is left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("target")
		if err := scaffoldTarget(path); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "wrote %s, fill in the tracked paper's details\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

// scaffoldTarget writes a template target file, refusing to clobber an
// existing one.
func scaffoldTarget(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	} else if !os.IsNotExist(err) {
		return err
	}
	return types.SaveTarget(path, &types.TargetPaper{
		Title:           "The Tracked Paper",
		DOI:             "10.1234/example",
		ClusterID:       "1234567890123456789",
		OriginalAuthors: []string{"John Smith", "J. Smith"},
	})
}
