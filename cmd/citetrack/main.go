// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the citetrack CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/citetrack/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the citetrack CLI.
var rootCmd = &cobra.Command{
	Use:   "citetrack",
	Short: "Track citations of a paper across Scholar and OpenAlex",
	Long: `citetrack collects the papers citing a tracked publication, enriches them
with author and affiliation metadata, filters out self-citations, and writes
CSV, Markdown, and HTML reports.

The pipeline runs as two subcommands: collect fetches and enriches citation
records, report renders the HTML views from the collected data. The tracked
paper is described in a target file (default target.yaml).`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./citetrack.yaml or ~/.config/citetrack/config.yaml)")
	rootCmd.PersistentFlags().String("target", "target.yaml", "target paper description file")
	rootCmd.PersistentFlags().String("data-dir", "data", "directory for raw records, CSV, and the enrichment cache")
	rootCmd.PersistentFlags().String("reports-dir", "reports", "directory for Markdown and HTML reports")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("citetrack")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "citetrack"))
		}
	}

	viper.SetEnvPrefix("CITETRACK")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
