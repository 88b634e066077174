// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// TargetPaper describes the paper whose citations are being tracked.
// It replaces the hard-coded endpoint and denylist constants: the target
// file is explicit input, so components stay testable without globals.
type TargetPaper struct {
	// Title is the paper title, used in report headings.
	Title string `yaml:"title"`

	// DOI is the bare DOI used to resolve the work on OpenAlex.
	DOI string `yaml:"doi"`

	// ClusterID is the Google Scholar cluster identifier whose cites
	// listing is scraped.
	ClusterID string `yaml:"cluster_id"`

	// OriginalAuthors lists name variants of the paper's own authors.
	// Records citing the paper that share any of these names (after
	// normalization) are dropped as self-citations.
	OriginalAuthors []string `yaml:"original_authors"`
}

// LoadTarget reads a TargetPaper from a YAML file.
func LoadTarget(path string) (*TargetPaper, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading target file: %w", err)
	}
	var t TargetPaper
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing target file: %w", err)
	}
	if t.DOI == "" && t.ClusterID == "" {
		return nil, fmt.Errorf("target file %s: need a doi or a cluster_id", path)
	}
	return &t, nil
}

// SaveTarget writes a TargetPaper to a YAML file.
func SaveTarget(path string, t *TargetPaper) error {
	data, err := yaml.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshaling target: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
