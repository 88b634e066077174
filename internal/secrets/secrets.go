// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads contact addresses and API keys from a directory
// of flat files. Each file name is the key, the trimmed file content is
// the value (e.g. .secrets/crossref-mailto, .secrets/openalex-mailto).
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Load reads every regular file in dir into a map. A missing directory
// yields an empty map. Dotfiles, subdirectories, and empty files are
// skipped; unreadable files are skipped with a warning on stderr.
func Load(dir string) (map[string]string, error) {
	secrets := make(map[string]string)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return secrets, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: skipping secret %s: %v\n", name, err)
			continue
		}
		value := strings.TrimSpace(string(data))
		if value == "" {
			continue
		}
		secrets[name] = value
	}
	return secrets, nil
}
