// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists the raw citation records and the enrichment
// cache. The cache is a key-value interface so the flat JSON file and the
// SQLite database are interchangeable behind the same calls.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/citetrack/pkg/types"
)

// KV is the enrichment cache contract: get, put, flush. Entries never
// expire; a stale match for a changed title is never invalidated.
// Implementations are not safe for concurrent writers.
type KV interface {
	// Get returns the stored value for key and whether it was present.
	Get(key string) (json.RawMessage, bool, error)

	// Put stores value under key, replacing any existing entry.
	Put(key string, value json.RawMessage) error

	// Flush persists pending writes. File-backed stores rewrite the
	// whole document here; database stores treat it as a no-op.
	Flush() error

	// Close releases underlying resources after a final Flush.
	Close() error
}

// Open returns the cache backend selected by cfg, rooted in cfg.DataDir.
func Open(cfg types.StoreConfig) (KV, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	switch cfg.CacheBackend {
	case types.CacheSQLite:
		return OpenSQLite(filepath.Join(cfg.DataDir, "enrich_cache.db"))
	case types.CacheJSON, "":
		return OpenJSONFile(filepath.Join(cfg.DataDir, "enrich_cache.json"))
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
}

// JSONFile is a KV backed by a single JSON document, read and written
// wholesale. A missing or corrupt file loads as an empty mapping.
type JSONFile struct {
	path    string
	entries map[string]json.RawMessage
}

// OpenJSONFile loads the cache file at path.
func OpenJSONFile(path string) (*JSONFile, error) {
	s := &JSONFile{path: path, entries: make(map[string]json.RawMessage)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading cache file: %w", err)
	}
	// Corrupt content yields an empty cache rather than failing the run.
	if err := json.Unmarshal(data, &s.entries); err != nil {
		s.entries = make(map[string]json.RawMessage)
	}
	return s, nil
}

func (s *JSONFile) Get(key string) (json.RawMessage, bool, error) {
	v, ok := s.entries[key]
	return v, ok, nil
}

func (s *JSONFile) Put(key string, value json.RawMessage) error {
	s.entries[key] = value
	return nil
}

func (s *JSONFile) Flush() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling cache: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}
	return nil
}

func (s *JSONFile) Close() error {
	return s.Flush()
}

// LoadRaw reads the raw citation store from path. A missing or corrupt
// file yields an empty slice; individually malformed entries are skipped.
func LoadRaw(path string) ([]types.Citation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading raw store: %w", err)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, nil
	}

	var records []types.Citation
	for _, item := range items {
		var c types.Citation
		if err := json.Unmarshal(item, &c); err != nil {
			continue
		}
		records = append(records, c)
	}
	return records, nil
}

// SaveRaw writes the raw citation store to path as an indented JSON array.
func SaveRaw(path string, records []types.Citation) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling raw records: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing raw store: %w", err)
	}
	return nil
}
