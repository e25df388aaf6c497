// Package store manages the flat JSON artifacts the pipeline reads and
// writes. All state lives in whole-file snapshots under a single data root;
// every successful run overwrites its outputs, so repeated runs are
// idempotent for identical inputs.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrArtifactMissing reports that a required artifact has not been produced
// yet. Callers surface it with the command that creates the artifact.
var ErrArtifactMissing = errors.New("artifact missing")

// Standard artifact file names.
const (
	ProcessedPacksFile      = "packs.json"
	ProcessedItemsFile      = "items.json"
	ProcessedValuationsFile = "valuations.json"
	SitePacksFile           = "packs.json"
	SiteItemsFile           = "items.json"
	SiteReferencesFile      = "reference_packs.json"
	SiteAnalysisOverallFile = "analysis_overall.json"
	SiteAnalysisCategory    = "analysis_by_category.json"
	SiteValidationFile      = "validation_report.json"
	SitePresetsFile         = "planner_presets.json"
)

// Store resolves artifact paths under one data root and handles JSON I/O.
type Store struct {
	Root string
}

// New creates a Store rooted at dir.
func New(dir string) *Store {
	return &Store{Root: dir}
}

// RawDir is where raw tabular input files live.
func (s *Store) RawDir() string { return filepath.Join(s.Root, "data_raw") }

// ProcessedDir holds intermediate full-fidelity exports.
func (s *Store) ProcessedDir() string { return filepath.Join(s.Root, "data_processed") }

// ImagesDir holds item icons extracted from spreadsheets.
func (s *Store) ImagesDir() string { return filepath.Join(s.Root, "images_processed") }

// SiteDir holds the flattened site-facing exports.
func (s *Store) SiteDir() string { return filepath.Join(s.Root, "site_data") }

// ReviewDir holds OCR review files.
func (s *Store) ReviewDir() string { return filepath.Join(s.Root, "data_review") }

// HistoryDir holds timestamped snapshots of site data.
func (s *Store) HistoryDir() string { return filepath.Join(s.Root, "history") }

// KnowledgeDir holds scraped knowledge entities and item links.
func (s *Store) KnowledgeDir() string { return filepath.Join(s.Root, "knowledge") }

// ProcessedPath returns the path of a processed artifact by file name.
func (s *Store) ProcessedPath(name string) string {
	return filepath.Join(s.ProcessedDir(), name)
}

// SitePath returns the path of a site artifact by file name.
func (s *Store) SitePath(name string) string {
	return filepath.Join(s.SiteDir(), name)
}

// SaveJSON writes v as indented JSON, creating parent directories as needed.
func SaveJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// LoadJSON reads a JSON file into v.
func LoadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

// LoadArtifact reads a required artifact into v. When the file does not
// exist the error wraps ErrArtifactMissing and names the command that
// produces the artifact, so the failure is actionable for the user.
func LoadArtifact(path string, v any, producedBy string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s (run %q first)", ErrArtifactMissing, path, producedBy)
	}
	return LoadJSON(path, v)
}
