// Package artifacts caches crawl and processing results as JSON files so
// setup can resume from the expensive stages instead of redoing them.
package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"iitubot/config"
	"iitubot/models"
)

// Store reads and writes the JSON artifact files under the data directory.
type Store struct {
	dataDir       string
	rawFile       string
	processedFile string
}

// New builds a store from storage configuration.
func New(cfg config.StorageConfig) *Store {
	return &Store{
		dataDir:       cfg.DataDir,
		rawFile:       cfg.RawFile,
		processedFile: cfg.ProcessedFile,
	}
}

// RawPath is the location of the crawled-pages artifact.
func (s *Store) RawPath() string { return filepath.Join(s.dataDir, s.rawFile) }

// ProcessedPath is the location of the processed-pages artifact.
func (s *Store) ProcessedPath() string { return filepath.Join(s.dataDir, s.processedFile) }

// SaveRaw writes the crawled pages artifact.
func (s *Store) SaveRaw(pages []models.PageRecord) error {
	return s.write(s.RawPath(), pages)
}

// LoadRaw reads the crawled pages artifact. A missing file returns
// (nil, false, nil): absence is a normal state, not an error.
func (s *Store) LoadRaw() ([]models.PageRecord, bool, error) {
	var pages []models.PageRecord
	ok, err := s.read(s.RawPath(), &pages)
	return pages, ok, err
}

// SaveProcessed writes the processed pages artifact.
func (s *Store) SaveProcessed(pages []models.ProcessedPage) error {
	return s.write(s.ProcessedPath(), pages)
}

// LoadProcessed reads the processed pages artifact. A missing file returns
// (nil, false, nil).
func (s *Store) LoadProcessed() ([]models.ProcessedPage, bool, error) {
	var pages []models.ProcessedPage
	ok, err := s.read(s.ProcessedPath(), &pages)
	return pages, ok, err
}

// Clear removes both artifacts. Missing files are ignored.
func (s *Store) Clear() error {
	for _, path := range []string{s.RawPath(), s.ProcessedPath()} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", path, err)
		}
	}
	return nil
}

func (s *Store) write(path string, v interface{}) error {
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func (s *Store) read(path string, v interface{}) (bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decoding %s: %w", path, err)
	}
	return true, nil
}
