// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package watermark persists the identifier of the most recently processed
// paper, so the next run resumes strictly after it.
package watermark

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Store reads and writes the resume watermark. At most one identifier is
// retained; Save overwrites unconditionally.
type Store interface {
	// Load returns the last processed identifier. The second return is
	// false when no watermark exists yet (first-run semantics).
	Load() (string, bool, error)

	// Save records id as the newest processed identifier.
	Save(id string) error
}

// record is the on-disk shape.
type record struct {
	LatestPaperID string `json:"latest_paper_id"`
	LastUpdated   string `json:"last_updated"`

	// PaperIDs is a legacy shape that stored a newest-first list.
	PaperIDs []string `json:"paper_ids,omitempty"`
}

// FileStore keeps the watermark in a single JSON file.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by path. The parent directory is
// created on the first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the watermark, tolerating the two legacy shapes: an object
// with a paper_ids list (first element wins) and a bare JSON list.
// An unreadable or malformed file is treated as no watermark, so a
// corrupted record degrades to first-run semantics instead of failing.
func (s *FileStore) Load() (string, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading watermark %s: %w", s.path, err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err == nil {
		if rec.LatestPaperID != "" {
			return rec.LatestPaperID, true, nil
		}
		if len(rec.PaperIDs) > 0 {
			return rec.PaperIDs[0], true, nil
		}
		return "", false, nil
	}

	// Oldest shape: a bare list of identifiers, newest first.
	var ids []string
	if err := json.Unmarshal(data, &ids); err == nil && len(ids) > 0 {
		return ids[0], true, nil
	}

	return "", false, nil
}

// Save writes the watermark atomically via a temp file rename.
func (s *FileStore) Save(id string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating watermark directory: %w", err)
	}

	rec := record{
		LatestPaperID: id,
		LastUpdated:   time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling watermark: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".watermark-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing watermark: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
