// Package file provides a SurfaceStore on the local filesystem. Records are
// JSON files in one directory, written atomically so a crash mid-save never
// leaves a partial record behind.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/easelhq/easel/pkg/domain"
)

// Store implements ports.SurfaceStore with one JSON file per surface.
type Store struct {
	dir string
}

// New creates a Store rooted at dir. An empty dir defaults to
// ".easel/surfaces" under the working directory.
func New(dir string) *Store {
	if dir == "" {
		dir = filepath.Join(".easel", "surfaces")
	}
	return &Store{dir: dir}
}

func (s *Store) path(id domain.SurfaceID) string {
	return filepath.Join(s.dir, id.String()+".json")
}

// Save writes the record to a temp file in the same directory, fsyncs, and
// renames it over the destination.
func (s *Store) Save(ctx context.Context, surface *domain.Surface) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to ensure surface directory: %w", err)
	}

	data, err := json.MarshalIndent(surface, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode surface %s: %w", surface.ID, err)
	}

	// Same directory so the rename stays on one filesystem.
	tmp, err := os.CreateTemp(s.dir, "tmp-"+surface.ID.String()+"-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	dest := s.path(surface.ID)
	// Rename over an existing file fails on Windows, so drop the old record
	// first. The gap between remove and rename beats readers ever seeing a
	// half-written record.
	if _, err := os.Stat(dest); err == nil {
		if err := os.Remove(dest); err != nil {
			return fmt.Errorf("failed to replace surface %s: %w", surface.ID, err)
		}
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("failed to publish surface %s: %w", surface.ID, err)
	}
	return nil
}

// Load reads and decodes the record for an ID.
func (s *Store) Load(ctx context.Context, id domain.SurfaceID) (*domain.Surface, error) {
	data, err := os.ReadFile(s.path(id))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("surface %s: %w", id, domain.ErrSurfaceNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read surface %s: %w", id, err)
	}

	var surface domain.Surface
	if err := json.Unmarshal(data, &surface); err != nil {
		return nil, fmt.Errorf("failed to decode surface %s: %w", id, err)
	}
	return &surface, nil
}

// Delete removes the record file. Absent records are not an error.
func (s *Store) Delete(ctx context.Context, id domain.SurfaceID) error {
	err := os.Remove(s.path(id))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete surface %s: %w", id, err)
	}
	return nil
}

// List scans the directory for record files and returns their IDs. Files
// that are not surface records are skipped.
func (s *Store) List(ctx context.Context) ([]domain.SurfaceID, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list surfaces: %w", err)
	}

	var ids []domain.SurfaceID
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		id, err := domain.ParseSurfaceID(strings.TrimSuffix(name, ".json"))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
