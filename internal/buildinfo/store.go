package buildinfo

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store persists a Record as a header file at Path.
type Store struct {
	Path string
}

// NewStore creates a store for the metadata header at path.
func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Ensure creates an empty metadata file if none exists.
func (s *Store) Ensure() error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create metadata directory: %w", err)
	}

	f, err := os.OpenFile(s.Path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create metadata file: %w", err)
	}
	return f.Close()
}

// Load reads the record from disk. empty reports that the file holds no
// definitions. A missing file is returned as an error wrapping
// fs.ErrNotExist; call Ensure first when absence should mean empty.
func (s *Store) Load() (rec Record, empty bool, err error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return Record{}, false, fmt.Errorf("failed to open metadata file: %w", err)
	}
	defer f.Close()

	rec, empty, err = Decode(f)
	if err != nil {
		return Record{}, false, fmt.Errorf("failed to parse %s: %w", s.Path, err)
	}
	return rec, empty, nil
}

// Save replaces the metadata file with r.
// The header is written to a temporary file in the same directory and
// renamed over the target.
func (s *Store) Save(r Record) error {
	dir := filepath.Dir(s.Path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.Path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary metadata file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := Encode(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set metadata permissions: %w", err)
	}

	if err := os.Rename(tmpPath, s.Path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace metadata file: %w", err)
	}

	return nil
}
