package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Sajal133/truerate-api/internal/domain/model"
)

// SnapshotSourceLocal marks snapshots written by this process.
const SnapshotSourceLocal = "local_backup"

// SnapshotFile stores a learner snapshot as a JSON file.
type SnapshotFile struct {
	path string
}

// NewSnapshotFile returns a SnapshotFile at path.
func NewSnapshotFile(path string) *SnapshotFile {
	return &SnapshotFile{path: path}
}

// Path returns the file location.
func (f *SnapshotFile) Path() string { return f.path }

// Load reads the snapshot. A missing file returns (nil, nil).
func (f *SnapshotFile) Load() (*model.LearnerSnapshot, error) {
	return LoadSnapshot(f.path)
}

// Save writes the snapshot atomically.
func (f *SnapshotFile) Save(s model.LearnerSnapshot) error {
	return SaveSnapshot(f.path, s)
}

// LoadSnapshot reads the snapshot at path. A missing file returns
// (nil, nil) so callers can fall back to empty weights.
func LoadSnapshot(path string) (*model.LearnerSnapshot, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotRead, err)
	}
	var s model.LearnerSnapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrSnapshotRead, path, err)
	}
	if s.PatternWeights == nil {
		s.PatternWeights = map[string]float64{}
	}
	return &s, nil
}

// SaveSnapshot writes s to path via a temp file and rename, so readers never
// see a partial file.
func SaveSnapshot(path string, s model.LearnerSnapshot) error {
	if s.Source == "" {
		s.Source = SnapshotSourceLocal
	}
	if s.PatternWeights == nil {
		s.PatternWeights = map[string]float64{}
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrSnapshotWrite, err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrSnapshotWrite, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSnapshotWrite, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrSnapshotWrite, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrSnapshotWrite, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrSnapshotWrite, err)
	}
	return nil
}
