package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Tiliavir/daymark/internal/model"
)

// Gateway loads and saves the whole store.
type Gateway interface {
	Load(ctx context.Context) (model.Store, error)
	Save(ctx context.Context, store model.Store) error
}

// RecordsFile is the name of the JSON store inside the data directory.
const RecordsFile = "records.json"

// BaseDir returns the root data directory (~/.daymark).
func BaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".daymark"), nil
}

// FileGateway keeps the store in a single pretty-printed JSON file.
type FileGateway struct {
	Path string
}

// NewFileGateway returns a FileGateway for records.json inside dir.
func NewFileGateway(dir string) *FileGateway {
	return &FileGateway{Path: filepath.Join(dir, RecordsFile)}
}

// Load reads the store. A missing file yields an empty store.
func (g *FileGateway) Load(_ context.Context) (model.Store, error) {
	data, err := os.ReadFile(g.Path)
	if os.IsNotExist(err) {
		return model.Store{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage error reading %s: %w", g.Path, err)
	}

	store, err := Decode(bytes.NewReader(data), FormatJSON)
	if err != nil {
		// Back up corrupt file and abort.
		backupPath := g.Path + ".corrupt"
		_ = os.Rename(g.Path, backupPath)
		return nil, fmt.Errorf("corrupt JSON in %s (backed up to %s): %w", g.Path, backupPath, err)
	}
	return store, nil
}

// Save atomically writes the store.
func (g *FileGateway) Save(_ context.Context, store model.Store) error {
	return writeFileAtomic(g.Path, store, FormatJSON)
}

// writeFileAtomic encodes store to a temp file next to path and renames it
// into place.
func writeFileAtomic(path string, store model.Store, format Format) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, store, format); err != nil {
		return fmt.Errorf("storage error encoding %s: %w", format, err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}
