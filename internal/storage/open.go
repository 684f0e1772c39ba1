package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Backend names accepted by Open.
const (
	BackendAuto   = "auto"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// ResolveBackend turns "auto" into a concrete backend: SQLite when a database
// already exists in dir, the JSON file otherwise.
func ResolveBackend(backend, dir string) (string, error) {
	switch backend {
	case BackendFile, BackendSQLite:
		return backend, nil
	case "", BackendAuto:
		if _, err := os.Stat(filepath.Join(dir, DatabaseFile)); err == nil {
			return BackendSQLite, nil
		}
		return BackendFile, nil
	}
	return "", fmt.Errorf("unknown storage backend %q (use auto, file or sqlite)", backend)
}

// Open returns the gateway for backend in dir. The returned closer releases
// any resources held by the gateway.
func Open(backend, dir string) (Gateway, io.Closer, error) {
	resolved, err := ResolveBackend(backend, dir)
	if err != nil {
		return nil, nil, err
	}
	if resolved == BackendSQLite {
		gw, err := OpenSQLite(filepath.Join(dir, DatabaseFile))
		if err != nil {
			return nil, nil, err
		}
		return gw, gw, nil
	}
	return NewFileGateway(dir), nopCloser{}, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
