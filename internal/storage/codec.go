package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Tiliavir/daymark/internal/model"
)

// ErrBadFormat is returned when imported data cannot be parsed as a store.
var ErrBadFormat = errors.New("bad format")

// Format is an export/import encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown format %q (use json or yaml)", s)
}

// FormatFromPath picks the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Encode writes the store. JSON output is indented by two spaces.
func Encode(w io.Writer, store model.Store, format Format) error {
	if store == nil {
		store = model.Store{}
	}
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(store); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(store)
	}
}

// Decode parses a store. Any parse failure, including a top level that is
// not an object or data after the first document, wraps ErrBadFormat.
func Decode(r io.Reader, format Format) (model.Store, error) {
	var store model.Store
	var err error
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		err = dec.Decode(&store)
		if errors.Is(err, io.EOF) {
			err = nil
		} else if err == nil {
			var extra yaml.Node
			if dec.Decode(&extra) != io.EOF {
				err = errors.New("unexpected data after the first document")
			}
		}
	default:
		dec := json.NewDecoder(r)
		err = dec.Decode(&store)
		if err == nil {
			var extra json.RawMessage
			if dec.Decode(&extra) != io.EOF {
				err = errors.New("unexpected data after the top-level value")
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFormat, err)
	}
	if store == nil {
		store = model.Store{}
	}
	store.Normalize()
	return store, nil
}

// ExportFile writes the store to path in the given format.
func ExportFile(path string, store model.Store, format Format) error {
	return writeFileAtomic(path, store, format)
}

// ImportFile reads a store from path, choosing the format by extension.
func ImportFile(path string) (model.Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	store, err := Decode(f, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("importing %s: %w", path, err)
	}
	return store, nil
}
