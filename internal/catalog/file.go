package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// FileStore persists the catalog as a human-readable JSON file.
type FileStore struct {
	path string
	log  zerolog.Logger
}

// NewFileStore creates a file-backed store at path. The file is created on
// the first save.
func NewFileStore(path string, log zerolog.Logger) *FileStore {
	return &FileStore{
		path: path,
		log:  log.With().Str("component", "catalog").Logger(),
	}
}

// Load reads the catalog file. A missing or corrupt file yields an empty
// catalog; this is never an error.
func (f *FileStore) Load() Catalog {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if !os.IsNotExist(err) {
			f.log.Warn().Err(err).Str("path", f.path).Msg("catalog read failed, starting empty")
		}
		return Catalog{}
	}

	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		f.log.Warn().Err(err).Str("path", f.path).Msg("catalog parse failed, starting empty")
		return Catalog{}
	}
	return c
}

// Save writes the full catalog, replacing prior content. Output is indented
// JSON with non-ASCII text kept verbatim.
func (f *FileStore) Save(c Catalog) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}

	if err := os.WriteFile(f.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	return nil
}

// Close is a no-op for file storage.
func (f *FileStore) Close() error {
	return nil
}
