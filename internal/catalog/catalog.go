// Package catalog stores sensitive entities: the mapping between generated
// entry ids and (original value, placeholder) pairs. The catalog is the single
// source of truth for masking and demasking and is fully loaded and re-saved
// on every mutation.
package catalog

import "errors"

// ErrEmptyName is returned when an entry is added with a blank name.
var ErrEmptyName = errors.New("catalog: entry name is empty")

// ErrNotFound is returned when an entry id does not exist.
var ErrNotFound = errors.New("catalog: entry not found")

// Entry is one sensitive value with its placeholder label. The name is the
// natural key: at most one entry exists per distinct name.
type Entry struct {
	Name        string `json:"name"`
	Placeholder string `json:"placeholder"`
}

// Catalog maps entry ids to entries.
type Catalog map[string]Entry

// Store defines the persistence contract for the catalog. Load never fails:
// a missing or unparsable catalog is a recoverable condition and yields an
// empty catalog.
type Store interface {
	// Load returns the full catalog, or an empty one if nothing usable is
	// persisted.
	Load() Catalog

	// Save persists the full catalog, overwriting prior content. Non-ASCII
	// text must round-trip exactly.
	Save(c Catalog) error

	// Close releases any resources.
	Close() error
}

// FindByName returns the id of the entry whose name equals name exactly.
func (c Catalog) FindByName(name string) (string, bool) {
	for id, entry := range c {
		if entry.Name == name {
			return id, true
		}
	}
	return "", false
}
