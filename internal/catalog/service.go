package catalog

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lexesus93/safe-dialog/internal/classify"
	"github.com/lexesus93/safe-dialog/internal/metrics"
)

// Service owns catalog mutations. Every mutation loads the full catalog,
// applies the change, and saves it back through the store.
type Service struct {
	store Store
	log   zerolog.Logger
}

// NewService creates a catalog service on top of a store.
func NewService(store Store, log zerolog.Logger) *Service {
	return &Service{
		store: store,
		log:   log.With().Str("component", "catalog").Logger(),
	}
}

// ListedEntry is an entry together with its id, for listings and API output.
type ListedEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Placeholder string `json:"placeholder"`
}

// Load returns the current full catalog.
func (s *Service) Load() Catalog {
	return s.store.Load()
}

// List returns all entries sorted by name for stable output.
func (s *Service) List() []ListedEntry {
	c := s.store.Load()
	entries := make([]ListedEntry, 0, len(c))
	for id, entry := range c {
		entries = append(entries, ListedEntry{ID: id, Name: entry.Name, Placeholder: entry.Placeholder})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}

// AddOrUpdate registers name as a sensitive value. If an entry with the same
// name exists its placeholder is updated (only when a new one is supplied)
// and the existing id is returned. Otherwise a new entry is created with a
// generated id and either the supplied placeholder or a category-derived one.
func (s *Service) AddOrUpdate(name, placeholder string) (string, error) {
	cleanName := strings.TrimSpace(name)
	if cleanName == "" {
		return "", ErrEmptyName
	}

	c := s.store.Load()
	if id, ok := c.FindByName(cleanName); ok {
		if placeholder != "" {
			entry := c[id]
			entry.Placeholder = strings.TrimSpace(placeholder)
			c[id] = entry
			if err := s.save(c); err != nil {
				return "", err
			}
		}
		return id, nil
	}

	id := uuid.NewString()
	finalPlaceholder := strings.TrimSpace(placeholder)
	if finalPlaceholder == "" {
		finalPlaceholder = classify.DerivePlaceholder(cleanName)
	}
	c[id] = Entry{Name: cleanName, Placeholder: finalPlaceholder}
	if err := s.save(c); err != nil {
		return "", err
	}

	s.log.Debug().Str("id", id).Str("placeholder", finalPlaceholder).Msg("entity added")
	return id, nil
}

// Update replaces the name and placeholder of an existing entry.
func (s *Service) Update(id, name, placeholder string) error {
	cleanName := strings.TrimSpace(name)
	if cleanName == "" {
		return ErrEmptyName
	}

	c := s.store.Load()
	if _, ok := c[id]; !ok {
		return ErrNotFound
	}
	c[id] = Entry{Name: cleanName, Placeholder: strings.TrimSpace(placeholder)}
	return s.save(c)
}

// Delete removes an entry by id.
func (s *Service) Delete(id string) error {
	c := s.store.Load()
	if _, ok := c[id]; !ok {
		return ErrNotFound
	}
	delete(c, id)
	return s.save(c)
}

func (s *Service) save(c Catalog) error {
	if err := s.store.Save(c); err != nil {
		return err
	}
	metrics.CatalogSize.Set(float64(len(c)))
	return nil
}
