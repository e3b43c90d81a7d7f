package catalog

import "sync"

// MemoryStore is an in-memory implementation of Store, used in tests and as
// an ephemeral backend.
type MemoryStore struct {
	mu      sync.RWMutex
	catalog Catalog
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{catalog: Catalog{}}
}

// Load returns a copy of the stored catalog.
func (m *MemoryStore) Load() Catalog {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c := make(Catalog, len(m.catalog))
	for id, entry := range m.catalog {
		c[id] = entry
	}
	return c
}

// Save replaces the stored catalog with a copy of c.
func (m *MemoryStore) Save(c Catalog) error {
	copied := make(Catalog, len(c))
	for id, entry := range c {
		copied[id] = entry
	}

	m.mu.Lock()
	m.catalog = copied
	m.mu.Unlock()
	return nil
}

// Close is a no-op for memory storage.
func (m *MemoryStore) Close() error {
	return nil
}
