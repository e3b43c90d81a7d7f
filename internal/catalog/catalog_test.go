package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func newFileStore(t *testing.T) *FileStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "entities.json")
	return NewFileStore(path, zerolog.Nop())
}

func TestFileStore_LoadMissing(t *testing.T) {
	store := newFileStore(t)

	c := store.Load()
	if len(c) != 0 {
		t.Errorf("Load() = %v, want empty catalog", c)
	}
}

func TestFileStore_LoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entities.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	store := NewFileStore(path, zerolog.Nop())

	c := store.Load()
	if len(c) != 0 {
		t.Errorf("Load() = %v, want empty catalog for corrupt file", c)
	}
}

func TestFileStore_RoundTripNonASCII(t *testing.T) {
	store := newFileStore(t)

	want := Catalog{
		"id-1": {Name: "ООО Ромашка", Placeholder: "Company 1"},
		"id-2": {Name: "Иван Петров", Placeholder: "PersonX"},
	}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	got := store.Load()
	if len(got) != len(want) {
		t.Fatalf("Load() returned %d entries, want %d", len(got), len(want))
	}
	for id, entry := range want {
		if got[id] != entry {
			t.Errorf("Load()[%q] = %+v, want %+v", id, got[id], entry)
		}
	}
}

func TestFileStore_SaveOverwrites(t *testing.T) {
	store := newFileStore(t)

	store.Save(Catalog{"a": {Name: "first", Placeholder: "P"}})
	store.Save(Catalog{"b": {Name: "second", Placeholder: "P"}})

	got := store.Load()
	if _, ok := got["a"]; ok {
		t.Error("Save() did not overwrite prior content")
	}
	if _, ok := got["b"]; !ok {
		t.Error("Save() lost new content")
	}
}

func TestService_AddOrUpdate_DuplicateStability(t *testing.T) {
	svc := NewService(NewMemoryStore(), zerolog.Nop())

	id1, err := svc.AddOrUpdate("Acme Corp", "Foo")
	if err != nil {
		t.Fatalf("AddOrUpdate() error: %v", err)
	}
	id2, err := svc.AddOrUpdate("Acme Corp", "Bar")
	if err != nil {
		t.Fatalf("AddOrUpdate() error: %v", err)
	}

	if id1 != id2 {
		t.Errorf("AddOrUpdate() ids differ: %q vs %q", id1, id2)
	}
	if got := svc.Load()[id1].Placeholder; got != "Bar" {
		t.Errorf("placeholder = %q, want %q", got, "Bar")
	}
}

func TestService_AddOrUpdate_KeepsPlaceholderWhenNoneSupplied(t *testing.T) {
	svc := NewService(NewMemoryStore(), zerolog.Nop())

	id, _ := svc.AddOrUpdate("Acme Corp", "Foo")
	svc.AddOrUpdate("Acme Corp", "")

	if got := svc.Load()[id].Placeholder; got != "Foo" {
		t.Errorf("placeholder = %q, want %q", got, "Foo")
	}
}

func TestService_AddOrUpdate_DerivesPlaceholder(t *testing.T) {
	svc := NewService(NewMemoryStore(), zerolog.Nop())

	id, err := svc.AddOrUpdate("ivan@test.com", "")
	if err != nil {
		t.Fatalf("AddOrUpdate() error: %v", err)
	}
	if got := svc.Load()[id].Placeholder; got != "Email" {
		t.Errorf("placeholder = %q, want %q", got, "Email")
	}
}

func TestService_AddOrUpdate_EmptyName(t *testing.T) {
	svc := NewService(NewMemoryStore(), zerolog.Nop())

	if _, err := svc.AddOrUpdate("   ", "X"); err != ErrEmptyName {
		t.Errorf("AddOrUpdate() error = %v, want ErrEmptyName", err)
	}
}

func TestService_AddOrUpdate_TrimsName(t *testing.T) {
	svc := NewService(NewMemoryStore(), zerolog.Nop())

	id1, _ := svc.AddOrUpdate("  Acme Corp  ", "")
	id2, _ := svc.AddOrUpdate("Acme Corp", "")
	if id1 != id2 {
		t.Errorf("trimmed and untrimmed names produced different entries")
	}
}

func TestService_UpdateDelete(t *testing.T) {
	svc := NewService(NewMemoryStore(), zerolog.Nop())

	id, _ := svc.AddOrUpdate("Acme Corp", "Foo")

	if err := svc.Update(id, "Acme Ltd", "Bar"); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if got := svc.Load()[id]; got.Name != "Acme Ltd" || got.Placeholder != "Bar" {
		t.Errorf("Update() stored %+v", got)
	}

	if err := svc.Update("missing", "X", "Y"); err != ErrNotFound {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}

	if err := svc.Delete(id); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if err := svc.Delete(id); err != ErrNotFound {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

func TestCatalog_FindByName(t *testing.T) {
	c := Catalog{
		"id-1": {Name: "Ivan", Placeholder: "PersonX"},
	}

	if id, ok := c.FindByName("Ivan"); !ok || id != "id-1" {
		t.Errorf("FindByName() = %q, %v", id, ok)
	}
	if _, ok := c.FindByName("ivan"); ok {
		t.Error("FindByName() must compare exactly, not case-insensitively")
	}
}
