package sqlite

import (
	"errors"
	"path/filepath"
	"testing"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "peakstate.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestInitCreatesSchema(t *testing.T) {
	store := setupStore(t)

	st, err := store.SchemaStatus()
	if err != nil {
		t.Fatalf("SchemaStatus failed: %v", err)
	}
	if st.Current != st.Latest || st.Latest < 1 {
		t.Errorf("SchemaStatus() = %+v, want current == latest >= 1", st)
	}

	var count int
	if err := store.GetDB().QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='kv'").Scan(&count); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if count != 1 {
		t.Error("kv table was not created")
	}
}

func TestGetSetDelete(t *testing.T) {
	store := setupStore(t)

	if _, ok, err := store.Get("peakstate_data"); err != nil || ok {
		t.Fatalf("Get on empty store = ok %v, err %v; want missing", ok, err)
	}

	if err := store.Set("peakstate_data", "[]"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Set("peakstate_data", `[{"id":1}]`); err != nil {
		t.Fatalf("Set (overwrite) failed: %v", err)
	}

	got, ok, err := store.Get("peakstate_data")
	if err != nil || !ok {
		t.Fatalf("Get = ok %v, err %v", ok, err)
	}
	if got != `[{"id":1}]` {
		t.Errorf("Get = %q, want overwritten value", got)
	}

	if err := store.Delete("peakstate_data"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := store.Get("peakstate_data"); ok {
		t.Error("value still present after Delete")
	}
	if err := store.Delete("never-set"); err != nil {
		t.Errorf("Delete of a missing key should succeed, got %v", err)
	}
}

func TestLoadPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peakstate.db")

	first := NewStore(path)
	if err := first.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := first.Set("peakstate_header", `{"title":"Deep work"}`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	first.Close()

	second := NewStore(path)
	if err := second.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer second.Close()

	got, ok, err := second.Get("peakstate_header")
	if err != nil || !ok || got != `{"title":"Deep work"}` {
		t.Errorf("Get after reopen = %q, %v, %v", got, ok, err)
	}
}

func TestLoadMissingDatabase(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	err := store.Load()
	if !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Load() error = %v, want ErrNotInitialized", err)
	}
}

func TestLoadRejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peakstate.db")
	store := NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := store.runner().SetVersion(99); err != nil {
		t.Fatalf("SetVersion failed: %v", err)
	}
	store.Close()

	reopened := NewStore(path)
	defer reopened.Close()
	if err := reopened.Load(); err == nil {
		t.Error("Load should reject a database from a newer version")
	}
}
