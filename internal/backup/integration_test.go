package backup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/julianstephens/peakstate/internal/storage"
	"github.com/julianstephens/peakstate/internal/storage/sqlite"
)

// TestIntegrationSQLiteBackupRestore runs backup and restore against a store
// created by the real SQLite provider.
func TestIntegrationSQLiteBackupRestore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "peakstate.db")

	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := store.Set("peakstate_data", `[{"id":1}]`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	store.Close()

	mgr := NewManager(dbPath)
	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	store = sqlite.NewStore(dbPath)
	if err := store.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := store.Set("peakstate_data", `[{"id":1},{"id":2}]`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	store.Close()

	if _, err := mgr.RestoreBackup(backupPath); err != nil {
		t.Fatalf("RestoreBackup failed: %v", err)
	}

	store = sqlite.NewStore(dbPath)
	if err := store.Load(); err != nil {
		t.Fatalf("Load after restore failed: %v", err)
	}
	defer store.Close()

	got, ok, err := store.Get("peakstate_data")
	if err != nil || !ok {
		t.Fatalf("Get after restore = %v, %v", ok, err)
	}
	if got != `[{"id":1}]` {
		t.Errorf("restored value = %s, want the backed-up list", got)
	}

	st, err := store.SchemaStatus()
	if err != nil {
		t.Fatalf("SchemaStatus failed: %v", err)
	}
	if st.Pending() {
		t.Errorf("restored store has pending migrations: %+v", st)
	}
}

func TestIntegrationJSONBackupRestore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peakstate.json")

	store := storage.NewJSONStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := store.Set("peakstate_header", `{"title":"Before"}`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	mgr := NewManager(path)
	if mgr.Kind() != KindJSON {
		t.Fatalf("Kind() = %v, want KindJSON", mgr.Kind())
	}
	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}
	if filepath.Ext(backupPath) != ".json" {
		t.Errorf("backup suffix = %q, want .json", filepath.Ext(backupPath))
	}

	if err := store.Set("peakstate_header", `{"title":"After"}`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if _, err := mgr.RestoreBackup(backupPath); err != nil {
		t.Fatalf("RestoreBackup failed: %v", err)
	}

	reloaded := storage.NewJSONStore(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load after restore failed: %v", err)
	}
	got, _, _ := reloaded.Get("peakstate_header")
	if got != `{"title":"Before"}` {
		t.Errorf("restored header = %s", got)
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 2 {
		t.Errorf("expected original and pre-restore backups, got %d", len(backups))
	}
}

func TestIntegrationJSONBackupRejectsCorruptStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peakstate.json")
	if err := os.WriteFile(path, []byte("{truncated"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := NewManager(path).CreateBackup(); err == nil {
		t.Error("CreateBackup should refuse to copy a corrupt JSON store")
	}
}
