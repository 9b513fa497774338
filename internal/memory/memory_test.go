package memory

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	s := Load(filepath.Join(t.TempDir(), "app.yml"))

	if s.Len() != 0 {
		t.Errorf("Expected empty store for missing file, got %d entries", s.Len())
	}
	if s.Seen("abc123") {
		t.Error("Expected no decisions in a fresh store")
	}
}

func TestLoad_CorruptFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yml")
	if err := os.WriteFile(path, []byte("{{{not yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := Load(path)
	if s.Len() != 0 {
		t.Errorf("Expected corrupt file treated as empty, got %d entries", s.Len())
	}
}

func TestStore_MarkAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yml")

	s := Load(path)
	s.MarkExcused("aaa")
	s.MarkFlagged("bbb")
	if err := s.Persist(); err != nil {
		t.Fatalf("Persist failed: %v", err)
	}

	re := Load(path)
	if !re.IsExcused("aaa") {
		t.Error("Expected aaa excused after reload")
	}
	if re.IsExcused("bbb") {
		t.Error("Expected bbb not excused (it was flagged)")
	}
	if !re.Seen("aaa") || !re.Seen("bbb") {
		t.Error("Expected both decisions to suppress re-presentation")
	}
	if re.Seen("ccc") {
		t.Error("Expected unknown ID unseen")
	}
}

func TestStore_PersistCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "caches", "app.yml")

	s := Load(path)
	s.MarkExcused("aaa")
	if err := s.Persist(); err != nil {
		t.Fatalf("Persist failed: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Expected decision file written: %v", err)
	}
}

func TestStore_PersistEmptyWritesValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yml")

	if err := Load(path).Persist(); err != nil {
		t.Fatalf("Persist of empty store failed: %v", err)
	}
	if Load(path).Len() != 0 {
		t.Error("Expected empty store round-trip")
	}
}

func TestStore_PersistFailureKeepsState(t *testing.T) {
	// Point the store at a path whose parent is a file, so the
	// directory create fails.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := Load(filepath.Join(blocker, "app.yml"))
	s.MarkFlagged("aaa")

	if err := s.Persist(); err == nil {
		t.Fatal("Expected Persist to fail")
	}
	if !s.Seen("aaa") {
		t.Error("Expected in-memory decision kept after failed persist")
	}
}
