package session

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	store := NewStore(filepath.Join(t.TempDir(), "nested", "session.json"))

	if err := store.Save(42); err != nil {
		t.Fatalf("Save: %v", err)
	}

	userID, ok, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !ok || userID != 42 {
		t.Fatalf("Load = (%d, %v), want (42, true)", userID, ok)
	}
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	t.Parallel()

	store := NewStore(filepath.Join(t.TempDir(), "session.json"))

	userID, ok, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ok || userID != 0 {
		t.Fatalf("Load = (%d, %v), want (0, false)", userID, ok)
	}
}

func TestLoadCorruptFileFails(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := NewStore(path).Load(); err == nil {
		t.Fatal("expected parse error for corrupt session file")
	}
}

func TestClearIsIdempotent(t *testing.T) {
	t.Parallel()

	store := NewStore(filepath.Join(t.TempDir(), "session.json"))
	if err := store.Save(7); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	// Повторная очистка без файла тоже проходит
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear (second): %v", err)
	}

	if _, ok, err := store.Load(); err != nil || ok {
		t.Fatalf("Load after Clear = (ok=%v, err=%v), want (false, nil)", ok, err)
	}
}

func TestSaveOverwritesPreviousUser(t *testing.T) {
	t.Parallel()

	store := NewStore(filepath.Join(t.TempDir(), "session.json"))

	if err := store.Save(1); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(2); err != nil {
		t.Fatal(err)
	}

	userID, ok, err := store.Load()
	if err != nil || !ok {
		t.Fatalf("Load = (ok=%v, err=%v)", ok, err)
	}
	if userID != 2 {
		t.Fatalf("userID = %d, want 2", userID)
	}
}
