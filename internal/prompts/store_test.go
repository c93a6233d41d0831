package prompts

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestStoreRead(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, Planner), []byte("plan things"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := NewStore(dir)
	got, err := store.Read(Planner)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != "plan things" {
		t.Fatalf("Read = %q, want %q", got, "plan things")
	}

	_, err = store.Read(Evaluator)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing template err = %v, want ErrNotFound", err)
	}
}

func TestStoreRejectsPathTraversal(t *testing.T) {
	store := NewStore(t.TempDir())
	if _, err := store.Read("../secrets.md"); err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected invalid name error, got %v", err)
	}
}

func TestNilStoreIsNotFound(t *testing.T) {
	var store *Store
	if _, err := store.Read(Insight); !errors.Is(err, ErrNotFound) {
		t.Fatalf("nil store err = %v, want ErrNotFound", err)
	}
}
