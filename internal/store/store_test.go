package store

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db")
	s, err := Open(dsn)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.db

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)

	for _, name := range []string{tableAttempts, tableSeen} {
		var got string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&got)
		if err != nil {
			t.Errorf("table %s: %v", name, err)
		}
	}
}

func TestReopenKeepsData(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	s, err := Open(dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	id, err := s.CreateAttempt(ctx, newTestAttempt(Identity{Kind: KindUser, ID: "u1"}))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	s.Close()

	s, err = Open(dsn)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	a, err := s.LoadAttempt(ctx, id)
	if err != nil {
		t.Fatalf("load after reopen: %v", err)
	}
	if a.Identity.ID != "u1" {
		t.Errorf("identity = %v, want u1", a.Identity)
	}
}

func TestClosedStoreReturnsPersistenceError(t *testing.T) {
	s := openTestStore(t)
	s.Close()

	_, err := s.LoadSeen(context.Background(), Identity{Kind: KindUser, ID: "u1"}, "pcm")
	if !IsTransient(err) {
		t.Fatalf("LoadSeen on closed store = %v, want PersistenceError", err)
	}
}

func TestDefaultDBPath_EnvOverride(t *testing.T) {
	want := filepath.Join(t.TempDir(), "nested", "custom.db")
	t.Setenv("PATHWISE_DB", want)

	got, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("DefaultDBPath: %v", err)
	}
	if got != want {
		t.Errorf("DefaultDBPath = %q, want %q", got, want)
	}
}

func TestDefaultDBPath_XDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PATHWISE_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)

	got, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("DefaultDBPath: %v", err)
	}
	if want := filepath.Join(dir, "pathwise", "pathwise.db"); got != want {
		t.Errorf("DefaultDBPath = %q, want %q", got, want)
	}
}
