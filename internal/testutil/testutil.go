// Package testutil provides shared test helpers for setting up scraps
// directories and stamp caches.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/starford/scraps/internal/index"
	"github.com/starford/scraps/internal/storage"
)

// TestDB opens a stamp cache in a temporary directory. It is closed on
// cleanup.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open(filepath.Join(t.TempDir(), "scraps-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestScraps creates a temporary scraps directory holding files, keyed by
// slash separated relative path.
func TestScraps(t *testing.T, files map[string]string) *storage.FS {
	t.Helper()
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for p, body := range files {
		if err := store.Write(p, []byte(body)); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
	return store
}
