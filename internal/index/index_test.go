package index

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/starford/scraps/internal/storage"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "scraps-test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func i64(v int64) *int64 { return &v }

// countingStamper returns a fixed timestamp per path and counts calls.
type countingStamper struct {
	mu    sync.Mutex
	calls map[string]int
	ts    map[string]*int64
}

func (c *countingStamper) Timestamp(_ context.Context, f storage.ScrapFile) (*int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls == nil {
		c.calls = make(map[string]int)
	}
	c.calls[f.Path]++
	return c.ts[f.Path], nil
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM commit_stamps`).Scan(&count); err != nil {
		t.Fatalf("commit_stamps table missing: %v", err)
	}
}

func TestOpen_KeepsCurrentSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scraps.db")
	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.PutStamp(CommitStamp{Path: "a.md", Checksum: "c", CommittedTS: i64(1)}); err != nil {
		t.Fatal(err)
	}
	db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if s, err := db.GetStamp("a.md", "c"); err != nil || s == nil {
		t.Errorf("stamp lost on reopen: %+v, %v", s, err)
	}
}

func TestOpen_DropsStaleSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scraps.db")
	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.PutStamp(CommitStamp{Path: "a.md", Checksum: "c", CommittedTS: i64(1)}); err != nil {
		t.Fatal(err)
	}
	if _, err := db.conn.Exec(`PRAGMA user_version = 99`); err != nil {
		t.Fatal(err)
	}
	db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if s, err := db.GetStamp("a.md", "c"); err != nil || s != nil {
		t.Errorf("stale stamp survived: %+v, %v", s, err)
	}
	var v int
	if err := db.conn.QueryRow(`PRAGMA user_version`).Scan(&v); err != nil || v != schemaVersion {
		t.Errorf("user_version = %d, %v", v, err)
	}
}

func TestPutAndGetStamp(t *testing.T) {
	db := testDB(t)
	if err := db.PutStamp(CommitStamp{Path: "a.md", Checksum: "c1", CommittedTS: i64(42)}); err != nil {
		t.Fatalf("PutStamp: %v", err)
	}
	s, err := db.GetStamp("a.md", "c1")
	if err != nil {
		t.Fatalf("GetStamp: %v", err)
	}
	if s == nil || s.CommittedTS == nil || *s.CommittedTS != 42 {
		t.Fatalf("stamp = %+v", s)
	}

	// a different checksum is a miss
	s, err = db.GetStamp("a.md", "c2")
	if err != nil || s != nil {
		t.Errorf("outdated lookup = %+v, %v; want nil, nil", s, err)
	}
}

func TestPutStamp_NilTimestamp(t *testing.T) {
	db := testDB(t)
	_ = db.PutStamp(CommitStamp{Path: "u.md", Checksum: "x"})
	s, err := db.GetStamp("u.md", "x")
	if err != nil {
		t.Fatalf("GetStamp: %v", err)
	}
	if s == nil {
		t.Fatal("expected cached row for untracked file")
	}
	if s.CommittedTS != nil {
		t.Errorf("CommittedTS = %d, want nil", *s.CommittedTS)
	}
}

func TestPutStamp_ReplacesExisting(t *testing.T) {
	db := testDB(t)
	_ = db.PutStamp(CommitStamp{Path: "up.md", Checksum: "1", CommittedTS: i64(1)})
	_ = db.PutStamp(CommitStamp{Path: "up.md", Checksum: "2", CommittedTS: i64(2)})

	all, err := db.AllChecksums()
	if err != nil {
		t.Fatalf("AllChecksums: %v", err)
	}
	if len(all) != 1 || all["up.md"] != "2" {
		t.Errorf("checksums = %v", all)
	}
}

func TestDeleteStamp(t *testing.T) {
	db := testDB(t)
	_ = db.PutStamp(CommitStamp{Path: "del.md", Checksum: "x", CommittedTS: i64(5)})
	if err := db.DeleteStamp("del.md"); err != nil {
		t.Fatalf("DeleteStamp: %v", err)
	}
	if s, _ := db.GetStamp("del.md", "x"); s != nil {
		t.Errorf("deleted stamp still present: %+v", s)
	}
}

func TestCachedTimestamper(t *testing.T) {
	db := testDB(t)
	inner := &countingStamper{ts: map[string]*int64{"a.md": i64(100)}}
	c := &CachedTimestamper{Cache: db, Next: inner, Logger: discardLogger()}
	f := storage.ScrapFile{Path: "a.md", Checksum: "c1"}

	for i := 0; i < 3; i++ {
		ts, err := c.Timestamp(context.Background(), f)
		if err != nil {
			t.Fatalf("Timestamp: %v", err)
		}
		if ts == nil || *ts != 100 {
			t.Fatalf("ts = %v", ts)
		}
	}
	if inner.calls["a.md"] != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls["a.md"])
	}

	// content change invalidates the entry
	f.Checksum = "c2"
	_, _ = c.Timestamp(context.Background(), f)
	if inner.calls["a.md"] != 2 {
		t.Errorf("inner calls after change = %d, want 2", inner.calls["a.md"])
	}
}

func TestSync(t *testing.T) {
	db := testDB(t)
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	_ = store.Write("a.md", []byte("a"))
	_ = store.Write("Ctx/b.md", []byte("b"))
	_ = db.PutStamp(CommitStamp{Path: "gone.md", Checksum: "old"})

	inner := &countingStamper{ts: map[string]*int64{"a.md": i64(7)}}
	if err := Sync(context.Background(), db, store, inner, discardLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	all, _ := db.AllChecksums()
	if len(all) != 2 {
		t.Fatalf("checksums = %v, want a.md and Ctx/b.md", all)
	}
	if _, ok := all["gone.md"]; ok {
		t.Error("stale row not removed")
	}

	// second sync is a no-op for unchanged files
	if err := Sync(context.Background(), db, store, inner, discardLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if inner.calls["a.md"] != 1 || inner.calls["Ctx/b.md"] != 1 {
		t.Errorf("calls = %v, want one per file", inner.calls)
	}
}
