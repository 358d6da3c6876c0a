package watch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

type recorder struct {
	mu    sync.Mutex
	calls [][]string
}

func (r *recorder) onChange(_ context.Context, paths []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, paths)
}

func (r *recorder) seen(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.calls {
		for _, p := range c {
			if p == path {
				return true
			}
		}
	}
	return false
}

func startWatch(t *testing.T, root string, rec *recorder) {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = Watch(ctx, root, 50*time.Millisecond, logger, rec.onChange)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	time.Sleep(100 * time.Millisecond)
}

func TestWatch_NewFileReported(t *testing.T) {
	root := t.TempDir()
	rec := &recorder{}
	startWatch(t, root, rec)

	_ = os.WriteFile(filepath.Join(root, "new.md"), []byte("# New"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.seen("new.md")
	}, "new file not reported by watcher")
}

func TestWatch_IgnoresNonMarkdown(t *testing.T) {
	root := t.TempDir()
	rec := &recorder{}
	startWatch(t, root, rec)

	_ = os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644)
	_ = os.WriteFile(filepath.Join(root, "after.md"), []byte("x"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.seen("after.md")
	}, "markdown change not reported")
	if rec.seen("notes.txt") {
		t.Error("non-markdown file reported")
	}
}

func TestWatch_NewDirWatched(t *testing.T) {
	root := t.TempDir()
	rec := &recorder{}
	startWatch(t, root, rec)

	sub := filepath.Join(root, "Ctx")
	_ = os.MkdirAll(sub, 0o755)
	time.Sleep(100 * time.Millisecond)
	_ = os.WriteFile(filepath.Join(sub, "deep.md"), []byte("# Deep"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.seen("Ctx/deep.md")
	}, "file in new subdir not reported")
}

func TestWatch_DeleteReported(t *testing.T) {
	root := t.TempDir()
	_ = os.WriteFile(filepath.Join(root, "del.md"), []byte("# Delete Me"), 0o644)
	rec := &recorder{}
	startWatch(t, root, rec)

	_ = os.Remove(filepath.Join(root, "del.md"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.seen("del.md")
	}, "deleted file not reported")
}

func TestWatch_BurstIsDebounced(t *testing.T) {
	root := t.TempDir()
	rec := &recorder{}
	startWatch(t, root, rec)

	for i := 0; i < 5; i++ {
		_ = os.WriteFile(filepath.Join(root, "burst.md"), []byte{byte('a' + i)}, 0o644)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.seen("burst.md")
	}, "burst not reported")

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.calls) == 0 || len(rec.calls[0]) != 1 {
		t.Errorf("first call = %v, want a single coalesced path", rec.calls)
	}
}
