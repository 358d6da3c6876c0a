package timestamp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/starford/scraps/internal/apperr"
	"github.com/starford/scraps/internal/storage"
)

func TestParseUnix(t *testing.T) {
	v, err := parseUnix("1700000000\n")
	if err != nil || v == nil || *v != 1700000000 {
		t.Fatalf("parseUnix = %v, %v", v, err)
	}
	v, err = parseUnix("\n")
	if err != nil || v != nil {
		t.Errorf("empty output = %v, %v; want nil, nil", v, err)
	}
	if _, err := parseUnix("yesterday"); !errors.Is(err, apperr.ErrParse) {
		t.Errorf("err = %v, want ErrParse", err)
	}
}

func TestNop(t *testing.T) {
	v, err := Nop{}.Timestamp(context.Background(), storage.ScrapFile{Path: "a.md"})
	if v != nil || err != nil {
		t.Errorf("Nop = %v, %v", v, err)
	}
}

func TestGit_OutsideRepositoryIsNil(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	g := NewGit(t.TempDir(), logger)
	v, err := g.Timestamp(context.Background(), storage.ScrapFile{Path: "a.md"})
	if err != nil {
		t.Fatalf("Timestamp: %v", err)
	}
	if v != nil {
		t.Errorf("timestamp = %d, want nil", *v)
	}
}

func TestInitRepo_CommittedFileHasTimestamp(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	ctx := context.Background()
	dir := t.TempDir()
	if err := InitRepo(ctx, dir); err != nil {
		t.Fatalf("InitRepo: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".git")); err != nil {
		t.Fatalf("no .git: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "a.md"), []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, args := range [][]string{
		{"add", "a.md"},
		{"-c", "user.name=scraps", "-c", "user.email=scraps@example.com", "commit", "--quiet", "-m", "add a"},
	} {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}

	g := NewGit(dir, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	v, err := g.Timestamp(ctx, storage.ScrapFile{Path: "a.md"})
	if err != nil {
		t.Fatalf("Timestamp: %v", err)
	}
	if v == nil || *v <= 0 {
		t.Errorf("timestamp = %v, want commit time", v)
	}
}
