// Package timestamp resolves the last commit time of scrap files.
package timestamp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/starford/scraps/internal/apperr"
	"github.com/starford/scraps/internal/storage"
)

// Timestamper returns the unix commit time of a file, or nil when the file
// has no commit.
type Timestamper interface {
	Timestamp(ctx context.Context, file storage.ScrapFile) (*int64, error)
}

// Nop never knows a timestamp.
type Nop struct{}

func (Nop) Timestamp(context.Context, storage.ScrapFile) (*int64, error) { return nil, nil }

// Git reads timestamps from `git log`. Root is the scraps directory; file
// paths are resolved against it.
type Git struct {
	Root string
	bin  string
}

// NewGit returns a Git timestamper, or Nop when no git binary is on PATH.
func NewGit(root string, logger *slog.Logger) Timestamper {
	bin, err := exec.LookPath("git")
	if err != nil {
		logger.Warn("timestamp: git not found, commit dates disabled", slog.String("error", err.Error()))
		return Nop{}
	}
	return &Git{Root: root, bin: bin}
}

func (g *Git) Timestamp(ctx context.Context, file storage.ScrapFile) (*int64, error) {
	cmd := exec.CommandContext(ctx, g.bin, "log", "-1", "--format=%ct", "--", filepath.FromSlash(file.Path))
	cmd.Dir = g.Root
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// not a repository or unreadable history
			return nil, nil
		}
		return nil, fmt.Errorf("timestamp: git log %s: %w: %w", file.Path, apperr.ErrIO, err)
	}
	return parseUnix(string(out))
}

// parseUnix parses the output of `git log --format=%ct`. Empty output
// means the file is untracked.
func parseUnix(out string) (*int64, error) {
	s := strings.TrimSpace(out)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("timestamp: %q: %w", s, apperr.ErrParse)
	}
	return &v, nil
}

// InitRepo runs `git init` in dir so that scraps committed there get
// commit dates.
func InitRepo(ctx context.Context, dir string) error {
	bin, err := exec.LookPath("git")
	if err != nil {
		return fmt.Errorf("timestamp: git init: %w: %w", apperr.ErrIO, err)
	}
	cmd := exec.CommandContext(ctx, bin, "init", "--quiet")
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("timestamp: git init %s: %w: %w: %s", dir, apperr.ErrIO, err, strings.TrimSpace(string(out)))
	}
	return nil
}
