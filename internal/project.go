package internal

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/starford/scraps/internal/apperr"
	"github.com/starford/scraps/internal/storage"
	"github.com/starford/scraps/internal/timestamp"
)

const (
	projectConfigPath = "config/config.yaml"
	projectGitignore  = "public\nscraps.db\n"
)

// Init lays out a new project in dir: an empty scraps directory, a default
// config file and a .gitignore, then runs `git init` there. WithConfig
// replaces the default config written to the project. An existing scraps
// directory is ErrAlreadyExists.
func Init(ctx context.Context, dir string, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	logger := app.logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	stdout := app.stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	cfg := app.config
	if cfg == nil {
		cfg = NewDefaultConfig()
		cfg.Site.Title = filepath.Base(filepath.Clean(dir))
	}

	project, err := storage.EnsureFS(dir)
	if err != nil {
		return fmt.Errorf("init project: %w", err)
	}
	if err := os.Mkdir(filepath.Join(project.Root(), "scraps"), 0o755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("init %s: scraps directory: %w", dir, apperr.ErrAlreadyExists)
		}
		return fmt.Errorf("init %s: scraps directory: %w: %w", dir, apperr.ErrIO, err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("init %s: encode config: %w", dir, err)
	}
	if err := project.Write(projectConfigPath, data); err != nil {
		return fmt.Errorf("init %s: %w", dir, err)
	}
	if err := project.Write(".gitignore", []byte(projectGitignore)); err != nil {
		return fmt.Errorf("init %s: %w", dir, err)
	}
	if err := timestamp.InitRepo(ctx, project.Root()); err != nil {
		return fmt.Errorf("init %s: %w", dir, err)
	}

	logger.Info("project created", slog.String("path", project.Root()))
	_, err = fmt.Fprintln(stdout, project.Root())
	return err
}
