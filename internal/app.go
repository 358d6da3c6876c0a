package internal

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/starford/scraps/internal/build"
	"github.com/starford/scraps/internal/index"
	"github.com/starford/scraps/internal/listing"
	"github.com/starford/scraps/internal/render"
	"github.com/starford/scraps/internal/scrapset"
	"github.com/starford/scraps/internal/storage"
	"github.com/starford/scraps/internal/template"
	"github.com/starford/scraps/internal/timestamp"
)

// wiring holds the collaborators shared by every command.
type wiring struct {
	cfg    *Config
	logger *slog.Logger
	stdout io.Writer
	scraps *storage.FS
	db     *index.DB
	git    timestamp.Timestamper
	loader *scrapset.Loader
}

// newWiring applies opts and opens the scraps directory and the commit
// stamp cache. logTo receives the JSON log unless WithLogger is given.
func newWiring(logTo io.Writer, opts ...Option) (*wiring, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := app.logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(logTo, &slog.HandlerOptions{
			Level: cfg.App.LogLevel,
		}))
		slog.SetDefault(logger)
	}
	stdout := app.stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	logger.Debug("Configuration loaded",
		slog.String("scraps_path", cfg.Scraps.Path),
		slog.String("public_path", cfg.Public.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("base_url", cfg.Site.BaseURL),
		slog.String("log_level", cfg.App.LogLevel.String()))

	scraps, err := storage.EnsureFS(cfg.Scraps.Path)
	if err != nil {
		return nil, fmt.Errorf("init scraps storage: %w", err)
	}

	if dir := filepath.Dir(cfg.SQLite.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init stamp cache: %w", err)
	}

	git := timestamp.NewGit(scraps.Root(), logger)
	stamp := &index.CachedTimestamper{Cache: db, Next: git, Logger: logger}
	return &wiring{
		cfg:    cfg,
		logger: logger,
		stdout: stdout,
		scraps: scraps,
		db:     db,
		git:    git,
		loader: &scrapset.Loader{Store: scraps, Stamper: stamp, Logger: logger},
	}, nil
}

func (rt *wiring) close() {
	if err := rt.db.Close(); err != nil {
		rt.logger.Warn("close stamp cache", slog.String("error", err.Error()))
	}
}

// syncStamps prunes and refreshes the commit stamp cache. Failures only
// cost commit dates, so they are logged.
func (rt *wiring) syncStamps(ctx context.Context) {
	if err := index.Sync(ctx, rt.db, rt.scraps, rt.git, rt.logger); err != nil {
		rt.logger.Warn("stamp sync failed", slog.String("error", err.Error()))
	}
}

func (rt *wiring) builder() (*build.Builder, error) {
	site := rt.cfg.Site
	var static fs.FS
	if site.StaticPath != "" {
		static = os.DirFS(site.StaticPath)
	}
	r, err := render.New(render.Site{
		Title:       site.Title,
		Description: site.Description,
		Favicon:     site.Favicon,
		Lang:        site.Lang,
		BaseURL:     site.ParsedBaseURL(),
		ColorScheme: site.Scheme(),
	}, site.Location(), static)
	if err != nil {
		return nil, err
	}
	out, err := storage.EnsureFS(rt.cfg.Public.Path)
	if err != nil {
		return nil, fmt.Errorf("init public storage: %w", err)
	}
	return &build.Builder{
		Renderer:         r,
		Out:              out,
		Sort:             rt.cfg.Scraps.Sort(),
		Paging:           listing.Paging(rt.cfg.Scraps.PaginateBy),
		BuildSearchIndex: rt.cfg.Scraps.BuildSearchIndex,
		Logger:           rt.logger,
	}, nil
}

func (rt *wiring) generator() (*template.Generator, error) {
	templates, err := storage.EnsureFS(rt.cfg.Scraps.TemplatesPath)
	if err != nil {
		return nil, fmt.Errorf("init templates storage: %w", err)
	}
	return &template.Generator{
		Templates: templates,
		Scraps:    rt.scraps,
		Location:  rt.cfg.Site.Location(),
	}, nil
}
