package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/scraps/internal/build"
	"github.com/starford/scraps/internal/lint"
	"github.com/starford/scraps/internal/mcpserver"
	"github.com/starford/scraps/internal/model"
	"github.com/starford/scraps/internal/report"
	"github.com/starford/scraps/internal/scrapservice"
	"github.com/starford/scraps/internal/search"
)

// The commands below keep stdout for their own output and log to stderr.

// Build writes the static site to the public directory once.
func Build(ctx context.Context, opts ...Option) (build.Stats, error) {
	rt, err := newWiring(os.Stderr, opts...)
	if err != nil {
		return build.Stats{}, err
	}
	defer rt.close()

	builder, err := rt.builder()
	if err != nil {
		return build.Stats{}, err
	}
	set, err := loadSet(ctx, rt)
	if err != nil {
		return build.Stats{}, err
	}
	stats, err := builder.Build(ctx, set)
	if err != nil {
		return build.Stats{}, fmt.Errorf("build: %w", err)
	}
	return stats, nil
}

// Search prints the scraps matching query as a markdown list of links.
func Search(ctx context.Context, query string, logic search.Logic, limit int, opts ...Option) error {
	rt, err := newWiring(os.Stderr, opts...)
	if err != nil {
		return err
	}
	defer rt.close()

	base := rt.cfg.Site.ParsedBaseURL()
	svc := scrapservice.NewService(rt.loader, base)
	rt.syncStamps(ctx)
	list, err := svc.Search(ctx, query, logic, limit)
	if err != nil {
		return err
	}
	hits := make([]report.SearchHit, 0, len(list.Results))
	for _, r := range list.Results {
		key := model.NewKey(model.Title(r.Title))
		if r.Ctx != nil {
			key = model.NewKeyWithCtx(model.Title(r.Title), model.Ctx(*r.Ctx))
		}
		hits = append(hits, report.SearchHit{Title: key.String(), URL: base.ScrapURL(key)})
	}
	return report.Search(rt.stdout, query, hits)
}

// Tags prints every tag with its backlink count, most referenced first.
func Tags(ctx context.Context, opts ...Option) error {
	rt, err := newWiring(os.Stderr, opts...)
	if err != nil {
		return err
	}
	defer rt.close()

	svc := scrapservice.NewService(rt.loader, rt.cfg.Site.ParsedBaseURL())
	rt.syncStamps(ctx)
	tags, err := svc.ListTags(ctx)
	if err != nil {
		return err
	}
	return report.Tags(rt.stdout, tags)
}

// Lint prints links that resolve to neither a scrap nor an explicit tag and
// returns how many were found.
func Lint(ctx context.Context, opts ...Option) (int, error) {
	rt, err := newWiring(os.Stderr, opts...)
	if err != nil {
		return 0, err
	}
	defer rt.close()

	set, err := loadSet(ctx, rt)
	if err != nil {
		return 0, err
	}
	warnings := lint.Run(set.Scraps())
	if err := report.Lint(rt.stdout, warnings); err != nil {
		return 0, err
	}
	return len(warnings), nil
}

// MCP serves the scrap tools over stdio until the client disconnects.
func MCP(ctx context.Context, version string, opts ...Option) error {
	rt, err := newWiring(os.Stderr, opts...)
	if err != nil {
		return err
	}
	defer rt.close()

	rt.syncStamps(ctx)
	svc := scrapservice.NewService(rt.loader, rt.cfg.Site.ParsedBaseURL())
	rt.logger.Info("mcp: serving on stdio", slog.String("scraps_path", rt.scraps.Root()))
	return mcpserver.New(svc, version).ServeStdio()
}

// TemplateList prints the names of the available scrap templates.
func TemplateList(_ context.Context, opts ...Option) error {
	rt, err := newWiring(os.Stderr, opts...)
	if err != nil {
		return err
	}
	defer rt.close()

	gen, err := rt.generator()
	if err != nil {
		return err
	}
	names, err := gen.List()
	if err != nil {
		return err
	}
	for _, n := range names {
		if _, err := fmt.Fprintln(rt.stdout, n); err != nil {
			return err
		}
	}
	return nil
}

// TemplateGenerate creates a scrap from the named template and prints its
// path. An empty title uses the title from the template metadata.
func TemplateGenerate(_ context.Context, name, title string, opts ...Option) error {
	rt, err := newWiring(os.Stderr, opts...)
	if err != nil {
		return err
	}
	defer rt.close()

	gen, err := rt.generator()
	if err != nil {
		return err
	}
	path, err := gen.Generate(name, title)
	if err != nil {
		return err
	}
	rt.logger.Info("template: generated", slog.String("template", name), slog.String("path", path))
	_, err = fmt.Fprintln(rt.stdout, path)
	return err
}
