// Package build writes the static site for a loaded scrap set.
package build

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/scraps/internal/listing"
	"github.com/starford/scraps/internal/model"
	"github.com/starford/scraps/internal/render"
	"github.com/starford/scraps/internal/scrap"
	"github.com/starford/scraps/internal/scrapset"
	"github.com/starford/scraps/internal/storage"
)

// Builder renders every page of a set and writes it to Out.
type Builder struct {
	Renderer         *render.Renderer
	Out              storage.Provider
	Sort             listing.SortKey
	Paging           listing.Paging
	BuildSearchIndex bool
	Logger           *slog.Logger
	// Workers bounds concurrent page rendering. Zero means runtime.NumCPU().
	Workers int
}

// Stats summarises one build.
type Stats struct {
	Scraps     int
	Tags       int
	IndexPages int
	Duration   time.Duration
}

// Build writes index pages, one page per scrap and per tag, the tags index,
// the stylesheet and, when enabled, search.json. Outputs of an earlier build
// that this one no longer produces are removed afterwards.
func (b *Builder) Build(ctx context.Context, set *scrapset.Set) (Stats, error) {
	start := time.Now()
	logger := b.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sorted := listing.Sort(set.Scraps(), b.Sort, set.Backlinks())
	pages := listing.Paginate(sorted, b.Paging)
	tags := set.TagNames()
	entries := make([]render.TagEntry, 0, len(tags))
	for _, t := range tags {
		entries = append(entries, render.TagEntry{Key: t, BacklinksCount: len(set.TagBacklinks(t))})
	}
	view := render.IndexView{Sort: b.Sort, Tags: entries, SearchIndex: b.BuildSearchIndex}
	written := &outputs{paths: make(map[string]struct{})}

	workers := b.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, p := range pages {
		g.Go(func() error {
			return b.write(gctx, written, p.Pointer.FileName(), func(buf *bytes.Buffer) error {
				return b.Renderer.Index(buf, p, view)
			})
		})
	}
	for _, s := range set.Scraps() {
		g.Go(func() error {
			return b.write(gctx, written, scrapPath(s.Key), func(buf *bytes.Buffer) error {
				return b.Renderer.Scrap(buf, s, existingLinks(set, s), set.Backlinks().Get(s.Key))
			})
		})
	}
	for _, t := range tags {
		g.Go(func() error {
			return b.write(gctx, written, scrapPath(t), func(buf *bytes.Buffer) error {
				return b.Renderer.Tag(buf, t, set.TagBacklinks(t))
			})
		})
	}
	g.Go(func() error {
		return b.write(gctx, written, "tags/index.html", func(buf *bytes.Buffer) error {
			return b.Renderer.TagsIndex(buf, entries)
		})
	})
	g.Go(func() error {
		return b.write(gctx, written, "main.css", func(buf *bytes.Buffer) error {
			return b.Renderer.Stylesheet(buf)
		})
	})
	if b.BuildSearchIndex {
		g.Go(func() error {
			return b.write(gctx, written, "search.json", func(buf *bytes.Buffer) error {
				return render.SearchIndex(buf, set.SearchItems())
			})
		})
	}

	if err := g.Wait(); err != nil {
		return Stats{}, err
	}
	removed, err := b.prune(written)
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{
		Scraps:     set.Len(),
		Tags:       len(tags),
		IndexPages: len(pages),
		Duration:   time.Since(start),
	}
	logger.Info("build: done",
		slog.Int("scraps", stats.Scraps),
		slog.Int("tags", stats.Tags),
		slog.Int("index_pages", stats.IndexPages),
		slog.Int("removed", removed),
		slog.Duration("duration", stats.Duration))
	return stats, nil
}

func (b *Builder) write(ctx context.Context, written *outputs, path string, fill func(*bytes.Buffer) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := fill(&buf); err != nil {
		return fmt.Errorf("build %s: %w", path, err)
	}
	if err := b.Out.Write(path, buf.Bytes()); err != nil {
		return err
	}
	written.add(path)
	return nil
}

// outputs is the set of paths written by one build.
type outputs struct {
	mu    sync.Mutex
	paths map[string]struct{}
}

func (o *outputs) add(path string) {
	o.mu.Lock()
	o.paths[path] = struct{}{}
	o.mu.Unlock()
}

func (o *outputs) has(path string) bool {
	_, ok := o.paths[path]
	return ok
}

var indexPage = regexp.MustCompile(`^[0-9]+\.html$`)

// prune removes generated files this build did not write: pages under
// scraps/, numbered index pages and search.json. Other files in the output
// root are left alone.
func (b *Builder) prune(written *outputs) (int, error) {
	stale, err := b.Out.Files("scraps")
	if err != nil {
		return 0, err
	}
	root, err := b.Out.Files("")
	if err != nil {
		return 0, err
	}
	for _, p := range root {
		if indexPage.MatchString(p) || p == "search.json" {
			stale = append(stale, p)
		}
	}
	removed := 0
	for _, p := range stale {
		if written.has(p) {
			continue
		}
		if err := b.Out.Remove(p); err != nil {
			return removed, fmt.Errorf("build: prune %s: %w", p, err)
		}
		removed++
	}
	return removed, nil
}

func scrapPath(key model.ScrapKey) string {
	return "scraps/" + key.FileStem() + ".html"
}

// existingLinks returns the scraps s links to that exist in set.
func existingLinks(set *scrapset.Set, s scrap.Scrap) []scrap.Scrap {
	out := make([]scrap.Scrap, 0, len(s.Links))
	for _, l := range s.Links {
		if target, err := set.Get(l); err == nil {
			out = append(out, target)
		}
	}
	return out
}
