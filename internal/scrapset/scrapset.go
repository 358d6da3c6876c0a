// Package scrapset loads every scrap of a directory into an immutable batch
// and derives the graph views over it.
package scrapset

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/starford/scraps/internal/apperr"
	"github.com/starford/scraps/internal/graph"
	"github.com/starford/scraps/internal/model"
	"github.com/starford/scraps/internal/scrap"
	"github.com/starford/scraps/internal/search"
	"github.com/starford/scraps/internal/storage"
	"github.com/starford/scraps/internal/timestamp"
)

// Set is one loaded batch of scraps. It is safe for concurrent reads.
type Set struct {
	base      model.BaseURL
	scraps    []scrap.Scrap
	files     []storage.ScrapFile
	byKey     map[model.ScrapKey]int
	backlinks graph.BacklinksMap
	hashtags  graph.BacklinksMap
	tags      graph.Tags
}

// Loader reads scraps from a store.
type Loader struct {
	Store   storage.Provider
	Stamper timestamp.Timestamper
	Logger  *slog.Logger
	// Workers bounds concurrent extraction. Zero means runtime.NumCPU().
	Workers int
}

// Load lists and extracts every scrap. Files are processed concurrently; the
// first failure cancels the rest and the whole batch is discarded.
func (l *Loader) Load(ctx context.Context, base model.BaseURL) (*Set, error) {
	files, err := l.Store.List()
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	stamper := l.Stamper
	if stamper == nil {
		stamper = timestamp.Nop{}
	}
	workers := l.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	scraps := make([]scrap.Scrap, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, f := range files {
		g.Go(func() error {
			data, err := l.Store.Read(f.Path)
			if err != nil {
				return fmt.Errorf("read scrap %s: %w", f.Path, err)
			}
			ts, err := stamper.Timestamp(gctx, f)
			if err != nil {
				return fmt.Errorf("timestamp %s: %w", f.Path, err)
			}
			scraps[i] = scrap.New(scrap.Source{
				Title:       model.Title(f.Title),
				Ctx:         model.Ctx(f.Ctx),
				Text:        string(data),
				CommittedTS: ts,
			}, base)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	set := New(scraps, base)
	set.files = files
	if l.Logger != nil {
		l.Logger.Debug("scrapset: loaded",
			slog.Int("scraps", len(scraps)),
			slog.Int("tags", set.tags.Len()))
	}
	return set, nil
}

// New builds a set from already extracted scraps.
func New(scraps []scrap.Scrap, base model.BaseURL) *Set {
	byKey := make(map[model.ScrapKey]int, len(scraps))
	for i, s := range scraps {
		byKey[s.Key] = i
	}
	return &Set{
		base:      base,
		scraps:    scraps,
		byKey:     byKey,
		backlinks: graph.NewBacklinksMap(scraps),
		hashtags:  graph.NewHashtagMap(scraps),
		tags:      graph.NewTags(scraps),
	}
}

// Base returns the base URL the set was rendered against.
func (s *Set) Base() model.BaseURL { return s.base }

// Scraps returns all scraps in load order.
func (s *Set) Scraps() []scrap.Scrap { return s.scraps }

// Len returns the number of scraps.
func (s *Set) Len() int { return len(s.scraps) }

// Get returns the scrap for key.
func (s *Set) Get(key model.ScrapKey) (scrap.Scrap, error) {
	i, ok := s.byKey[key]
	if !ok {
		return scrap.Scrap{}, fmt.Errorf("scrap %q: %w", key.String(), apperr.ErrNotFound)
	}
	return s.scraps[i], nil
}

// File returns the source file of key, when the set was loaded from a store.
func (s *Set) File(key model.ScrapKey) (storage.ScrapFile, bool) {
	i, ok := s.byKey[key]
	if !ok || i >= len(s.files) {
		return storage.ScrapFile{}, false
	}
	return s.files[i], true
}

// Backlinks returns the reverse link index of the set.
func (s *Set) Backlinks() graph.BacklinksMap { return s.backlinks }

// Tags returns the link targets without a scrap.
func (s *Set) Tags() graph.Tags { return s.tags }

// TagNames returns every tag of the set in key order: link targets without
// a scrap plus #[[...]] targets without a scrap.
func (s *Set) TagNames() []model.ScrapKey {
	seen := make(map[model.ScrapKey]struct{}, s.tags.Len())
	out := s.tags.Sorted()
	for _, k := range out {
		seen[k] = struct{}{}
	}
	for _, k := range s.hashtags.Keys() {
		if _, ok := s.byKey[k]; ok {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	slices.SortFunc(out, model.ScrapKey.Compare)
	return out
}

// TagBacklinks returns the scraps referring to tag by link or by #[[...]],
// each once, in load order.
func (s *Set) TagBacklinks(tag model.ScrapKey) []scrap.Scrap {
	hit := make(map[model.ScrapKey]struct{})
	for _, sc := range s.backlinks.Get(tag) {
		hit[sc.Key] = struct{}{}
	}
	for _, sc := range s.hashtags.Get(tag) {
		hit[sc.Key] = struct{}{}
	}
	out := make([]scrap.Scrap, 0, len(hit))
	for _, sc := range s.scraps {
		if _, ok := hit[sc.Key]; ok {
			out = append(out, sc)
		}
	}
	return out
}

// SearchItems returns one search item per scrap, in load order.
func (s *Set) SearchItems() []search.Item {
	items := make([]search.Item, 0, len(s.scraps))
	for _, sc := range s.scraps {
		items = append(items, search.NewItem(sc.Key.String(), s.base.ScrapURL(sc.Key), sc.RawText))
	}
	return items
}

// Lookup resolves a search result title back to its scrap.
func (s *Set) Lookup(title string) (scrap.Scrap, error) {
	return s.Get(model.ParseScrapKey(title))
}
