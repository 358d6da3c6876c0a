package scrapservice

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/starford/scraps/internal/apperr"
	"github.com/starford/scraps/internal/model"
	"github.com/starford/scraps/internal/scrap"
	"github.com/starford/scraps/internal/scrapset"
	"github.com/starford/scraps/internal/search"
)

// DefaultSearchLimit is used when a caller passes no limit.
const DefaultSearchLimit = 100

// KeyJSON identifies a scrap or tag. Ctx is null when the scrap has none.
type KeyJSON struct {
	Title string  `json:"title"`
	Ctx   *string `json:"ctx"`
}

// ScrapJSON is the compact representation of a scrap.
type ScrapJSON struct {
	Title  string  `json:"title"`
	Ctx    *string `json:"ctx"`
	MDText string  `json:"md_text"`
}

// ScrapDetail is the full representation of a scrap.
type ScrapDetail struct {
	Title       string    `json:"title"`
	Ctx         *string   `json:"ctx"`
	MDText      string    `json:"md_text"`
	URL         string    `json:"url"`
	HTML        string    `json:"html"`
	Links       []KeyJSON `json:"links"`
	Backlinks   []KeyJSON `json:"backlinks"`
	Thumbnail   *string   `json:"thumbnail"`
	CommittedTS *int64    `json:"committed_ts"`
}

// ScrapList wraps a list of scraps with its length.
type ScrapList struct {
	Results []ScrapJSON `json:"results"`
	Count   int         `json:"count"`
}

// TagJSON is one tag with the number of scraps referring to it.
type TagJSON struct {
	Title          string `json:"title"`
	BacklinksCount int    `json:"backlinks_count"`
}

// Service answers graph queries over the scraps directory.
type Service struct {
	loader *scrapset.Loader
	base   model.BaseURL
	cache  bool

	mu  sync.RWMutex
	set *scrapset.Set
}

// NewService creates a service that loads a fresh set on every call.
func NewService(loader *scrapset.Loader, base model.BaseURL) *Service {
	return &Service{loader: loader, base: base}
}

// NewCachedService creates a service that keeps the loaded set until
// Refresh is called.
func NewCachedService(loader *scrapset.Loader, base model.BaseURL) *Service {
	return &Service{loader: loader, base: base, cache: true}
}

// Refresh reloads the set. On failure the previous set is kept.
func (s *Service) Refresh(ctx context.Context) (*scrapset.Set, error) {
	set, err := s.loader.Load(ctx, s.base)
	if err != nil {
		return nil, err
	}
	if s.cache {
		s.mu.Lock()
		s.set = set
		s.mu.Unlock()
	}
	return set, nil
}

// Set returns the current set, loading it if needed.
func (s *Service) Set(ctx context.Context) (*scrapset.Set, error) {
	if s.cache {
		s.mu.RLock()
		set := s.set
		s.mu.RUnlock()
		if set != nil {
			return set, nil
		}
	}
	return s.Refresh(ctx)
}

// GetScrap returns one scrap with its links and backlinks.
func (s *Service) GetScrap(ctx context.Context, key model.ScrapKey) (*ScrapDetail, error) {
	set, err := s.Set(ctx)
	if err != nil {
		return nil, err
	}
	sc, err := set.Get(key)
	if err != nil {
		return nil, err
	}
	d := &ScrapDetail{
		Title:       sc.Title().String(),
		Ctx:         ctxPtr(sc.Ctx()),
		MDText:      sc.RawText,
		URL:         s.base.ScrapURL(sc.Key),
		HTML:        sc.Content.String(),
		Links:       keysJSON(sc.Links),
		Backlinks:   scrapKeysJSON(set.Backlinks().Get(sc.Key)),
		CommittedTS: sc.CommittedTS,
	}
	if sc.Thumbnail != nil {
		u := sc.Thumbnail.String()
		d.Thumbnail = &u
	}
	return d, nil
}

// Search ranks scraps against query. A limit of zero or less uses
// DefaultSearchLimit.
func (s *Service) Search(ctx context.Context, query string, logic search.Logic, limit int) (*ScrapList, error) {
	set, err := s.Set(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	results := search.Fuzzy{Logic: logic}.Search(set.SearchItems(), query, limit)
	out := make([]scrap.Scrap, 0, len(results))
	for _, r := range results {
		sc, err := set.Lookup(r.Title)
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return scrapList(out), nil
}

// Links returns the existing scraps that key links to, in link order.
func (s *Service) Links(ctx context.Context, key model.ScrapKey) (*ScrapList, error) {
	set, err := s.Set(ctx)
	if err != nil {
		return nil, err
	}
	sc, err := set.Get(key)
	if err != nil {
		return nil, err
	}
	out := make([]scrap.Scrap, 0, len(sc.Links))
	for _, l := range sc.Links {
		if target, err := set.Get(l); err == nil {
			out = append(out, target)
		}
	}
	return scrapList(out), nil
}

// Backlinks returns the scraps linking to key.
func (s *Service) Backlinks(ctx context.Context, key model.ScrapKey) (*ScrapList, error) {
	set, err := s.Set(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := set.Get(key); err != nil {
		return nil, err
	}
	return scrapList(set.Backlinks().Get(key)), nil
}

// ListTags returns every tag, most referenced first. Ties are ordered by
// key.
func (s *Service) ListTags(ctx context.Context) ([]TagJSON, error) {
	set, err := s.Set(ctx)
	if err != nil {
		return nil, err
	}
	names := set.TagNames()
	out := make([]TagJSON, 0, len(names))
	for _, k := range names {
		out = append(out, TagJSON{Title: k.String(), BacklinksCount: len(set.TagBacklinks(k))})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].BacklinksCount > out[j].BacklinksCount })
	return out, nil
}

// TagBacklinks returns the keys of the scraps referring to tag.
func (s *Service) TagBacklinks(ctx context.Context, tag model.ScrapKey) ([]KeyJSON, error) {
	set, err := s.Set(ctx)
	if err != nil {
		return nil, err
	}
	if !isTag(set, tag) {
		return nil, fmt.Errorf("tag %q: %w", tag.String(), apperr.ErrNotFound)
	}
	return scrapKeysJSON(set.TagBacklinks(tag)), nil
}

func isTag(set *scrapset.Set, tag model.ScrapKey) bool {
	for _, k := range set.TagNames() {
		if k == tag {
			return true
		}
	}
	return false
}

func ctxPtr(c model.Ctx) *string {
	if c == "" {
		return nil
	}
	v := c.String()
	return &v
}

func keysJSON(keys []model.ScrapKey) []KeyJSON {
	out := make([]KeyJSON, 0, len(keys))
	for _, k := range keys {
		out = append(out, KeyJSON{Title: k.Title.String(), Ctx: ctxPtr(k.Ctx)})
	}
	return out
}

func scrapKeysJSON(scraps []scrap.Scrap) []KeyJSON {
	out := make([]KeyJSON, 0, len(scraps))
	for _, sc := range scraps {
		out = append(out, KeyJSON{Title: sc.Title().String(), Ctx: ctxPtr(sc.Ctx())})
	}
	return out
}

func scrapList(scraps []scrap.Scrap) *ScrapList {
	out := make([]ScrapJSON, 0, len(scraps))
	for _, sc := range scraps {
		out = append(out, ScrapJSON{Title: sc.Title().String(), Ctx: ctxPtr(sc.Ctx()), MDText: sc.RawText})
	}
	return &ScrapList{Results: out, Count: len(out)}
}
