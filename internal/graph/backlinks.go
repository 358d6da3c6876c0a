// Package graph derives the reverse edges of the content graph: backlinks
// for every link target and the set of tags.
package graph

import (
	"github.com/starford/scraps/internal/model"
	"github.com/starford/scraps/internal/scrap"
)

// BacklinksMap maps a link target to the scraps linking to it.
type BacklinksMap struct {
	m map[model.ScrapKey][]scrap.Scrap
}

// NewBacklinksMap indexes scraps by their outgoing links. Each bucket keeps
// the order in which scraps appear in the input.
func NewBacklinksMap(scraps []scrap.Scrap) BacklinksMap {
	return reverse(scraps, func(s scrap.Scrap) []model.ScrapKey { return s.Links })
}

// NewHashtagMap indexes scraps by their #[[...]] targets. These are not
// links, so they never appear in a BacklinksMap.
func NewHashtagMap(scraps []scrap.Scrap) BacklinksMap {
	return reverse(scraps, func(s scrap.Scrap) []model.ScrapKey { return s.TagsSuppressed })
}

func reverse(scraps []scrap.Scrap, edges func(scrap.Scrap) []model.ScrapKey) BacklinksMap {
	m := make(map[model.ScrapKey][]scrap.Scrap)
	for _, s := range scraps {
		for _, k := range edges(s) {
			m[k] = append(m[k], s)
		}
	}
	return BacklinksMap{m: m}
}

// Get returns the scraps linking to key. Unknown keys yield an empty,
// non-nil slice. The returned slice is a copy.
func (b BacklinksMap) Get(key model.ScrapKey) []scrap.Scrap {
	bucket := b.m[key]
	out := make([]scrap.Scrap, len(bucket))
	copy(out, bucket)
	return out
}

// Count returns the number of scraps linking to key.
func (b BacklinksMap) Count(key model.ScrapKey) int {
	return len(b.m[key])
}

// Keys returns every target with at least one backlink, in no particular
// order.
func (b BacklinksMap) Keys() []model.ScrapKey {
	out := make([]model.ScrapKey, 0, len(b.m))
	for k := range b.m {
		out = append(out, k)
	}
	return out
}
