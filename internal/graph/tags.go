package graph

import (
	"slices"

	"github.com/starford/scraps/internal/model"
	"github.com/starford/scraps/internal/scrap"
)

// Tags is the set of link targets that no scrap in the batch defines.
type Tags map[model.ScrapKey]struct{}

// NewTags returns the union of all links minus the keys of scraps.
func NewTags(scraps []scrap.Scrap) Tags {
	self := make(map[model.ScrapKey]struct{}, len(scraps))
	for _, s := range scraps {
		self[s.Key] = struct{}{}
	}
	tags := make(Tags)
	for _, s := range scraps {
		for _, link := range s.Links {
			if _, ok := self[link]; !ok {
				tags[link] = struct{}{}
			}
		}
	}
	return tags
}

// Contains reports whether key is a tag.
func (t Tags) Contains(key model.ScrapKey) bool {
	_, ok := t[key]
	return ok
}

// Len returns the number of tags.
func (t Tags) Len() int { return len(t) }

// Sorted returns the tags ordered by title, then context.
func (t Tags) Sorted() []model.ScrapKey {
	out := make([]model.ScrapKey, 0, len(t))
	for k := range t {
		out = append(out, k)
	}
	slices.SortFunc(out, model.ScrapKey.Compare)
	return out
}
