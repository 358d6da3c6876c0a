// Package lint finds wiki links that resolve to neither a scrap nor an
// explicit #[[tag]].
package lint

import (
	"github.com/starford/scraps/internal/model"
	"github.com/starford/scraps/internal/scrap"
)

// Warning is one implicit tag: a link to a missing scrap that was not marked
// with #[[...]] in the same scrap.
type Warning struct {
	Scrap      model.ScrapKey
	BrokenLink model.ScrapKey
}

// Run returns the warnings of scraps, in scrap order then link order.
func Run(scraps []scrap.Scrap) []Warning {
	keys := make(map[model.ScrapKey]struct{}, len(scraps))
	for _, s := range scraps {
		keys[s.Key] = struct{}{}
	}

	out := make([]Warning, 0)
	for _, s := range scraps {
		suppressed := make(map[model.ScrapKey]struct{}, len(s.TagsSuppressed))
		for _, t := range s.TagsSuppressed {
			suppressed[t] = struct{}{}
		}
		for _, l := range s.Links {
			if _, ok := keys[l]; ok {
				continue
			}
			if _, ok := suppressed[l]; ok {
				continue
			}
			out = append(out, Warning{Scrap: s.Key, BrokenLink: l})
		}
	}
	return out
}
