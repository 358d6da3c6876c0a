// Package listing orders scraps for index pages and splits them into pages.
package listing

import (
	"fmt"
	"slices"

	"github.com/starford/scraps/internal/apperr"
	"github.com/starford/scraps/internal/graph"
	"github.com/starford/scraps/internal/scrap"
)

// SortKey selects the order of index pages.
type SortKey string

const (
	// CommittedDate orders by last commit time, newest first.
	CommittedDate SortKey = "committed_date"
	// LinkedCount orders by number of backlinks, most linked first.
	LinkedCount SortKey = "linked_count"
)

// ParseSortKey parses the config spelling of a sort key.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(s); k {
	case CommittedDate, LinkedCount:
		return k, nil
	}
	return "", fmt.Errorf("sort key %q: %w", s, apperr.ErrParse)
}

// Label returns the human readable name shown on index pages.
func (k SortKey) Label() string {
	switch k {
	case LinkedCount:
		return "linked count"
	default:
		return "committed date"
	}
}

// Sort returns a copy of scraps ordered by key, descending. Scraps without a
// commit timestamp sort as oldest. Ties keep their input order.
func Sort(scraps []scrap.Scrap, key SortKey, backlinks graph.BacklinksMap) []scrap.Scrap {
	out := slices.Clone(scraps)
	if out == nil {
		out = []scrap.Scrap{}
	}
	switch key {
	case LinkedCount:
		slices.SortStableFunc(out, func(a, b scrap.Scrap) int {
			return backlinks.Count(b.Key) - backlinks.Count(a.Key)
		})
	default:
		slices.SortStableFunc(out, func(a, b scrap.Scrap) int {
			return compareTS(b.CommittedTS, a.CommittedTS)
		})
	}
	return out
}

func compareTS(a, b *int64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	}
	return 0
}
