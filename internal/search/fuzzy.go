package search

import (
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Fuzzy scores every whitespace separated keyword against the title and body
// of each item with a subsequence matcher and sums the scores.
type Fuzzy struct {
	Logic Logic
}

func (f Fuzzy) Search(items []Item, query string, limit int) []Result {
	keywords := strings.Fields(strings.ToLower(query))
	if len(keywords) == 0 {
		return head(items, limit)
	}

	texts := make([]string, len(items))
	for i, it := range items {
		texts[i] = strings.ToLower(it.text())
	}

	scores := make([]int, len(items))
	hits := make([]int, len(items))
	for _, kw := range keywords {
		for _, m := range fuzzy.Find(kw, texts) {
			scores[m.Index] += m.Score
			hits[m.Index]++
		}
	}

	out := make([]Result, 0)
	for i, it := range items {
		if hits[i] == 0 || (f.Logic == And && hits[i] < len(keywords)) {
			continue
		}
		out = append(out, Result{Title: it.Title, URL: it.URL, Score: scores[i]})
	}
	// ties keep input order
	slices.SortStableFunc(out, func(a, b Result) int { return b.Score - a.Score })
	return truncate(out, limit)
}
