package search

import "strings"

// Baseline matches titles by case-insensitive substring, keeping input
// order.
type Baseline struct{}

func (Baseline) Search(items []Item, query string, limit int) []Result {
	if query == "" {
		return head(items, limit)
	}
	q := strings.ToLower(query)
	out := make([]Result, 0)
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Title), q) {
			out = append(out, Result{Title: it.Title, URL: it.URL})
		}
	}
	return truncate(out, limit)
}
