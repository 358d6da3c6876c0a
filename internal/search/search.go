// Package search ranks scraps against a free-text query.
package search

import (
	"fmt"
	"strings"

	"github.com/starford/scraps/internal/apperr"
)

// Item is one searchable scrap.
type Item struct {
	Title string
	URL   string
	Body  string
}

// NewItem returns an item for a scrap with the given title, page URL and
// markdown body.
func NewItem(title, url, body string) Item {
	return Item{Title: title, URL: url, Body: body}
}

// text is the combined searchable text of the item.
func (i Item) text() string { return i.Title + " " + i.Body }

// Result is a ranked match.
type Result struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Score int    `json:"-"`
}

// Engine ranks items against a query. A limit of zero or less means no
// limit.
type Engine interface {
	Search(items []Item, query string, limit int) []Result
}

// Logic combines the scores of several keywords.
type Logic int

const (
	// Or accepts an item when any keyword matches.
	Or Logic = iota
	// And accepts an item only when every keyword matches.
	And
)

// ParseLogic parses "and" or "or", case-insensitively. The empty string is
// Or.
func ParseLogic(s string) (Logic, error) {
	switch strings.ToLower(s) {
	case "", "or":
		return Or, nil
	case "and":
		return And, nil
	}
	return Or, fmt.Errorf("search logic %q: %w", s, apperr.ErrParse)
}

func (l Logic) String() string {
	if l == And {
		return "and"
	}
	return "or"
}

// head returns the first limit items as unscored results.
func head(items []Item, limit int) []Result {
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	out := make([]Result, 0, len(items))
	for _, it := range items {
		out = append(out, Result{Title: it.Title, URL: it.URL})
	}
	return out
}

func truncate(rs []Result, limit int) []Result {
	if limit > 0 && limit < len(rs) {
		return rs[:limit]
	}
	return rs
}
