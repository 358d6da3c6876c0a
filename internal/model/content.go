package model

import (
	"html"
	"net/url"
	"strings"
)

// ElementKind distinguishes the two kinds of content elements.
type ElementKind int

const (
	// ElementRaw is a ready-to-emit HTML fragment.
	ElementRaw ElementKind = iota
	// ElementAutolink is a bare URL that renderers may expand (e.g. into a
	// link card).
	ElementAutolink
)

// Element is one piece of rendered scrap content.
type Element struct {
	Kind ElementKind
	HTML string
	URL  *url.URL
}

// Raw returns a raw HTML element.
func Raw(fragment string) Element {
	return Element{Kind: ElementRaw, HTML: fragment}
}

// Autolink returns an autolink element for u.
func Autolink(u *url.URL) Element {
	return Element{Kind: ElementAutolink, URL: u}
}

// String renders the element as HTML. Autolinks fall back to a plain anchor.
func (e Element) String() string {
	if e.Kind == ElementAutolink && e.URL != nil {
		s := html.EscapeString(e.URL.String())
		return `<a href="` + s + `">` + s + `</a>`
	}
	return e.HTML
}

// Content is the ordered sequence of elements rendered from a scrap body.
type Content []Element

// String concatenates all elements into a single HTML document fragment.
func (c Content) String() string {
	var b strings.Builder
	for _, e := range c {
		b.WriteString(e.String())
	}
	return b.String()
}

// Autolinks returns the URLs of all autolink elements in order.
func (c Content) Autolinks() []*url.URL {
	var out []*url.URL
	for _, e := range c {
		if e.Kind == ElementAutolink {
			out = append(out, e.URL)
		}
	}
	return out
}
