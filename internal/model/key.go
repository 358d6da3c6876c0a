// Package model defines the identity types shared by the content graph:
// titles, contexts, slugs, scrap keys and rendered content.
package model

import "strings"

// Title is the display text of a scrap.
type Title string

func (t Title) String() string { return string(t) }

// Slug returns the slug of the title.
func (t Title) Slug() Slug { return Slugify(string(t)) }

// Ctx is a namespace that disambiguates scraps sharing a title.
// The empty Ctx means the scrap has no context.
type Ctx string

func (c Ctx) String() string { return string(c) }

// Slug returns the slug of the context.
func (c Ctx) Slug() Slug { return Slugify(string(c)) }

// ScrapKey identifies a node of the content graph. It is comparable and is
// used directly as a map key.
type ScrapKey struct {
	Title Title
	Ctx   Ctx
}

// NewKey returns the key for title without a context.
func NewKey(title Title) ScrapKey {
	return ScrapKey{Title: title}
}

// NewKeyWithCtx returns the key for title inside ctx.
func NewKeyWithCtx(title Title, ctx Ctx) ScrapKey {
	return ScrapKey{Title: title, Ctx: ctx}
}

// ParseScrapKey splits a path-like string on its first slash. Without a
// slash the whole text is the title; otherwise the first segment is the
// context and the remainder, which may contain further slashes, the title.
func ParseScrapKey(path string) ScrapKey {
	ctx, title, found := strings.Cut(path, "/")
	if !found {
		return ScrapKey{Title: Title(path)}
	}
	return ScrapKey{Title: Title(title), Ctx: Ctx(ctx)}
}

// HasCtx reports whether the key carries a context.
func (k ScrapKey) HasCtx() bool { return k.Ctx != "" }

// String renders the key in its path form, "ctx/title" or "title".
func (k ScrapKey) String() string {
	if k.HasCtx() {
		return string(k.Ctx) + "/" + string(k.Title)
	}
	return string(k.Title)
}

// FileStem returns the on-disk and URL stem of the key: the title slug,
// followed by "." and the context slug when a context is present.
func (k ScrapKey) FileStem() string {
	if k.HasCtx() {
		return k.Title.Slug().String() + "." + k.Ctx.Slug().String()
	}
	return k.Title.Slug().String()
}

// Compare orders keys by title, then context. It is used for stable,
// deterministic listings.
func (k ScrapKey) Compare(o ScrapKey) int {
	if c := strings.Compare(string(k.Title), string(o.Title)); c != 0 {
		return c
	}
	return strings.Compare(string(k.Ctx), string(o.Ctx))
}
