// Package markdown extracts wiki links, tags, head images and frontmatter
// from scrap bodies and renders them to content elements. It is built on
// goldmark with a WikiLink inline extension.
package markdown

import (
	"net/url"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/starford/scraps/internal/model"
)

// newEngine returns a goldmark instance with the scrap dialect enabled.
// Linkify is left off: bare URLs are only links when written as <autolinks>.
func newEngine() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.Table,
			extension.Strikethrough,
			extension.TaskList,
			extension.Footnote,
			extension.DefinitionList,
			WikiLinks,
		),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
}

// Document is a parsed scrap body.
type Document struct {
	source []byte
	root   ast.Node
}

// Parse parses body as markdown. Parsing never fails; malformed syntax is
// kept as text.
func Parse(body string) *Document {
	src := []byte(body)
	return &Document{
		source: src,
		root:   newEngine().Parser().Parse(text.NewReader(src)),
	}
}

// wikiLinks returns all wiki-link nodes in document order.
func (d *Document) wikiLinks() []*WikiLink {
	var out []*WikiLink
	_ = ast.Walk(d.root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if wl, ok := n.(*WikiLink); ok {
			out = append(out, wl)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return out
}

func (d *Document) collect(tagged bool) []model.ScrapKey {
	seen := make(map[model.ScrapKey]struct{})
	out := make([]model.ScrapKey, 0)
	for _, wl := range d.wikiLinks() {
		if wl.Tagged != tagged {
			continue
		}
		k := wl.Key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// Links returns the distinct targets of plain wiki links in first-occurrence
// order. #[[...]] tags are not included.
func (d *Document) Links() []model.ScrapKey { return d.collect(false) }

// Tags returns the distinct targets of #[[...]] tags in first-occurrence
// order.
func (d *Document) Tags() []model.ScrapKey { return d.collect(true) }

// HeadImage returns the first image whose destination is an absolute URL.
func (d *Document) HeadImage() *url.URL {
	var found *url.URL
	_ = ast.Walk(d.root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || found != nil {
			return ast.WalkContinue, nil
		}
		img, ok := n.(*ast.Image)
		if !ok {
			return ast.WalkContinue, nil
		}
		u, err := url.Parse(string(img.Destination))
		if err == nil && u.IsAbs() {
			found = u
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return found
}

// ExtractLinks returns the wiki-link targets of text.
func ExtractLinks(text string) []model.ScrapKey { return Parse(text).Links() }

// ExtractTags returns the #[[tag]] targets of text.
func ExtractTags(text string) []model.ScrapKey { return Parse(text).Tags() }

// HeadImage returns the first absolute image URL of text, or nil.
func HeadImage(text string) *url.URL { return Parse(text).HeadImage() }
