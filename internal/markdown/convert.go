package markdown

import (
	"bufio"
	"bytes"
	"net/url"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"

	"github.com/starford/scraps/internal/model"
)

// funcTable collects node renderer funcs so single nodes can be rendered in
// isolation instead of through a full document walk.
type funcTable map[ast.NodeKind]renderer.NodeRendererFunc

func (t funcTable) Register(kind ast.NodeKind, f renderer.NodeRendererFunc) {
	t[kind] = f
}

func newFuncTable() funcTable {
	t := make(funcTable)
	for _, r := range []renderer.NodeRenderer{
		html.NewRenderer(html.WithUnsafe()),
		extension.NewTableHTMLRenderer(),
		extension.NewStrikethroughHTMLRenderer(),
		extension.NewTaskCheckBoxHTMLRenderer(),
		extension.NewFootnoteHTMLRenderer(),
		extension.NewDefinitionListHTMLRenderer(),
	} {
		r.RegisterFuncs(t)
	}
	return t
}

type tokenKind int

const (
	tokenStart tokenKind = iota
	tokenEnd
	tokenLeaf
)

// token is one rendered event of the document walk.
type token struct {
	kind tokenKind
	node ast.Node
	html string
}

type tokenizer struct {
	source []byte
	funcs  funcTable
	base   model.BaseURL
	out    []token
}

func (t *tokenizer) render(n ast.Node, entering bool) (string, ast.WalkStatus) {
	f := t.funcs[n.Kind()]
	if f == nil {
		return "", ast.WalkContinue
	}
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	// Writes go to memory; goldmark renderers only fail on writer errors.
	st, _ := f(w, t.source, n, entering)
	_ = w.Flush()
	return buf.String(), st
}

func (t *tokenizer) emit(kind tokenKind, n ast.Node, html string) {
	t.out = append(t.out, token{kind: kind, node: n, html: html})
}

func (t *tokenizer) walk(n ast.Node) {
	switch node := n.(type) {
	case *WikiLink:
		t.emit(tokenStart, node, `<a href="`+escapeHref(t.base.ScrapURL(node.Key()))+`">`)
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			t.walk(c)
		}
		t.emit(tokenEnd, node, "</a>")
		return
	case *ast.FencedCodeBlock:
		t.codeBlock(node, string(node.Language(t.source)))
		return
	case *ast.CodeBlock:
		t.codeBlock(node, "")
		return
	}

	open, st := t.render(n, true)
	if !n.HasChildren() || st == ast.WalkSkipChildren {
		closing, _ := t.render(n, false)
		t.emit(tokenLeaf, n, open+closing)
		return
	}
	t.emit(tokenStart, n, open)
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		t.walk(c)
	}
	closing, _ := t.render(n, false)
	t.emit(tokenEnd, n, closing)
}

func (t *tokenizer) codeBlock(n ast.Node, lang string) {
	open := "<pre><code>"
	switch {
	case lang == "mermaid":
		open = `<pre><code class="language-mermaid mermaid">`
	case lang != "":
		open = `<pre><code class="language-` + string(util.EscapeHTML([]byte(lang))) + `">`
	}
	t.emit(tokenStart, n, open)

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		html.DefaultWriter.RawWrite(w, seg.Value(t.source))
	}
	_ = w.Flush()
	if buf.Len() > 0 {
		t.emit(tokenLeaf, n, buf.String())
	}
	t.emit(tokenEnd, n, "</code></pre>\n")
}

func escapeHref(s string) string {
	return string(util.EscapeHTML(util.URLEscape([]byte(s), true)))
}

// tokenize renders every node under the document root into tokens.
func (d *Document) tokenize(base model.BaseURL) []token {
	t := &tokenizer{source: d.source, funcs: newFuncTable(), base: base}
	for c := d.root.FirstChild(); c != nil; c = c.NextSibling() {
		t.walk(c)
	}
	return t.out
}

type linkState int

const (
	stateIdle linkState = iota
	stateSawOpenLink
	stateSawLinkText
)

// contentBuilder folds the token stream into content elements. A wiki link
// arrives as start, text and end tokens; the full triple collapses into one
// anchor element. Any partial sequence is flushed unchanged.
type contentBuilder struct {
	source  []byte
	state   linkState
	pending []token
	out     model.Content
}

func (b *contentBuilder) feed(tok token) {
	switch b.state {
	case stateIdle:
		if _, ok := tok.node.(*WikiLink); ok && tok.kind == tokenStart {
			b.pending = append(b.pending, tok)
			b.state = stateSawOpenLink
			return
		}
		b.pass(tok)
	case stateSawOpenLink:
		if tok.kind == tokenLeaf && tok.node.Kind() == ast.KindText {
			b.pending = append(b.pending, tok)
			b.state = stateSawLinkText
			return
		}
		b.flush()
		b.feed(tok)
	case stateSawLinkText:
		if wl, ok := tok.node.(*WikiLink); ok && tok.kind == tokenEnd {
			open := b.pending[0].html
			b.pending = b.pending[:0]
			b.state = stateIdle
			b.out = append(b.out, model.Raw(open+string(util.EscapeHTML([]byte(wl.Display())))+"</a>"))
			return
		}
		b.flush()
		b.feed(tok)
	}
}

func (b *contentBuilder) flush() {
	for _, tok := range b.pending {
		b.pass(tok)
	}
	b.pending = b.pending[:0]
	b.state = stateIdle
}

// pass emits tok as-is, except URL autolinks which become Autolink elements.
func (b *contentBuilder) pass(tok token) {
	if al, ok := tok.node.(*ast.AutoLink); ok && al.AutoLinkType == ast.AutoLinkURL {
		if u, err := url.Parse(string(al.URL(b.source))); err == nil && u.IsAbs() {
			b.out = append(b.out, model.Autolink(u))
			return
		}
	}
	if tok.html == "" {
		return
	}
	b.out = append(b.out, model.Raw(tok.html))
}

// Content renders the document into content elements. Wiki links resolve
// against base.
func (d *Document) Content(base model.BaseURL) model.Content {
	b := &contentBuilder{source: d.source}
	for _, tok := range d.tokenize(base) {
		b.feed(tok)
	}
	b.flush()
	if b.out == nil {
		return model.Content{}
	}
	return b.out
}

// ToContent parses text and renders it into content elements.
func ToContent(text string, base model.BaseURL) model.Content {
	return Parse(text).Content(base)
}
