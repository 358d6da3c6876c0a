package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/starford/scraps/internal/model"
)

// KindWikiLink is the node kind of WikiLink.
var KindWikiLink = ast.NewNodeKind("WikiLink")

// WikiLink is an inline [[Target]] or [[Target|Alias]] reference. Its single
// child is a Text node covering the display part of the source.
type WikiLink struct {
	ast.BaseInline

	// Target is the path-like text before the alias pipe.
	Target []byte
	// Alias is the display text after the pipe. Only set when HasAlias.
	Alias    []byte
	HasAlias bool
	// Tagged is true for the #[[Target]] form.
	Tagged bool
}

// Kind implements ast.Node.
func (n *WikiLink) Kind() ast.NodeKind { return KindWikiLink }

// Dump implements ast.Node.
func (n *WikiLink) Dump(source []byte, level int) {
	kv := map[string]string{"Target": string(n.Target)}
	if n.HasAlias {
		kv["Alias"] = string(n.Alias)
	}
	if n.Tagged {
		kv["Tagged"] = "true"
	}
	ast.DumpHelper(n, source, level, kv, nil)
}

// Key resolves the link target to a scrap key.
func (n *WikiLink) Key() model.ScrapKey {
	return model.ParseScrapKey(string(n.Target))
}

// Display returns the text shown for the link: the alias when one was given,
// otherwise the resolved title.
func (n *WikiLink) Display() string {
	if n.HasAlias && len(n.Alias) > 0 {
		return string(n.Alias)
	}
	return n.Key().Title.String()
}

var (
	openBrackets  = []byte("[[")
	closeBrackets = []byte("]]")
)

// kindLinkLabelState names the placeholder goldmark's link parser leaves in
// the block for every '[' that is not yet closed.
const kindLinkLabelState = "LinkLabelState"

// wikiLinkParser recognises [[...]] on a single line. It runs before
// goldmark's link parser so the double bracket is never read as a link
// label. Code spans and code blocks are never handed to inline parsers.
type wikiLinkParser struct{}

func (p *wikiLinkParser) Trigger() []byte { return []byte{'['} }

func (p *wikiLinkParser) Parse(parent ast.Node, block text.Reader, _ parser.Context) ast.Node {
	line, seg := block.PeekLine()
	if !bytes.HasPrefix(line, openBrackets) {
		return nil
	}
	// A link may not contain another link.
	if insideLinkLabel(parent) {
		return nil
	}
	// In [[[a]]] the first bracket is literal and the link starts one later.
	if len(line) > len(openBrackets) && line[len(openBrackets)] == '[' {
		block.Advance(1)
		return ast.NewTextSegment(seg.WithStop(seg.Start + 1))
	}
	end := bytes.Index(line[len(openBrackets):], closeBrackets)
	if end < 0 {
		return nil
	}
	inner := line[len(openBrackets) : len(openBrackets)+end]
	innerStart := seg.Start + len(openBrackets)

	node := &WikiLink{Tagged: block.PrecendingCharacter() == '#'}
	display := text.NewSegment(innerStart, innerStart+len(inner))

	// Exactly one pipe separates target and alias. With more than one the
	// whole text is a literal title.
	if bytes.Count(inner, []byte{'|'}) == 1 {
		i := bytes.IndexByte(inner, '|')
		node.Target = inner[:i]
		node.Alias = inner[i+1:]
		node.HasAlias = true
		if len(node.Alias) > 0 {
			display = text.NewSegment(innerStart+i+1, innerStart+len(inner))
		} else {
			display = text.NewSegment(innerStart, innerStart+i)
		}
	} else {
		node.Target = inner
	}
	if len(bytes.TrimSpace(node.Target)) == 0 {
		return nil
	}

	node.AppendChild(node, ast.NewTextSegment(display))
	block.Advance(len(openBrackets) + end + len(closeBrackets))
	return node
}

func insideLinkLabel(parent ast.Node) bool {
	for c := parent.LastChild(); c != nil; c = c.PreviousSibling() {
		if c.Kind().String() == kindLinkLabelState {
			return true
		}
	}
	return false
}

type wikiLinkExtension struct{}

// WikiLinks is a goldmark extension adding the WikiLink inline syntax.
var WikiLinks goldmark.Extender = &wikiLinkExtension{}

func (e *wikiLinkExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(&wikiLinkParser{}, 199),
	))
}
