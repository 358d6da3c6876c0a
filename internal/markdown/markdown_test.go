package markdown

import (
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark/ast"

	"github.com/starford/scraps/internal/apperr"
	"github.com/starford/scraps/internal/model"
)

func keys(paths ...string) []model.ScrapKey {
	out := make([]model.ScrapKey, 0, len(paths))
	for _, p := range paths {
		out = append(out, model.ParseScrapKey(p))
	}
	return out
}

func TestExtractLinks(t *testing.T) {
	assert.Equal(t, keys("a", "Ctx/b"), ExtractLinks("[[a]]\n[[Ctx/b]]\n#[[tag]]"))
}

func TestExtractLinks_Valid(t *testing.T) {
	text := strings.Join([]string{
		"[[head]]",
		"[[contain space]]",
		"[[last]]",
		"[[duplicate]]",
		"[[duplicate]]",
		"[[Domain Driven Design|DDD]]",
		"[[Test-driven development|TDD|テスト駆動開発]]",
	}, "\n")
	want := []model.ScrapKey{
		model.NewKey("head"),
		model.NewKey("contain space"),
		model.NewKey("last"),
		model.NewKey("duplicate"),
		model.NewKey("Domain Driven Design"),
		// more than one pipe: the whole text is the title
		model.NewKey("Test-driven development|TDD|テスト駆動開発"),
	}
	assert.Equal(t, want, ExtractLinks(text))
}

func TestExtractLinks_Invalid(t *testing.T) {
	text := strings.Join([]string{
		"`[[quote block]]`",
		"```\n[[code block]]\n```",
		"[single braces]",
		"only close]]",
		"[[only open",
		"[ [space between brace] ]",
		"[[]]",
		"[[   ]]",
		"[[broken\nacross lines]]",
		"    [[indented code]]",
	}, "\n\n")
	assert.Empty(t, ExtractLinks(text))
	assert.NotNil(t, ExtractLinks(text))
}

func TestExtractLinks_FirstCloseWins(t *testing.T) {
	assert.Equal(t, keys("a"), ExtractLinks("[[a]]b]]"))
}

func TestExtractLinks_ExtraOpenBracket(t *testing.T) {
	assert.Equal(t, keys("a"), ExtractLinks("[[[a]]]"))
	assert.Equal(t, keys("a"), ExtractLinks("[[[[a]]"))
}

func TestExtractLinks_InsideLinkLabel(t *testing.T) {
	assert.Empty(t, ExtractLinks("[x [[a]] y](http://u)"))
	assert.Equal(t, keys("b"), ExtractLinks("[x](http://u) [[b]]"))
}

func TestExtractLinks_InlineWithText(t *testing.T) {
	got := ExtractLinks("see [[Go]] and [[lang/Rust|rust]] in *[[emph]]* or - [[item]]")
	assert.Equal(t, keys("Go", "lang/Rust", "emph", "item"), got)
}

func TestExtractTags(t *testing.T) {
	text := "#[[Go]] [[not a tag]]\n#[[Go]] and #[[ctx/tagged]]"
	assert.Equal(t, keys("Go", "ctx/tagged"), ExtractTags(text))
	assert.Equal(t, keys("not a tag"), ExtractLinks(text))
}

func TestHeadImage(t *testing.T) {
	got := HeadImage("![alt](https://example.com/image.png)")
	require.NotNil(t, got)
	assert.Equal(t, "https://example.com/image.png", got.String())

	assert.Nil(t, HeadImage("# header1"))

	got = HeadImage("![rel](./local.png)\n\n![abs](https://example.com/second.png)")
	require.NotNil(t, got)
	assert.Equal(t, "https://example.com/second.png", got.String())
}

func TestGetMetadataText(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"+++\ntitle = \"title\"\n+++\n\n## Scrap", "title = \"title\"\n", true},
		{"+++\ntitle = \"title\"\ntest = \"hoge\"\n+++\n\n## Scrap", "title = \"title\"\ntest = \"hoge\"\n", true},
		{"+++\ntitle = \"title\"\n+++\n", "title = \"title\"\n", true},
		{"+++\ntitle = \"title\"\n+++", "title = \"title\"\n", true},
		{"+++\n[template]\ntitle = \"title\"\n+++\n\n## Scrap", "[template]\ntitle = \"title\"\n", true},
		{"+++\ntitle = \"title\"\n\n\n## Scrap", "", false},
		{"+++\ntitle = \"title\"\n", "", false},
		{"title = \"title\"\n+++\n\n## Scrap", "", false},
		{"title = \"title\"\n+++\n", "", false},
		{"---\ntitle: x\n---\n", "", false},
	}
	for _, c := range cases {
		got, ok := GetMetadataText(c.in)
		assert.Equal(t, c.ok, ok, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}

func TestIgnoreMetadata(t *testing.T) {
	cases := map[string]string{
		"+++\ntitle = \"title\"\n+++\n\n## Scrap":                  "\n## Scrap",
		"+++\ntitle = \"title\"\ntest = \"hoge\"\n+++\n\n## Scrap": "\n## Scrap",
		"+++\ntitle = \"title\"\n+++\n":                            "",
		"+++\ntitle = \"title\"\n+++":                              "",
		"+++\ntitle = \"title\"\n\n\n## Scrap":                     "+++\ntitle = \"title\"\n\n\n## Scrap",
		"+++\ntitle = \"title\"\n":                                 "+++\ntitle = \"title\"\n",
		"title = \"title\"\n+++\n\n## Scrap":                       "title = \"title\"\n+++\n\n## Scrap",
		"title = \"title\"\n+++\n":                                 "title = \"title\"\n+++\n",
	}
	for in, want := range cases {
		assert.Equal(t, want, IgnoreMetadata(in), in)
	}
}

func TestDecodeMetadata(t *testing.T) {
	meta, ok, err := DecodeMetadata("+++\ntitle = \"Daily note\"\n+++\n\nbody")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Daily note", meta.Title)

	_, ok, err = DecodeMetadata("# no frontmatter")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = DecodeMetadata("+++\ntitle = \n+++\n")
	assert.True(t, ok)
	assert.True(t, errors.Is(err, apperr.ErrParse))
}

var testBase = model.MustParseBaseURL("http://localhost:1112/")

func TestToContent_Code(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"inline code", "`[[quote block]]`", []string{"<p>", "<code>[[quote block]]</code>", "</p>\n"}},
		{"code block", "```\n[[code block]]\n```", []string{"<pre><code>", "[[code block]]\n", "</code></pre>\n"}},
		{"bash block", "```bash\nscraps build\n```", []string{`<pre><code class="language-bash">`, "scraps build\n", "</code></pre>\n"}},
		{"mermaid", "```mermaid\nflowchart LR\nid\n```", []string{`<pre><code class="language-mermaid mermaid">`, "flowchart LR\nid\n", "</code></pre>\n"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			want := make(model.Content, 0, len(c.want))
			for _, s := range c.want {
				want = append(want, model.Raw(s))
			}
			assert.Equal(t, want, ToContent(c.in, testBase))
		})
	}
}

func TestToContent_Link(t *testing.T) {
	cases := map[string]string{
		"[[link]]":                         `<a href="http://localhost:1112/scraps/link.html">link</a>`,
		"[[link|display]]":                 `<a href="http://localhost:1112/scraps/link.html">display</a>`,
		"[[Context/link]]":                 `<a href="http://localhost:1112/scraps/link.context.html">link</a>`,
		"[[Context/link|context display]]": `<a href="http://localhost:1112/scraps/link.context.html">context display</a>`,
		"[[expect slugify]]":               `<a href="http://localhost:1112/scraps/expect-slugify.html">expect slugify</a>`,
	}
	for in, anchor := range cases {
		want := model.Content{model.Raw("<p>"), model.Raw(anchor), model.Raw("</p>\n")}
		assert.Equal(t, want, ToContent(in, testBase), in)
	}
}

func TestToContent_Autolink(t *testing.T) {
	for _, raw := range []string{"https://example.com", "http://example.com"} {
		u, err := url.Parse(raw)
		require.NoError(t, err)
		want := model.Content{model.Raw("<p>"), model.Autolink(u), model.Raw("</p>\n")}
		assert.Equal(t, want, ToContent("<"+raw+">", testBase))
	}
}

func TestToContent_EmailAutolinkStaysRaw(t *testing.T) {
	c := ToContent("<me@example.com>", testBase)
	assert.Empty(t, c.Autolinks())
	assert.Contains(t, c.String(), "mailto:me@example.com")
}

func TestToContent_NoNestedAnchors(t *testing.T) {
	got := ToContent("[x [[a]] y](http://u)", testBase).String()
	assert.Equal(t, 1, strings.Count(got, "<a "), got)
	assert.Contains(t, got, `<a href="http://u">x [[a]] y</a>`)
}

func TestToContent_ExtraOpenBracket(t *testing.T) {
	got := ToContent("[[[a]]]", testBase).String()
	assert.Equal(t, "<p>[<a href=\"http://localhost:1112/scraps/a.html\">a</a>]</p>\n", got)
}

func TestToContent_TagIsLinked(t *testing.T) {
	got := ToContent("#[[Go]]", testBase).String()
	assert.Equal(t, "<p>#<a href=\"http://localhost:1112/scraps/go.html\">Go</a></p>\n", got)
}

func TestToContent_EscapesDisplay(t *testing.T) {
	got := ToContent("[[a|<b>]]", testBase).String()
	assert.Contains(t, got, ">&lt;b&gt;</a>")
}

func TestToContent_Extensions(t *testing.T) {
	in := "# Title\n\n| a | b |\n|---|---|\n| 1 | 2 |\n\n~~gone~~\n\n- [x] done\n"
	got := ToContent(in, testBase).String()
	assert.Contains(t, got, `<h1 id="title">Title</h1>`)
	assert.Contains(t, got, "<table>")
	assert.Contains(t, got, "<del>gone</del>")
	assert.Contains(t, got, `type="checkbox"`)
}

func TestToContent_Deterministic(t *testing.T) {
	in := "# H\n\n[[a]] text [[b|B]] <https://example.com>\n\n```mermaid\nA-->B\n```\n"
	first := ToContent(in, testBase)
	assert.Equal(t, first, ToContent(in, testBase))
	assert.Equal(t, ToContent(in, testBase).String(), Parse(in).Content(testBase).String())
}

func TestToContent_Empty(t *testing.T) {
	c := ToContent("", testBase)
	assert.NotNil(t, c)
	assert.Empty(t, c)
}

func TestContentBuilder_FlushesPartialSequence(t *testing.T) {
	wl := &WikiLink{Target: []byte("a")}
	para := ast.NewParagraph()
	b := &contentBuilder{}
	b.feed(token{kind: tokenStart, node: wl, html: `<a href="x">`})
	b.feed(token{kind: tokenEnd, node: para, html: "</p>\n"})
	b.flush()
	assert.Equal(t, model.Content{model.Raw(`<a href="x">`), model.Raw("</p>\n")}, b.out)

	b = &contentBuilder{}
	b.feed(token{kind: tokenStart, node: wl, html: `<a href="x">`})
	b.flush()
	assert.Equal(t, model.Content{model.Raw(`<a href="x">`)}, b.out)
}
