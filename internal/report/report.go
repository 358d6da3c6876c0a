// Package report writes command output as Markdown.
package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/starford/scraps/internal/lint"
	"github.com/starford/scraps/internal/scrapservice"
)

// Lint writes the lint warnings. An empty list yields a short success note.
func Lint(w io.Writer, warnings []lint.Warning) error {
	md := markdown.NewMarkdown(w)
	md.H1("Lint")
	md.PlainText("")

	if len(warnings) == 0 {
		md.Tip("No warnings found.")
		return md.Build()
	}

	rows := make([][]string, 0, len(warnings))
	for _, wr := range warnings {
		rows = append(rows, []string{wr.Scrap.String(), "`[[" + wr.BrokenLink.String() + "]]`"})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Scrap", "Implicit tag"},
		Rows:   rows,
	})
	md.PlainText("")
	md.Warningf("Found %d warning(s). Use #[[tag]] to explicitly mark as a tag.", len(warnings))
	return md.Build()
}

// Tags writes the tag list with backlink counts.
func Tags(w io.Writer, tags []scrapservice.TagJSON) error {
	md := markdown.NewMarkdown(w)
	md.H1("Tags")
	md.PlainText("")

	if len(tags) == 0 {
		md.PlainText("No tags.")
		return md.Build()
	}
	rows := make([][]string, 0, len(tags))
	for _, t := range tags {
		rows = append(rows, []string{t.Title, strconv.Itoa(t.BacklinksCount)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Tag", "Backlinks"},
		Rows:   rows,
	})
	return md.Build()
}

// SearchHit is one search result line.
type SearchHit struct {
	Title string
	URL   string
}

// Search writes search hits as a bullet list of links.
func Search(w io.Writer, query string, hits []SearchHit) error {
	md := markdown.NewMarkdown(w)
	md.H2("Search: " + query)
	md.PlainText("")

	if len(hits) == 0 {
		md.PlainText("No results.")
		return md.Build()
	}
	items := make([]string, 0, len(hits))
	for _, h := range hits {
		items = append(items, "["+h.Title+"]("+h.URL+")")
	}
	md.BulletList(items...)
	return md.Build()
}
