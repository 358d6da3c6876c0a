// Package render turns scraps into the pages of the static site.
package render

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"html/template"
	"io"
	"io/fs"
	"strings"
	texttemplate "text/template"
	"text/template/parse"
	"time"

	"github.com/starford/scraps/internal/listing"
	"github.com/starford/scraps/internal/model"
	"github.com/starford/scraps/internal/scrap"
	"github.com/starford/scraps/internal/search"
)

//go:embed templates/*.html templates/main.css
var builtins embed.FS

// ColorScheme selects the CSS color-scheme of the site.
type ColorScheme string

const (
	OSSetting ColorScheme = "os_setting"
	OnlyLight ColorScheme = "only_light"
	OnlyDark  ColorScheme = "only_dark"
)

// CSS returns the value of the color-scheme property.
func (c ColorScheme) CSS() string {
	switch c {
	case OnlyLight:
		return "only light"
	case OnlyDark:
		return "only dark"
	default:
		return "light dark"
	}
}

// Site holds the metadata shared by every page.
type Site struct {
	Title       string
	Description string
	Favicon     string
	Lang        string
	BaseURL     model.BaseURL
	ColorScheme ColorScheme
}

type siteView struct {
	Title       string
	Description string
	Favicon     string
	Lang        string
	BaseURL     string
}

// Renderer executes the page templates. It is safe for concurrent use.
type Renderer struct {
	site   siteView
	base   model.BaseURL
	loc    *time.Location
	scheme ColorScheme
	pages  map[string]page
	css    *texttemplate.Template
}

type page struct {
	tmpl  *template.Template
	entry string
}

var pageNames = []string{"index", "scrap", "tag", "tags_index"}

// New parses the builtin templates. A nil loc formats dates in UTC.
//
// When static is non-nil, its layout.html, card.html, <page>.html and
// main.css files override the builtins. An override may redefine the
// "layout", "card" or "content" templates, or be a complete page of its own.
func New(site Site, loc *time.Location, static fs.FS) (*Renderer, error) {
	if loc == nil {
		loc = time.UTC
	}
	layout, err := template.ParseFS(builtins, "templates/layout.html", "templates/card.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	if err := overlay(layout, static, "layout.html", "card.html"); err != nil {
		return nil, err
	}
	pages := make(map[string]page, len(pageNames))
	for _, name := range pageNames {
		t, err := template.Must(layout.Clone()).ParseFS(builtins, "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		if err := overlay(t, static, name+".html"); err != nil {
			return nil, err
		}
		pages[name] = page{tmpl: t, entry: entryPoint(t, name+".html", "layout.html")}
	}
	css, err := parseStylesheet(static)
	if err != nil {
		return nil, err
	}
	lang := site.Lang
	if lang == "" {
		lang = "en"
	}
	return &Renderer{
		site: siteView{
			Title:       site.Title,
			Description: site.Description,
			Favicon:     site.Favicon,
			Lang:        lang,
			BaseURL:     site.BaseURL.String(),
		},
		base:   site.BaseURL,
		loc:    loc,
		scheme: site.ColorScheme,
		pages:  pages,
		css:    css,
	}, nil
}

// overlay parses the named files of static into t. Missing files are skipped.
func overlay(t *template.Template, static fs.FS, names ...string) error {
	if static == nil {
		return nil
	}
	for _, name := range names {
		if _, err := fs.Stat(static, name); errors.Is(err, fs.ErrNotExist) {
			continue
		} else if err != nil {
			return fmt.Errorf("stat %s: %w", name, err)
		}
		if _, err := t.ParseFS(static, name); err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
	}
	return nil
}

// entryPoint picks the template a page executes: the first candidate file
// with a non-blank body, else "layout". Builtin files only hold defines.
func entryPoint(t *template.Template, candidates ...string) string {
	for _, name := range candidates {
		if c := t.Lookup(name); c != nil && c.Tree != nil && !parse.IsEmptyTree(c.Tree.Root) {
			return name
		}
	}
	return "layout"
}

func parseStylesheet(static fs.FS) (*texttemplate.Template, error) {
	src := fs.FS(builtins)
	name := "templates/main.css"
	if static != nil {
		if _, err := fs.Stat(static, "main.css"); err == nil {
			src, name = static, "main.css"
		}
	}
	t, err := texttemplate.ParseFS(src, name)
	if err != nil {
		return nil, fmt.Errorf("parse main.css: %w", err)
	}
	return t, nil
}

type card struct {
	Title         string
	Ctx           string
	URL           string
	Thumbnail     string
	CommittedDate string
	HTML          template.HTML
}

func (r *Renderer) card(s scrap.Scrap) card {
	c := card{
		Title: s.Title().String(),
		Ctx:   s.Ctx().String(),
		URL:   r.base.ScrapURL(s.Key),
	}
	if s.Thumbnail != nil {
		c.Thumbnail = s.Thumbnail.String()
	}
	if s.CommittedTS != nil {
		c.CommittedDate = time.Unix(*s.CommittedTS, 0).In(r.loc).Format("2006-01-02")
	}
	return c
}

func (r *Renderer) cards(scraps []scrap.Scrap) []card {
	out := make([]card, 0, len(scraps))
	for _, s := range scraps {
		out = append(out, r.card(s))
	}
	return out
}

func (r *Renderer) execute(w io.Writer, name string, data any) error {
	p := r.pages[name]
	if err := p.tmpl.ExecuteTemplate(w, p.entry, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return nil
}

// Stylesheet writes main.css.
func (r *Renderer) Stylesheet(w io.Writer) error {
	data := struct{ ColorScheme string }{ColorScheme: r.scheme.CSS()}
	if err := r.css.Execute(w, data); err != nil {
		return fmt.Errorf("render main.css: %w", err)
	}
	return nil
}

// IndexView is the site-wide part of every index page.
type IndexView struct {
	Sort listing.SortKey
	// Tags are listed with their backlink counts.
	Tags []TagEntry
	// SearchIndex adds a search box backed by search.json.
	SearchIndex bool
}

// Index renders one page of the scrap listing.
func (r *Renderer) Index(w io.Writer, page listing.Page[scrap.Scrap], view IndexView) error {
	data := struct {
		Site        siteView
		PageTitle   string
		SortLabel   string
		Scraps      []card
		Tags        []tagRow
		SearchIndex bool
		Number      int
		Total       int
		Prev        string
		Next        string
	}{
		Site:        r.site,
		SortLabel:   view.Sort.Label(),
		Scraps:      r.cards(page.Items),
		Tags:        r.tagRows(view.Tags),
		SearchIndex: view.SearchIndex,
		Number:      page.Number,
		Total:       page.Total,
	}
	if page.Pointer.Prev != nil {
		data.Prev = *page.Pointer.Prev
	}
	if page.Pointer.Next != nil {
		data.Next = *page.Pointer.Next
	}
	return r.execute(w, "index", data)
}

// Scrap renders the page of s. links are the existing scraps s links to.
func (r *Renderer) Scrap(w io.Writer, s scrap.Scrap, links, backlinks []scrap.Scrap) error {
	c := r.card(s)
	c.HTML = ContentHTML(s.Content)
	data := struct {
		Site      siteView
		PageTitle string
		Scrap     card
		Links     []card
		Backlinks []card
	}{
		Site:      r.site,
		PageTitle: s.Title().String(),
		Scrap:     c,
		Links:     r.cards(links),
		Backlinks: r.cards(backlinks),
	}
	return r.execute(w, "scrap", data)
}

// Tag renders the page of a tag with the scraps referring to it.
func (r *Renderer) Tag(w io.Writer, tag model.ScrapKey, backlinks []scrap.Scrap) error {
	data := struct {
		Site      siteView
		PageTitle string
		Tag       string
		Backlinks []card
	}{
		Site:      r.site,
		PageTitle: "#" + tag.String(),
		Tag:       tag.String(),
		Backlinks: r.cards(backlinks),
	}
	return r.execute(w, "tag", data)
}

// TagEntry is one row of the tags index.
type TagEntry struct {
	Key            model.ScrapKey
	BacklinksCount int
}

type tagRow struct {
	Title          string
	URL            string
	BacklinksCount int
}

func (r *Renderer) tagRows(tags []TagEntry) []tagRow {
	rows := make([]tagRow, 0, len(tags))
	for _, t := range tags {
		rows = append(rows, tagRow{Title: t.Key.String(), URL: r.base.ScrapURL(t.Key), BacklinksCount: t.BacklinksCount})
	}
	return rows
}

// TagsIndex renders the list of all tags.
func (r *Renderer) TagsIndex(w io.Writer, tags []TagEntry) error {
	data := struct {
		Site      siteView
		PageTitle string
		Tags      []tagRow
	}{
		Site:      r.site,
		PageTitle: "Tags",
		Tags:      r.tagRows(tags),
	}
	return r.execute(w, "tags_index", data)
}

// SearchIndex writes the client-side search index as a JSON array of
// {title, url} objects.
func SearchIndex(w io.Writer, items []search.Item) error {
	out := make([]search.Result, 0, len(items))
	for _, it := range items {
		out = append(out, search.Result{Title: it.Title, URL: it.URL})
	}
	return json.NewEncoder(w).Encode(out)
}

// ContentHTML joins content elements into page HTML. Autolinks are expanded
// into standalone anchors.
func ContentHTML(c model.Content) template.HTML {
	var b strings.Builder
	for _, e := range c {
		if e.Kind == model.ElementAutolink && e.URL != nil {
			u := html.EscapeString(e.URL.String())
			b.WriteString(`<a class="autolink" href="` + u + `" target="_blank" rel="noopener">` + u + `</a>`)
			continue
		}
		b.WriteString(e.HTML)
	}
	return template.HTML(b.String())
}
