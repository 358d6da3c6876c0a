// Package template generates new scraps from markdown templates.
//
// A template is a top-level .md file in the templates directory. Its body is
// a text/template; the rendered output may start with a "+++" TOML block
// whose title names the new scrap. The block is stripped before writing.
package template

import (
	"bytes"
	"fmt"
	"slices"
	"text/template"
	"time"

	"github.com/starford/scraps/internal/apperr"
	"github.com/starford/scraps/internal/markdown"
	"github.com/starford/scraps/internal/storage"
)

// Generator lists and renders templates.
type Generator struct {
	Templates storage.Provider
	Scraps    storage.Provider
	// Location is the zone of the now and date funcs. Nil means UTC.
	Location *time.Location
	// Now is overridable for tests.
	Now func() time.Time
}

// List returns the template names in sorted order.
func (g *Generator) List() ([]string, error) {
	files, err := g.Templates.List()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		if f.Ctx == "" {
			names = append(names, f.Title)
		}
	}
	slices.Sort(names)
	return names, nil
}

// Generate renders template name and writes the result as a new scrap. title
// overrides the title from the template metadata. It returns the path of the
// written scrap relative to the scraps directory.
func (g *Generator) Generate(name, title string) (string, error) {
	src, err := g.Templates.Read(name + ".md")
	if err != nil {
		return "", fmt.Errorf("template %s: %w", name, err)
	}
	out, err := g.render(name, string(src))
	if err != nil {
		return "", err
	}

	if title == "" {
		meta, ok, err := markdown.DecodeMetadata(out)
		if err != nil {
			return "", fmt.Errorf("template %s: %w", name, err)
		}
		if !ok || meta.Title == "" {
			return "", fmt.Errorf("template %s: title is required: %w", name, apperr.ErrParse)
		}
		title = meta.Title
	}

	path := title + ".md"
	if g.Scraps.Exists(path) {
		return "", fmt.Errorf("scrap %s: %w", path, apperr.ErrAlreadyExists)
	}
	if err := g.Scraps.Write(path, []byte(markdown.IgnoreMetadata(out))); err != nil {
		return "", err
	}
	return path, nil
}

func (g *Generator) render(name, src string) (string, error) {
	loc := g.Location
	if loc == nil {
		loc = time.UTC
	}
	now := g.Now
	if now == nil {
		now = time.Now
	}
	funcs := template.FuncMap{
		"now": func() time.Time { return now().In(loc) },
		"date": func(layout string, v any) (string, error) {
			switch t := v.(type) {
			case time.Time:
				return t.In(loc).Format(layout), nil
			case string:
				parsed, err := time.Parse(time.RFC3339, t)
				if err != nil {
					return "", err
				}
				return parsed.In(loc).Format(layout), nil
			}
			return "", fmt.Errorf("date: unsupported value %T", v)
		},
	}
	tmpl, err := template.New(name).Funcs(funcs).Parse(src)
	if err != nil {
		return "", fmt.Errorf("template %s: %w: %w", name, apperr.ErrParse, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, nil); err != nil {
		return "", fmt.Errorf("template %s: %w: %w", name, apperr.ErrParse, err)
	}
	return buf.String(), nil
}
