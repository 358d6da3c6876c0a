// Package scrap holds the node type of the content graph.
package scrap

import (
	"net/url"

	"github.com/starford/scraps/internal/markdown"
	"github.com/starford/scraps/internal/model"
)

// Source is the raw input of one scrap as read by a collaborator.
type Source struct {
	Title model.Title
	Ctx   model.Ctx
	Text  string
	// CommittedTS is the unix time of the last commit touching the file,
	// nil when unknown.
	CommittedTS *int64
}

// Scrap is one note. All fields are derived once in New and never mutated.
type Scrap struct {
	Key     model.ScrapKey
	RawText string
	// Links are the wiki-link targets in first-occurrence order.
	Links []model.ScrapKey
	// TagsSuppressed are the #[[...]] targets. Lint does not warn on them.
	TagsSuppressed []model.ScrapKey
	Content        model.Content
	Thumbnail      *url.URL
	CommittedTS    *int64
}

// New builds a scrap from src, resolving links against base.
func New(src Source, base model.BaseURL) Scrap {
	doc := markdown.Parse(src.Text)
	return Scrap{
		Key:            model.NewKeyWithCtx(src.Title, src.Ctx),
		RawText:        src.Text,
		Links:          doc.Links(),
		TagsSuppressed: doc.Tags(),
		Content:        doc.Content(base),
		Thumbnail:      doc.HeadImage(),
		CommittedTS:    src.CommittedTS,
	}
}

// Title returns the scrap title.
func (s Scrap) Title() model.Title { return s.Key.Title }

// Ctx returns the scrap context, empty when none.
func (s Scrap) Ctx() model.Ctx { return s.Key.Ctx }

// LinksTo reports whether the scrap links to key.
func (s Scrap) LinksTo(key model.ScrapKey) bool {
	for _, l := range s.Links {
		if l == key {
			return true
		}
	}
	return false
}
