package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/starford/scraps/internal/model"
	"github.com/starford/scraps/internal/scrap"
)

var base = model.MustParseBaseURL("http://localhost:1112/")

func newScrap(title, text string) scrap.Scrap {
	return scrap.New(scrap.Source{Title: model.Title(title), Text: text}, base)
}

func TestRun(t *testing.T) {
	cases := []struct {
		name   string
		scraps []scrap.Scrap
		want   []Warning
	}{
		{
			name:   "existing links",
			scraps: []scrap.Scrap{newScrap("page_a", "[[page_b]]"), newScrap("page_b", "[[page_a]]")},
			want:   []Warning{},
		},
		{
			name:   "broken link",
			scraps: []scrap.Scrap{newScrap("page_a", "[[non_existing]]")},
			want:   []Warning{{Scrap: model.NewKey("page_a"), BrokenLink: model.NewKey("non_existing")}},
		},
		{
			name:   "hash tag only",
			scraps: []scrap.Scrap{newScrap("page_a", "#[[tag1]] #[[tag2]]")},
			want:   []Warning{},
		},
		{
			name:   "hash tag suppresses same link",
			scraps: []scrap.Scrap{newScrap("page_a", "#[[go]] [[go]] [[non_existing]]")},
			want:   []Warning{{Scrap: model.NewKey("page_a"), BrokenLink: model.NewKey("non_existing")}},
		},
		{
			name:   "context link",
			scraps: []scrap.Scrap{newScrap("page_a", "[[Category/non_existing]]")},
			want:   []Warning{{Scrap: model.NewKey("page_a"), BrokenLink: model.NewKeyWithCtx("non_existing", "Category")}},
		},
		{
			name:   "hash tag with existing scrap",
			scraps: []scrap.Scrap{newScrap("page_a", "#[[page_b]]"), newScrap("page_b", "content")},
			want:   []Warning{},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Run(c.scraps))
		})
	}
}

func TestRun_SuppressionIsPerScrap(t *testing.T) {
	got := Run([]scrap.Scrap{
		newScrap("a", "#[[go]]"),
		newScrap("b", "[[go]]"),
	})
	assert.Equal(t, []Warning{{Scrap: model.NewKey("b"), BrokenLink: model.NewKey("go")}}, got)
}
