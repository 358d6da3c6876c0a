package build

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/scraps/internal/listing"
	"github.com/starford/scraps/internal/model"
	"github.com/starford/scraps/internal/render"
	"github.com/starford/scraps/internal/scrap"
	"github.com/starford/scraps/internal/scrapset"
	"github.com/starford/scraps/internal/storage"
)

var base = model.MustParseBaseURL("http://localhost:1112/")

func newSet() *scrapset.Set {
	src := []scrap.Source{
		{Title: "a", Text: "[[b]] [[go]]"},
		{Title: "b", Text: "[[a]] #[[rust]]"},
		{Title: "c", Ctx: "Book", Text: "[[go]]"},
	}
	scraps := make([]scrap.Scrap, 0, len(src))
	for _, s := range src {
		scraps = append(scraps, scrap.New(s, base))
	}
	return scrapset.New(scraps, base)
}

func newBuilder(t *testing.T, paging listing.Paging, searchIndex bool) (*Builder, *storage.FS) {
	t.Helper()
	out, err := storage.EnsureFS(t.TempDir() + "/public")
	require.NoError(t, err)
	r, err := render.New(render.Site{Title: "Wiki", BaseURL: base, ColorScheme: render.OnlyDark}, nil, nil)
	require.NoError(t, err)
	return &Builder{
		Renderer:         r,
		Out:              out,
		Sort:             listing.LinkedCount,
		Paging:           paging,
		BuildSearchIndex: searchIndex,
		Workers:          2,
	}, out
}

func TestBuild(t *testing.T) {
	b, out := newBuilder(t, 2, true)
	stats, err := b.Build(context.Background(), newSet())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Scraps)
	assert.Equal(t, 2, stats.Tags)
	assert.Equal(t, 2, stats.IndexPages)

	for _, p := range []string{
		"index.html",
		"2.html",
		"scraps/a.html",
		"scraps/b.html",
		"scraps/c.book.html",
		"scraps/go.html",
		"scraps/rust.html",
		"tags/index.html",
		"main.css",
		"search.json",
	} {
		assert.True(t, out.Exists(p), p)
	}
	assert.False(t, out.Exists("3.html"))

	data, err := out.Read("search.json")
	require.NoError(t, err)
	var items []map[string]string
	require.NoError(t, json.Unmarshal(data, &items))
	assert.Len(t, items, 3)

	page, err := out.Read("scraps/go.html")
	require.NoError(t, err)
	assert.Contains(t, string(page), "scraps/c.book.html")

	index, err := out.Read("index.html")
	require.NoError(t, err)
	assert.Contains(t, string(index), `#go</a> <span class="count">2</span>`)
	assert.Contains(t, string(index), `data-index="http://localhost:1112/search.json"`)

	css, err := out.Read("main.css")
	require.NoError(t, err)
	assert.Contains(t, string(css), "color-scheme: only dark;")
}

func TestBuild_RemovesStaleOutputs(t *testing.T) {
	b, out := newBuilder(t, 2, true)
	_, err := b.Build(context.Background(), newSet())
	require.NoError(t, err)
	require.NoError(t, out.Write("favicon.ico", []byte("icon")))

	smaller := scrapset.New([]scrap.Scrap{
		scrap.New(scrap.Source{Title: "a", Text: "[[b]]"}, base),
		scrap.New(scrap.Source{Title: "b", Text: "#[[rust]]"}, base),
	}, base)
	b.BuildSearchIndex = false
	stats, err := b.Build(context.Background(), smaller)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.IndexPages)

	for _, p := range []string{"index.html", "scraps/a.html", "scraps/b.html", "scraps/rust.html", "main.css", "favicon.ico"} {
		assert.True(t, out.Exists(p), p)
	}
	for _, p := range []string{"scraps/c.book.html", "scraps/go.html", "2.html", "search.json"} {
		assert.False(t, out.Exists(p), p)
	}
}

func TestBuild_NoSearchIndexUnpaged(t *testing.T) {
	b, out := newBuilder(t, 0, false)
	stats, err := b.Build(context.Background(), newSet())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.IndexPages)
	assert.True(t, out.Exists("index.html"))
	assert.False(t, out.Exists("2.html"))
	assert.False(t, out.Exists("search.json"))
}

func TestBuild_Empty(t *testing.T) {
	b, out := newBuilder(t, 10, false)
	stats, err := b.Build(context.Background(), scrapset.New(nil, base))
	require.NoError(t, err)
	assert.Zero(t, stats.Scraps)
	assert.True(t, out.Exists("index.html"))
	assert.True(t, out.Exists("tags/index.html"))
}

func TestBuild_Canceled(t *testing.T) {
	b, _ := newBuilder(t, 10, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := b.Build(ctx, newSet())
	assert.ErrorIs(t, err, context.Canceled)
}
