package scrapset

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/scraps/internal/apperr"
	"github.com/starford/scraps/internal/index"
	"github.com/starford/scraps/internal/model"
	"github.com/starford/scraps/internal/storage"
	"github.com/starford/scraps/internal/testutil"
)

var base = model.MustParseBaseURL("http://localhost:1112/")

type fixedStamper map[string]int64

func (f fixedStamper) Timestamp(_ context.Context, file storage.ScrapFile) (*int64, error) {
	v, ok := f[file.Path]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

type failingStamper struct{ path string }

func (f failingStamper) Timestamp(_ context.Context, file storage.ScrapFile) (*int64, error) {
	if file.Path == f.path {
		return nil, apperr.ErrIO
	}
	return nil, nil
}

func newStore(t *testing.T, files map[string]string) storage.Provider {
	t.Helper()
	return testutil.TestScraps(t, files)
}

func TestLoad(t *testing.T) {
	store := newStore(t, map[string]string{
		"a.md":      "[[b]] [[Book/c]] [[tag1]]",
		"b.md":      "[[a]] #[[hash]]",
		"Book/c.md": "[[tag1]] [[tag2]]",
	})
	l := &Loader{Store: store, Stamper: fixedStamper{"a.md": 10}, Workers: 2}

	set, err := l.Load(context.Background(), base)
	require.NoError(t, err)
	require.Equal(t, 3, set.Len())

	// load order is sorted by path
	var keys []string
	for _, s := range set.Scraps() {
		keys = append(keys, s.Key.String())
	}
	assert.Equal(t, []string{"Book/c", "a", "b"}, keys)

	a, err := set.Get(model.NewKey("a"))
	require.NoError(t, err)
	require.NotNil(t, a.CommittedTS)
	assert.Equal(t, int64(10), *a.CommittedTS)

	c, err := set.Get(model.NewKeyWithCtx("c", "Book"))
	require.NoError(t, err)
	assert.Nil(t, c.CommittedTS)

	assert.Equal(t, []model.ScrapKey{model.NewKey("tag1"), model.NewKey("tag2")}, set.Tags().Sorted())
	assert.Len(t, set.Backlinks().Get(model.NewKey("tag1")), 2)
	assert.Len(t, set.Backlinks().Get(model.NewKeyWithCtx("c", "Book")), 1)

	f, ok := set.File(model.NewKeyWithCtx("c", "Book"))
	require.True(t, ok)
	assert.Equal(t, "Book/c.md", f.Path)
}

func TestLoad_FailFast(t *testing.T) {
	store := newStore(t, map[string]string{"a.md": "a", "b.md": "b", "c.md": "c"})
	l := &Loader{Store: store, Stamper: failingStamper{path: "b.md"}}

	set, err := l.Load(context.Background(), base)
	assert.Nil(t, set)
	assert.True(t, errors.Is(err, apperr.ErrIO))
}

func TestLoad_NestedContextFails(t *testing.T) {
	store := newStore(t, map[string]string{"x/y/z.md": "deep"})
	_, err := (&Loader{Store: store}).Load(context.Background(), base)
	assert.True(t, errors.Is(err, apperr.ErrParse))
}

func TestLoad_Empty(t *testing.T) {
	set, err := (&Loader{Store: newStore(t, nil)}).Load(context.Background(), base)
	require.NoError(t, err)
	assert.Zero(t, set.Len())
	assert.Empty(t, set.SearchItems())
	assert.Zero(t, set.Tags().Len())
}

func TestGet_NotFound(t *testing.T) {
	set := New(nil, base)
	_, err := set.Get(model.NewKey("missing"))
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	_, ok := set.File(model.NewKey("missing"))
	assert.False(t, ok)
}

func TestSearchItems(t *testing.T) {
	store := newStore(t, map[string]string{"Rust Guide.md": "ownership", "Lang/Go.md": "goroutines"})
	set, err := (&Loader{Store: store}).Load(context.Background(), base)
	require.NoError(t, err)

	items := set.SearchItems()
	require.Len(t, items, 2)
	assert.Equal(t, "Lang/Go", items[0].Title)
	assert.Equal(t, "http://localhost:1112/scraps/go.lang.html", items[0].URL)
	assert.Equal(t, "goroutines", items[0].Body)
	assert.Equal(t, "http://localhost:1112/scraps/rust-guide.html", items[1].URL)

	got, err := set.Lookup("Lang/Go")
	require.NoError(t, err)
	assert.Equal(t, model.NewKeyWithCtx("Go", "Lang"), got.Key)
}

func TestTagNames_IncludesHashtags(t *testing.T) {
	store := newStore(t, map[string]string{
		"a.md": "[[b]] [[go]] #[[rust]]",
		"b.md": "#[[go]] #[[a]]",
	})
	set, err := (&Loader{Store: store}).Load(context.Background(), base)
	require.NoError(t, err)

	// #[[a]] points at an existing scrap, so it is not a tag
	assert.Equal(t, []model.ScrapKey{model.NewKey("go"), model.NewKey("rust")}, set.TagNames())

	var got []string
	for _, s := range set.TagBacklinks(model.NewKey("go")) {
		got = append(got, s.Key.String())
	}
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Empty(t, set.TagBacklinks(model.NewKey("none")))
}

func TestLoad_CachedStamps(t *testing.T) {
	store := newStore(t, map[string]string{"a.md": "a", "b.md": "b"})
	db := testutil.TestDB(t)
	stamper := &index.CachedTimestamper{Cache: db, Next: fixedStamper{"a.md": 42}, Logger: slog.Default()}
	l := &Loader{Store: store, Stamper: stamper}

	_, err := l.Load(context.Background(), base)
	require.NoError(t, err)

	// second load answers from the cache only
	l.Stamper = &index.CachedTimestamper{Cache: db, Next: failingStamper{path: "a.md"}, Logger: slog.Default()}
	set, err := l.Load(context.Background(), base)
	require.NoError(t, err)
	a, err := set.Get(model.NewKey("a"))
	require.NoError(t, err)
	require.NotNil(t, a.CommittedTS)
	assert.Equal(t, int64(42), *a.CommittedTS)
}
