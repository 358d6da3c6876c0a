package template

import (
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/scraps/internal/apperr"
	"github.com/starford/scraps/internal/storage"
)

const dailyTemplate = "+++\ntitle = \"test_title\"\n+++\n\n{{ date \"2006-01-02\" \"2019-09-19T15:00:00.000Z\" }}"

func newGenerator(t *testing.T, templates map[string]string) (*Generator, *storage.FS) {
	t.Helper()
	tdir, err := storage.NewFS(t.TempDir())
	require.NoError(t, err)
	for p, body := range templates {
		require.NoError(t, tdir.Write(p, []byte(body)))
	}
	sdir, err := storage.NewFS(t.TempDir())
	require.NoError(t, err)
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	return &Generator{Templates: tdir, Scraps: sdir, Location: tokyo}, sdir
}

func TestList(t *testing.T) {
	g, _ := newGenerator(t, map[string]string{
		"weekly.md":     "w",
		"daily.md":      "d",
		"nested/sub.md": "ignored",
		"notes.txt":     "ignored",
	})
	names, err := g.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"daily", "weekly"}, names)
}

func TestGenerate_TitleFromMetadata(t *testing.T) {
	g, scraps := newGenerator(t, map[string]string{"daily.md": dailyTemplate})

	path, err := g.Generate("daily", "")
	require.NoError(t, err)
	assert.Equal(t, "test_title.md", path)

	data, err := scraps.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "\n2019-09-20", string(data))
}

func TestGenerate_TitleOverride(t *testing.T) {
	g, scraps := newGenerator(t, map[string]string{"daily.md": dailyTemplate})

	path, err := g.Generate("daily", "override_title")
	require.NoError(t, err)
	assert.Equal(t, "override_title.md", path)
	assert.True(t, scraps.Exists("override_title.md"))
}

func TestGenerate_Now(t *testing.T) {
	g, scraps := newGenerator(t, map[string]string{"today.md": "+++\ntitle = \"{{ now | date \"2006-01-02\" }}\"\n+++\nbody"})
	g.Now = func() time.Time { return time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC) }

	path, err := g.Generate("today", "")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-02.md", path)
	data, err := scraps.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "body", string(data))
}

func TestGenerate_Errors(t *testing.T) {
	g, _ := newGenerator(t, map[string]string{
		"daily.md":    dailyTemplate,
		"untitled.md": "no metadata",
		"broken.md":   "{{ .Missing ",
	})

	_, err := g.Generate("missing", "")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	_, err = g.Generate("untitled", "")
	assert.True(t, errors.Is(err, apperr.ErrParse))

	_, err = g.Generate("broken", "x")
	assert.True(t, errors.Is(err, apperr.ErrParse))

	_, err = g.Generate("daily", "")
	require.NoError(t, err)
	_, err = g.Generate("daily", "")
	assert.True(t, errors.Is(err, apperr.ErrAlreadyExists))
}
