package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogbuilder/internal/post"
	"git.home.luguber.info/inful/blogbuilder/internal/site"
)

func testSite(t *testing.T) *site.Site {
	t.Helper()
	posts := []*post.Post{
		{
			Slug:    "p1",
			Title:   "First Post",
			Tags:    []string{"go"},
			HTML:    "<p>hello <em>world</em></p>",
			Created: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
			LinkURL: "https://example.com/1",
		},
		{
			Slug:    "p2",
			Title:   "Second Post",
			HTML:    "<p>more</p>",
			Created: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		},
	}
	s, issues := site.New("Test Blog", "A test", posts, nil)
	require.Empty(t, issues)
	return s
}

func TestRender_WritesAllArtifacts(t *testing.T) {
	out := t.TempDir()
	r, err := NewRenderer(out)
	require.NoError(t, err)

	require.NoError(t, r.Render(testSite(t)))

	for _, name := range []string{"index.html", "search_index.json", "favicon.svg"} {
		_, err := os.Stat(filepath.Join(out, name))
		require.NoError(t, err, name)
	}
}

func TestRender_IndexContainsPostsTagsAndSearchIndex(t *testing.T) {
	out := t.TempDir()
	r, err := NewRenderer(out)
	require.NoError(t, err)
	require.NoError(t, r.Render(testSite(t)))

	data, err := os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	page := string(data)

	require.Contains(t, page, "Test Blog")
	require.Contains(t, page, "First Post")
	require.Contains(t, page, "<p>hello <em>world</em></p>")
	require.Contains(t, page, `data-slug="p1"`)
	require.Contains(t, page, "2024-04-01")
	require.Contains(t, page, "html_content")
}

func TestRender_SameInputTwice_ByteIdenticalOutput(t *testing.T) {
	s := testSite(t)

	outA := t.TempDir()
	outB := t.TempDir()
	for _, out := range []string{outA, outB} {
		r, err := NewRenderer(out)
		require.NoError(t, err)
		require.NoError(t, r.Render(s))
	}

	for _, name := range []string{"index.html", "search_index.json", "favicon.svg"} {
		a, err := os.ReadFile(filepath.Join(outA, name))
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(outB, name))
		require.NoError(t, err)
		require.Equal(t, a, b, name)
	}
}

func TestRender_NoStagingFilesLeftBehind(t *testing.T) {
	out := t.TempDir()
	r, err := NewRenderer(out)
	require.NoError(t, err)
	require.NoError(t, r.Render(testSite(t)))

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	for _, e := range entries {
		require.False(t, strings.Contains(e.Name(), ".stage-"), e.Name())
	}
}

func TestRender_CreatesOutputDirectory(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "site")
	r, err := NewRenderer(out)
	require.NoError(t, err)

	require.NoError(t, r.Render(testSite(t)))

	_, err = os.Stat(filepath.Join(out, "index.html"))
	require.NoError(t, err)
}

func TestFaviconSVG_UsesTitleInitial(t *testing.T) {
	svg := string(faviconSVG("blog of things"))
	require.Contains(t, svg, ">B<")

	fallbackSVG := string(faviconSVG(""))
	require.Contains(t, fallbackSVG, "●")
}
