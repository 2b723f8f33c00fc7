package build

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
)

func writePost(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func testConfig(sources []string, out string) *config.Config {
	cfg := config.Default()
	cfg.Site.Title = "Test Blog"
	cfg.Sources = sources
	cfg.Output.Directory = out
	cfg.Output.FallbackDate = "2024-01-01"
	return cfg
}

func TestRun_EndToEnd_RendersValidPostsAndExcludesViolators(t *testing.T) {
	posts := t.TempDir()
	writePost(t, posts, "2024-06-01-good-post.md", `---
tags: [go]
---
A fine post about #testing with a link https://example.com/ref.
`)
	writePost(t, posts, "2024-06-02-bad-post.md", "Broken post ![pic](images/local.png)\n")
	writePost(t, posts, "2024-06-03-notes.txt", "plain #notes here\n")

	out := t.TempDir()
	builder, err := NewBuilder(testConfig([]string{posts}, out), nil)
	require.NoError(t, err)

	report, err := builder.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, report.Scanned)
	require.Equal(t, 2, report.Rendered)
	require.Equal(t, 1, report.Excluded)
	require.Equal(t, OutcomeWarning, report.Outcome)
	require.NotEmpty(t, report.BuildID)

	data, err := os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	page := string(data)
	require.Contains(t, page, "Good Post")
	require.Contains(t, page, "plain #notes here")
	require.NotContains(t, page, "images/local.png")

	// The exclusion is reported with the offending post's identifier.
	found := false
	for _, issue := range report.Issues {
		if issue.Context["post"] == "2024-06-02-bad-post" {
			found = true
		}
	}
	require.True(t, found, "expected an issue naming the excluded post")
}

func TestRun_CleanInput_OutcomeSuccess(t *testing.T) {
	posts := t.TempDir()
	writePost(t, posts, "2024-06-01-only.md", "Nothing but text.\n")

	builder, err := NewBuilder(testConfig([]string{posts}, t.TempDir()), nil)
	require.NoError(t, err)

	report, err := builder.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, OutcomeSuccess, report.Outcome)
	require.Empty(t, report.Issues)
	require.NotEmpty(t, report.StageDurations)
}

func TestRun_NoValidPosts_Fails(t *testing.T) {
	posts := t.TempDir() // empty

	builder, err := NewBuilder(testConfig([]string{posts}, t.TempDir()), nil)
	require.NoError(t, err)

	report, err := builder.Run(context.Background())
	require.ErrorIs(t, err, ErrNoValidPosts)
	require.Equal(t, OutcomeFailed, report.Outcome)
}

func TestRun_AllPostsExcluded_Fails(t *testing.T) {
	posts := t.TempDir()
	writePost(t, posts, "broken.md", "![pic](relative.png)\n")

	builder, err := NewBuilder(testConfig([]string{posts}, t.TempDir()), nil)
	require.NoError(t, err)

	_, err = builder.Run(context.Background())
	require.ErrorIs(t, err, ErrNoValidPosts)
}

func TestRun_FixedFallbackDate_ByteIdenticalReruns(t *testing.T) {
	posts := t.TempDir()
	writePost(t, posts, "undated-post.md", "No date anywhere, modtime must not leak in.\n")
	writePost(t, posts, "2024-06-01-dated.md", "Dated post.\n")

	outA := t.TempDir()
	outB := t.TempDir()
	for _, out := range []string{outA, outB} {
		builder, err := NewBuilder(testConfig([]string{posts}, out), nil)
		require.NoError(t, err)
		_, err = builder.Run(context.Background())
		require.NoError(t, err)
	}

	for _, name := range []string{"index.html", "search_index.json", "favicon.svg"} {
		a, err := os.ReadFile(filepath.Join(outA, name))
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(outB, name))
		require.NoError(t, err)
		require.Equal(t, string(a), string(b), name)
	}
}

func TestRun_TagBucketsUnionFrontmatterAndBodyHashtags(t *testing.T) {
	posts := t.TempDir()
	writePost(t, posts, "2024-06-01-tagged.md", "---\ntags: [a, b]\n---\nSome text.\n")
	writePost(t, posts, "2024-06-02-hash.txt", "quick note #b #c\n")

	out := t.TempDir()
	builder, err := NewBuilder(testConfig([]string{posts}, out), nil)
	require.NoError(t, err)
	_, err = builder.Run(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	page := string(data)
	require.Contains(t, page, "b (2)")
	require.Contains(t, page, "a (1)")
	require.Contains(t, page, "c (1)")
}

func TestRun_ShareProviders_ExpandedIntoPage(t *testing.T) {
	posts := t.TempDir()
	writePost(t, posts, "2024-06-01-linked.md", "Check https://example.com/thing out.\n")

	cfg := testConfig([]string{posts}, t.TempDir())
	cfg.Share = []string{"X:https://x.com/intent/post?url={URL}&text={TITLE}"}

	builder, err := NewBuilder(cfg, nil)
	require.NoError(t, err)
	report, err := builder.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, OutcomeSuccess, report.Outcome)

	data, err := os.ReadFile(filepath.Join(cfg.Output.Directory, "index.html"))
	require.NoError(t, err)
	require.Contains(t, string(data), "Share on X")
}

func TestNewBuilder_BadProviderSpec_Fails(t *testing.T) {
	cfg := testConfig([]string{t.TempDir()}, t.TempDir())
	cfg.Share = []string{"missing-colon"}

	_, err := NewBuilder(cfg, nil)
	require.Error(t, err)
}
