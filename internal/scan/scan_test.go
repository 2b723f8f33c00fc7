package scan

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestScan_LoadsAndClassifiesDocuments(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "2024-01-01-first.md", "# hi")
	writeFile(t, root, "notes.txt", "plain")
	writeFile(t, root, "ignored.png", "binary")

	docs, issues := Scan([]string{root})
	require.Empty(t, issues)
	require.Len(t, docs, 2)

	require.Equal(t, "2024-01-01-first", docs[0].Slug)
	require.Equal(t, KindMarkdown, docs[0].Kind)
	require.Equal(t, []byte("# hi"), docs[0].Content)

	require.Equal(t, "notes", docs[1].Slug)
	require.Equal(t, KindText, docs[1].Kind)
}

func TestScan_RecursesSubdirectories_SkipsHidden(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "sub/nested.md", "nested")
	writeFile(t, root, ".git/config.md", "not a post")

	docs, issues := Scan([]string{root})
	require.Empty(t, issues)
	require.Len(t, docs, 1)
	require.Equal(t, "nested", docs[0].Slug)
}

func TestScan_DuplicateStemsAcrossRoots_GetSuffixes(t *testing.T) {
	rootA := t.TempDir()
	rootB := t.TempDir()
	writeFile(t, rootA, "post.md", "a")
	writeFile(t, rootB, "post.md", "b")

	docs, issues := Scan([]string{rootA, rootB})
	require.Empty(t, issues)
	require.Len(t, docs, 2)
	require.Equal(t, "post", docs[0].Slug)
	require.Equal(t, "post-2", docs[1].Slug)
}

func TestScan_MissingRoot_CollectsIssueAndContinues(t *testing.T) {
	good := t.TempDir()
	writeFile(t, good, "ok.md", "fine")

	docs, issues := Scan([]string{filepath.Join(t.TempDir(), "does-not-exist"), good})
	require.Len(t, docs, 1)
	require.NotEmpty(t, issues)
}

func TestScan_UppercaseExtension_StillClassified(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "SHOUTY.MD", "loud")

	docs, _ := Scan([]string{root})
	require.Len(t, docs, 1)
	require.Equal(t, KindMarkdown, docs[0].Kind)
}

func TestFallbackDateFor_FixedDateWinsOverModTime(t *testing.T) {
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	doc := Document{ModTime: time.Date(2025, 6, 6, 12, 0, 0, 0, time.UTC)}

	require.Equal(t, fixed, Options{FallbackDate: fixed}.FallbackDateFor(doc))
	require.Equal(t, doc.ModTime, Options{}.FallbackDateFor(doc))
}
