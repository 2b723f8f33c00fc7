package frontmatter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplit_NoFrontmatter_ReturnsBodyOnly(t *testing.T) {
	input := []byte("# Title\n\nHello\n")

	fm, body, had, err := Split(input)
	require.NoError(t, err)
	require.False(t, had)
	require.Empty(t, fm)
	require.Equal(t, input, body)
}

func TestSplit_YAMLFrontmatter_SplitsFrontmatterAndBody(t *testing.T) {
	input := []byte("---\ntitle: Hello\n---\n# Title\n")

	fm, body, had, err := Split(input)
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: Hello\n"), fm)
	require.Equal(t, []byte("# Title\n"), body)
}

func TestSplit_MissingClosingDelimiter_ReturnsError(t *testing.T) {
	input := []byte("---\ntitle: Hello\n# Title\n")

	_, _, had, err := Split(input)
	require.Error(t, err)
	require.False(t, had)
	require.True(t, errors.Is(err, ErrMissingClosingDelimiter))
}

func TestSplit_CRLF_SplitsFrontmatterAndBody(t *testing.T) {
	input := []byte("---\r\ntitle: Hello\r\n---\r\n# Title\r\n")

	fm, body, had, err := Split(input)
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: Hello\r\n"), fm)
	require.Equal(t, []byte("# Title\r\n"), body)
}

func TestSplit_EmptyFrontmatterBlock_SplitsAsHadWithEmptyFrontmatter(t *testing.T) {
	input := []byte("---\n---\n# Title\n")

	fm, body, had, err := Split(input)
	require.NoError(t, err)
	require.True(t, had)
	require.Empty(t, fm)
	require.Equal(t, []byte("# Title\n"), body)
}

func TestDecode_AllFields_RoundTripsExactly(t *testing.T) {
	raw := []byte("title: My Post\ndescription: About things\ntags:\n  - a\n  - b\ncreated: 2024-10-26\nlink_url: https://example.com/x\n")

	f, err := Decode(raw)
	require.NoError(t, err)
	require.Equal(t, "My Post", f.Title)
	require.Equal(t, "About things", f.Description)
	require.Equal(t, []string{"a", "b"}, f.Tags)
	require.Equal(t, "2024-10-26", f.Created)
	require.Equal(t, "https://example.com/x", f.LinkURL)
}

func TestDecode_Empty_ReturnsZeroFields(t *testing.T) {
	f, err := Decode(nil)
	require.NoError(t, err)
	require.Equal(t, Fields{}, f)
}

func TestDecode_InvalidYAML_ReturnsError(t *testing.T) {
	_, err := Decode([]byte("title: [unclosed"))
	require.Error(t, err)
}

func TestParse_MalformedBlock_FallsBackToFullBody(t *testing.T) {
	input := []byte("---\ntitle: Hello\n# Title without closing\n")

	fields, body, had, err := Parse(input)
	require.Error(t, err)
	require.False(t, had)
	require.Equal(t, Fields{}, fields)
	require.Equal(t, input, body)
}

func TestParse_UnknownKeys_AreIgnored(t *testing.T) {
	input := []byte("---\ntitle: Hello\nauthor: someone\n---\nbody\n")

	fields, body, had, err := Parse(input)
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, "Hello", fields.Title)
	require.Equal(t, []byte("body\n"), body)
}
