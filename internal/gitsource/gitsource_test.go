package gitsource

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsGitURL(t *testing.T) {
	cases := []struct {
		source string
		want   bool
	}{
		{"git@github.com:user/blog.git", true},
		{"ssh://git@host/blog.git", true},
		{"https://github.com/user/blog.git", true},
		{"https://github.com/user/blog.git/", true},
		{"https://example.com/not-a-repo", false},
		{"http://example.com/repo.git", true},
		{"./posts", false},
		{"/abs/path/posts", false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, IsGitURL(tc.source), tc.source)
	}
}

func TestCloneDirName(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://github.com/user/blog.git", "blog"},
		{"git@github.com:user/my-posts.git", "my-posts"},
		{"ssh://git@host/deep/path/repo.git/", "repo"},
		{"", "source"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, cloneDirName(tc.url), tc.url)
	}
}

func TestNewWorkspace_EmptyDir_AllocatesTempAndCleansUp(t *testing.T) {
	ws, err := NewWorkspace("")
	require.NoError(t, err)
	require.DirExists(t, ws.Dir())

	require.NoError(t, ws.Cleanup())
	_, statErr := os.Stat(ws.Dir())
	require.True(t, os.IsNotExist(statErr))
}

func TestNewWorkspace_ExplicitDir_Created(t *testing.T) {
	dir := t.TempDir() + "/clones"

	ws, err := NewWorkspace(dir)
	require.NoError(t, err)
	require.Equal(t, dir, ws.Dir())
	require.DirExists(t, dir)
}
