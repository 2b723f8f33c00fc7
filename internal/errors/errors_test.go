package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildError_ErrorIncludesCategorySeverityAndCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(cause, CategoryFileSystem, SeverityFatal, "cannot write output")

	require.Equal(t, "filesystem (fatal): cannot write output: disk full", err.Error())
	require.ErrorIs(t, err, cause)
}

func TestBuildError_WithContext_Accumulates(t *testing.T) {
	err := ValidationError("bad reference").
		WithContext("post", "my-post").
		WithContext("url", "/relative")

	require.Equal(t, "my-post", err.Context["post"])
	require.Equal(t, "/relative", err.Context["url"])
}

func TestCategoryHelpers(t *testing.T) {
	err := FatalError(CategoryConfig, "missing title")

	require.True(t, IsCategory(err, CategoryConfig))
	require.False(t, IsCategory(err, CategoryGit))
	require.Equal(t, CategoryConfig, GetCategory(err))
	require.True(t, IsFatal(err))

	plain := stderrors.New("plain")
	require.Equal(t, CategoryInternal, GetCategory(plain))
	require.False(t, IsFatal(plain))
}
