// Package gitsource fetches remote content roots: an input source given as a
// git URL is cloned into a temporary workspace and then scanned like any
// local directory.
package gitsource

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"

	"git.home.luguber.info/inful/blogbuilder/internal/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
)

// Workspace owns the temporary directory holding cloned sources.
type Workspace struct {
	dir string
}

// NewWorkspace creates the clone workspace. With an empty dir a temp
// directory is allocated.
func NewWorkspace(dir string) (*Workspace, error) {
	if dir == "" {
		tmp, err := os.MkdirTemp("", "blogbuilder-sources-*")
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityFatal, "cannot create clone workspace")
		}
		return &Workspace{dir: tmp}, nil
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityFatal, "cannot create clone workspace").
			WithContext("path", dir)
	}
	return &Workspace{dir: dir}, nil
}

// IsGitURL reports whether a source spec names a remote git repository
// rather than a local directory.
func IsGitURL(source string) bool {
	if strings.HasPrefix(source, "git@") || strings.HasPrefix(source, "ssh://") {
		return true
	}
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return strings.HasSuffix(strings.TrimSuffix(source, "/"), ".git")
	}
	return false
}

// Fetch clones url into the workspace and returns the local path. An
// existing clone directory for the same URL is removed first: every build
// starts from a fresh checkout.
func (w *Workspace) Fetch(ctx context.Context, url string) (string, error) {
	name := cloneDirName(url)
	path := filepath.Join(w.dir, name)

	if err := os.RemoveAll(path); err != nil {
		return "", errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityError, "cannot reset clone directory").
			WithContext("path", path)
	}

	slog.Debug("Cloning content source", logfields.URL(url), logfields.Path(path))
	repo, err := gogit.PlainCloneContext(ctx, path, false, &gogit.CloneOptions{
		URL:   url,
		Depth: 1,
	})
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryGit, errors.SeverityError, "clone failed").
			WithContext("url", url)
	}

	if ref, err := repo.Head(); err == nil {
		slog.Info("Content source cloned", logfields.URL(url), slog.String("commit", ref.Hash().String()[:8]))
	} else {
		slog.Info("Content source cloned", logfields.URL(url))
	}
	return path, nil
}

// Cleanup removes the workspace and everything in it.
func (w *Workspace) Cleanup() error {
	if w == nil || w.dir == "" {
		return nil
	}
	if err := os.RemoveAll(w.dir); err != nil {
		return errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityWarning, "cannot remove clone workspace").
			WithContext("path", w.dir)
	}
	return nil
}

// Dir returns the workspace root.
func (w *Workspace) Dir() string { return w.dir }

func cloneDirName(url string) string {
	trimmed := strings.TrimSuffix(strings.TrimSuffix(url, "/"), ".git")
	if i := strings.LastIndexAny(trimmed, "/:"); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	if trimmed == "" {
		return "source"
	}
	return trimmed
}
