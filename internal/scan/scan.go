// Package scan walks the configured input roots and loads the raw documents
// feeding the build pipeline.
package scan

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/util/sets"
)

// Kind classifies a document by file extension.
type Kind string

const (
	KindMarkdown Kind = "markdown"
	KindText     Kind = "text"
)

// Document is one raw input file, loaded and classified but not yet parsed.
type Document struct {
	Source  string // input root the file came from
	Path    string // absolute path
	Slug    string // stable identifier, unique within the build
	Stem    string // filename without extension
	Kind    Kind
	Content []byte
	ModTime time.Time
}

// Options tunes the scan.
type Options struct {
	// FallbackDate, when non-zero, replaces the file modification time as
	// the date source for documents carrying no date of their own. Builds
	// that need byte-identical reruns set this.
	FallbackDate time.Time
}

// FallbackDateFor returns the date source for a document: the configured
// fixed date if set, else the file modification time.
func (o Options) FallbackDateFor(doc Document) time.Time {
	if !o.FallbackDate.IsZero() {
		return o.FallbackDate
	}
	return doc.ModTime
}

// Scan walks every root in order and loads all Markdown and plain-text
// files. IO failures are document-scoped: the file is skipped, an issue is
// recorded, and the walk continues. Walk order is lexical per root, making
// slug assignment deterministic.
func Scan(roots []string) ([]Document, []error) {
	var docs []Document
	var issues []error
	slugs := sets.New[string]()

	for _, root := range roots {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			issues = append(issues, errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityError, "cannot resolve input root").
				WithContext("source", root))
			continue
		}

		walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				issues = append(issues, errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityError, "walk failed").
					WithContext("path", path))
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				if strings.HasPrefix(d.Name(), ".") && path != absRoot {
					return fs.SkipDir
				}
				return nil
			}

			kind, ok := classify(path)
			if !ok {
				return nil
			}

			doc, err := load(absRoot, path, kind)
			if err != nil {
				issues = append(issues, err)
				return nil
			}
			doc.Slug = uniqueSlug(slugs, doc.Stem)
			docs = append(docs, doc)
			return nil
		})
		if walkErr != nil {
			issues = append(issues, errors.Wrap(walkErr, errors.CategoryFileSystem, errors.SeverityError, "input root walk aborted").
				WithContext("source", root))
		}
	}

	slog.Info("Scan completed", logfields.Count(len(docs)), slog.Int("issues", len(issues)))
	return docs, issues
}

func classify(path string) (Kind, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md":
		return KindMarkdown, true
	case ".txt":
		return KindText, true
	default:
		return "", false
	}
}

func load(root, path string, kind Kind) (Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Document{}, errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityError, "unreadable file, skipping").
			WithContext("path", path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return Document{}, errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityError, "stat failed, skipping").
			WithContext("path", path)
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Document{
		Source:  root,
		Path:    path,
		Stem:    stem,
		Kind:    kind,
		Content: content,
		ModTime: info.ModTime(),
	}, nil
}

// uniqueSlug keeps post identifiers unique within a build. Colliding stems
// from different roots get a deterministic numeric suffix in walk order.
func uniqueSlug(seen sets.Set[string], stem string) string {
	slug := stem
	for n := 2; seen.Has(slug); n++ {
		slug = fmt.Sprintf("%s-%d", stem, n)
	}
	if slug != stem {
		slog.Warn("Duplicate post identifier, disambiguating", logfields.Post(stem), slog.String("assigned", slug))
	}
	seen.Add(slug)
	return slug
}
