// Package render assembles the Site into the final single-page artifact.
// Output is atomic: files are staged next to their destination and renamed
// into place, so a failed build never leaves a partial artifact.
package render

import (
	"bytes"
	_ "embed"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/site"
)

//go:embed templates/index.html.tmpl
var indexTemplate string

// Renderer writes the site artifact into one output directory.
type Renderer struct {
	outputDir string
	tmpl      *template.Template
}

// NewRenderer parses the embedded page template.
func NewRenderer(outputDir string) (*Renderer, error) {
	tmpl, err := template.New("index").Parse(indexTemplate)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryRender, errors.SeverityFatal, "embedded template is invalid")
	}
	return &Renderer{outputDir: outputDir, tmpl: tmpl}, nil
}

type postView struct {
	Slug        string
	Title       string
	Description string
	Tags        []string
	Created     string
	LinkURL     string
	HTML        template.HTML
	Share       []site.ShareLink
}

type pageData struct {
	Title       string
	Description string
	Posts       []postView
	Tags        []site.TagBucket
	SearchJSON  template.JS
}

// Render writes index.html, search_index.json and favicon.svg. All three are
// staged and renamed; any error leaves previous output untouched.
func (r *Renderer) Render(s *site.Site) error {
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityFatal, "cannot create output directory").
			WithContext("path", r.outputDir)
	}

	searchJSON, err := site.EncodeSearchIndex(s.Search)
	if err != nil {
		return errors.Wrap(err, errors.CategoryRender, errors.SeverityFatal, "cannot encode search index")
	}

	data := pageData{
		Title:       s.Title,
		Description: s.Description,
		Posts:       make([]postView, 0, len(s.Posts)),
		Tags:        s.Tags,
		SearchJSON:  template.JS(searchJSON),
	}
	for _, p := range s.Posts {
		data.Posts = append(data.Posts, postView{
			Slug:        p.Slug,
			Title:       p.Title,
			Description: p.Description,
			Tags:        p.Tags,
			Created:     formatDate(p.Created),
			LinkURL:     p.LinkURL,
			HTML:        template.HTML(p.HTML),
			Share:       s.ShareLinks[p.Slug],
		})
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return errors.Wrap(err, errors.CategoryRender, errors.SeverityFatal, "template execution failed")
	}

	if err := writeFileAtomic(r.outputDir, "index.html", buf.Bytes()); err != nil {
		return err
	}
	if err := writeFileAtomic(r.outputDir, "search_index.json", searchJSON); err != nil {
		return err
	}
	if err := writeFileAtomic(r.outputDir, "favicon.svg", faviconSVG(s.Title)); err != nil {
		return err
	}

	slog.Info("Site rendered", logfields.Path(filepath.Join(r.outputDir, "index.html")), logfields.Count(len(s.Posts)))
	return nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// writeFileAtomic stages data in the destination directory and renames it
// into place. Rename within one directory is atomic on POSIX filesystems.
func writeFileAtomic(dir, name string, data []byte) error {
	tmp, err := os.CreateTemp(dir, "."+name+".stage-*")
	if err != nil {
		return errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityFatal, "cannot stage output file").
			WithContext("file", name)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityFatal, "cannot write staged output").
			WithContext("file", name)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityFatal, "cannot chmod staged output").
			WithContext("file", name)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityFatal, "cannot close staged output").
			WithContext("file", name)
	}
	if err := os.Rename(tmpName, filepath.Join(dir, name)); err != nil {
		return errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityFatal, "cannot publish output file").
			WithContext("file", name)
	}
	slog.Debug("Artifact published", logfields.File(name))
	return nil
}
