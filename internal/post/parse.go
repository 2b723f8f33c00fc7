package post

import (
	"html"
	"strings"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/frontmatter"
	"git.home.luguber.info/inful/blogbuilder/internal/markdown"
)

const dateLayout = "2006-01-02"

// ParseMarkdown builds a Post from raw Markdown file content.
//
// Frontmatter wins over filename inference for every field it provides.
// A malformed frontmatter block is a soft failure: warn is non-nil, the full
// content is treated as body and metadata comes from inference.
func ParseMarkdown(slug, stem string, content []byte, fallback time.Time) (p *Post, warn, fatal error) {
	fields, body, _, err := frontmatter.Parse(content)
	if err != nil {
		warn = errors.Wrap(err, errors.CategoryContent, errors.SeverityWarning, "malformed frontmatter, falling back to filename inference").
			WithContext("post", slug)
	}

	stemTitle, stemDate, hasStemDate := InferFromStem(stem)

	title := fields.Title
	if title == "" {
		title = stemTitle
	}

	created := parseDate(fields.Created)
	if created.IsZero() && hasStemDate {
		created = stemDate
	}
	if created.IsZero() {
		created = fallback
	}
	modified := parseDate(fields.Modified)
	if modified.IsZero() {
		modified = fallback
	}

	bodyText := NormalizeBody(body)

	linkURL := fields.LinkURL
	if linkURL == "" {
		linkURL = FirstURL(bodyText)
	}

	rendered, err := markdown.Render([]byte(bodyText))
	if err != nil {
		return nil, warn, errors.Wrap(err, errors.CategoryContent, errors.SeverityError, "markdown rendering failed").
			WithContext("post", slug)
	}

	return &Post{
		Slug:        slug,
		Title:       title,
		Description: fields.Description,
		Tags:        MergeTags(fields.Tags, ExtractHashtags(bodyText)),
		Body:        bodyText,
		HTML:        rendered,
		Created:     created,
		Modified:    modified,
		LinkURL:     linkURL,
		Kind:        SourceMarkdown,
	}, warn, nil
}

// ParseText builds a Post from a plain-text file. Metadata comes entirely
// from the filename convention; the body is HTML-escaped verbatim.
func ParseText(slug, stem string, content []byte, fallback time.Time) *Post {
	stemTitle, stemDate, hasStemDate := InferFromStem(stem)

	created := fallback
	if hasStemDate {
		created = stemDate
	}

	bodyText := NormalizeBody(content)

	return &Post{
		Slug:     slug,
		Title:    stemTitle,
		Tags:     MergeTags(nil, ExtractHashtags(bodyText)),
		Body:     bodyText,
		HTML:     renderPlainHTML(bodyText),
		Created:  created,
		Modified: fallback,
		LinkURL:  FirstURL(bodyText),
		Kind:     SourceText,
	}
}

func renderPlainHTML(body string) string {
	escaped := html.EscapeString(body)
	return "<p>" + strings.ReplaceAll(escaped, "\n", "<br>") + "</p>"
}

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return d
}
