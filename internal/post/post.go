// Package post defines the canonical post model and the two metadata
// strategies that populate it: frontmatter parsing and filename inference.
package post

import "time"

// SourceKind identifies how a post's metadata was sourced.
type SourceKind string

const (
	SourceMarkdown SourceKind = "markdown"
	SourceText     SourceKind = "text"
)

// Post is one ingested document, immutable once built.
type Post struct {
	// Slug is the stable identifier, derived from the file stem. Unique
	// within a build.
	Slug string `json:"slug"`

	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`

	// Body is the canonical normalized text (frontmatter stripped, trimmed).
	// It backs both display fallbacks and the search index.
	Body string `json:"body"`

	// HTML is the rendered representation embedded in the output artifact.
	HTML string `json:"html"`

	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`

	// LinkURL is the post's external link: explicit frontmatter field, else
	// the first absolute URL found in the body. Empty when neither resolves.
	LinkURL string `json:"link_url,omitempty"`

	Kind SourceKind `json:"kind"`
}
