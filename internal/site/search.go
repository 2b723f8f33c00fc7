package site

import (
	"encoding/json"

	"git.home.luguber.info/inful/blogbuilder/internal/post"
)

// SearchEntry is the per-post record of the client-side search index. Field
// values are taken verbatim from the post; the client recovers exact display
// text without re-derivation.
type SearchEntry struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	HTML        string   `json:"html_content"`
}

// BuildSearchIndex emits one entry per surviving post, in site order.
func BuildSearchIndex(posts []*post.Post) []SearchEntry {
	entries := make([]SearchEntry, 0, len(posts))
	for _, p := range posts {
		tags := p.Tags
		if tags == nil {
			tags = []string{}
		}
		entries = append(entries, SearchEntry{
			Slug:        p.Slug,
			Title:       p.Title,
			Description: p.Description,
			Tags:        tags,
			HTML:        p.HTML,
		})
	}
	return entries
}

// EncodeSearchIndex serializes the index as the static JSON payload embedded
// in the artifact and written alongside it.
func EncodeSearchIndex(entries []SearchEntry) ([]byte, error) {
	return json.Marshal(entries)
}
