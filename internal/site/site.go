// Package site aggregates validated posts into the renderable Site model:
// ordered posts, tag index, search index and per-post share links.
package site

import (
	"sort"

	"git.home.luguber.info/inful/blogbuilder/internal/post"
)

// Site is the aggregate handed to the renderer. It is constructed once per
// build and never mutated afterwards.
type Site struct {
	Title       string
	Description string

	// Posts ordered by created date, most recent first; ties broken by slug
	// so identical inputs always render identically.
	Posts []*post.Post

	Tags   []TagBucket
	Search []SearchEntry

	// ShareLinks keyed by post slug.
	ShareLinks map[string][]ShareLink
}

// New assembles a Site from the surviving posts. Share link omissions are
// returned as issues; they never fail the build.
func New(title, description string, posts []*post.Post, providers []Provider) (*Site, []error) {
	ordered := Order(posts)

	shares := make(map[string][]ShareLink, len(ordered))
	var issues []error
	for _, p := range ordered {
		links, omitted := ExpandAll(providers, p)
		if len(links) > 0 {
			shares[p.Slug] = links
		}
		issues = append(issues, omitted...)
	}

	return &Site{
		Title:       title,
		Description: description,
		Posts:       ordered,
		Tags:        AggregateTags(ordered),
		Search:      BuildSearchIndex(ordered),
		ShareLinks:  shares,
	}, issues
}

// Order sorts posts by created date descending, slug ascending on ties.
// The input slice is not modified.
func Order(posts []*post.Post) []*post.Post {
	ordered := make([]*post.Post, len(posts))
	copy(ordered, posts)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].Created.Equal(ordered[j].Created) {
			return ordered[i].Created.After(ordered[j].Created)
		}
		return ordered[i].Slug < ordered[j].Slug
	})
	return ordered
}
