package site

import (
	"sort"
	"strings"

	"git.home.luguber.info/inful/blogbuilder/internal/post"
)

// TagBucket is one entry of the reverse tag index.
type TagBucket struct {
	// Name preserves the first-seen casing of the tag.
	Name string `json:"name"`
	// Posts holds the slugs bearing this tag, in site order.
	Posts []string `json:"posts"`
}

// Count returns the number of posts in the bucket.
func (b TagBucket) Count() int { return len(b.Posts) }

// AggregateTags builds the reverse index tag → post slugs over the ordered
// post sequence. Tag comparison is case-insensitive; the display name keeps
// the casing of the first occurrence. Buckets are sorted by post count
// descending, then name ascending, for deterministic UI ordering.
func AggregateTags(posts []*post.Post) []TagBucket {
	buckets := make(map[string]*TagBucket)
	var order []string

	for _, p := range posts {
		for _, tag := range p.Tags {
			key := strings.ToLower(tag)
			b, ok := buckets[key]
			if !ok {
				b = &TagBucket{Name: tag}
				buckets[key] = b
				order = append(order, key)
			}
			b.Posts = append(b.Posts, p.Slug)
		}
	}

	out := make([]TagBucket, 0, len(order))
	for _, key := range order {
		out = append(out, *buckets[key])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if len(out[i].Posts) != len(out[j].Posts) {
			return len(out[i].Posts) > len(out[j].Posts)
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}
