package post

import (
	"regexp"
	"strings"

	"git.home.luguber.info/inful/blogbuilder/internal/util/sets"
)

var (
	reFirstURL = regexp.MustCompile(`https?://[^\s()<>]+`)
	reBodyTag  = regexp.MustCompile(`#(\p{L}[\p{L}\p{N}-]*)`)
)

// NormalizeBody produces the canonical body text used for display and
// indexing: frontmatter already stripped by the caller, surrounding
// whitespace removed.
func NormalizeBody(body []byte) string {
	return strings.TrimSpace(string(body))
}

// FirstURL returns the first absolute http(s) URL in the body, or "".
func FirstURL(body string) string {
	return reFirstURL.FindString(body)
}

// ExtractHashtags returns inline #hashtag tokens in document order.
// Unicode letters start a tag; letters, digits and hyphens continue it.
func ExtractHashtags(body string) []string {
	matches := reBodyTag.FindAllStringSubmatch(body, -1)
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, m[1])
	}
	return tags
}

// MergeTags unions explicit frontmatter tags with detected body hashtags.
// Comparison is case-insensitive; the first-seen casing is preserved and
// explicit tags come first, so frontmatter casing wins over body casing.
func MergeTags(explicit, detected []string) []string {
	seen := sets.New[string]()
	out := make([]string, 0, len(explicit)+len(detected))
	for _, t := range append(append([]string{}, explicit...), detected...) {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if seen.Has(key) {
			continue
		}
		seen.Add(key)
		out = append(out, t)
	}
	return out
}
