// Package linkcheck enforces the absolute-URL policy on rendered post HTML:
// every hyperlink and resource reference must carry an explicit scheme so the
// output artifact works from any location without a server.
package linkcheck

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Reference is one extracted link or resource reference.
type Reference struct {
	URL       string // destination as written
	Tag       string // HTML tag (a, img, script, link, ...)
	Attribute string // attribute carrying the destination (href or src)
}

func (r Reference) String() string {
	return fmt.Sprintf("<%s %s=%q>", r.Tag, r.Attribute, r.URL)
}

// Violations is the set of non-absolute references found in one document.
type Violations []Reference

func (v Violations) Error() string {
	refs := make([]string, len(v))
	for i, r := range v {
		refs[i] = r.String()
	}
	return "relative or invalid resource references: " + strings.Join(refs, ", ")
}

// linkAttrs maps element names to the attribute that carries a destination.
var linkAttrs = map[string]string{
	"a":      "href",
	"link":   "href",
	"img":    "src",
	"script": "src",
	"video":  "src",
	"audio":  "src",
	"source": "src",
	"iframe": "src",
}

// Validate parses rendered HTML and returns the references violating the
// absolute-URL policy. A nil return means the document is clean.
func Validate(rendered string) Violations {
	refs, err := extractReferences(rendered)
	if err != nil {
		// html.Parse is error-tolerant; a hard failure means the content is
		// not HTML at all, which no reference policy can salvage.
		return Violations{{URL: "", Tag: "html", Attribute: ""}}
	}

	var violations Violations
	for _, ref := range refs {
		if exempt(ref.URL) {
			continue
		}
		if !isAbsolute(ref.URL) {
			violations = append(violations, ref)
		}
	}
	return violations
}

func extractReferences(rendered string) ([]Reference, error) {
	doc, err := html.Parse(strings.NewReader(rendered))
	if err != nil {
		return nil, err
	}

	var refs []Reference
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if attr, ok := linkAttrs[n.Data]; ok {
				if dest := getAttr(n, attr); dest != "" {
					refs = append(refs, Reference{URL: dest, Tag: n.Data, Attribute: attr})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return refs, nil
}

// exempt returns true for references outside the policy: page-local anchors
// and inline data URIs.
func exempt(dest string) bool {
	return strings.HasPrefix(dest, "#") || strings.HasPrefix(dest, "data:")
}

// isAbsolute reports whether dest is an absolute URL. An explicit scheme is
// required; http(s) additionally requires a host.
func isAbsolute(dest string) bool {
	u, err := url.Parse(dest)
	if err != nil || u.Scheme == "" {
		return false
	}
	if u.Scheme == "http" || u.Scheme == "https" {
		return u.Host != ""
	}
	return true
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
