// Package markdown wraps the Goldmark converter used for post bodies.
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var converter = goldmark.New(
	goldmark.WithExtensions(extension.Strikethrough, extension.Linkify),
)

// Render converts a Markdown body (frontmatter already removed) to HTML.
func Render(body []byte) (string, error) {
	var buf bytes.Buffer
	if err := converter.Convert(body, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
