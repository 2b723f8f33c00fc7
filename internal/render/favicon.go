package render

import (
	"fmt"
	"html"
	"strings"
	"unicode"
)

// faviconSVG renders a simple circular favicon from the first character of
// the site title.
func faviconSVG(title string) []byte {
	initial := "●"
	for _, r := range strings.TrimSpace(title) {
		initial = string(unicode.ToUpper(r))
		break
	}

	svg := fmt.Sprintf(`<svg viewBox="0 0 100 100" xmlns="http://www.w3.org/2000/svg">
  <circle cx="50" cy="50" r="48" fill="white" stroke="rgba(0,0,0,0.1)" stroke-width="2"/>
  <text x="50%%" y="50%%" dy=".35em" text-anchor="middle" font-family="sans-serif" font-size="100" font-weight="bold" fill="black">%s</text>
</svg>
`, html.EscapeString(initial))
	return []byte(svg)
}
