package post

import (
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Filename convention: optional leading date token followed by a slug, with
// any non-alphanumeric byte as separator (2024-10-26-my-post, 2024_10_26_x).
var reFilenameDate = regexp.MustCompile(`^(\d{4})[^0-9A-Za-z](\d{2})[^0-9A-Za-z](\d{2})[^0-9A-Za-z](.+)$`)

var titleCaser = cases.Title(language.Und, cases.NoLower)

// InferFromStem derives a human-readable title and an optional publish date
// from a file stem (filename without extension).
//
// Deterministic: the same stem always yields the same result. The title is
// never empty; degenerate stems fall back to the raw stem.
func InferFromStem(stem string) (title string, date time.Time, hasDate bool) {
	slug := stem
	if m := reFilenameDate.FindStringSubmatch(stem); m != nil {
		if d, err := time.Parse("2006-01-02", m[1]+"-"+m[2]+"-"+m[3]); err == nil {
			date = d
			hasDate = true
			slug = m[4]
		}
	}

	title = deslugify(slug)
	if title == "" {
		title = stem
	}
	return title, date, hasDate
}

// deslugify turns a filename slug into display text: separators become
// spaces, words are capitalized (existing casing is preserved otherwise).
func deslugify(slug string) string {
	s := strings.NewReplacer("-", " ", "_", " ").Replace(slug)
	s = strings.Join(strings.Fields(s), " ")
	return titleCaser.String(s)
}
