package site

import (
	"fmt"
	"net/url"
	"strings"

	"git.home.luguber.info/inful/blogbuilder/internal/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/post"
)

// Provider is one share-link destination: a display name and a URL template
// carrying {URL}, {TITLE}, {TEXT} and {TAGS} placeholders.
type Provider struct {
	Name     string
	Template string
}

// ShareLink is an expanded provider template for one post.
type ShareLink struct {
	Provider string `json:"provider"`
	URL      string `json:"url"`
}

// ParseProviderSpec parses the CLI form "Name:URLTemplate". The split happens
// at the first colon, so templates may freely contain scheme separators.
func ParseProviderSpec(spec string) (Provider, error) {
	name, template, ok := strings.Cut(spec, ":")
	if !ok || name == "" || template == "" {
		return Provider{}, errors.New(errors.CategoryConfig, errors.SeverityFatal,
			fmt.Sprintf("invalid share provider spec %q, expected Name:URLTemplate", spec))
	}
	return Provider{Name: name, Template: template}, nil
}

// ParseProviderSpecs parses all provider specs, failing on the first bad one.
func ParseProviderSpecs(specs []string) ([]Provider, error) {
	providers := make([]Provider, 0, len(specs))
	for _, s := range specs {
		p, err := ParseProviderSpec(s)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	return providers, nil
}

// Expand substitutes the recognized placeholders with percent-encoded values
// from the post. A template requesting {URL} for a post without a resolved
// link cannot be expanded; the caller omits that link and reports it.
func Expand(p Provider, pst *post.Post) (ShareLink, error) {
	if strings.Contains(p.Template, "{URL}") && pst.LinkURL == "" {
		return ShareLink{}, errors.New(errors.CategoryValidation, errors.SeverityWarning,
			"share template requires {URL} but post has no link").
			WithContext("provider", p.Name).
			WithContext("post", pst.Slug)
	}

	expanded := strings.NewReplacer(
		"{URL}", percentEncode(pst.LinkURL),
		"{TITLE}", percentEncode(pst.Title),
		"{TEXT}", percentEncode(pst.Body),
		"{TAGS}", percentEncode(formatTags(pst.Tags)),
	).Replace(p.Template)

	return ShareLink{Provider: p.Name, URL: expanded}, nil
}

// ExpandAll expands every provider for one post, collecting omissions.
func ExpandAll(providers []Provider, pst *post.Post) ([]ShareLink, []error) {
	var links []ShareLink
	var omitted []error
	for _, prov := range providers {
		link, err := Expand(prov, pst)
		if err != nil {
			omitted = append(omitted, err)
			continue
		}
		links = append(links, link)
	}
	return links, omitted
}

// formatTags renders tags as "#a #b"; spaces inside a tag become underscores
// so each hashtag stays one token.
func formatTags(tags []string) string {
	parts := make([]string, 0, len(tags))
	for _, t := range tags {
		parts = append(parts, "#"+strings.ReplaceAll(t, " ", "_"))
	}
	return strings.Join(parts, " ")
}

// percentEncode query-escapes v using %20 for spaces so values are safe in
// any template position.
func percentEncode(v string) string {
	return strings.ReplaceAll(url.QueryEscape(v), "+", "%20")
}
