// Package frontmatter splits and decodes the YAML metadata block at the head
// of a Markdown post.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// Fields is the flat key-value structure recognized in post frontmatter.
// All fields are optional; absent fields are filled in by filename inference.
type Fields struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags"`
	Created     string   `yaml:"created"`
	Modified    string   `yaml:"modified"`
	LinkURL     string   `yaml:"link_url"`
}

// ErrMissingClosingDelimiter indicates the document started with a YAML
// frontmatter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// Split separates YAML frontmatter (`---` delimited) from the Markdown body.
//
// If the document does not start with a frontmatter delimiter on its first
// line, had is false and body is the full input.
func Split(content []byte) (frontmatter []byte, body []byte, had bool, err error) {
	nl := detectNewline(content)

	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	start := len(open)
	closeLine := []byte("---" + nl)
	if bytes.HasPrefix(content[start:], closeLine) {
		return []byte{}, content[start+len(closeLine):], true, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(content[start:], closeSeq)
	if idx < 0 {
		return nil, nil, false, ErrMissingClosingDelimiter
	}

	end := start + idx + len(nl)
	bodyStart := start + idx + len(closeSeq)
	return content[start:end], content[bodyStart:], true, nil
}

// Decode parses raw YAML frontmatter (without --- delimiters) into Fields.
func Decode(frontmatter []byte) (Fields, error) {
	var f Fields
	if len(frontmatter) == 0 {
		return f, nil
	}
	if err := yaml.Unmarshal(frontmatter, &f); err != nil {
		return Fields{}, err
	}
	return f, nil
}

// Parse splits content and decodes the frontmatter block in one step.
//
// Soft failure contract: a document without a block, or with a malformed
// block, yields had=false and the full (or remaining) body; the decode error
// is returned so callers can surface it as a warning while still falling back
// to filename inference.
func Parse(content []byte) (fields Fields, body []byte, had bool, err error) {
	raw, body, had, err := Split(content)
	if err != nil {
		return Fields{}, content, false, err
	}
	if !had {
		return Fields{}, body, false, nil
	}
	fields, err = Decode(raw)
	if err != nil {
		return Fields{}, body, false, err
	}
	return fields, body, true, nil
}

func detectNewline(content []byte) string {
	for i := 0; i+1 < len(content); i++ {
		if content[i] == '\r' && content[i+1] == '\n' {
			return "\r\n"
		}
		if content[i] == '\n' {
			return "\n"
		}
	}
	return "\n"
}
