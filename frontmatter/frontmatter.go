// Package frontmatter separates a YAML header delimited by "---" lines from
// the markdown body that follows it.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document opened a frontmatter
// block but never closed it.
var ErrMissingClosingDelimiter = errors.New("frontmatter: opening delimiter found but closing delimiter is missing")

// Split separates YAML frontmatter from the body. If content does not start
// with a delimiter line, had is false and body is the full input.
func Split(content []byte) (fm []byte, body []byte, had bool, err error) {
	nl := detectNewline(content)
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	start := len(open)
	if bytes.HasPrefix(content[start:], open) {
		return []byte{}, content[start+len(open):], true, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(content[start:], closeSeq)
	if idx < 0 {
		// A closing delimiter on the final line without a trailing newline.
		tail := []byte(nl + "---")
		if bytes.HasSuffix(content, tail) {
			return content[start : len(content)-len(tail)+len(nl)], []byte{}, true, nil
		}
		return nil, nil, false, ErrMissingClosingDelimiter
	}

	end := start + idx + len(nl)
	return content[start:end], content[start+idx+len(closeSeq):], true, nil
}

// Decode unmarshals raw frontmatter into v. Empty input leaves v untouched.
func Decode(fm []byte, v any) error {
	if len(bytes.TrimSpace(fm)) == 0 {
		return nil
	}
	if err := yaml.Unmarshal(fm, v); err != nil {
		return fmt.Errorf("frontmatter: %w", err)
	}
	return nil
}

// Parse splits content and decodes its frontmatter into v, returning the
// raw frontmatter and the body.
func Parse(content []byte, v any) (fm []byte, body []byte, err error) {
	fm, body, _, err = Split(content)
	if err != nil {
		return nil, nil, err
	}
	if err := Decode(fm, v); err != nil {
		return nil, nil, err
	}
	return fm, body, nil
}

func detectNewline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
