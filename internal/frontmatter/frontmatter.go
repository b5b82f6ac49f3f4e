// Package frontmatter splits Markdown pages into their YAML frontmatter and
// body and exposes the fields the site cares about.
package frontmatter

import (
	"bytes"
	"errors"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnterminated reports a page that opens a frontmatter block but never closes it.
var ErrUnterminated = errors.New("frontmatter opened with --- but never closed")

// Document is a parsed Markdown page.
type Document struct {
	Fields map[string]any
	Body   []byte
	// Had reports whether the page carried a frontmatter block at all.
	Had bool
}

// Split separates a leading "---" delimited block from the body. Both LF
// and CRLF line endings are accepted. A page without a leading delimiter
// is all body.
func Split(content []byte) (raw, body []byte, had bool, err error) {
	nl := "\n"
	if bytes.HasPrefix(content, []byte("---\r\n")) {
		nl = "\r\n"
	}
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	rest := content[len(open):]
	if bytes.HasPrefix(rest, open) {
		return []byte{}, rest[len(open):], true, nil
	}

	closing := []byte(nl + "---")
	idx := bytes.Index(rest, closing)
	for idx >= 0 {
		end := idx + len(closing)
		switch {
		case end == len(rest):
			return rest[:idx+len(nl)], []byte{}, true, nil
		case bytes.HasPrefix(rest[end:], []byte(nl)):
			return rest[:idx+len(nl)], rest[end+len(nl):], true, nil
		}
		next := bytes.Index(rest[end:], closing)
		if next < 0 {
			break
		}
		idx = end + next
	}
	return nil, nil, false, ErrUnterminated
}

// Parse splits content and decodes the frontmatter block.
func Parse(content []byte) (Document, error) {
	raw, body, had, err := Split(content)
	if err != nil {
		return Document{}, err
	}
	fields, err := ParseYAML(raw)
	if err != nil {
		return Document{}, err
	}
	return Document{Fields: fields, Body: body, Had: had}, nil
}

// ParseYAML decodes a frontmatter block without its delimiters. An empty
// block yields an empty, non-nil map.
func ParseYAML(raw []byte) (map[string]any, error) {
	fields := map[string]any{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return fields, nil
	}
	if err := yaml.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// String returns the trimmed string value of key, or "" when it is absent
// or not a string.
func (d Document) String(key string) string {
	s, _ := d.Fields[key].(string)
	return strings.TrimSpace(s)
}

// Title is the frontmatter title override.
func (d Document) Title() string { return d.String("title") }

// Lang is the frontmatter language override.
func (d Document) Lang() string { return d.String("lang") }

// Bool returns the boolean value of key and whether it was set.
func (d Document) Bool(key string) (value, ok bool) {
	value, ok = d.Fields[key].(bool)
	return value, ok
}

// StringList returns key as a list of strings. A single string is treated
// as a one-element list.
func (d Document) StringList(key string) []string {
	switch v := d.Fields[key].(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return []string{s}
		}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	}
	return nil
}
