package frontmatter

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

// Serialize encodes fields as YAML without delimiters. Keys come out
// sorted, so equal maps always serialize to the same bytes. An empty map
// yields an empty slice.
func Serialize(fields map[string]any) ([]byte, error) {
	if len(fields) == 0 {
		return []byte{}, nil
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fields); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Compose renders a page from fields and body. Pages without fields get no
// frontmatter block.
func Compose(fields map[string]any, body []byte) ([]byte, error) {
	if len(fields) == 0 {
		return body, nil
	}
	raw, err := Serialize(fields)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(raw)+len(body)+8)
	out = append(out, "---\n"...)
	out = append(out, raw...)
	out = append(out, "---\n"...)
	out = append(out, body...)
	return out, nil
}
