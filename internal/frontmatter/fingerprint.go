package frontmatter

import (
	"strings"

	"github.com/inful/mdfp"
)

// Fields that change without the page content changing.
var volatileFields = []string{mdfp.FingerprintField, "lastUpdated", "contributors"}

// Fingerprint is the content hash of a page. It ignores volatile fields so
// that only author edits move it.
func Fingerprint(d Document) (string, error) {
	fields := make(map[string]any, len(d.Fields))
	for k, v := range d.Fields {
		fields[k] = v
	}
	for _, k := range volatileFields {
		delete(fields, k)
	}
	raw, err := Serialize(fields)
	if err != nil {
		return "", err
	}
	return mdfp.CalculateFingerprintFromParts(strings.TrimSuffix(string(raw), "\n"), string(d.Body)), nil
}
