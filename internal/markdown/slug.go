package markdown

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	reCombining = regexp.MustCompile(`[\x{0300}-\x{036F}]`)
	reControl   = regexp.MustCompile(`[\x00-\x1f]`)
	reSpecial   = regexp.MustCompile("[\\s~`!@#$%^&*()\\-_+=\\[\\]{}|\\\\;:\"'“”‘’<>,.?/]+")
	reLeadDigit = regexp.MustCompile(`^(\d)`)
)

// Slugify turns heading text into an anchor: compatibility-decomposed,
// accents and control characters removed, runs of punctuation and spaces
// collapsed to a single "-", lowercased. Slugs that would start with a
// digit get a leading underscore.
func Slugify(s string) string {
	s = norm.NFKD.String(s)
	s = reCombining.ReplaceAllString(s, "")
	s = reControl.ReplaceAllString(s, "")
	s = reSpecial.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	s = reLeadDigit.ReplaceAllString(s, "_$1")
	return strings.ToLower(s)
}

// slugger hands out page-unique slugs: the second "usage" becomes "usage-1".
type slugger struct {
	used map[string]bool
}

func newSlugger() *slugger {
	return &slugger{used: make(map[string]bool)}
}

func (s *slugger) unique(slug string) string {
	candidate := slug
	for i := 1; s.used[candidate]; i++ {
		candidate = slug + "-" + strconv.Itoa(i)
	}
	s.used[candidate] = true
	return candidate
}

// reserve records an explicit anchor as is.
func (s *slugger) reserve(slug string) string {
	s.used[slug] = true
	return slug
}
