package markdown

import (
	"sort"

	"github.com/yuin/goldmark/parser"
)

// LinkKind tells where a link was found.
type LinkKind string

const (
	LinkKindInline              LinkKind = "inline"
	LinkKindImage               LinkKind = "image"
	LinkKindAuto                LinkKind = "auto"
	LinkKindReferenceDefinition LinkKind = "reference_definition"
)

// Link is one outgoing reference of a page.
type Link struct {
	Kind        LinkKind
	Destination string
}

// ExtractLinks returns the links of body in document order, followed by
// the reference definitions sorted by label.
func ExtractLinks(body []byte) []Link {
	return Extract(body, Options{}).Links
}

// Reference definitions live in the parse context, not in the AST.
func referenceDefinitions(ctx parser.Context) []Link {
	refs := ctx.References()
	sort.Slice(refs, func(i, j int) bool {
		return string(refs[i].Label()) < string(refs[j].Label())
	})
	out := make([]Link, 0, len(refs))
	for _, ref := range refs {
		out = append(out, Link{Kind: LinkKindReferenceDefinition, Destination: string(ref.Destination())})
	}
	return out
}
