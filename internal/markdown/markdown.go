// Package markdown extracts the page title, the headers and the outgoing
// links of a Markdown body.
package markdown

import (
	"bytes"
	"slices"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"

	"git.home.luguber.info/inful/docsite/internal/pagedata"
)

// DefaultHeaderLevels are the heading levels collected into page headers.
var DefaultHeaderLevels = []int{2, 3}

// Options controls header extraction.
type Options struct {
	// HeaderLevels lists the heading levels kept as headers. Empty selects
	// DefaultHeaderLevels.
	HeaderLevels []int
}

func (o Options) levels() []int {
	if len(o.HeaderLevels) == 0 {
		return DefaultHeaderLevels
	}
	return o.HeaderLevels
}

// Document is what a Markdown body contributes to page data.
type Document struct {
	// Title is the text of the first level-one heading, if any.
	Title string
	// Headers are flat and in document order. Use pagedata.NestHeaders to
	// build the tree.
	Headers []pagedata.Header
	Links   []Link
}

var md = goldmark.New(goldmark.WithParserOptions(parser.WithAttribute()))

// Extract parses body (frontmatter already removed) in a single pass.
func Extract(body []byte, opts Options) Document {
	ctx := parser.NewContext()
	root := md.Parser().Parse(text.NewReader(body), parser.WithContext(ctx))

	levels := opts.levels()
	slugs := newSlugger()
	doc := Document{Headers: []pagedata.Header{}}

	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.Heading:
			title := inlineText(node, body)
			slug := ""
			if id, ok := node.AttributeString("id"); ok {
				if b, isBytes := id.([]byte); isBytes {
					slug = slugs.reserve(string(b))
				}
			}
			if slug == "" {
				slug = slugs.unique(Slugify(title))
			}
			if node.Level == 1 && doc.Title == "" {
				doc.Title = title
			}
			if slices.Contains(levels, node.Level) {
				doc.Headers = append(doc.Headers, pagedata.Header{
					Level: node.Level,
					Title: title,
					Slug:  slug,
					Link:  "#" + slug,
				})
			}
			return gmast.WalkSkipChildren, nil
		case *gmast.AutoLink:
			doc.Links = append(doc.Links, Link{Kind: LinkKindAuto, Destination: string(node.URL(body))})
		case *gmast.Image:
			doc.Links = append(doc.Links, Link{Kind: LinkKindImage, Destination: string(node.Destination)})
		case *gmast.Link:
			doc.Links = append(doc.Links, Link{Kind: LinkKindInline, Destination: string(node.Destination)})
		}
		return gmast.WalkContinue, nil
	})

	doc.Links = append(doc.Links, referenceDefinitions(ctx)...)
	return doc
}

// inlineText renders the plain text of n's inline children. Raw HTML tags
// are dropped and character references are decoded.
func inlineText(n gmast.Node, source []byte) string {
	var buf bytes.Buffer
	var walk func(gmast.Node)
	walk = func(n gmast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch v := c.(type) {
			case *gmast.Text:
				buf.Write(v.Segment.Value(source))
				if v.SoftLineBreak() || v.HardLineBreak() {
					buf.WriteByte(' ')
				}
			case *gmast.String:
				buf.Write(v.Value)
			case *gmast.RawHTML:
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return strings.Join(strings.Fields(html.UnescapeString(buf.String())), " ")
}
