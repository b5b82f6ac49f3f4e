// Package pagedata holds the per-page data model shared by the docs scanner,
// the route table loaders and the search index.
package pagedata

// Header is one heading of a page. The JSON shape is shared with the search
// index records and must stay stable.
type Header struct {
	Level    int      `json:"level"`
	Title    string   `json:"title"`
	Slug     string   `json:"slug"`
	Link     string   `json:"link"`
	Children []Header `json:"children"`
}

// GitInfo carries the optional git metadata of a page source file.
type GitInfo struct {
	CreatedTime  int64         `json:"createdTime,omitempty"`
	UpdatedTime  int64         `json:"updatedTime,omitempty"`
	Contributors []Contributor `json:"contributors,omitempty"`
}

// Contributor is a commit author of a page source file.
type Contributor struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Commits int    `json:"commits"`
}

// Page is the renderable data of one route.
type Page struct {
	Path             string         `json:"path"`
	Title            string         `json:"title"`
	Lang             string         `json:"lang"`
	Frontmatter      map[string]any `json:"frontmatter"`
	Headers          []Header       `json:"headers"`
	Git              GitInfo        `json:"git"`
	FilePathRelative string         `json:"filePathRelative"`
	Fingerprint      string         `json:"fingerprint,omitempty"`
	// Content is the Markdown body of the page, without frontmatter.
	Content string `json:"content,omitempty"`
}

// Normalize replaces nil collections with empty ones so that the JSON form
// always carries arrays and objects instead of null.
func (p *Page) Normalize() {
	if p.Frontmatter == nil {
		p.Frontmatter = map[string]any{}
	}
	p.Headers = NormalizeHeaders(p.Headers)
}

// NormalizeHeaders returns hs with every nil Children slice replaced by an empty one.
func NormalizeHeaders(hs []Header) []Header {
	if hs == nil {
		return []Header{}
	}
	for i := range hs {
		hs[i].Children = NormalizeHeaders(hs[i].Children)
	}
	return hs
}

// NestHeaders turns a flat, document-ordered header list into a tree. A header
// nests under the nearest preceding header of a lower level; a header without
// such a predecessor becomes a root.
func NestHeaders(flat []Header) []Header {
	var roots []*treeNode
	var stack []*treeNode

	for _, h := range flat {
		n := &treeNode{header: h}
		for len(stack) > 0 && stack[len(stack)-1].header.Level >= h.Level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, n)
		} else {
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, n)
		}
		stack = append(stack, n)
	}

	out := make([]Header, 0, len(roots))
	for _, n := range roots {
		out = append(out, n.materialize())
	}
	return out
}

type treeNode struct {
	header   Header
	children []*treeNode
}

func (n *treeNode) materialize() Header {
	h := n.header
	h.Children = make([]Header, 0, len(n.children))
	for _, c := range n.children {
		h.Children = append(h.Children, c.materialize())
	}
	return h
}

// Flatten walks hs depth-first and calls fn for every header in document order.
func Flatten(hs []Header, fn func(Header)) {
	for _, h := range hs {
		fn(h)
		Flatten(h.Children, fn)
	}
}
