// Package routes implements the route table of the documentation site: an
// immutable map from URL path to a lazily loaded page plus its metadata.
package routes

import (
	"context"
	"maps"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/pagedata"
)

// NotFoundPath is the reserved route served for every unregistered path.
const NotFoundPath = "/404.html"

// Meta is the metadata registered with a route.
type Meta struct {
	Title string `json:"title"`
}

// Loader produces the content of a page on demand.
type Loader interface {
	Load(ctx context.Context) (*pagedata.Page, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context) (*pagedata.Page, error)

func (f LoaderFunc) Load(ctx context.Context) (*pagedata.Page, error) { return f(ctx) }

// Static returns a Loader that always yields a copy of p.
func Static(p pagedata.Page) Loader {
	p.Normalize()
	return LoaderFunc(func(context.Context) (*pagedata.Page, error) {
		cp := p
		return &cp, nil
	})
}

// PageRoute maps one URL path to its loader and metadata.
type PageRoute struct {
	Path   string
	Loader Loader
	Meta   Meta
}

// Resolution is the outcome of resolving a path. Found is false when the
// not-found route was substituted.
type Resolution struct {
	Route          PageRoute
	Found          bool
	RedirectedFrom string
}

// Table is immutable after construction and safe for concurrent readers.
type Table struct {
	routes    map[string]PageRoute
	order     []string
	redirects map[string]string
	notFound  PageRoute
}

// NewTable builds a table from routes (kept in the given order) and
// pre-registered redirects (from -> to). Paths must be absolute and unique;
// redirect targets must be registered routes.
func NewTable(routes []PageRoute, redirects map[string]string) (*Table, error) {
	t := &Table{
		routes:    make(map[string]PageRoute, len(routes)),
		order:     make([]string, 0, len(routes)),
		redirects: make(map[string]string, len(redirects)),
	}
	for _, r := range routes {
		if !strings.HasPrefix(r.Path, "/") {
			return nil, errors.NewError(errors.CategoryRoutes, "route path must start with /").
				WithContext("path", r.Path).Build()
		}
		if _, dup := t.routes[r.Path]; dup {
			return nil, errors.NewError(errors.CategoryRoutes, "duplicate route path").
				WithContext("path", r.Path).Build()
		}
		if r.Loader == nil {
			r.Loader = Static(pagedata.Page{Path: r.Path, Title: r.Meta.Title})
		}
		t.routes[r.Path] = r
		t.order = append(t.order, r.Path)
	}
	for from, to := range redirects {
		if _, ok := t.routes[to]; !ok {
			return nil, errors.NewError(errors.CategoryRoutes, "redirect target is not a registered route").
				WithContext("from", from).WithContext("to", to).Build()
		}
		t.redirects[from] = to
	}

	if nf, ok := t.routes[NotFoundPath]; ok {
		t.notFound = nf
	} else {
		t.notFound = PageRoute{
			Path: NotFoundPath,
			Loader: Static(pagedata.Page{
				Path:        NotFoundPath,
				Frontmatter: map[string]any{"layout": "NotFound"},
			}),
		}
	}
	return t, nil
}

// Resolve looks path up by exact match, following a pre-registered redirect
// once. Unregistered paths resolve to the not-found route; Resolve never fails.
func (t *Table) Resolve(path string) Resolution {
	if r, ok := t.routes[path]; ok {
		return Resolution{Route: r, Found: true}
	}
	if to, ok := t.redirects[path]; ok {
		return Resolution{Route: t.routes[to], Found: true, RedirectedFrom: path}
	}
	return Resolution{Route: t.notFound}
}

// Has reports whether path is a registered route.
func (t *Table) Has(path string) bool {
	_, ok := t.routes[path]
	return ok
}

// Len returns the number of registered routes.
func (t *Table) Len() int { return len(t.order) }

// Routes returns the registered routes in registration order.
func (t *Table) Routes() []PageRoute {
	out := make([]PageRoute, 0, len(t.order))
	for _, p := range t.order {
		out = append(out, t.routes[p])
	}
	return out
}

// Redirects returns a copy of the registered redirects.
func (t *Table) Redirects() map[string]string {
	return maps.Clone(t.redirects)
}
