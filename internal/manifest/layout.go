package manifest

import (
	"path"
	"strings"
)

// Layout of the output directory.
const (
	InternalDir   = "internal"
	PagesDir      = "pages"
	InfoFile      = "manifest.json"
	RoutesName    = "routes"
	RedirectsName = "redirects"
	SearchName    = "searchIndex"
	ThemeName     = "themeData"
)

// Format is an output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatJS   Format = "js"
)

// PageFile returns the page data file of a route, relative to the internal
// directory: "/" -> pages/index.html.json, "/a/b.html" -> pages/a/b.html.json.
func PageFile(routePath string) string {
	rel := strings.TrimPrefix(routePath, "/")
	if rel == "" || strings.HasSuffix(rel, "/") {
		rel += "index.html"
	}
	return path.Join(PagesDir, rel+".json")
}
