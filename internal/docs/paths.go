package docs

import (
	"path"
	"strings"
)

// NotFoundPath is the route of the not-found page.
const NotFoundPath = "/404.html"

// RoutePath maps a slash-separated file path relative to the docs
// directory to its route path. README.md and index.md become their
// directory; every other page gets an .html extension.
//
//	README.md                         -> /
//	ru/README.md                      -> /ru/
//	getting-started/quick-start.md    -> /getting-started/quick-start.html
func RoutePath(rel string) string {
	rel = strings.TrimPrefix(rel, "./")
	dir, file := path.Split(rel)
	base := strings.TrimSuffix(file, path.Ext(file))

	if strings.EqualFold(base, "readme") || strings.EqualFold(base, "index") {
		return "/" + dir
	}
	return "/" + dir + base + ".html"
}
