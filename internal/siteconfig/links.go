package siteconfig

import "strings"

// ResolveLink turns an authored sidebar or navbar link into a route path.
//
//   - links with a scheme (https:, mailto:) are external and have no route;
//   - absolute links ignore prefix, relative ones are appended to it;
//   - query strings and fragments are dropped;
//   - "x.md" becomes "x.html", README.md and index.md become their directory;
//   - links ending in "/" are directory routes, anything else gets ".html".
func ResolveLink(prefix, link string) (path string, external bool) {
	if isExternal(link) {
		return "", true
	}
	if i := strings.IndexAny(link, "?#"); i >= 0 {
		link = link[:i]
	}

	p := link
	if !strings.HasPrefix(link, "/") {
		p = prefix + link
	}
	if p == "" {
		return "", false
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}

	switch {
	case strings.HasSuffix(p, "/"):
		return p, false
	case strings.HasSuffix(p, "/README.md"), strings.HasSuffix(p, "/index.md"):
		return p[:strings.LastIndex(p, "/")+1], false
	case strings.HasSuffix(p, ".md"):
		return strings.TrimSuffix(p, ".md") + ".html", false
	case strings.HasSuffix(p, ".html"):
		return p, false
	default:
		return p + ".html", false
	}
}

func joinPrefix(parent, prefix string) string {
	if prefix == "" {
		return parent
	}
	if strings.HasPrefix(prefix, "/") || isExternal(prefix) {
		return prefix
	}
	return parent + prefix
}

func isExternal(link string) bool {
	if strings.HasPrefix(link, "mailto:") || strings.HasPrefix(link, "tel:") {
		return true
	}
	i := strings.Index(link, "://")
	return i > 0 && !strings.ContainsAny(link[:i], "/?#")
}
