package docs

import (
	"path"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/markdown"
	"git.home.luguber.info/inful/docsite/internal/pagedata"
	"git.home.luguber.info/inful/docsite/internal/siteconfig"
)

// BrokenLink is a page link whose target is not a route.
type BrokenLink struct {
	Page   string `json:"page"`
	Link   string `json:"link"`
	Target string `json:"target"`
}

// CheckLinks resolves the internal page links of every page against
// routes. External links, in-page anchors and asset links are skipped.
func CheckLinks(pages []pagedata.Page, routes siteconfig.RouteSet) []BrokenLink {
	var broken []BrokenLink
	for _, p := range pages {
		dir := p.Path[:strings.LastIndex(p.Path, "/")+1]
		for _, l := range markdown.ExtractLinks([]byte(p.Content)) {
			if l.Kind == markdown.LinkKindImage || l.Kind == markdown.LinkKindAuto {
				continue
			}
			if !isPageLink(l.Destination) {
				continue
			}
			target, external := siteconfig.ResolveLink("", joinRelative(dir, l.Destination))
			if external || target == "" || routes.Has(target) {
				continue
			}
			broken = append(broken, BrokenLink{Page: p.Path, Link: l.Destination, Target: target})
		}
	}
	return broken
}

func isPageLink(dest string) bool {
	if dest == "" || strings.HasPrefix(dest, "#") || strings.HasPrefix(dest, "?") {
		return false
	}
	if i := strings.IndexAny(dest, "?#"); i >= 0 {
		dest = dest[:i]
	}
	switch path.Ext(dest) {
	case "", ".md", ".html":
		return true
	}
	return false
}

// joinRelative resolves dest against dir, keeping a trailing slash.
func joinRelative(dir, dest string) string {
	if strings.HasPrefix(dest, "/") || strings.Contains(dest, ":") {
		return dest
	}
	if i := strings.IndexAny(dest, "?#"); i >= 0 {
		dest = dest[:i]
	}
	joined := path.Join(dir, dest)
	if strings.HasSuffix(dest, "/") && joined != "/" {
		joined += "/"
	}
	return joined
}
