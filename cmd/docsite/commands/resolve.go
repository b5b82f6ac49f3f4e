package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/pagedata"
)

// ResolveCmd implements the 'resolve' command.
type ResolveCmd struct {
	Path string `arg:"" help:"Route path, for example /getting-started/quick-start.html"`
	JSON bool   `name:"json" help:"Print the page data as JSON"`
}

func (r *ResolveCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	ctx := context.Background()
	site, err := openSite(ctx, cfg)
	if err != nil {
		return err
	}
	res, page, err := site.Fetcher.Fetch(ctx, r.Path)
	if err != nil {
		return err
	}

	out := g.out()
	if r.JSON {
		if err := writeJSON(out, page); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintf(out, "%s\t%s\n", res.Route.Path, res.Route.Meta.Title)
		if res.RedirectedFrom != "" {
			_, _ = fmt.Fprintf(out, "redirected from %s\n", res.RedirectedFrom)
		}
		printOutline(out, page.Headers, 1)
	}
	if !res.Found {
		return errors.NotFoundError("no route for path").WithContext("path", r.Path).Build()
	}
	return nil
}

func printOutline(w io.Writer, hs []pagedata.Header, depth int) {
	for _, h := range hs {
		_, _ = fmt.Fprintf(w, "%s%s\t%s\n", strings.Repeat("  ", depth), h.Title, h.Link)
		printOutline(w, h.Children, depth+1)
	}
}
