package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/docsite/internal/search"
)

// SearchCmd implements the 'search' command.
type SearchCmd struct {
	Query  string `arg:"" help:"Search query"`
	Locale string `short:"l" help:"Restrict results to a locale path such as /ru/"`
	Limit  int    `short:"n" help:"Maximum number of suggestions (default: index limit)"`
	JSON   bool   `name:"json" help:"Print results as JSON"`
}

func (s *SearchCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	site, err := openSite(context.Background(), cfg)
	if err != nil {
		return err
	}
	results := site.Index.Search(s.Query, search.Options{Locale: s.Locale, Limit: s.Limit})
	out := g.out()
	if s.JSON {
		return writeJSON(out, results)
	}
	if len(results) == 0 {
		_, _ = fmt.Fprintln(out, "No results")
		return nil
	}
	for _, r := range results {
		if r.MatchedHeading != "" {
			_, _ = fmt.Fprintf(out, "%s > %s\t%s\n", r.Title, r.MatchedHeading, r.Link)
		} else {
			_, _ = fmt.Fprintf(out, "%s\t%s\n", r.Title, r.Link)
		}
	}
	return nil
}
