package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/docsite/internal/build"
)

// ValidateCmd implements the 'validate' command.
type ValidateCmd struct{}

func (v *ValidateCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	res, err := build.NewService().Run(context.Background(), build.Request{
		Config:  cfg,
		Options: build.Options{DryRun: true},
	})
	out := g.out()
	printViolations(out, res)
	if err != nil {
		return err
	}
	printBrokenLinks(out, res)
	_, _ = fmt.Fprintf(out, "Site config is valid: %d routes\n", res.Site.Routes.Len())
	return nil
}
