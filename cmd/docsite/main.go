package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docsite/cmd/docsite/commands"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("docsite"),
		kong.Description("Build, validate and serve the route table, search index and theme data of a documentation site."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)
	err := parser.Run(&commands.Global{Logger: slog.Default(), Out: os.Stdout}, cli)
	errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
}
