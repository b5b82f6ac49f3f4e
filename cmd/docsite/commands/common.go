// Package commands implements the docsite command line.
package commands

import (
	stderrors "errors"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docsite/internal/config"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
	Out    io.Writer
}

func (g *Global) out() io.Writer {
	if g == nil || g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"docsite.yaml" env:"DOCSITE_CONFIG"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build     BuildCmd     `cmd:"" help:"Build the route table, search index and theme data"`
	Validate  ValidateCmd  `cmd:"" help:"Check the site config against the docs without writing output"`
	Search    SearchCmd    `cmd:"" help:"Query the search index"`
	Resolve   ResolveCmd   `cmd:"" help:"Resolve a path against the route table"`
	Serve     ServeCmd     `cmd:"" help:"Serve the site API and rebuild on changes"`
	Init      InitCmd      `cmd:"" help:"Initialize a new configuration file"`
	Snapshots SnapshotsCmd `cmd:"" help:"Inspect recorded build snapshots"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// loadConfig reads the configuration named by --config. A missing file at
// the default location selects the built-in defaults. The logger is then
// reconfigured from the monitoring section unless --verbose was given.
func loadConfig(root *CLI) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		if root.Config != config.DefaultPath || !isNotExist(root.Config) {
			return nil, err
		}
		slog.Debug("No configuration file, using defaults", slog.String("file", root.Config))
		cfg = config.Default()
	}
	configureLogging(cfg, root.Verbose)
	return cfg, nil
}

func isNotExist(path string) bool {
	_, err := os.Stat(path)
	return stderrors.Is(err, fs.ErrNotExist)
}

func configureLogging(cfg *config.Config, verbose bool) {
	level := cfg.Monitoring.Logging.Level.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if cfg.Monitoring.Logging.Format == config.LogFormatJSON {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}
