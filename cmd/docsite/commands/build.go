package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/docsite/internal/build"
	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/events"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/snapshot"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output     string `short:"o" help:"Output directory (overrides output.directory)"`
	Clean      bool   `help:"Remove the output directory before writing"`
	Label      string `help:"Label stored with the snapshot"`
	NoSnapshot bool   `name:"no-snapshot" help:"Do not record a snapshot"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if b.Output != "" {
		cfg.Output.Directory = b.Output
	}
	if b.NoSnapshot {
		cfg.Snapshots.Enabled = false
	}

	ctx := context.Background()
	svc := build.NewService()

	store, err := openSnapshots(cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer func() { _ = store.Close() }()
		svc.WithSnapshots(store)
	}
	pub := openPublisher(ctx, cfg)
	defer func() { _ = pub.Close() }()
	svc.WithPublisher(pub)

	res, err := svc.Run(ctx, build.Request{
		Config:  cfg,
		Options: build.Options{Clean: b.Clean || cfg.Output.Clean, Label: b.Label},
	})
	if err != nil {
		printViolations(g.out(), res)
		return err
	}

	out := g.out()
	_, _ = fmt.Fprintf(out, "Built %d pages (%d search records) into %s in %s\n",
		res.Info.Pages, res.Info.Records, cfg.Output.Directory, res.Duration.Round(time.Millisecond))
	if res.SnapshotID != "" {
		_, _ = fmt.Fprintf(out, "Snapshot %s\n", res.SnapshotID)
	}
	if !res.Changed {
		_, _ = fmt.Fprintln(out, "Inputs unchanged since the previous build")
	}
	printBrokenLinks(out, res)
	return nil
}

// openSnapshots opens the snapshot store when snapshots are enabled.
func openSnapshots(cfg *config.Config) (snapshot.Store, error) {
	if !cfg.Snapshots.Enabled {
		return nil, nil
	}
	if dir := filepath.Dir(cfg.Snapshots.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "create snapshot directory").
				WithContext("dir", dir).Build()
		}
	}
	store, err := snapshot.NewSQLiteStore(cfg.Snapshots.Path)
	if err != nil {
		return nil, err
	}
	if cfg.Snapshots.Keep > 0 {
		return pruning{SQLiteStore: store, keep: cfg.Snapshots.Keep}, nil
	}
	return store, nil
}

// pruning trims the store to keep snapshots after every Put.
type pruning struct {
	*snapshot.SQLiteStore
	keep int
}

func (p pruning) Put(ctx context.Context, s *snapshot.Snapshot) (string, error) {
	id, err := p.SQLiteStore.Put(ctx, s)
	if err != nil {
		return id, err
	}
	if n, err := p.Prune(ctx, p.keep); err != nil {
		slog.Warn("Failed to prune snapshots", logfields.Error(err))
	} else if n > 0 {
		slog.Debug("Pruned snapshots", logfields.Count(n))
	}
	return id, nil
}

// openPublisher connects to NATS when events are configured. Connection
// failures disable publishing for this run.
func openPublisher(ctx context.Context, cfg *config.Config) events.Publisher {
	if !cfg.Events.Enabled() {
		return events.NoopPublisher{}
	}
	pub, err := events.NewNATSPublisher(ctx, cfg.Events)
	if err != nil {
		slog.Warn("Rebuild events disabled", logfields.Error(err))
		return events.NoopPublisher{}
	}
	return pub
}

func printViolations(w io.Writer, res *build.Result) {
	if res == nil {
		return
	}
	for _, v := range res.Violations {
		_, _ = fmt.Fprintf(w, "violation: %s\n", v.Error())
	}
}

func printBrokenLinks(w io.Writer, res *build.Result) {
	for _, bl := range res.BrokenLinks {
		_, _ = fmt.Fprintf(w, "warning: %s links to %s (%s), which is not a route\n", bl.Page, bl.Link, bl.Target)
	}
}
