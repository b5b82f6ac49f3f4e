package commands

import (
	"context"
	stderrors "errors"
	"fmt"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/snapshot"
)

// SnapshotsCmd groups the snapshot subcommands.
type SnapshotsCmd struct {
	List SnapshotsListCmd `cmd:"" default:"1" help:"List snapshots, newest first"`
	Show SnapshotsShowCmd `cmd:"" help:"Print one snapshot as JSON"`
}

// SnapshotsListCmd implements 'snapshots list'.
type SnapshotsListCmd struct {
	Limit int `short:"n" default:"20" help:"Maximum number of snapshots (0 lists all)"`
}

func (l *SnapshotsListCmd) Run(g *Global, root *CLI) error {
	store, err := openSnapshotStore(root)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	list, err := store.List(context.Background(), l.Limit)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(g.out(), 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tCREATED\tROUTES\tLABEL")
	for _, s := range list {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", s.ID, s.CreatedAt.Local().Format(time.DateTime), s.Routes, s.Label)
	}
	return tw.Flush()
}

// SnapshotsShowCmd implements 'snapshots show'.
type SnapshotsShowCmd struct {
	ID string `arg:"" help:"Snapshot id, or 'latest'"`
}

func (s *SnapshotsShowCmd) Run(g *Global, root *CLI) error {
	store, err := openSnapshotStore(root)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	var snap *snapshot.Snapshot
	if s.ID == "latest" {
		snap, err = store.Latest(ctx)
	} else {
		snap, err = store.Get(ctx, s.ID)
	}
	if stderrors.Is(err, snapshot.ErrNotFound) {
		return errors.NotFoundError("snapshot not found").WithContext("id", s.ID).Build()
	}
	if err != nil {
		return err
	}
	return writeJSON(g.out(), snap)
}

func openSnapshotStore(root *CLI) (snapshot.Store, error) {
	cfg, err := loadConfig(root)
	if err != nil {
		return nil, err
	}
	if !cfg.Snapshots.Enabled {
		return nil, errors.ConfigError("snapshots are disabled (set snapshots.enabled)").Build()
	}
	return openSnapshots(cfg)
}
