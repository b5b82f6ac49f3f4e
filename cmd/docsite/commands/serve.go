package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/docsite/internal/daemon"
	"git.home.luguber.info/inful/docsite/internal/metrics"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Addr    string `help:"Listen address (overrides server.addr)"`
	NoWatch bool   `name:"no-watch" help:"Do not rebuild on file changes"`
}

func (s *ServeCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if s.Addr != "" {
		cfg.Server.Addr = s.Addr
	}
	if s.NoWatch {
		cfg.Watch.Enabled = false
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := daemon.Options{}
	if cfg.Monitoring.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		metrics.RegisterRuntimeCollectors(reg)
		opts.Recorder = metrics.NewPrometheusRecorder(reg)
		opts.MetricsHandler = metrics.HTTPHandler(reg)
	}
	store, err := openSnapshots(cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer func() { _ = store.Close() }()
		opts.Snapshots = store
	}
	pub := openPublisher(ctx, cfg)
	defer func() { _ = pub.Close() }()
	opts.Publisher = pub

	slog.Info("Starting serve mode",
		slog.String("addr", cfg.Server.Addr),
		slog.Bool("watch", cfg.Watch.Enabled),
		slog.Duration("rebuild_interval", cfg.Schedule.RebuildInterval))
	if err := daemon.New(cfg, opts).Run(ctx); err != nil {
		return err
	}
	slog.Info("Serve mode stopped")
	return nil
}
