// Package daemon implements serve mode: it builds the site once, serves it
// over HTTP and rebuilds it when the docs or the site config change or a
// rebuild interval elapses. A failed rebuild leaves the served site as it was.
package daemon

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"git.home.luguber.info/inful/docsite/internal/build"
	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/events"
	ferrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/server"
	"git.home.luguber.info/inful/docsite/internal/snapshot"
)

// Options inject the collaborators of a Daemon. All are optional.
type Options struct {
	Recorder       metrics.Recorder
	MetricsHandler http.Handler
	Snapshots      snapshot.Store
	// Publisher receives rebuild events in addition to the /api/events stream.
	Publisher events.Publisher
}

// Daemon runs serve mode.
type Daemon struct {
	cfg      *config.Config
	service  *build.DefaultService
	holder   *build.Holder
	broker   *events.Broker
	server   *server.Server
	triggers chan string
	ready    chan struct{}

	buildMu sync.Mutex
	last    *build.Result
}

// New wires a daemon for cfg.
func New(cfg *config.Config, opts Options) *Daemon {
	broker := events.NewBroker()
	holder := &build.Holder{}
	recorder := metrics.OrNoop(opts.Recorder)

	srvOpts := server.Options{
		Addr:       cfg.Server.Addr,
		HealthPath: cfg.Monitoring.Health.Path,
		Recorder:   recorder,
		Broker:     broker,
	}
	if cfg.Monitoring.Metrics.Enabled {
		srvOpts.MetricsPath = cfg.Monitoring.Metrics.Path
		srvOpts.MetricsHandler = opts.MetricsHandler
	}

	return &Daemon{
		cfg: cfg,
		service: build.NewService().
			WithRecorder(recorder).
			WithSnapshots(opts.Snapshots).
			WithPublisher(events.Multi(broker, opts.Publisher)),
		holder:   holder,
		broker:   broker,
		server:   server.New(holder, srvOpts),
		triggers: make(chan string, 1),
		ready:    make(chan struct{}),
	}
}

// Holder returns the holder of the served site.
func (d *Daemon) Holder() *build.Holder { return d.holder }

// Broker returns the in-process rebuild event broker.
func (d *Daemon) Broker() *events.Broker { return d.broker }

// Addr returns the address the HTTP server is bound to.
func (d *Daemon) Addr() string { return d.server.Addr() }

// Ready is closed once the initial build succeeded and the server listens.
func (d *Daemon) Ready() <-chan struct{} { return d.ready }

// LastResult returns the result of the most recent build attempt.
func (d *Daemon) LastResult() *build.Result {
	d.buildMu.Lock()
	defer d.buildMu.Unlock()
	return d.last
}

// Rebuild runs one build and, on success, replaces the served site. Builds
// never overlap.
func (d *Daemon) Rebuild(ctx context.Context, reason string) (*build.Result, error) {
	d.buildMu.Lock()
	defer d.buildMu.Unlock()

	slog.Info("Rebuilding site", slog.String("reason", reason))
	res, err := d.service.Run(ctx, build.Request{Config: d.cfg})
	d.last = res
	if err != nil {
		if d.holder.Current() != nil {
			slog.Warn("Rebuild failed, keeping previous site", slog.String("reason", reason), logfields.Error(err))
		}
		return res, err
	}
	d.holder.Replace(res.Site)
	return res, nil
}

// Trigger requests a rebuild. Requests made while one is pending collapse
// into it.
func (d *Daemon) Trigger(reason string) {
	select {
	case d.triggers <- reason:
	default:
		slog.Debug("Rebuild already pending", slog.String("reason", reason))
	}
}

// Run builds the site, starts serving and blocks until ctx is done. An
// initial build failure is returned; later failures are logged only.
func (d *Daemon) Run(ctx context.Context) error {
	if _, err := d.Rebuild(ctx, "startup"); err != nil {
		return err
	}
	if err := d.server.Start(ctx); err != nil {
		return err
	}

	var watcher *Watcher
	if d.cfg.Watch.Enabled {
		w, err := NewWatcher(d.cfg.Source.DocsDir, d.cfg.Source.SiteConfig, d.cfg.Watch.Debounce, d.Trigger)
		if err == nil {
			err = w.Start(ctx)
		}
		if err != nil {
			d.shutdown(nil, nil)
			return err
		}
		watcher = w
	}

	var scheduler *Scheduler
	if interval := d.cfg.Schedule.RebuildInterval; interval > 0 {
		s, err := NewScheduler()
		if err == nil {
			_, err = s.ScheduleEvery("periodic-rebuild", interval, func() { d.Trigger("schedule") })
		}
		if err != nil {
			d.shutdown(watcher, nil)
			return ferrors.WrapError(err, ferrors.CategoryRuntime, "schedule periodic rebuild").Build()
		}
		s.Start()
		scheduler = s
	}

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		d.rebuildLoop(ctx)
	}()
	close(d.ready)
	slog.Info("Serving site", slog.String("addr", d.Addr()))

	<-ctx.Done()
	d.shutdown(watcher, scheduler)
	<-loopDone
	return nil
}

func (d *Daemon) rebuildLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case reason := <-d.triggers:
			_, _ = d.Rebuild(ctx, reason)
		}
	}
}

// shutdown stops the triggers first, then closes event streams so that the
// HTTP server can drain.
func (d *Daemon) shutdown(watcher *Watcher, scheduler *Scheduler) {
	ctx, cancel := context.WithTimeout(context.Background(), d.shutdownTimeout())
	defer cancel()

	if watcher != nil {
		if err := watcher.Stop(); err != nil {
			slog.Warn("Failed to stop file watcher", logfields.Error(err))
		}
	}
	if scheduler != nil {
		if err := scheduler.Stop(ctx); err != nil {
			slog.Warn("Failed to stop scheduler", logfields.Error(err))
		}
	}
	_ = d.broker.Close()
	if err := d.server.Stop(ctx); err != nil {
		slog.Error("HTTP server shutdown failed", logfields.Error(err))
	}
}

func (d *Daemon) shutdownTimeout() time.Duration {
	if d.cfg.Server.ShutdownTimeout > 0 {
		return d.cfg.Server.ShutdownTimeout
	}
	return 10 * time.Second
}
