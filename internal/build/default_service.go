package build

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/docs"
	"git.home.luguber.info/inful/docsite/internal/events"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/manifest"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/observability"
	"git.home.luguber.info/inful/docsite/internal/pagedata"
	"git.home.luguber.info/inful/docsite/internal/routes"
	"git.home.luguber.info/inful/docsite/internal/search"
	"git.home.luguber.info/inful/docsite/internal/siteconfig"
	"git.home.luguber.info/inful/docsite/internal/snapshot"
	"git.home.luguber.info/inful/docsite/internal/version"
)

// DefaultSearchLimit applies when neither the tool config nor the site
// config set a suggestion limit.
const DefaultSearchLimit = 10

// Stage names reported to the metrics recorder.
const (
	StageSiteConfig = "site_config"
	StageScan       = "scan"
	StageRoutes     = "routes"
	StageValidate   = "validate"
	StageSearch     = "search"
	StageTheme      = "theme"
	StageWrite      = "write"
	StageSnapshot   = "snapshot"
	StagePublish    = "publish"
)

// DefaultService is the standard implementation of Service.
// It runs the full pipeline: site config → docs scan → routes → validation
// → search index → theme data → output → snapshot → rebuild event.
type DefaultService struct {
	recorder  metrics.Recorder
	snapshots snapshot.Store
	publisher events.Publisher

	mu       sync.Mutex
	lastHash string
}

// NewService creates a DefaultService without snapshots or events.
func NewService() *DefaultService {
	return &DefaultService{
		recorder:  metrics.NoopRecorder{},
		publisher: events.NoopPublisher{},
	}
}

// WithRecorder sets the metrics recorder.
func (s *DefaultService) WithRecorder(r metrics.Recorder) *DefaultService {
	s.recorder = metrics.OrNoop(r)
	return s
}

// WithSnapshots records every changed build in store.
func (s *DefaultService) WithSnapshots(store snapshot.Store) *DefaultService {
	s.snapshots = store
	return s
}

// WithPublisher announces every successful build through p.
func (s *DefaultService) WithPublisher(p events.Publisher) *DefaultService {
	if p == nil {
		p = events.NoopPublisher{}
	}
	s.publisher = p
	return s
}

// Recorder returns the metrics recorder in use.
func (s *DefaultService) Recorder() metrics.Recorder { return s.recorder }

// stage runs fn as the named pipeline stage and records its duration.
func (s *DefaultService) stage(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	ctx = observability.WithStage(ctx, name)
	err := fn(ctx)
	d := time.Since(start)
	s.recorder.ObserveBuildStage(name, d)
	if err == nil {
		observability.DebugContext(ctx, "Stage finished", logfields.Duration(d))
	}
	return err
}

// Run executes the complete build pipeline.
func (s *DefaultService) Run(ctx context.Context, req Request) (*Result, error) {
	result := &Result{StartTime: time.Now()}
	buildID := uuid.NewString()
	ctx = observability.WithBuildID(ctx, buildID)

	finish := func(status Status, err error) (*Result, error) {
		if err != nil && ctx.Err() != nil {
			status = StatusCancelled
		}
		result.Status = status
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(result.StartTime)
		switch status {
		case StatusSuccess:
			s.recorder.IncBuildOutcome(metrics.BuildSuccess)
		case StatusInvalid:
			s.recorder.IncBuildOutcome(metrics.BuildInvalid)
		default:
			s.recorder.IncBuildOutcome(metrics.BuildFailed)
		}
		if err != nil {
			observability.ErrorContext(ctx, "Build failed", slog.String("status", string(status)), logfields.Error(err))
		}
		return result, err
	}

	if req.Config == nil {
		return finish(StatusFailed, errors.ConfigError("config required").Build())
	}
	cfg := req.Config

	var site *siteconfig.SiteConfig
	if err := s.stage(ctx, StageSiteConfig, func(context.Context) error {
		var err error
		site, err = siteconfig.Load(cfg.Source.SiteConfig)
		return err
	}); err != nil {
		return finish(StatusFailed, err)
	}

	var pages []pagedata.Page
	if err := s.stage(ctx, StageScan, func(ctx context.Context) error {
		scanner := docs.NewScanner(cfg.Source.DocsDir, site, docs.Options{
			HeaderLevels: cfg.Search.HeaderLevels,
			Git:          cfg.Git.Enabled,
		})
		var err error
		pages, err = scanner.Scan(ctx)
		if err == nil {
			observability.InfoContext(ctx, "Docs scanned", slog.String("dir", scanner.Dir()), logfields.Count(len(pages)))
		}
		return err
	}); err != nil {
		return finish(StatusFailed, err)
	}

	var table *routes.Table
	if err := s.stage(ctx, StageRoutes, func(context.Context) error {
		var err error
		table, err = routeTable(pages, site.Redirects)
		return err
	}); err != nil {
		return finish(StatusFailed, err)
	}

	if err := s.stage(ctx, StageValidate, func(ctx context.Context) error {
		result.Violations = siteconfig.Validate(site, table)
		result.BrokenLinks = docs.CheckLinks(pages, table)
		for _, bl := range result.BrokenLinks {
			observability.WarnContext(ctx, "Broken page link",
				logfields.Path(bl.Page), slog.String("link", bl.Link), slog.String("target", bl.Target))
		}
		if len(result.Violations) > 0 {
			return violationsError(result.Violations)
		}
		return nil
	}); err != nil {
		if errors.HasCategory(err, errors.CategoryValidation) {
			return finish(StatusInvalid, err)
		}
		return finish(StatusFailed, err)
	}

	var records []search.Record
	if err := s.stage(ctx, StageSearch, func(context.Context) error {
		records = make([]search.Record, 0, len(pages))
		for _, p := range pages {
			records = append(records, search.RecordFromPage(p, site.LocaleFor(p.Path)))
		}
		return nil
	}); err != nil {
		return finish(StatusFailed, err)
	}

	var theme siteconfig.ThemeData
	if err := s.stage(ctx, StageTheme, func(context.Context) error {
		theme = siteconfig.BuildThemeData(site)
		return nil
	}); err != nil {
		return finish(StatusFailed, err)
	}

	configHash, err := hashJSON(site)
	if err != nil {
		return finish(StatusFailed, err)
	}
	info := manifest.Info{
		ID:         buildID,
		Timestamp:  result.StartTime.UTC(),
		Version:    version.Resolved(),
		DocsHash:   docs.ComputeSetHash(pages),
		ConfigHash: configHash,
		Pages:      len(pages),
		Records:    len(records),
		Formats:    formatNames(cfg.Output.Formats),
	}
	result.Changed = s.compareHash(ctx, info.InputHash())

	if !req.Options.DryRun {
		if err := s.stage(ctx, StageWrite, func(context.Context) error {
			if req.Options.Clean {
				if err := os.RemoveAll(cfg.Output.Directory); err != nil {
					return errors.WrapError(err, errors.CategoryFileSystem, "clean output directory").
						WithContext("dir", cfg.Output.Directory).Build()
				}
			}
			info.Duration = time.Since(result.StartTime).Milliseconds()
			return manifest.Write(cfg.Output.Directory, manifest.Bundle{
				Info:      info,
				Pages:     pages,
				Redirects: site.Redirects,
				Search:    records,
				Theme:     theme,
			}, manifestFormats(cfg.Output.Formats))
		}); err != nil {
			return finish(StatusFailed, err)
		}

		s.rememberHash(info.InputHash())

		if err := s.stage(ctx, StageSnapshot, func(ctx context.Context) error {
			return s.recordSnapshot(ctx, result, req.Options.Label, info, site, table, records)
		}); err != nil {
			return finish(StatusFailed, err)
		}
	}

	result.Info = info
	result.Site = NewSite(site, table, records, SearchLimit(cfg, site), theme, info, s.recorder)
	s.recorder.SetIndexedPages(len(records))

	if !req.Options.DryRun {
		_ = s.stage(ctx, StagePublish, func(ctx context.Context) error {
			ev := events.RebuiltEvent{
				ID:         buildID,
				Timestamp:  time.Now().UTC(),
				Version:    info.Version,
				SnapshotID: result.SnapshotID,
				InputHash:  info.InputHash(),
				Pages:      info.Pages,
				Records:    info.Records,
				DurationMS: time.Since(result.StartTime).Milliseconds(),
				Changed:    result.Changed,
			}
			if err := s.publisher.PublishRebuilt(ctx, ev); err != nil {
				observability.WarnContext(ctx, "Rebuild event not published", logfields.Error(err))
			}
			return nil
		})
	}

	res, _ := finish(StatusSuccess, nil)
	observability.InfoContext(ctx, "Build finished",
		logfields.Count(info.Pages), logfields.Duration(res.Duration), slog.Bool("changed", res.Changed))
	return res, nil
}

// compareHash reports whether hash differs from the input hash of the
// previous build and, when record is set, remembers it. The first build of
// a process compares against the newest snapshot, when one is stored.
func (s *DefaultService) compareHash(ctx context.Context, hash string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastHash == "" && s.snapshots != nil {
		if latest, err := s.snapshots.Latest(ctx); err == nil {
			s.lastHash = latest.InputHash
		}
	}
	return s.lastHash != hash
}

// rememberHash marks hash as the inputs of the last written build.
func (s *DefaultService) rememberHash(hash string) {
	s.mu.Lock()
	s.lastHash = hash
	s.mu.Unlock()
}

func (s *DefaultService) recordSnapshot(ctx context.Context, result *Result, label string, info manifest.Info, site *siteconfig.SiteConfig, table *routes.Table, records []search.Record) error {
	if s.snapshots == nil {
		return nil
	}
	if !result.Changed {
		if latest, err := s.snapshots.Latest(ctx); err == nil && latest.InputHash == info.InputHash() {
			result.SnapshotID = latest.ID
			observability.DebugContext(ctx, "Inputs unchanged, snapshot reused", logfields.SnapshotID(latest.ID))
			return nil
		}
	}
	siteJSON, err := json.Marshal(site)
	if err != nil {
		return errors.WrapError(err, errors.CategoryStore, "encode site config").Build()
	}
	indexJSON, err := json.Marshal(records)
	if err != nil {
		return errors.WrapError(err, errors.CategoryStore, "encode search index").Build()
	}
	snap := &snapshot.Snapshot{
		Label:       label,
		InputHash:   info.InputHash(),
		SiteConfig:  siteJSON,
		SearchIndex: indexJSON,
	}
	for _, r := range table.Routes() {
		snap.Routes = append(snap.Routes, snapshot.Route{Path: r.Path, Title: r.Meta.Title})
	}
	id, err := s.snapshots.Put(ctx, snap)
	if err != nil {
		return err
	}
	result.SnapshotID = id
	observability.InfoContext(ctx, "Snapshot recorded", logfields.SnapshotID(id))
	return nil
}

// routeTable registers one static route per page.
func routeTable(pages []pagedata.Page, redirects map[string]string) (*routes.Table, error) {
	rs := make([]routes.PageRoute, 0, len(pages))
	for _, p := range pages {
		rs = append(rs, routes.PageRoute{
			Path:   p.Path,
			Loader: routes.Static(p),
			Meta:   routes.Meta{Title: p.Title},
		})
	}
	return routes.NewTable(rs, redirects)
}

func violationsError(vs []siteconfig.ValidationError) error {
	msgs := make([]string, len(vs))
	for i, v := range vs {
		msgs[i] = v.Error()
	}
	return errors.ValidationError(fmt.Sprintf("site config has %d violation(s)", len(vs))).
		WithContext("violations", strings.Join(msgs, "; ")).
		Fatal().Build()
}

// SearchLimit picks the suggestion limit: tool config, then site config,
// then DefaultSearchLimit. Either argument may be nil.
func SearchLimit(cfg *config.Config, site *siteconfig.SiteConfig) int {
	if cfg != nil && cfg.Search.MaxSuggestions > 0 {
		return cfg.Search.MaxSuggestions
	}
	if site != nil && site.Plugins.Search.MaxSuggestions > 0 {
		return site.Plugins.Search.MaxSuggestions
	}
	return DefaultSearchLimit
}

func hashJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryInternal, "hash site config").Build()
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func manifestFormats(fs []config.Format) []manifest.Format {
	out := make([]manifest.Format, 0, len(fs))
	for _, f := range fs {
		out = append(out, manifest.Format(f))
	}
	return out
}

func formatNames(fs []config.Format) []string {
	out := make([]string, 0, len(fs))
	for _, f := range fs {
		out = append(out, string(f))
	}
	return out
}
