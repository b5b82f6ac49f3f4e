package build

import (
	"sync/atomic"

	"git.home.luguber.info/inful/docsite/internal/manifest"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/routes"
	"git.home.luguber.info/inful/docsite/internal/search"
	"git.home.luguber.info/inful/docsite/internal/siteconfig"
)

// Site is one consistent, immutable view of the built documentation.
type Site struct {
	// Config is nil for sites loaded from build output.
	Config  *siteconfig.SiteConfig
	Routes  *routes.Table
	Fetcher *routes.Fetcher
	Index   *search.Index
	Theme   siteconfig.ThemeData
	Info    manifest.Info
}

// NewSite assembles a site around table and records.
func NewSite(cfg *siteconfig.SiteConfig, table *routes.Table, records []search.Record, limit int, theme siteconfig.ThemeData, info manifest.Info, recorder metrics.Recorder) *Site {
	return &Site{
		Config:  cfg,
		Routes:  table,
		Fetcher: routes.NewFetcher(table, recorder),
		Index:   search.NewIndex(records, limit),
		Theme:   theme,
		Info:    info,
	}
}

// LoadSite opens the build output in dir. Pages are read from disk on
// first access.
func LoadSite(dir string, limit int, recorder metrics.Recorder) (*Site, error) {
	out, err := manifest.Read(dir)
	if err != nil {
		return nil, err
	}
	table, err := routes.NewTable(out.Routes, out.Redirects)
	if err != nil {
		return nil, err
	}
	return NewSite(nil, table, out.Search, limit, out.Theme, out.Info, recorder), nil
}

// Holder publishes the current Site. Readers never block and always see a
// complete site.
type Holder struct {
	p atomic.Pointer[Site]
}

// Current returns the live site, or nil before the first successful build.
func (h *Holder) Current() *Site { return h.p.Load() }

// Replace installs s and returns the previous site.
func (h *Holder) Replace(s *Site) *Site { return h.p.Swap(s) }
