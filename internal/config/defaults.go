package config

import (
	"path/filepath"
	"time"
)

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

var defaultAppliers = []DefaultApplier{
	&SourceDefaultApplier{},
	&OutputDefaultApplier{},
	&SearchDefaultApplier{},
	&ServeDefaultApplier{},
	&EventsDefaultApplier{},
	&MonitoringDefaultApplier{},
}

func applyDefaults(cfg *Config) error {
	for _, a := range defaultAppliers {
		if err := a.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}

// switchDefaults returns a config whose on-by-default switches are set.
// Decoding on top of it leaves them on unless the file turns them off.
func switchDefaults() Config {
	return Config{
		Watch:      WatchConfig{Enabled: true},
		Git:        GitConfig{Enabled: true},
		Monitoring: MonitoringConfig{Metrics: MonitoringMetrics{Enabled: true}},
	}
}

// SourceDefaultApplier handles source defaults.
type SourceDefaultApplier struct{}

func (SourceDefaultApplier) Domain() string { return "source" }

func (SourceDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Source.DocsDir == "" {
		cfg.Source.DocsDir = "docs"
	}
	if cfg.Source.SiteConfig == "" {
		cfg.Source.SiteConfig = filepath.Join(cfg.Source.DocsDir, ".vuepress", "site.yaml")
	}
	return nil
}

// OutputDefaultApplier handles output defaults.
type OutputDefaultApplier struct{}

func (OutputDefaultApplier) Domain() string { return "output" }

func (OutputDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Output.Directory == "" {
		cfg.Output.Directory = "site"
	}
	if len(cfg.Output.Formats) == 0 {
		cfg.Output.Formats = []Format{FormatJSON, FormatJS}
	}
	return nil
}

// SearchDefaultApplier handles search defaults.
type SearchDefaultApplier struct{}

func (SearchDefaultApplier) Domain() string { return "search" }

func (SearchDefaultApplier) ApplyDefaults(cfg *Config) error {
	if len(cfg.Search.HeaderLevels) == 0 {
		cfg.Search.HeaderLevels = []int{2, 3}
	}
	return nil
}

// ServeDefaultApplier handles server, snapshot, watch and schedule defaults.
type ServeDefaultApplier struct{}

func (ServeDefaultApplier) Domain() string { return "serve" }

func (ServeDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Snapshots.Path == "" {
		cfg.Snapshots.Path = filepath.Join(".docsite", "snapshots.db")
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 300 * time.Millisecond
	}
	return nil
}

// EventsDefaultApplier handles NATS defaults.
type EventsDefaultApplier struct{}

func (EventsDefaultApplier) Domain() string { return "events" }

func (EventsDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Events.Subject == "" {
		cfg.Events.Subject = "docsite.rebuilt"
	}
	if cfg.Events.Stream == "" {
		cfg.Events.Stream = "DOCSITE"
	}
	r := &cfg.Events.Retry
	if *r == (RetryConfig{}) {
		r.MaxRetries = 2
	}
	if r.Backoff == "" {
		r.Backoff = RetryBackoffLinear
	}
	if r.Initial == 0 {
		r.Initial = 500 * time.Millisecond
	}
	if r.Max == 0 {
		r.Max = 5 * time.Second
	}
	return nil
}

// MonitoringDefaultApplier handles monitoring defaults.
type MonitoringDefaultApplier struct{}

func (MonitoringDefaultApplier) Domain() string { return "monitoring" }

func (MonitoringDefaultApplier) ApplyDefaults(cfg *Config) error {
	m := &cfg.Monitoring
	if m.Metrics.Path == "" {
		m.Metrics.Path = "/metrics"
	}
	if m.Health.Path == "" {
		m.Health.Path = "/health"
	}
	if m.Logging.Level == "" {
		m.Logging.Level = LogLevelInfo
	}
	if m.Logging.Format == "" {
		m.Logging.Format = LogFormatText
	}
	return nil
}
