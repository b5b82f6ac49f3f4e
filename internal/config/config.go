// Package config loads the docsite tool configuration (docsite.yaml).
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// CurrentVersion is the only configuration version this build understands.
const CurrentVersion = "1.0"

// DefaultPath is where the CLI looks for the configuration.
const DefaultPath = "docsite.yaml"

// Config is the complete tool configuration.
type Config struct {
	Version    string           `yaml:"version"`
	Source     SourceConfig     `yaml:"source"`
	Output     OutputConfig     `yaml:"output"`
	Search     SearchConfig     `yaml:"search"`
	Server     ServerConfig     `yaml:"server"`
	Snapshots  SnapshotsConfig  `yaml:"snapshots"`
	Watch      WatchConfig      `yaml:"watch"`
	Schedule   ScheduleConfig   `yaml:"schedule"`
	Events     EventsConfig     `yaml:"events"`
	Git        GitConfig        `yaml:"git"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
}

// SourceConfig locates the inputs of a build.
type SourceConfig struct {
	DocsDir    string `yaml:"docs_dir"`
	SiteConfig string `yaml:"site_config"` // .yaml, .yml or .json
}

// OutputConfig controls where and how build output is written.
type OutputConfig struct {
	Directory string   `yaml:"directory"`
	Clean     bool     `yaml:"clean"` // remove the output directory before a one-shot build
	Formats   []Format `yaml:"formats"`
}

// SearchConfig tunes the search index.
type SearchConfig struct {
	// MaxSuggestions overrides plugins.search.max_suggestions of the site config.
	MaxSuggestions int   `yaml:"max_suggestions"`
	HeaderLevels   []int `yaml:"header_levels"`
}

// ServerConfig configures the HTTP API of serve mode.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// SnapshotsConfig configures the historical snapshot store.
type SnapshotsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	// Keep bounds the number of stored snapshots; 0 keeps all.
	Keep int `yaml:"keep"`
}

// WatchConfig configures rebuilds on file changes in serve mode.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
}

// ScheduleConfig configures periodic rebuilds in serve mode.
type ScheduleConfig struct {
	// RebuildInterval of zero disables periodic rebuilds.
	RebuildInterval time.Duration `yaml:"rebuild_interval"`
}

// EventsConfig configures rebuild notifications over NATS. An empty URL
// disables publishing.
type EventsConfig struct {
	URL     string      `yaml:"url"`
	Subject string      `yaml:"subject"`
	Stream  string      `yaml:"stream"`
	Retry   RetryConfig `yaml:"retry"`
}

// RetryConfig controls how failed publishes are retried.
type RetryConfig struct {
	Backoff    RetryBackoffMode `yaml:"backoff"` // fixed|linear|exponential
	Initial    time.Duration    `yaml:"initial"`
	Max        time.Duration    `yaml:"max"`
	MaxRetries int              `yaml:"max_retries"`
}

// Enabled reports whether events should be published.
func (e EventsConfig) Enabled() bool { return e.URL != "" }

// GitConfig toggles per-page git metadata.
type GitConfig struct {
	Enabled bool `yaml:"enabled"`
}

// MonitoringConfig represents monitoring and observability configuration.
type MonitoringConfig struct {
	Metrics MonitoringMetrics `yaml:"metrics"`
	Health  MonitoringHealth  `yaml:"health"`
	Logging MonitoringLogging `yaml:"logging"`
}

// MonitoringMetrics represents metrics configuration.
type MonitoringMetrics struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// MonitoringHealth represents health check configuration.
type MonitoringHealth struct {
	Path string `yaml:"path"`
}

// MonitoringLogging represents logging configuration.
type MonitoringLogging struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// Load reads configPath and runs it through normalize, defaults and
// validation. Variables from .env and .env.local are available to ${VAR}
// references in the file.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError("configuration file not found").
				WithContext("file", configPath).Build()
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "read configuration").
			WithContext("file", configPath).Build()
	}

	cfg, err := Parse([]byte(os.ExpandEnv(string(data))))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "load configuration").
			WithContext("file", configPath).Fatal().Build()
	}
	return cfg, nil
}

// Parse decodes and prepares a configuration document.
func Parse(data []byte) (*Config, error) {
	cfg := switchDefaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Version != CurrentVersion {
		return nil, fmt.Errorf("unsupported configuration version %q (expected %q)", cfg.Version, CurrentVersion)
	}
	if err := prepare(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := switchDefaults()
	cfg.Version = CurrentVersion
	if err := prepare(&cfg); err != nil {
		panic(err)
	}
	return &cfg
}

func prepare(cfg *Config) error {
	res, err := NormalizeConfig(cfg)
	if err != nil {
		return err
	}
	res.log()
	if err := applyDefaults(cfg); err != nil {
		return err
	}
	return ValidateConfig(cfg)
}
