package config

import (
	"fmt"
	"strings"
	"time"
)

// ValidateConfig checks a normalized, defaulted configuration.
func ValidateConfig(cfg *Config) error {
	return newConfigurationValidator(cfg).validate()
}

// configurationValidator runs the per-domain checks in order.
type configurationValidator struct {
	config *Config
}

func newConfigurationValidator(config *Config) *configurationValidator {
	return &configurationValidator{config: config}
}

func (cv *configurationValidator) validate() error {
	checks := []func() error{
		cv.validateSearch,
		cv.validateServer,
		cv.validateSchedule,
		cv.validateSnapshots,
		cv.validateEvents,
		cv.validateMonitoring,
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func (cv *configurationValidator) validateSearch() error {
	s := cv.config.Search
	if s.MaxSuggestions < 0 {
		return fmt.Errorf("search.max_suggestions must not be negative, got %d", s.MaxSuggestions)
	}
	for _, lvl := range s.HeaderLevels {
		if lvl < 1 || lvl > 6 {
			return fmt.Errorf("search.header_levels: %d is not a heading level (1-6)", lvl)
		}
	}
	return nil
}

func (cv *configurationValidator) validateServer() error {
	if !strings.Contains(cv.config.Server.Addr, ":") {
		return fmt.Errorf("server.addr must be host:port or :port, got %q", cv.config.Server.Addr)
	}
	if cv.config.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("server.shutdown_timeout must not be negative")
	}
	return nil
}

func (cv *configurationValidator) validateSchedule() error {
	iv := cv.config.Schedule.RebuildInterval
	if iv < 0 {
		return fmt.Errorf("schedule.rebuild_interval must not be negative")
	}
	if iv > 0 && iv < time.Second {
		return fmt.Errorf("schedule.rebuild_interval must be at least 1s, got %s", iv)
	}
	if cv.config.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	return nil
}

func (cv *configurationValidator) validateSnapshots() error {
	if cv.config.Snapshots.Keep < 0 {
		return fmt.Errorf("snapshots.keep must not be negative")
	}
	return nil
}

func (cv *configurationValidator) validateEvents() error {
	e := cv.config.Events
	if !e.Enabled() {
		return nil
	}
	if !strings.HasPrefix(e.URL, "nats://") && !strings.HasPrefix(e.URL, "tls://") {
		return fmt.Errorf("events.url must be a nats:// or tls:// URL, got %q", e.URL)
	}
	if strings.ContainsAny(e.Subject, " *>") {
		return fmt.Errorf("events.subject must be a literal subject, got %q", e.Subject)
	}
	if e.Retry.MaxRetries < 0 {
		return fmt.Errorf("events.retry.max_retries cannot be negative")
	}
	if e.Retry.Initial < 0 || e.Retry.Max < 0 {
		return fmt.Errorf("events.retry delays cannot be negative")
	}
	return nil
}

func (cv *configurationValidator) validateMonitoring() error {
	m := cv.config.Monitoring
	for field, p := range map[string]string{"monitoring.metrics.path": m.Metrics.Path, "monitoring.health.path": m.Health.Path} {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("%s must start with /, got %q", field, p)
		}
	}
	if m.Metrics.Enabled && m.Metrics.Path == m.Health.Path {
		return fmt.Errorf("monitoring.metrics.path and monitoring.health.path must differ")
	}
	return nil
}
