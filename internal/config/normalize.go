package config

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

// NormalizationResult captures adjustments and warnings from the normalization pass.
type NormalizationResult struct{ Warnings []string }

func (r *NormalizationResult) log() {
	for _, w := range r.Warnings {
		slog.Warn("Configuration adjusted", slog.String("detail", w))
	}
}

// NormalizeConfig canonicalizes enumerated and bounded fields before
// defaults are applied. It mutates c in place.
func NormalizeConfig(c *Config) (*NormalizationResult, error) {
	if c == nil {
		return nil, fmt.Errorf("config nil")
	}
	res := &NormalizationResult{}
	normalizeLogging(&c.Monitoring.Logging, res)
	normalizeOutput(&c.Output, res)
	normalizeRetry(&c.Events.Retry, res)
	normalizePaths(c)
	return res, nil
}

func normalizeLogging(l *MonitoringLogging, res *NormalizationResult) {
	if raw := strings.TrimSpace(string(l.Level)); raw != "" {
		lvl, err := logLevels.Parse(raw)
		if err != nil {
			res.Warnings = append(res.Warnings, warnUnknown("monitoring.logging.level", raw, string(LogLevelInfo)))
			lvl = LogLevelInfo
		}
		l.Level = lvl
	}
	if raw := strings.TrimSpace(string(l.Format)); raw != "" {
		f, err := logFormats.Parse(raw)
		if err != nil {
			res.Warnings = append(res.Warnings, warnUnknown("monitoring.logging.format", raw, string(LogFormatText)))
			f = LogFormatText
		}
		l.Format = f
	}
}

func normalizeOutput(o *OutputConfig, res *NormalizationResult) {
	var out []Format
	for _, raw := range o.Formats {
		f, err := formats.Parse(string(raw))
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("output.formats: dropped unknown format %q", raw))
			continue
		}
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	o.Formats = out
}

func normalizeRetry(r *RetryConfig, res *NormalizationResult) {
	raw := strings.TrimSpace(string(r.Backoff))
	if raw == "" {
		return
	}
	mode, err := backoffModes.Parse(raw)
	if err != nil {
		res.Warnings = append(res.Warnings, warnUnknown("events.retry.backoff", raw, string(RetryBackoffLinear)))
		mode = RetryBackoffLinear
	}
	r.Backoff = mode
}

func normalizePaths(c *Config) {
	c.Source.DocsDir = strings.TrimSpace(c.Source.DocsDir)
	c.Source.SiteConfig = strings.TrimSpace(c.Source.SiteConfig)
	c.Output.Directory = strings.TrimSpace(c.Output.Directory)
	c.Snapshots.Path = strings.TrimSpace(c.Snapshots.Path)
}

func warnUnknown(field, value, fallback string) string {
	return fmt.Sprintf("%s: unknown value %q, using %q", field, value, fallback)
}
