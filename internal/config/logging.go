package config

import (
	"log/slog"

	"git.home.luguber.info/inful/docsite/internal/foundation/normalization"
)

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevels = normalization.NewEnum("log level", map[string]LogLevel{
	"debug":   LogLevelDebug,
	"info":    LogLevelInfo,
	"warn":    LogLevelWarn,
	"warning": LogLevelWarn,
	"error":   LogLevelError,
}, LogLevelInfo)

// NormalizeLogLevel maps raw onto a LogLevel, falling back to info.
func NormalizeLogLevel(raw string) LogLevel {
	return logLevels.Normalize(raw)
}

// SlogLevel converts the level for slog handlers.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

var logFormats = normalization.NewEnum("log format", map[string]LogFormat{
	"json": LogFormatJSON,
	"text": LogFormatText,
}, LogFormatText)

// NormalizeLogFormat maps raw onto a LogFormat, falling back to text.
func NormalizeLogFormat(raw string) LogFormat {
	return logFormats.Normalize(raw)
}

// Format is a build output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatJS   Format = "js"
)

var formats = normalization.NewEnum("output format", map[string]Format{
	"json": FormatJSON,
	"js":   FormatJS,
	"esm":  FormatJS,
	"mjs":  FormatJS,
}, FormatJSON)

// RetryBackoffMode selects how retry delays grow.
type RetryBackoffMode string

const (
	RetryBackoffFixed       RetryBackoffMode = "fixed"
	RetryBackoffLinear      RetryBackoffMode = "linear"
	RetryBackoffExponential RetryBackoffMode = "exponential"
)

var backoffModes = normalization.NewEnum("retry backoff", map[string]RetryBackoffMode{
	"fixed":       RetryBackoffFixed,
	"constant":    RetryBackoffFixed,
	"linear":      RetryBackoffLinear,
	"exponential": RetryBackoffExponential,
	"exp":         RetryBackoffExponential,
}, RetryBackoffLinear)
