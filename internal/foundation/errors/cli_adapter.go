package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// CLIErrorAdapter handles error presentation and exit code determination for the CLI.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	out     io.Writer
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{verbose: verbose, logger: logger, out: os.Stderr}
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	classified, ok := AsClassified(err)
	if !ok {
		return 1
	}
	switch classified.Category() {
	case CategoryValidation:
		return 2
	case CategoryNotFound:
		return 4
	case CategoryConfig:
		return 7
	case CategoryStore, CategoryEvents:
		return 8 // External system error
	case CategoryDocs, CategoryFileSystem, CategoryRoutes, CategorySearch:
		return 11 // Build error
	case CategoryRuntime:
		return 12
	case CategoryInternal:
		return 10
	default:
		return 1
	}
}

// FormatError formats an error for user-friendly display.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	classified, ok := AsClassified(err)
	if !ok {
		return fmt.Sprintf("Error: %v", err)
	}
	if a.verbose || classified.Category() != CategoryInternal {
		return "Error: " + classified.Error()
	}
	return "Internal error occurred (use -v for details)"
}

// Handle logs and prints err and returns the exit code the process should use.
func (a *CLIErrorAdapter) Handle(err error) int {
	if err == nil {
		return 0
	}
	if a.shouldLog(err) {
		a.logError(err)
	}
	fmt.Fprintln(a.out, a.FormatError(err))
	return a.ExitCodeFor(err)
}

// HandleError processes an error and exits the program with the appropriate code.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}
	os.Exit(a.Handle(err))
}

func (a *CLIErrorAdapter) shouldLog(err error) bool {
	if a.verbose {
		return true
	}
	if classified, ok := AsClassified(err); ok {
		return classified.Severity() == SeverityFatal
	}
	return true
}

func (a *CLIErrorAdapter) logError(err error) {
	classified, ok := AsClassified(err)
	if !ok {
		a.logger.Error("Unclassified error", "error", err)
		return
	}
	attrs := []slog.Attr{slog.String("category", string(classified.Category()))}
	for k, v := range classified.Context() {
		attrs = append(attrs, slog.Any(k, v))
	}
	if classified.CanRetry() {
		attrs = append(attrs, slog.Bool("retryable", true))
	}
	a.logger.LogAttrs(context.Background(), slogLevelFromSeverity(classified.Severity()), classified.Message(), attrs...)
}

func slogLevelFromSeverity(severity ErrorSeverity) slog.Level {
	switch severity {
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
